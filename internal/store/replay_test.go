package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fracdao/fractional/internal/policy"
)

func TestVerifyReplay_Matches(t *testing.T) {
	s, r := runLifecycle(t)

	report, err := s.VerifyReplay(policy.Default(), testOwner)
	require.NoError(t, err)
	assert.True(t, report.Match)
	assert.Equal(t, len(r.Journal()), report.Ops)
	assert.Equal(t, string(report.Persisted), string(report.Replayed))
}

func TestVerifyReplay_EmptyJournal(t *testing.T) {
	s := openTestStore(t)

	report, err := s.VerifyReplay(policy.Default(), testOwner)
	require.NoError(t, err)
	assert.True(t, report.Match)
	assert.Equal(t, 0, report.Ops)
}

func TestVerifyReplay_DetectsTamperedState(t *testing.T) {
	s, _ := runLifecycle(t)

	// Corrupt a mirrored balance behind the journal's back.
	_, err := s.db.Exec(`UPDATE balances SET amount = '9999.00000000' WHERE account = 'bob'`)
	require.NoError(t, err)

	report, err := s.VerifyReplay(policy.Default(), testOwner)
	require.NoError(t, err)
	assert.False(t, report.Match, "tampered state must not verify")
	assert.NotEqual(t, string(report.Persisted), string(report.Replayed))
}

func TestVerifyReplay_WrongPolicyDiverges(t *testing.T) {
	s, _ := runLifecycle(t)

	p := policy.Default()
	p.AuctionLength = 60

	// With a 60-tick auction the replayed expiry diverges from the one
	// the journal was produced under.
	report, err := s.VerifyReplay(p, testOwner)
	require.NoError(t, err)
	assert.False(t, report.Match)
}

func TestMarshalDoc_RoundTrip(t *testing.T) {
	doc := map[string]any{"account": "alice", "count": uint64(7)}
	text, err := marshalDoc(doc)
	require.NoError(t, err)

	back, err := unmarshalDoc(text)
	require.NoError(t, err)
	assert.Equal(t, "alice", back["account"])

	// Nil and empty docs normalize to {}.
	text, err = marshalDoc(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", text)
	back, err = unmarshalDoc("")
	require.NoError(t, err)
	assert.Empty(t, back)
}
