package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fracdao/fractional/internal/fraction"
	"github.com/fracdao/fractional/internal/policy"
	"github.com/fracdao/fractional/internal/vault"
)

const testOwner = fraction.Account("fractional")

// runLifecycle drives a persisted registry through the full auction
// lifecycle and returns it with its store.
func runLifecycle(t *testing.T) (*Store, *vault.Registry) {
	t.Helper()
	s := openTestStore(t)
	r := vault.NewRegistry(policy.Default(), testOwner,
		vault.WithPersister(s),
		vault.WithTokenGenerator(vault.NewFixedGenerator("op")))

	id, err := r.MintVault("bob", []fraction.ItemID{42}, 1000)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		_, err := r.MintShares("bob", id, 100)
		require.NoError(t, err)
	}
	require.NoError(t, r.CastVote("bob", id, 1, 1000, fraction.MustWhole(100)))
	require.NoError(t, r.SetFeeRate(testOwner, 250))
	require.NoError(t, r.RegisterReceiver(testOwner, "/receivers/settlement"))
	require.NoError(t, r.Faucet("alice", fraction.MustWhole(1000)))
	require.NoError(t, r.Faucet("carol", fraction.MustWhole(1000)))
	require.NoError(t, r.Start("alice", id, fraction.MustWhole(100)))
	require.NoError(t, r.Bid("carol", id, fraction.MustWhole(300)))
	_, err = r.Tick(172900)
	require.NoError(t, err)
	require.NoError(t, r.End("anyone", id))

	ids := make([]fraction.ShareID, 100)
	for i := range ids {
		ids[i] = fraction.ShareID(i + 1)
	}
	_, err = r.Cash("bob", id, ids)
	require.NoError(t, err)
	return s, r
}

func TestLoadState_ReproducesRegistry(t *testing.T) {
	s, r := runLifecycle(t)

	loaded := vault.NewRegistry(policy.Default(), testOwner)
	require.NoError(t, s.LoadState(loaded))

	want, err := r.SnapshotCanonical()
	require.NoError(t, err)
	got, err := loaded.SnapshotCanonical()
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	// Loaded registry keeps serving: sequence and clock resume where the
	// session stopped.
	assert.Equal(t, r.Seq(), loaded.Seq())
	assert.Equal(t, r.Now(), loaded.Now())
	assert.Equal(t, r.FeeBips(), loaded.FeeBips())

	bal, err := loaded.ShareBalance(1, "bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(900), bal)
}

func TestLoadState_EmptyDatabase(t *testing.T) {
	s := openTestStore(t)
	r := vault.NewRegistry(policy.Default(), testOwner)
	require.NoError(t, s.LoadState(r))

	assert.Equal(t, uint64(0), r.Seq())
	assert.Equal(t, uint64(0), r.Now())
	assert.Equal(t, uint64(0), r.VaultCount())
}

func TestLoadState_ResumedRegistryContinues(t *testing.T) {
	s, _ := runLifecycle(t)

	loaded := vault.NewRegistry(policy.Default(), testOwner,
		vault.WithPersister(s),
		vault.WithTokenGenerator(vault.NewFixedGenerator("resumed")))
	require.NoError(t, s.LoadState(loaded))

	before := loaded.Seq()
	ids := make([]fraction.ShareID, 100)
	for i := range ids {
		ids[i] = fraction.ShareID(i + 101)
	}
	_, err := loaded.Cash("bob", 1, ids)
	require.NoError(t, err)
	assert.Equal(t, before+1, loaded.Seq())

	n, err := s.JournalLength()
	require.NoError(t, err)
	assert.Equal(t, loaded.Seq(), n)
}

func TestReadJournal_OrderAndRoundTrip(t *testing.T) {
	s, r := runLifecycle(t)

	journal, err := s.ReadJournal()
	require.NoError(t, err)
	require.Len(t, journal, len(r.Journal()))

	for i, rec := range journal {
		assert.Equal(t, uint64(i+1), rec.Seq)
		assert.Equal(t, r.Journal()[i].Name, rec.Name)
		assert.Equal(t, r.Journal()[i].Token, rec.Token)
	}
}
