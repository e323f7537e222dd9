package vault_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fracdao/fractional/internal/fraction"
	"github.com/fracdao/fractional/internal/testutil"
	"github.com/fracdao/fractional/internal/vault"
)

func TestRegistry_MintVault(t *testing.T) {
	r := testutil.NewRegistry(t)

	id, err := r.MintVault("bob", []fraction.ItemID{42, 43}, 1000)
	require.NoError(t, err)
	assert.Equal(t, fraction.VaultID(1), id)
	assert.Equal(t, uint64(1), r.VaultCount())

	info, err := r.GetVault(id)
	require.NoError(t, err)
	assert.Equal(t, fraction.Inactive, info.State)
	assert.Equal(t, fraction.Account("bob"), info.Curator)
	assert.Equal(t, uint64(0), info.TotalMinted)
	assert.Equal(t, uint64(1000), info.Cap)
	assert.Equal(t, uint64(172800), info.AuctionLength)

	items, err := r.GetUnderlyingIds(id)
	require.NoError(t, err)
	assert.Equal(t, []fraction.ItemID{42, 43}, items)

	// Ids are sequential.
	id2, err := r.MintVault("carol", []fraction.ItemID{7}, 10)
	require.NoError(t, err)
	assert.Equal(t, fraction.VaultID(2), id2)
}

func TestRegistry_MintVault_Validation(t *testing.T) {
	r := testutil.NewRegistry(t)

	_, err := r.MintVault("", []fraction.ItemID{1}, 10)
	assert.True(t, fraction.HasCode(err, fraction.BadRequest), "missing curator")

	_, err = r.MintVault("bob", nil, 10)
	assert.True(t, fraction.HasCode(err, fraction.BadRequest), "empty underlying set")

	_, err = r.MintVault("bob", []fraction.ItemID{1}, 0)
	assert.True(t, fraction.HasCode(err, fraction.BadRequest), "zero cap")

	_, err = r.MintVault("bob", []fraction.ItemID{1}, 10001)
	assert.True(t, fraction.HasCode(err, fraction.BadRequest), "cap above policy max")

	_, err = r.MintVault("bob", []fraction.ItemID{1, 1}, 10)
	assert.True(t, fraction.HasCode(err, fraction.BadRequest), "duplicate item")

	assert.Equal(t, uint64(0), r.VaultCount())
}

func TestRegistry_MintShares(t *testing.T) {
	r := testutil.NewRegistry(t)
	id, err := r.MintVault("bob", []fraction.ItemID{42}, 1000)
	require.NoError(t, err)

	total, err := r.MintShares("bob", id, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), total)

	bal, err := r.ShareBalance(id, "bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), bal)

	// Only the curator mints.
	_, err = r.MintShares("alice", id, 100)
	assert.True(t, fraction.HasCode(err, fraction.Unauthorized))

	// Past the cap.
	for i := 0; i < 9; i++ {
		_, err := r.MintShares("bob", id, 100)
		require.NoError(t, err)
	}
	_, err = r.MintShares("bob", id, 100)
	assert.True(t, fraction.HasCode(err, fraction.SupplyExhausted))

	supply, err := r.GetSupply(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), supply)
}

func TestRegistry_MintShares_VaultNotFound(t *testing.T) {
	r := testutil.NewRegistry(t)
	_, err := r.MintShares("bob", 9, 100)
	assert.True(t, fraction.HasCode(err, fraction.VaultNotFound))
}

func TestRegistry_CastVoteAndReserveInfo(t *testing.T) {
	r := testutil.NewRegistry(t)
	id := testutil.MintStandardVault(t, r, "bob")

	ri, err := r.GetReserveInfo(id)
	require.NoError(t, err)
	assert.False(t, ri.Defined, "reserve undefined before any vote")

	require.NoError(t, r.CastVote("bob", id, 1, 100, fraction.MustWhole(100)))
	ri, err = r.GetReserveInfo(id)
	require.NoError(t, err)
	assert.True(t, ri.Defined)
	assert.Equal(t, uint64(100), ri.VotingWeight)
	assert.Equal(t, "100.00000000", ri.Reserve.String())

	// Voting shares the caller does not hold.
	err = r.CastVote("alice", id, 1, 100, fraction.MustWhole(100))
	assert.True(t, fraction.HasCode(err, fraction.InsufficientShares))
}

func TestRegistry_TransferClearsVotes(t *testing.T) {
	r := testutil.NewRegistry(t)
	id := testutil.MintStandardVault(t, r, "bob")
	require.NoError(t, r.CastVote("bob", id, 1, 1000, fraction.MustWhole(100)))

	require.NoError(t, r.TransferShares("bob", "dick", id, []fraction.ShareID{1, 2, 3}))

	ri, err := r.GetReserveInfo(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(997), ri.VotingWeight, "votes must not follow transferred shares")

	bal, err := r.ShareBalance(id, "dick")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), bal)

	// The new owner re-votes and the weight returns.
	require.NoError(t, r.CastVote("dick", id, 1, 3, fraction.MustWhole(200)))
	ri, err = r.GetReserveInfo(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), ri.VotingWeight)
}

func TestRegistry_SetFeeRate(t *testing.T) {
	r := testutil.NewRegistry(t)

	err := r.SetFeeRate("mallory", 250)
	assert.True(t, fraction.HasCode(err, fraction.Unauthorized))
	assert.Equal(t, uint64(0), r.FeeBips())

	require.NoError(t, r.SetFeeRate(testutil.ProtocolOwner, 250))
	assert.Equal(t, uint64(250), r.FeeBips())

	// Policy caps the rate.
	err = r.SetFeeRate(testutil.ProtocolOwner, 1001)
	assert.True(t, fraction.HasCode(err, fraction.BadRequest))
	assert.Equal(t, uint64(250), r.FeeBips())
}

func TestRegistry_SetFeeReceiver(t *testing.T) {
	r := testutil.NewRegistry(t)
	id := testutil.MintStandardVault(t, r, "bob")

	err := r.SetFeeReceiver("bob", id, "bob", "/receivers/mine")
	assert.True(t, fraction.HasCode(err, fraction.Unauthorized), "curator is not the protocol owner")

	require.NoError(t, r.SetFeeReceiver(testutil.ProtocolOwner, id, "treasury", "/receivers/settlement"))
}

func TestRegistry_TickAndFaucet(t *testing.T) {
	r := testutil.NewRegistry(t)

	now, err := r.Tick(100)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), now)
	assert.Equal(t, uint64(100), r.Now())

	testutil.Fund(t, r, "alice", 1000)
	assert.Equal(t, fraction.MustWhole(1000), r.Balance("alice"))
}

func TestRegistry_JournalRecordsOps(t *testing.T) {
	r := testutil.NewRegistry(t)
	id := testutil.MintStandardVault(t, r, "bob")
	require.NoError(t, r.CastVote("bob", id, 1, 1000, fraction.MustWhole(100)))

	j := r.Journal()
	require.NotEmpty(t, j)
	assert.Equal(t, "mint-vault", j[0].Name)
	assert.Equal(t, "op-1", j[0].Token)
	assert.Equal(t, uint64(1), j[0].Seq)
	assert.Equal(t, "cast-vote", j[len(j)-1].Name)
	assert.Equal(t, r.Seq(), j[len(j)-1].Seq)

	// Failed operations never reach the journal.
	before := len(r.Journal())
	_, err := r.MintShares("mallory", id, 1)
	require.Error(t, err)
	assert.Len(t, r.Journal(), before)
}

func TestRegistry_VaultNotFoundViews(t *testing.T) {
	r := testutil.NewRegistry(t)

	_, err := r.GetVault(1)
	assert.True(t, fraction.HasCode(err, fraction.VaultNotFound))
	_, err = r.GetReserveInfo(1)
	assert.True(t, fraction.HasCode(err, fraction.VaultNotFound))
	_, err = r.GetEscrowBalance(1)
	assert.True(t, fraction.HasCode(err, fraction.VaultNotFound))
}

func TestRegistry_Options(t *testing.T) {
	r := vault.NewRegistry(
		testutil.NewRegistry(t).Policy(),
		"owner",
		vault.WithClock(vault.NewClockAt(500)),
		vault.WithBurner("custom/burner"),
	)
	assert.Equal(t, uint64(500), r.Now())
	assert.Equal(t, fraction.Account("custom/burner"), r.BurnerAccount())
	assert.Equal(t, fraction.Account("owner"), r.Owner())
}
