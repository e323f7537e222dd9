package vault

import "github.com/fracdao/fractional/internal/fraction"

// OpRecord is one journaled public operation: what was asked, when in
// logical time, and what it produced. Args and Result hold only canonical
// JSON-safe values (strings, integers, bools, nested maps/slices).
type OpRecord struct {
	// Token is the UUIDv7 operation token.
	Token string

	// Seq is the registry's operation sequence number, starting at 1.
	Seq uint64

	// Time is the logical clock when the operation applied.
	Time uint64

	// Name is the operation name, e.g. "start", "bid", "cash".
	Name string

	Args   map[string]any
	Result map[string]any
}

// ChangeSet describes the state rows a successful operation touched, as
// absolute post-operation values. The persister applies the journal row
// and the change set in a single transaction, which is what makes every
// public operation all-or-nothing across restarts.
type ChangeSet struct {
	// Time, when set, persists a new clock value.
	Time *uint64

	// FeeBips, when set, persists a new protocol fee rate.
	FeeBips *uint64

	// Vault, when set, upserts the vault record (including TotalMinted).
	Vault *VaultRow

	// SetShares upserts share ownership rows; DelShares removes burned
	// shares.
	SetShares []ShareRow
	DelShares []ShareKey

	// SetVotes upserts vote rows; DelVotes removes cleared votes.
	SetVotes []VoteRow
	DelVotes []VoteKey

	// Balances holds absolute spendable balances for touched accounts.
	Balances []BalanceRow

	// Escrows holds absolute escrow balances for touched vaults.
	Escrows []EscrowRow

	// Receivers holds newly registered receiver paths.
	Receivers []ReceiverRow

	// Burns rewrites the full batch list for touched reclaim accounts.
	Burns []BurnRow
}

// VaultRow is the persisted form of a Record plus its supply counters.
type VaultRow struct {
	Record      Record
	TotalMinted uint64
	Cap         uint64
}

// ShareRow is one share's ownership row.
type ShareRow struct {
	Vault fraction.VaultID
	Share fraction.ShareID
	Owner fraction.Account
}

// ShareKey identifies a share row for deletion.
type ShareKey struct {
	Vault fraction.VaultID
	Share fraction.ShareID
}

// VoteRow is one share's recorded reserve-price vote.
type VoteRow struct {
	Vault fraction.VaultID
	Share fraction.ShareID
	Price fraction.Amount
}

// VoteKey identifies a vote row for deletion.
type VoteKey struct {
	Vault fraction.VaultID
	Share fraction.ShareID
}

// BalanceRow is an account's absolute spendable balance.
type BalanceRow struct {
	Account fraction.Account
	Amount  fraction.Amount
}

// EscrowRow is a vault's absolute escrow balance.
type EscrowRow struct {
	Vault  fraction.VaultID
	Amount fraction.Amount
}

// ReceiverRow is a registered receiver path.
type ReceiverRow struct {
	Account fraction.Account
	Path    string
}

// BurnRow is the full pending batch list for one reclaim account.
type BurnRow struct {
	Account fraction.Account
	Batches []uint64
}

// Persister commits a journal record and its state changes atomically.
// Implemented by store.Store; a nil persister runs the registry purely in
// memory (tests, replay verification).
type Persister interface {
	SaveOp(rec OpRecord, cs ChangeSet) error
}
