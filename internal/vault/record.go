package vault

import (
	"github.com/fracdao/fractional/internal/fraction"
	"github.com/fracdao/fractional/internal/ledger"
	"github.com/fracdao/fractional/internal/pricebook"
)

// Record is the per-vault metadata row: who curated it, what it holds,
// where protocol fees go, and where the auction state machine stands.
type Record struct {
	ID      fraction.VaultID
	Curator fraction.Account

	// Underlying is the custodied item set, fixed at mint.
	Underlying []fraction.ItemID

	// UnderlyingHolder is empty while the vault custodies the items and
	// set to the recipient once they are released (auction winner, or the
	// sole holder on redeem/withdraw).
	UnderlyingHolder fraction.Account

	// FeeReceiver and FeeReceiverPath form the settlement-currency
	// receiver descriptor protocol fees are paid through. Only the
	// protocol owner may change them; end refuses to finalize while the
	// descriptor is unreachable.
	FeeReceiver     fraction.Account
	FeeReceiverPath string

	State fraction.AuctionState

	// AuctionEnd is the logical expiry time while Live, else 0.
	AuctionEnd uint64

	// LivePrice is the standing high bid while Live, and the winning bid
	// after settlement.
	LivePrice fraction.Amount

	// Winning is the current high bidder while Live and the buyer after.
	Winning fraction.Account

	// NetProceeds is the settled pool (winning bid minus fee);
	// ProceedsLeft is what cash calls have not yet paid out.
	NetProceeds  fraction.Amount
	ProceedsLeft fraction.Amount

	// Redeemed counts shares burned through the pre-auction redeem path;
	// Redeemer is the account performing that drain.
	Redeemed uint64
	Redeemer fraction.Account
}

// Vault bundles a record with the two structures it exclusively owns: its
// share ledger and its reserve-price book.
type Vault struct {
	Record Record
	Shares *ledger.Ledger
	Book   *pricebook.Book
}

// Info is the externally visible view of a vault, shaped like the original
// deployment's vault script output.
type Info struct {
	ID            fraction.VaultID
	Curator       fraction.Account
	State         fraction.AuctionState
	AuctionEnd    uint64
	AuctionLength uint64
	LivePrice     fraction.Amount
	Winning       fraction.Account
	TotalMinted   uint64
	Cap           uint64
	LiveShares    uint64
	NetProceeds   fraction.Amount
	ProceedsLeft  fraction.Amount
}

// ReserveInfo is the price book aggregate view.
type ReserveInfo struct {
	VotingWeight uint64
	Reserve      fraction.Amount
	// Defined is false while no votes are recorded and the weighted
	// reserve is meaningless.
	Defined bool
}
