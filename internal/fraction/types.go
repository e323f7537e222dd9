// Package fraction defines the core vocabulary of the fractional vault
// protocol: account and id types, the auction state machine states, the
// fixed-point settlement currency amount, and the operation error taxonomy.
//
// Every other package speaks these types; none of them import anything
// above this package.
package fraction

// Account identifies a participant (curator, bidder, share holder, fee
// receiver, or the protocol's burner account). Accounts are opaque strings;
// the host transport that would authenticate them is out of scope.
type Account string

// VaultID identifies a fractional vault. Assigned sequentially by the
// registry starting at 1.
type VaultID uint64

// ShareID identifies a single share. Shares are numbered contiguously per
// vault starting at 1, so a holder can reference a contiguous range when
// casting reserve-price votes.
type ShareID uint64

// ItemID identifies one underlying custodied item held by a vault.
type ItemID uint64

// AuctionState is the vault's auction sub-state.
//
// Transitions:
//
//	Inactive --Start--> Live --Bid--> Live --End (after expiry)--> Ended
//	Inactive --WithdrawUnderlying / full Redeem--> Consumed
//
// Ended and Consumed are terminal. No transition ever leaves either.
type AuctionState uint8

const (
	// Inactive: shares may be minted, transferred, and voted; no auction yet.
	Inactive AuctionState = iota + 1
	// Live: an auction is running; bids escrow funds and may extend expiry.
	Live
	// Ended: the auction settled; holders cash shares against net proceeds.
	Ended
	// Consumed: the underlying was redeemed directly by a sole full-supply
	// holder; the vault is spent without an auction ever running.
	Consumed
)

// String returns the state name used in journal records and CLI output.
func (s AuctionState) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Live:
		return "live"
	case Ended:
		return "ended"
	case Consumed:
		return "consumed"
	default:
		return "unknown"
	}
}
