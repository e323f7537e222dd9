package fraction

import (
	"errors"
	"fmt"
)

// Code categorizes operation failures. Every failed public operation
// reports exactly one code, synchronously, and leaves no state change
// behind. Callers branch on codes, not message text.
type Code string

const (
	// QuorumNotMet: start requires a majority of outstanding shares to have
	// cast a reserve-price vote.
	QuorumNotMet Code = "QUORUM_NOT_MET"

	// BidTooLow: the opening bid is below the weighted reserve price.
	BidTooLow Code = "BID_TOO_LOW"

	// RaiseTooSmall: a bid does not exceed the current high bid by the
	// minimum raise fraction.
	RaiseTooSmall Code = "RAISE_TOO_SMALL"

	// AuctionAlreadyLive: start or withdraw called after the auction began.
	AuctionAlreadyLive Code = "AUCTION_ALREADY_LIVE"

	// AuctionNotLive: bid or end called while no auction is running.
	AuctionNotLive Code = "AUCTION_NOT_LIVE"

	// AuctionNotEnded: cash called before the auction settled.
	AuctionNotEnded Code = "AUCTION_NOT_ENDED"

	// AuctionNotExpired: end called before the auction clock ran out.
	AuctionNotExpired Code = "AUCTION_NOT_EXPIRED"

	// SupplyExhausted: minting past the vault's configured share cap.
	SupplyExhausted Code = "SUPPLY_EXHAUSTED"

	// InsufficientShares: the caller does not hold the referenced shares.
	InsufficientShares Code = "INSUFFICIENT_SHARES"

	// NotOwner: a presented share id is not owned by the caller.
	NotOwner Code = "NOT_OWNER"

	// SharesOutstanding: withdraw/redeem requires sole ownership of the
	// entire minted supply.
	SharesOutstanding Code = "SHARES_OUTSTANDING"

	// FeeSinkUnavailable: the vault's fee receiver endpoint is not
	// reachable; finalization is blocked until the owner repairs it.
	FeeSinkUnavailable Code = "FEE_SINK_UNAVAILABLE"

	// Unauthorized: an owner-only operation called by a non-owner.
	Unauthorized Code = "UNAUTHORIZED"

	// VaultNotFound: the referenced vault id does not exist.
	VaultNotFound Code = "VAULT_NOT_FOUND"

	// InsufficientFunds: a currency transfer exceeds the spendable balance.
	InsufficientFunds Code = "INSUFFICIENT_FUNDS"

	// AmountOverflow: checked fixed-point arithmetic would wrap.
	AmountOverflow Code = "AMOUNT_OVERFLOW"

	// BadRequest: malformed operation input (zero counts, empty id lists,
	// unknown accounts, batch over the policy limit).
	BadRequest Code = "BAD_REQUEST"
)

// OpError is the structured error returned by every failing operation.
//
// Vault and Account are populated when the failure is scoped to one; zero
// values mean not applicable.
type OpError struct {
	Code    Code
	Message string
	Vault   VaultID
	Account Account
}

// Error implements the error interface.
func (e *OpError) Error() string {
	switch {
	case e.Vault != 0 && e.Account != "":
		return fmt.Sprintf("%s: %s (vault=%d, account=%s)", e.Code, e.Message, e.Vault, e.Account)
	case e.Vault != 0:
		return fmt.Sprintf("%s: %s (vault=%d)", e.Code, e.Message, e.Vault)
	case e.Account != "":
		return fmt.Sprintf("%s: %s (account=%s)", e.Code, e.Message, e.Account)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Newf creates an OpError with a formatted message.
func Newf(code Code, format string, args ...any) *OpError {
	return &OpError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithVault returns the error annotated with the vault it concerns.
func (e *OpError) WithVault(v VaultID) *OpError {
	e.Vault = v
	return e
}

// WithAccount returns the error annotated with the account it concerns.
func (e *OpError) WithAccount(a Account) *OpError {
	e.Account = a
	return e
}

// CodeOf extracts the failure code from an error chain. Returns the empty
// code for nil or non-OpError errors.
func CodeOf(err error) Code {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Code
	}
	return ""
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}
