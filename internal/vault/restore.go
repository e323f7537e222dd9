package vault

import (
	"github.com/fracdao/fractional/internal/currency"
	"github.com/fracdao/fractional/internal/fraction"
	"github.com/fracdao/fractional/internal/ledger"
	"github.com/fracdao/fractional/internal/pricebook"
)

// The Restore* methods seed registry state directly from persisted rows.
// Only the store's state loader calls them, before the registry serves
// any operation; they bypass validation and journaling on purpose.

// RestoreClock sets the logical clock.
func (r *Registry) RestoreClock(now uint64) {
	r.clock = NewClockAt(now)
}

// RestoreSeq sets the last committed operation sequence number.
func (r *Registry) RestoreSeq(seq uint64) {
	r.seq = seq
}

// RestoreFeeBips sets the protocol fee rate.
func (r *Registry) RestoreFeeBips(bips uint64) {
	r.feeBips = bips
}

// RestoreVault recreates a vault shell from its persisted row. Shares and
// votes are restored separately, row by row.
func (r *Registry) RestoreVault(row VaultRow) {
	v := &Vault{
		Record: row.Record,
		Shares: ledger.New(row.Cap),
		Book:   pricebook.New(),
	}
	v.Shares.RestoreMinted(row.TotalMinted)
	r.vaults[row.Record.ID] = v
	if row.Record.ID >= r.next {
		r.next = row.Record.ID + 1
	}
}

// RestoreShare recreates one share ownership row.
func (r *Registry) RestoreShare(id fraction.VaultID, share fraction.ShareID, owner fraction.Account) error {
	v, err := r.vault(id)
	if err != nil {
		return err
	}
	v.Shares.Restore(share, owner)
	return nil
}

// RestoreVote recreates one reserve-price vote.
func (r *Registry) RestoreVote(id fraction.VaultID, share fraction.ShareID, price fraction.Amount) error {
	v, err := r.vault(id)
	if err != nil {
		return err
	}
	return v.Book.Restore(share, price)
}

// Funds exposes the currency ledger for the state loader and diagnostics.
func (r *Registry) Funds() *currency.Ledger {
	return r.funds
}

// Burns exposes the burn book for the state loader and diagnostics.
func (r *Registry) Burns() *ledger.BurnBook {
	return r.burns
}
