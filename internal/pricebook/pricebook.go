// Package pricebook maintains per-vault reserve-price votes and a running
// weighted aggregate.
//
// Supply can be in the thousands and votes arrive in range-sized batches,
// so the aggregate (total voting weight, weighted price sum) is maintained
// incrementally: every vote change is a constant-time add/remove against
// the running pair, never a rescan of the vote set.
package pricebook

import (
	"math/bits"
	"sort"

	"github.com/fracdao/fractional/internal/fraction"
)

// OwnershipOracle answers whether an account holds a contiguous share
// range. Satisfied by ledger.Ledger.
type OwnershipOracle interface {
	OwnsRange(acct fraction.Account, start fraction.ShareID, count uint64) bool
}

// Book is the reserve-price book for one vault.
//
// Not safe for concurrent use; the registry is the single writer.
type Book struct {
	votes map[fraction.ShareID]fraction.Amount
	agg   aggregate
}

// aggregate is the running (weight, weighted sum) pair. Each vote carries
// weight 1 per share, so weightedSum is the sum of voted prices and the
// weighted reserve is weightedSum/weight.
type aggregate struct {
	weight      uint64
	weightedSum fraction.Amount
}

func (a *aggregate) add(weight uint64, sum fraction.Amount) error {
	newSum, err := a.weightedSum.Add(sum)
	if err != nil {
		return err
	}
	a.weight += weight
	a.weightedSum = newSum
	return nil
}

func (a *aggregate) remove(weight uint64, sum fraction.Amount) {
	// Removal can never underflow: everything removed was added first.
	a.weight -= weight
	a.weightedSum -= sum
}

// New creates an empty book.
func New() *Book {
	return &Book{votes: make(map[fraction.ShareID]fraction.Amount)}
}

// CastVote records price as the vote carried by every share in
// [start, start+count), all of which must currently be held by owner.
// Prior votes on those shares are replaced.
func (b *Book) CastVote(oracle OwnershipOracle, owner fraction.Account, start fraction.ShareID, count uint64, price fraction.Amount) error {
	if count == 0 {
		return fraction.Newf(fraction.BadRequest, "vote over an empty share range")
	}
	if !oracle.OwnsRange(owner, start, count) {
		return fraction.Newf(fraction.InsufficientShares,
			"caller does not hold shares %d..%d", start, start+fraction.ShareID(count)-1).WithAccount(owner)
	}

	// Pre-compute the aggregate delta so an overflow leaves the book
	// untouched.
	hi, lo := bits.Mul64(uint64(price), count)
	if hi != 0 {
		return fraction.Newf(fraction.AmountOverflow, "vote contribution overflows")
	}
	added := fraction.Amount(lo)

	var removedWeight uint64
	var removedSum fraction.Amount
	for i := uint64(0); i < count; i++ {
		if old, ok := b.votes[start+fraction.ShareID(i)]; ok {
			removedWeight++
			removedSum += old
		}
	}

	b.agg.remove(removedWeight, removedSum)
	if err := b.agg.add(count, added); err != nil {
		b.agg.add(removedWeight, removedSum) //nolint:errcheck // restoring a prior state cannot overflow
		return err
	}
	for i := uint64(0); i < count; i++ {
		b.votes[start+fraction.ShareID(i)] = price
	}
	return nil
}

// ClearVote drops the vote carried by a share, if any. Called when a share
// is transferred or burned: a vote never follows a share to its new owner,
// so stale votes cannot inflate the auction-readiness check.
func (b *Book) ClearVote(id fraction.ShareID) {
	price, ok := b.votes[id]
	if !ok {
		return
	}
	b.agg.remove(1, price)
	delete(b.votes, id)
}

// Query returns the total voting weight and the weighted reserve price.
// ok is false when no votes are recorded, in which case the reserve is
// undefined.
func (b *Book) Query() (weight uint64, reserve fraction.Amount, ok bool) {
	if b.agg.weight == 0 {
		return 0, 0, false
	}
	r, err := b.agg.weightedSum.MulDiv(1, b.agg.weight)
	if err != nil {
		return b.agg.weight, 0, false
	}
	return b.agg.weight, r, true
}

// HasQuorum reports whether voting weight covers at least half the supply.
func (b *Book) HasQuorum(supply uint64) bool {
	return b.agg.weight*2 >= supply && supply > 0
}

// MeetsReserve reports whether amount is at least the weighted reserve.
// Compared as amount·weight ≥ weightedSum so no intermediate division can
// round the check the wrong way. False when no votes are recorded.
func (b *Book) MeetsReserve(amount fraction.Amount) bool {
	if b.agg.weight == 0 {
		return false
	}
	return fraction.CmpMul(amount, b.agg.weight, b.agg.weightedSum, 1) >= 0
}

// VotedShares returns the share ids carrying votes, sorted, for
// persistence and diagnostics.
func (b *Book) VotedShares() []fraction.ShareID {
	ids := make([]fraction.ShareID, 0, len(b.votes))
	for id := range b.votes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// VoteOf returns the price a share is voting for, if any.
func (b *Book) VoteOf(id fraction.ShareID) (fraction.Amount, bool) {
	price, ok := b.votes[id]
	return price, ok
}

// Restore seeds a single vote directly. Only the store's state loader
// calls this; the aggregate is rebuilt vote by vote.
func (b *Book) Restore(id fraction.ShareID, price fraction.Amount) error {
	if _, ok := b.votes[id]; ok {
		return fraction.Newf(fraction.BadRequest, "share %d restored twice", id)
	}
	if err := b.agg.add(1, price); err != nil {
		return err
	}
	b.votes[id] = price
	return nil
}
