package ledger

import (
	"sort"

	"github.com/fracdao/fractional/internal/fraction"
)

// BurnBook records burn batches per reclaiming account: how many destroyed
// shares each account has absorbed and not yet reclaimed, as an ordered
// list of batch counts.
//
// Settlement burns happen incrementally across many cash calls, so the
// storage those dead shares occupied is reclaimed a bounded batch at a
// time rather than all at once. Draining a batch is purely a resource
// concern and never affects balances or proceeds.
type BurnBook struct {
	batches map[fraction.Account][]uint64
}

// NewBurnBook creates an empty burn book.
func NewBurnBook() *BurnBook {
	return &BurnBook{batches: make(map[fraction.Account][]uint64)}
}

// Record appends a batch of count burned shares against a reclaimer.
func (b *BurnBook) Record(reclaimer fraction.Account, count uint64) {
	if count == 0 {
		return
	}
	b.batches[reclaimer] = append(b.batches[reclaimer], count)
}

// Count returns the number of pending batches for a reclaimer.
func (b *BurnBook) Count(reclaimer fraction.Account) uint64 {
	return uint64(len(b.batches[reclaimer]))
}

// At returns the share count of the batch at the given index.
func (b *BurnBook) At(reclaimer fraction.Account, index uint64) (uint64, error) {
	batches := b.batches[reclaimer]
	if index >= uint64(len(batches)) {
		return 0, fraction.Newf(fraction.BadRequest,
			"burn batch index %d out of range (have %d)", index, len(batches)).WithAccount(reclaimer)
	}
	return batches[index], nil
}

// Drain removes the batch at the given index and returns how many shares
// it freed. Later batches shift down, so repeated Drain(acct, 0) empties
// the book front to back.
func (b *BurnBook) Drain(reclaimer fraction.Account, index uint64) (uint64, error) {
	batches := b.batches[reclaimer]
	if index >= uint64(len(batches)) {
		return 0, fraction.Newf(fraction.BadRequest,
			"burn batch index %d out of range (have %d)", index, len(batches)).WithAccount(reclaimer)
	}
	freed := batches[index]
	batches = append(batches[:index], batches[index+1:]...)
	if len(batches) == 0 {
		delete(b.batches, reclaimer)
	} else {
		b.batches[reclaimer] = batches
	}
	return freed, nil
}

// Reclaimers returns every account with pending batches, sorted, for
// persistence and diagnostics.
func (b *BurnBook) Reclaimers() []fraction.Account {
	out := make([]fraction.Account, 0, len(b.batches))
	for a := range b.batches {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Batches returns a copy of the batch list for a reclaimer.
func (b *BurnBook) Batches(reclaimer fraction.Account) []uint64 {
	src := b.batches[reclaimer]
	out := make([]uint64, len(src))
	copy(out, src)
	return out
}

// Restore seeds a reclaimer's batch list. Only the store's state loader
// calls this.
func (b *BurnBook) Restore(reclaimer fraction.Account, counts []uint64) {
	if len(counts) == 0 {
		return
	}
	cp := make([]uint64, len(counts))
	copy(cp, counts)
	b.batches[reclaimer] = cp
}
