// Package ledger owns share existence for a vault: the arena of
// individually identified shares, per-holder balances, and the burn-batch
// book used for incremental storage reclamation.
//
// Shares are deliberately not a fungible counter. Each share has an id and
// exactly one owner, so a reserve-price vote over an explicit contiguous
// range and a cash call over an explicit id list are both well-defined.
package ledger

import (
	"sort"

	"github.com/fracdao/fractional/internal/fraction"
)

// Ledger tracks the shares of a single vault.
//
// TotalMinted only grows until it reaches the cap, at which point minting
// is complete and the supply is fixed forever. Burns remove shares from
// the arena but never touch the historical TotalMinted counter.
type Ledger struct {
	cap         uint64
	nextID      fraction.ShareID
	owners      map[fraction.ShareID]fraction.Account
	balances    map[fraction.Account]uint64
	totalMinted uint64
}

// New creates an empty share ledger with the given supply cap.
func New(cap uint64) *Ledger {
	return &Ledger{
		cap:      cap,
		nextID:   1,
		owners:   make(map[fraction.ShareID]fraction.Account),
		balances: make(map[fraction.Account]uint64),
	}
}

// Cap returns the configured maximum supply.
func (l *Ledger) Cap() uint64 { return l.cap }

// TotalMinted returns the historical number of shares ever minted. Once it
// equals the cap it never changes again.
func (l *Ledger) TotalMinted() uint64 { return l.totalMinted }

// MintingComplete reports whether the full supply has been minted.
func (l *Ledger) MintingComplete() bool { return l.totalMinted == l.cap }

// LiveCount returns the number of shares currently in existence.
func (l *Ledger) LiveCount() uint64 { return uint64(len(l.owners)) }

// Mint creates count new shares owned by recipient and returns the first
// id of the contiguous range. Fails with SupplyExhausted once the cap
// would be exceeded.
func (l *Ledger) Mint(recipient fraction.Account, count uint64) (fraction.ShareID, uint64, error) {
	if recipient == "" || count == 0 {
		return 0, 0, fraction.Newf(fraction.BadRequest, "mint needs a recipient and a positive count")
	}
	if l.totalMinted+count > l.cap {
		return 0, 0, fraction.Newf(fraction.SupplyExhausted,
			"minting %d past %d of %d", count, l.totalMinted, l.cap)
	}
	first := l.nextID
	for i := uint64(0); i < count; i++ {
		l.owners[l.nextID] = recipient
		l.nextID++
	}
	l.balances[recipient] += count
	l.totalMinted += count
	return first, l.totalMinted, nil
}

// OwnerOf returns the current owner of a share, or ok=false if the share
// does not exist (never minted, or burned).
func (l *Ledger) OwnerOf(id fraction.ShareID) (fraction.Account, bool) {
	owner, ok := l.owners[id]
	return owner, ok
}

// BalanceOf returns how many live shares an account holds.
func (l *Ledger) BalanceOf(acct fraction.Account) uint64 {
	return l.balances[acct]
}

// Holdings returns the ids an account holds, sorted ascending.
func (l *Ledger) Holdings(acct fraction.Account) []fraction.ShareID {
	var ids []fraction.ShareID
	for id, owner := range l.owners {
		if owner == acct {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// OwnsRange reports whether acct owns every share in [start, start+count).
func (l *Ledger) OwnsRange(acct fraction.Account, start fraction.ShareID, count uint64) bool {
	for i := uint64(0); i < count; i++ {
		if l.owners[start+fraction.ShareID(i)] != acct {
			return false
		}
	}
	return count > 0
}

// Transfer moves the listed shares from one account to another. Every id
// must currently be owned by from; on any mismatch nothing moves.
func (l *Ledger) Transfer(from, to fraction.Account, ids []fraction.ShareID) error {
	if to == "" || len(ids) == 0 {
		return fraction.Newf(fraction.BadRequest, "transfer needs a recipient and share ids")
	}
	if err := l.checkOwned(from, ids); err != nil {
		return err
	}
	for _, id := range ids {
		l.owners[id] = to
	}
	l.balances[from] -= uint64(len(ids))
	if l.balances[from] == 0 {
		delete(l.balances, from)
	}
	l.balances[to] += uint64(len(ids))
	return nil
}

// Burn removes the listed shares from existence. Every id must currently
// be owned by from; on any mismatch nothing burns.
func (l *Ledger) Burn(from fraction.Account, ids []fraction.ShareID) error {
	if err := l.checkOwned(from, ids); err != nil {
		return err
	}
	for _, id := range ids {
		delete(l.owners, id)
	}
	l.balances[from] -= uint64(len(ids))
	if l.balances[from] == 0 {
		delete(l.balances, from)
	}
	return nil
}

func (l *Ledger) checkOwned(acct fraction.Account, ids []fraction.ShareID) error {
	seen := make(map[fraction.ShareID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fraction.Newf(fraction.BadRequest, "share %d listed twice", id)
		}
		seen[id] = true
		if l.owners[id] != acct {
			return fraction.Newf(fraction.NotOwner, "share %d not held by caller", id).WithAccount(acct)
		}
	}
	return nil
}

// Restore seeds a share directly. Only the store's state loader calls this.
func (l *Ledger) Restore(id fraction.ShareID, owner fraction.Account) {
	l.owners[id] = owner
	l.balances[owner]++
	if id >= l.nextID {
		l.nextID = id + 1
	}
}

// RestoreMinted seeds the historical mint counter. Only the store's state
// loader calls this; burned ids above the live arena still advance nextID.
func (l *Ledger) RestoreMinted(total uint64) {
	l.totalMinted = total
	if next := fraction.ShareID(total + 1); next > l.nextID {
		l.nextID = next
	}
}
