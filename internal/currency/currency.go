// Package currency models the settlement-currency ledger the vault core
// settles against: spendable account balances, per-vault escrow buckets,
// and named receiver endpoints.
//
// The real deployment delegates this to the host chain's fungible token;
// it is modeled in-core so escrow and fee flows are observable and
// deterministic in tests. The receiver-endpoint check is load-bearing: a
// vault's fee receiver is a (account, path) descriptor, and paying through
// an unregistered path must fail rather than silently drop the fee.
package currency

import (
	"sort"

	"github.com/fracdao/fractional/internal/fraction"
)

// Ledger holds balances, escrows, and receiver registrations.
//
// Not safe for concurrent use: the registry applies one operation at a
// time, and the ledger relies on that single-writer discipline.
type Ledger struct {
	balances  map[fraction.Account]fraction.Amount
	receivers map[fraction.Account]map[string]bool
	escrows   map[fraction.VaultID]fraction.Amount
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		balances:  make(map[fraction.Account]fraction.Amount),
		receivers: make(map[fraction.Account]map[string]bool),
		escrows:   make(map[fraction.VaultID]fraction.Amount),
	}
}

// Mint credits newly issued currency to an account. The faucet for CLI
// sessions and tests; a deployment would fund accounts out of band.
func (l *Ledger) Mint(acct fraction.Account, amt fraction.Amount) error {
	if acct == "" {
		return fraction.Newf(fraction.BadRequest, "mint to empty account")
	}
	sum, err := l.balances[acct].Add(amt)
	if err != nil {
		return err
	}
	l.balances[acct] = sum
	return nil
}

// Balance returns the spendable balance of an account.
func (l *Ledger) Balance(acct fraction.Account) fraction.Amount {
	return l.balances[acct]
}

// Transfer moves amt between spendable balances.
func (l *Ledger) Transfer(from, to fraction.Account, amt fraction.Amount) error {
	if err := l.debit(from, amt); err != nil {
		return err
	}
	sum, err := l.balances[to].Add(amt)
	if err != nil {
		// Undo the debit so a failed transfer has no effect.
		l.balances[from] += amt
		return err
	}
	l.balances[to] = sum
	return nil
}

func (l *Ledger) debit(from fraction.Account, amt fraction.Amount) error {
	bal := l.balances[from]
	if amt > bal {
		return fraction.Newf(fraction.InsufficientFunds,
			"balance %s is below %s", bal, amt).WithAccount(from)
	}
	l.balances[from] = bal - amt
	return nil
}

// RegisterReceiver records a named receiver path for an account, the
// equivalent of publishing a deposit capability. Deposits addressed via a
// path only succeed once the path is registered.
func (l *Ledger) RegisterReceiver(acct fraction.Account, path string) error {
	if acct == "" || path == "" {
		return fraction.Newf(fraction.BadRequest, "receiver registration needs account and path")
	}
	if l.receivers[acct] == nil {
		l.receivers[acct] = make(map[string]bool)
	}
	l.receivers[acct][path] = true
	return nil
}

// CanDeposit reports whether acct has registered the given receiver path.
// This is the reachability probe behind FeeSinkUnavailable: callers check
// it before committing any state change.
func (l *Ledger) CanDeposit(acct fraction.Account, path string) bool {
	return l.receivers[acct][path]
}

// EscrowDeposit moves amt from an account's spendable balance into the
// vault's escrow bucket.
func (l *Ledger) EscrowDeposit(vault fraction.VaultID, from fraction.Account, amt fraction.Amount) error {
	if err := l.debit(from, amt); err != nil {
		return err
	}
	sum, err := l.escrows[vault].Add(amt)
	if err != nil {
		l.balances[from] += amt
		return err
	}
	l.escrows[vault] = sum
	return nil
}

// EscrowPay releases amt from the vault's escrow to an account's spendable
// balance. Used for outbid refunds and settlement payouts.
func (l *Ledger) EscrowPay(vault fraction.VaultID, to fraction.Account, amt fraction.Amount) error {
	held := l.escrows[vault]
	if amt > held {
		return fraction.Newf(fraction.InsufficientFunds,
			"escrow %s is below %s", held, amt).WithVault(vault)
	}
	sum, err := l.balances[to].Add(amt)
	if err != nil {
		return err
	}
	l.escrows[vault] = held - amt
	l.balances[to] = sum
	return nil
}

// EscrowPayVia is EscrowPay addressed through a receiver path. The path
// must be registered for the destination account.
func (l *Ledger) EscrowPayVia(vault fraction.VaultID, to fraction.Account, path string, amt fraction.Amount) error {
	if !l.CanDeposit(to, path) {
		return fraction.Newf(fraction.FeeSinkUnavailable,
			"receiver path %q not registered", path).WithAccount(to).WithVault(vault)
	}
	return l.EscrowPay(vault, to, amt)
}

// EscrowBalance returns the amount held in a vault's escrow bucket.
func (l *Ledger) EscrowBalance(vault fraction.VaultID) fraction.Amount {
	return l.escrows[vault]
}

// Accounts returns every account with a balance or a registered receiver,
// sorted, for persistence and diagnostics.
func (l *Ledger) Accounts() []fraction.Account {
	seen := make(map[fraction.Account]bool, len(l.balances))
	for a := range l.balances {
		seen[a] = true
	}
	for a := range l.receivers {
		seen[a] = true
	}
	out := make([]fraction.Account, 0, len(seen))
	for a := range seen {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ReceiverPaths returns the registered paths for an account, sorted.
func (l *Ledger) ReceiverPaths(acct fraction.Account) []string {
	paths := make([]string, 0, len(l.receivers[acct]))
	for p := range l.receivers[acct] {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Escrows returns the vault ids with a nonzero escrow balance, sorted.
func (l *Ledger) Escrows() []fraction.VaultID {
	out := make([]fraction.VaultID, 0, len(l.escrows))
	for v, amt := range l.escrows {
		if amt > 0 {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RestoreBalance seeds a balance directly. Only the store's state loader
// calls this.
func (l *Ledger) RestoreBalance(acct fraction.Account, amt fraction.Amount) {
	l.balances[acct] = amt
}

// RestoreEscrow seeds an escrow bucket directly. Only the store's state
// loader calls this.
func (l *Ledger) RestoreEscrow(vault fraction.VaultID, amt fraction.Amount) {
	l.escrows[vault] = amt
}
