// Package vault implements the fractional vault host: vault records, the
// auction state machine, settlement, and the registry that executes every
// public operation one at a time, all or nothing.
//
// The registry is deliberately single-threaded. Each public operation
// validates completely before touching any state, mutates memory, and then
// commits one journal record plus the touched state rows in a single store
// transaction. The next operation, possibly from a different account,
// observes only committed state. There is no locking because there is no
// concurrency to lock against.
package vault

import (
	"log/slog"

	"github.com/fracdao/fractional/internal/currency"
	"github.com/fracdao/fractional/internal/fraction"
	"github.com/fracdao/fractional/internal/ledger"
	"github.com/fracdao/fractional/internal/policy"
	"github.com/fracdao/fractional/internal/pricebook"
)

// DefaultBurnerAccount absorbs shares burned during settlement until their
// storage is reclaimed batch by batch.
const DefaultBurnerAccount = fraction.Account("protocol/burner")

// DefaultFeeReceiverPath is the receiver path new vaults pay protocol fees
// through until the owner overrides it.
const DefaultFeeReceiverPath = "/receivers/settlement"

// Registry is the single-writer host for all vaults.
type Registry struct {
	policy  policy.Policy
	clock   *Clock
	funds   *currency.Ledger
	burns   *ledger.BurnBook
	vaults  map[fraction.VaultID]*Vault
	next    fraction.VaultID
	owner   fraction.Account
	burner  fraction.Account
	feeBips uint64
	tokens  TokenGenerator
	store   Persister
	seq     uint64
	journal []OpRecord
	log     *slog.Logger

	// broken is set when a store commit fails after memory was mutated;
	// the registry then refuses further operations rather than let memory
	// and disk diverge silently.
	broken error
}

// Option configures a Registry.
type Option func(*Registry)

// WithPersister attaches a durable store. Without one the registry runs
// purely in memory.
func WithPersister(p Persister) Option {
	return func(r *Registry) { r.store = p }
}

// WithTokenGenerator replaces the UUIDv7 token generator, for
// deterministic tests.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(r *Registry) { r.tokens = g }
}

// WithClock starts the registry at a pre-set clock, for resuming from a
// persisted state.
func WithClock(c *Clock) Option {
	return func(r *Registry) { r.clock = c }
}

// WithBurner overrides the reclaim account settlement burns are recorded
// against.
func WithBurner(acct fraction.Account) Option {
	return func(r *Registry) { r.burner = acct }
}

// WithLogger attaches a structured logger. Operations log at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// NewRegistry creates a registry governed by the given policy, with the
// given protocol owner. The owner is the only account allowed to set the
// fee rate or repair a vault's fee receiver descriptor.
func NewRegistry(p policy.Policy, owner fraction.Account, opts ...Option) *Registry {
	r := &Registry{
		policy: p,
		clock:  NewClock(),
		funds:  currency.NewLedger(),
		burns:  ledger.NewBurnBook(),
		vaults: make(map[fraction.VaultID]*Vault),
		next:   1,
		owner:  owner,
		burner: DefaultBurnerAccount,
		tokens: UUIDv7Generator{},
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Owner returns the protocol owner account.
func (r *Registry) Owner() fraction.Account { return r.owner }

// Policy returns the governing policy.
func (r *Registry) Policy() policy.Policy { return r.policy }

// Now returns the current logical time.
func (r *Registry) Now() uint64 { return r.clock.Now() }

// FeeBips returns the current protocol fee rate in basis points.
func (r *Registry) FeeBips() uint64 { return r.feeBips }

// Journal returns the in-memory operation journal for this session.
func (r *Registry) Journal() []OpRecord { return r.journal }

// Seq returns the last committed operation sequence number.
func (r *Registry) Seq() uint64 { return r.seq }

func (r *Registry) vault(id fraction.VaultID) (*Vault, error) {
	v, ok := r.vaults[id]
	if !ok {
		return nil, fraction.Newf(fraction.VaultNotFound, "no vault with id %d", id).WithVault(id)
	}
	return v, nil
}

// ready blocks further mutation after a failed store commit.
func (r *Registry) ready() error {
	return r.broken
}

// commit journals a completed operation and persists its change set. The
// caller has already mutated memory; a persister failure poisons the
// registry because the two can no longer be reconciled in-process.
func (r *Registry) commit(name string, args, result map[string]any, cs ChangeSet) error {
	r.seq++
	rec := OpRecord{
		Token:  r.tokens.Generate(),
		Seq:    r.seq,
		Time:   r.clock.Now(),
		Name:   name,
		Args:   args,
		Result: result,
	}
	if r.store != nil {
		if err := r.store.SaveOp(rec, cs); err != nil {
			r.broken = fraction.Newf(fraction.BadRequest,
				"store commit failed, registry halted: %v", err)
			return r.broken
		}
	}
	r.journal = append(r.journal, rec)
	r.log.Debug("op applied", "op", name, "seq", rec.Seq, "time", rec.Time, "token", rec.Token)
	return nil
}

// Tick advances the logical clock by delta ticks. Time only ever moves
// through this operation.
func (r *Registry) Tick(delta uint64) (uint64, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	now := r.clock.Advance(delta)
	err := r.commit("tick",
		map[string]any{"delta": delta},
		map[string]any{"now": now},
		ChangeSet{Time: &now})
	return now, err
}

// Faucet credits settlement currency to an account. The bootstrap path
// for CLI sessions and scenarios; a deployment funds accounts on the host
// chain instead.
func (r *Registry) Faucet(acct fraction.Account, amt fraction.Amount) error {
	if err := r.ready(); err != nil {
		return err
	}
	if err := r.funds.Mint(acct, amt); err != nil {
		return err
	}
	return r.commit("faucet",
		map[string]any{"account": acct, "amount": amt},
		map[string]any{"balance": r.funds.Balance(acct)},
		ChangeSet{Balances: []BalanceRow{{Account: acct, Amount: r.funds.Balance(acct)}}})
}

// RegisterReceiver publishes a receiver path for an account. Fee payments
// addressed through a path only succeed after it is registered.
func (r *Registry) RegisterReceiver(acct fraction.Account, path string) error {
	if err := r.ready(); err != nil {
		return err
	}
	if err := r.funds.RegisterReceiver(acct, path); err != nil {
		return err
	}
	return r.commit("register-receiver",
		map[string]any{"account": acct, "path": path},
		map[string]any{"ok": true},
		ChangeSet{Receivers: []ReceiverRow{{Account: acct, Path: path}}})
}

// MintVault creates a vault custodying the given underlying items, with a
// fixed share cap. The fee receiver descriptor defaults to the protocol
// owner on the default path.
func (r *Registry) MintVault(curator fraction.Account, items []fraction.ItemID, cap uint64) (fraction.VaultID, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	if curator == "" {
		return 0, fraction.Newf(fraction.BadRequest, "vault needs a curator")
	}
	if len(items) == 0 {
		return 0, fraction.Newf(fraction.BadRequest, "vault needs a non-empty underlying item set")
	}
	if cap == 0 || cap > r.policy.MaxSupply {
		return 0, fraction.Newf(fraction.BadRequest,
			"share cap %d outside 1..%d", cap, r.policy.MaxSupply)
	}
	seen := make(map[fraction.ItemID]bool, len(items))
	for _, it := range items {
		if seen[it] {
			return 0, fraction.Newf(fraction.BadRequest, "underlying item %d listed twice", it)
		}
		seen[it] = true
	}

	id := r.next
	v := &Vault{
		Record: Record{
			ID:              id,
			Curator:         curator,
			Underlying:      append([]fraction.ItemID(nil), items...),
			FeeReceiver:     r.owner,
			FeeReceiverPath: DefaultFeeReceiverPath,
			State:           fraction.Inactive,
		},
		Shares: ledger.New(cap),
		Book:   pricebook.New(),
	}
	r.vaults[id] = v
	r.next++

	itemArgs := make([]any, len(items))
	for i, it := range items {
		itemArgs[i] = it
	}
	err := r.commit("mint-vault",
		map[string]any{"curator": curator, "items": itemArgs, "cap": cap},
		map[string]any{"vault": id},
		ChangeSet{Vault: v.row()})
	return id, err
}

// MintShares mints count shares of a vault to its curator. Only the
// curator mints, only while the vault is Inactive, and never past the cap.
// Returns the new total minted.
func (r *Registry) MintShares(caller fraction.Account, id fraction.VaultID, count uint64) (uint64, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	v, err := r.vault(id)
	if err != nil {
		return 0, err
	}
	if caller != v.Record.Curator {
		return 0, fraction.Newf(fraction.Unauthorized,
			"only the curator mints shares").WithVault(id).WithAccount(caller)
	}
	if v.Record.State != fraction.Inactive {
		return 0, fraction.Newf(fraction.AuctionAlreadyLive,
			"shares cannot be minted in state %s", v.Record.State).WithVault(id)
	}
	first, total, err := v.Shares.Mint(caller, count)
	if err != nil {
		return 0, opErr(err, id)
	}

	rows := make([]ShareRow, count)
	for i := uint64(0); i < count; i++ {
		rows[i] = ShareRow{Vault: id, Share: first + fraction.ShareID(i), Owner: caller}
	}
	err = r.commit("mint-shares",
		map[string]any{"caller": caller, "vault": id, "count": count},
		map[string]any{"first": first, "total": total},
		ChangeSet{Vault: v.row(), SetShares: rows})
	return total, err
}

// CastVote records a reserve-price vote over a contiguous share range the
// caller holds. Votes may be cast or changed while the vault is Inactive
// or Live; once settlement starts they are meaningless.
func (r *Registry) CastVote(caller fraction.Account, id fraction.VaultID, start fraction.ShareID, count uint64, price fraction.Amount) error {
	if err := r.ready(); err != nil {
		return err
	}
	v, err := r.vault(id)
	if err != nil {
		return err
	}
	if v.Record.State != fraction.Inactive && v.Record.State != fraction.Live {
		return fraction.Newf(fraction.AuctionNotLive,
			"votes cannot be cast in state %s", v.Record.State).WithVault(id)
	}
	if err := v.Book.CastVote(v.Shares, caller, start, count, price); err != nil {
		return opErr(err, id)
	}

	rows := make([]VoteRow, count)
	for i := uint64(0); i < count; i++ {
		rows[i] = VoteRow{Vault: id, Share: start + fraction.ShareID(i), Price: price}
	}
	return r.commit("cast-vote",
		map[string]any{"caller": caller, "vault": id, "start": start, "count": count, "price": price},
		map[string]any{"weight": voteWeight(v)},
		ChangeSet{SetVotes: rows})
}

// TransferShares moves shares between accounts. Legal while the vault is
// Inactive or Live. A vote does not follow its share: each transferred
// share's vote contribution is cleared and the new owner must re-vote.
func (r *Registry) TransferShares(from, to fraction.Account, id fraction.VaultID, ids []fraction.ShareID) error {
	if err := r.ready(); err != nil {
		return err
	}
	v, err := r.vault(id)
	if err != nil {
		return err
	}
	if v.Record.State != fraction.Inactive && v.Record.State != fraction.Live {
		return fraction.Newf(fraction.AuctionNotLive,
			"shares are not transferable in state %s", v.Record.State).WithVault(id)
	}
	if err := v.Shares.Transfer(from, to, ids); err != nil {
		return opErr(err, id)
	}

	var delVotes []VoteKey
	for _, sid := range ids {
		if _, voted := v.Book.VoteOf(sid); voted {
			v.Book.ClearVote(sid)
			delVotes = append(delVotes, VoteKey{Vault: id, Share: sid})
		}
	}
	rows := make([]ShareRow, len(ids))
	for i, sid := range ids {
		rows[i] = ShareRow{Vault: id, Share: sid, Owner: to}
	}
	return r.commit("transfer-shares",
		map[string]any{"from": from, "to": to, "vault": id, "ids": shareArgs(ids)},
		map[string]any{"ok": true},
		ChangeSet{SetShares: rows, DelVotes: delVotes})
}

// SetFeeRate sets the protocol fee rate in basis points. Owner only; the
// rate applies to every vault settled afterwards and is capped by policy.
func (r *Registry) SetFeeRate(caller fraction.Account, bips uint64) error {
	if err := r.ready(); err != nil {
		return err
	}
	if caller != r.owner {
		return fraction.Newf(fraction.Unauthorized,
			"only the protocol owner sets the fee rate").WithAccount(caller)
	}
	if bips > r.policy.MaxFeeBips {
		return fraction.Newf(fraction.BadRequest,
			"fee %d bips above policy cap %d", bips, r.policy.MaxFeeBips)
	}
	r.feeBips = bips
	return r.commit("set-fee-rate",
		map[string]any{"caller": caller, "bips": bips},
		map[string]any{"ok": true},
		ChangeSet{FeeBips: &bips})
}

// SetFeeReceiver repairs a vault's fee receiver descriptor. Owner only:
// this is the recovery path when a misconfigured receiver is blocking
// finalization.
func (r *Registry) SetFeeReceiver(caller fraction.Account, id fraction.VaultID, receiver fraction.Account, path string) error {
	if err := r.ready(); err != nil {
		return err
	}
	v, err := r.vault(id)
	if err != nil {
		return err
	}
	if caller != r.owner {
		return fraction.Newf(fraction.Unauthorized,
			"only the protocol owner repairs the fee receiver").WithVault(id).WithAccount(caller)
	}
	if receiver == "" || path == "" {
		return fraction.Newf(fraction.BadRequest, "fee receiver needs account and path").WithVault(id)
	}
	v.Record.FeeReceiver = receiver
	v.Record.FeeReceiverPath = path
	return r.commit("set-fee-receiver",
		map[string]any{"caller": caller, "vault": id, "receiver": receiver, "path": path},
		map[string]any{"ok": true},
		ChangeSet{Vault: v.row()})
}

// row snapshots the vault into its persisted form.
func (v *Vault) row() *VaultRow {
	return &VaultRow{Record: v.Record, TotalMinted: v.Shares.TotalMinted(), Cap: v.Shares.Cap()}
}

func voteWeight(v *Vault) uint64 {
	weight, _, _ := v.Book.Query()
	return weight
}

func shareArgs(ids []fraction.ShareID) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

// opErr scopes a component error to a vault if it is an OpError.
func opErr(err error, id fraction.VaultID) error {
	if oe, ok := err.(*fraction.OpError); ok && oe.Vault == 0 {
		return oe.WithVault(id)
	}
	return err
}
