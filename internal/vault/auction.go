package vault

import (
	"github.com/fracdao/fractional/internal/fraction"
)

// Start opens the auction with a first bid. Valid only from Inactive, only
// once a majority of outstanding shares has voted a reserve price, and
// only with an opening bid at or above the weighted reserve. The bid
// amount is escrowed immediately.
func (r *Registry) Start(bidder fraction.Account, id fraction.VaultID, amount fraction.Amount) error {
	if err := r.ready(); err != nil {
		return err
	}
	v, err := r.vault(id)
	if err != nil {
		return err
	}
	if v.Record.State != fraction.Inactive {
		return fraction.Newf(fraction.AuctionAlreadyLive,
			"auction already started (state %s)", v.Record.State).WithVault(id)
	}
	supply := v.Shares.TotalMinted()
	if !v.Book.HasQuorum(supply) {
		weight := voteWeight(v)
		return fraction.Newf(fraction.QuorumNotMet,
			"voting weight %d below half of supply %d", weight, supply).WithVault(id)
	}
	if !v.Book.MeetsReserve(amount) {
		_, reserve, _ := v.Book.Query()
		return fraction.Newf(fraction.BidTooLow,
			"bid %s below weighted reserve %s", amount, reserve).WithVault(id).WithAccount(bidder)
	}
	if err := r.funds.EscrowDeposit(id, bidder, amount); err != nil {
		return opErr(err, id)
	}

	v.Record.State = fraction.Live
	v.Record.LivePrice = amount
	v.Record.Winning = bidder
	v.Record.AuctionEnd = r.clock.Now() + r.policy.AuctionLength

	return r.commit("start",
		map[string]any{"bidder": bidder, "vault": id, "amount": amount},
		map[string]any{"expiry": v.Record.AuctionEnd},
		ChangeSet{
			Vault:    v.row(),
			Balances: []BalanceRow{{Account: bidder, Amount: r.funds.Balance(bidder)}},
			Escrows:  []EscrowRow{{Vault: id, Amount: r.funds.EscrowBalance(id)}},
		})
}

// Bid replaces the standing high bid. The new amount must clear the
// minimum raise over the current price; the outbid bidder is refunded in
// full from escrow in the same operation. A bid landing inside the
// anti-sniping window pushes expiry out so it can always be answered.
func (r *Registry) Bid(bidder fraction.Account, id fraction.VaultID, amount fraction.Amount) error {
	if err := r.ready(); err != nil {
		return err
	}
	v, err := r.vault(id)
	if err != nil {
		return err
	}
	if v.Record.State != fraction.Live {
		return fraction.Newf(fraction.AuctionNotLive,
			"no live auction (state %s)", v.Record.State).WithVault(id)
	}
	now := r.clock.Now()
	if now >= v.Record.AuctionEnd {
		return fraction.Newf(fraction.AuctionNotLive,
			"auction expired at %d (now %d), awaiting end", v.Record.AuctionEnd, now).WithVault(id)
	}
	raise, err := v.Record.LivePrice.FeeBips(r.policy.MinRaiseBips)
	if err != nil {
		return opErr(err, id)
	}
	floor, err := v.Record.LivePrice.Add(raise)
	if err != nil {
		return opErr(err, id)
	}
	if amount < floor {
		return fraction.Newf(fraction.RaiseTooSmall,
			"bid %s below minimum raise to %s", amount, floor).WithVault(id).WithAccount(bidder)
	}
	// The refund must not be observable if the new escrow would fail, so
	// check the incoming bidder's balance before releasing anything.
	if r.funds.Balance(bidder) < amount {
		return fraction.Newf(fraction.InsufficientFunds,
			"balance %s is below bid %s", r.funds.Balance(bidder), amount).WithAccount(bidder).WithVault(id)
	}

	prev := v.Record.Winning
	if err := r.funds.EscrowPay(id, prev, v.Record.LivePrice); err != nil {
		return opErr(err, id)
	}
	if err := r.funds.EscrowDeposit(id, bidder, amount); err != nil {
		return opErr(err, id)
	}

	v.Record.LivePrice = amount
	v.Record.Winning = bidder
	extended := false
	if v.Record.AuctionEnd-now < r.policy.ExtensionWindow {
		v.Record.AuctionEnd = now + r.policy.ExtensionWindow
		extended = true
	}

	return r.commit("bid",
		map[string]any{"bidder": bidder, "vault": id, "amount": amount},
		map[string]any{"expiry": v.Record.AuctionEnd, "extended": extended, "refunded": prev},
		ChangeSet{
			Vault: v.row(),
			Balances: []BalanceRow{
				{Account: prev, Amount: r.funds.Balance(prev)},
				{Account: bidder, Amount: r.funds.Balance(bidder)},
			},
			Escrows: []EscrowRow{{Vault: id, Amount: r.funds.EscrowBalance(id)}},
		})
}

// End finalizes an expired auction. Callable by anyone: finalization is a
// public service, not a privilege. The protocol fee is carved from the
// winning bid and paid through the vault's receiver descriptor; if that
// endpoint is unreachable the call fails with FeeSinkUnavailable and the
// auction stays Live until the owner repairs the descriptor. Blocking
// finalization is deliberate: fee revenue must never be silently dropped.
func (r *Registry) End(caller fraction.Account, id fraction.VaultID) error {
	if err := r.ready(); err != nil {
		return err
	}
	v, err := r.vault(id)
	if err != nil {
		return err
	}
	if v.Record.State != fraction.Live {
		return fraction.Newf(fraction.AuctionNotLive,
			"no live auction to end (state %s)", v.Record.State).WithVault(id)
	}
	now := r.clock.Now()
	if now < v.Record.AuctionEnd {
		return fraction.Newf(fraction.AuctionNotExpired,
			"auction runs until %d (now %d)", v.Record.AuctionEnd, now).WithVault(id)
	}
	fee, err := v.Record.LivePrice.FeeBips(r.feeBips)
	if err != nil {
		return opErr(err, id)
	}
	balances := []BalanceRow{}
	if fee > 0 {
		// Probe the receiver before committing anything.
		if !r.funds.CanDeposit(v.Record.FeeReceiver, v.Record.FeeReceiverPath) {
			return fraction.Newf(fraction.FeeSinkUnavailable,
				"fee receiver %s path %q unreachable",
				v.Record.FeeReceiver, v.Record.FeeReceiverPath).WithVault(id)
		}
		if err := r.funds.EscrowPayVia(id, v.Record.FeeReceiver, v.Record.FeeReceiverPath, fee); err != nil {
			return opErr(err, id)
		}
		balances = append(balances, BalanceRow{
			Account: v.Record.FeeReceiver,
			Amount:  r.funds.Balance(v.Record.FeeReceiver),
		})
	}
	net, err := v.Record.LivePrice.Sub(fee)
	if err != nil {
		return opErr(err, id)
	}

	v.Record.State = fraction.Ended
	v.Record.NetProceeds = net
	v.Record.ProceedsLeft = net
	v.Record.UnderlyingHolder = v.Record.Winning

	return r.commit("end",
		map[string]any{"caller": caller, "vault": id},
		map[string]any{"winner": v.Record.Winning, "fee": fee, "net": net},
		ChangeSet{
			Vault:    v.row(),
			Balances: balances,
			Escrows:  []EscrowRow{{Vault: id, Amount: r.funds.EscrowBalance(id)}},
		})
}
