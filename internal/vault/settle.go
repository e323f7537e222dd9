package vault

import (
	"github.com/fracdao/fractional/internal/fraction"
)

// Cash redeems shares against the settled proceeds pool. Each presented
// share must be held by the caller; the payout is the caller's pro-rata
// slice of what remains in the pool, so summing every cash payout over the
// full supply drains the pool exactly, with no residue lost to rounding.
// Burned shares are recorded against the protocol burner account as one
// burn batch per call; the batch size is capped by policy to keep the
// operation's cost predictable.
func (r *Registry) Cash(holder fraction.Account, id fraction.VaultID, ids []fraction.ShareID) (fraction.Amount, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	v, err := r.vault(id)
	if err != nil {
		return 0, err
	}
	if v.Record.State != fraction.Ended {
		return 0, fraction.Newf(fraction.AuctionNotEnded,
			"cash requires a settled auction (state %s)", v.Record.State).WithVault(id)
	}
	if len(ids) == 0 || uint64(len(ids)) > r.policy.CashBatchLimit {
		return 0, fraction.Newf(fraction.BadRequest,
			"cash takes 1..%d share ids, got %d", r.policy.CashBatchLimit, len(ids)).WithVault(id)
	}

	remaining := v.Shares.LiveCount()
	payout, err := v.Record.ProceedsLeft.MulDiv(uint64(len(ids)), remaining)
	if err != nil {
		return 0, opErr(err, id)
	}
	if err := v.Shares.Burn(holder, ids); err != nil {
		return 0, opErr(err, id)
	}

	var delVotes []VoteKey
	for _, sid := range ids {
		if _, voted := v.Book.VoteOf(sid); voted {
			v.Book.ClearVote(sid)
			delVotes = append(delVotes, VoteKey{Vault: id, Share: sid})
		}
	}
	if err := r.funds.EscrowPay(id, holder, payout); err != nil {
		// Burn already applied; an escrow shortfall here means the
		// invariant Σ payouts = net proceeds was already broken.
		r.broken = opErr(err, id)
		return 0, r.broken
	}
	v.Record.ProceedsLeft -= payout
	r.burns.Record(r.burner, uint64(len(ids)))

	delShares := make([]ShareKey, len(ids))
	for i, sid := range ids {
		delShares[i] = ShareKey{Vault: id, Share: sid}
	}
	err = r.commit("cash",
		map[string]any{"holder": holder, "vault": id, "ids": shareArgs(ids)},
		map[string]any{"payout": payout},
		ChangeSet{
			Vault:     v.row(),
			DelShares: delShares,
			DelVotes:  delVotes,
			Balances:  []BalanceRow{{Account: holder, Amount: r.funds.Balance(holder)}},
			Escrows:   []EscrowRow{{Vault: id, Amount: r.funds.EscrowBalance(id)}},
			Burns:     []BurnRow{{Account: r.burner, Batches: r.burns.Batches(r.burner)}},
		})
	return payout, err
}

// Redeem is the pre-auction exit: a holder controlling the entire minted
// supply burns shares in increments, and when the cumulative burn reaches
// the supply the underlying is released to them and the vault is consumed.
// The auction path is closed off the moment any other account holds a
// share.
func (r *Registry) Redeem(holder fraction.Account, id fraction.VaultID, amount uint64) error {
	if err := r.ready(); err != nil {
		return err
	}
	v, err := r.vault(id)
	if err != nil {
		return err
	}
	if v.Record.State != fraction.Inactive {
		return fraction.Newf(fraction.AuctionAlreadyLive,
			"redeem requires a pre-auction vault (state %s)", v.Record.State).WithVault(id)
	}
	if err := r.requireSoleHolder(v, holder); err != nil {
		return err
	}
	balance := v.Shares.BalanceOf(holder)
	if amount == 0 || amount > balance {
		return fraction.Newf(fraction.BadRequest,
			"redeem amount %d outside 1..%d", amount, balance).WithVault(id)
	}

	ids := v.Shares.Holdings(holder)[:amount]
	if err := v.Shares.Burn(holder, ids); err != nil {
		return opErr(err, id)
	}
	var delVotes []VoteKey
	for _, sid := range ids {
		if _, voted := v.Book.VoteOf(sid); voted {
			v.Book.ClearVote(sid)
			delVotes = append(delVotes, VoteKey{Vault: id, Share: sid})
		}
	}
	r.burns.Record(r.burner, amount)
	v.Record.Redeemed += amount
	v.Record.Redeemer = holder

	released := false
	if v.Record.Redeemed == v.Shares.TotalMinted() {
		v.Record.UnderlyingHolder = holder
		v.Record.State = fraction.Consumed
		released = true
	}

	delShares := make([]ShareKey, len(ids))
	for i, sid := range ids {
		delShares[i] = ShareKey{Vault: id, Share: sid}
	}
	return r.commit("redeem",
		map[string]any{"holder": holder, "vault": id, "amount": amount},
		map[string]any{"redeemed": v.Record.Redeemed, "released": released},
		ChangeSet{
			Vault:     v.row(),
			DelShares: delShares,
			DelVotes:  delVotes,
			Burns:     []BurnRow{{Account: r.burner, Batches: r.burns.Batches(r.burner)}},
		})
}

// WithdrawUnderlying is the one-shot form of Redeem: a holder of the
// entire minted supply burns it all and takes the underlying directly,
// bypassing the auction. Only legal while Inactive.
func (r *Registry) WithdrawUnderlying(holder fraction.Account, id fraction.VaultID) error {
	if err := r.ready(); err != nil {
		return err
	}
	v, err := r.vault(id)
	if err != nil {
		return err
	}
	if v.Record.State != fraction.Inactive {
		return fraction.Newf(fraction.AuctionAlreadyLive,
			"withdraw requires a pre-auction vault (state %s)", v.Record.State).WithVault(id)
	}
	if err := r.requireSoleHolder(v, holder); err != nil {
		return err
	}
	// Sole holder plus any partial redeem means the full remainder is
	// theirs to burn.
	ids := v.Shares.Holdings(holder)
	if err := v.Shares.Burn(holder, ids); err != nil {
		return opErr(err, id)
	}
	var delVotes []VoteKey
	for _, sid := range ids {
		if _, voted := v.Book.VoteOf(sid); voted {
			v.Book.ClearVote(sid)
			delVotes = append(delVotes, VoteKey{Vault: id, Share: sid})
		}
	}
	r.burns.Record(r.burner, uint64(len(ids)))
	v.Record.Redeemed = v.Shares.TotalMinted()
	v.Record.Redeemer = holder
	v.Record.UnderlyingHolder = holder
	v.Record.State = fraction.Consumed

	delShares := make([]ShareKey, len(ids))
	for i, sid := range ids {
		delShares[i] = ShareKey{Vault: id, Share: sid}
	}
	return r.commit("withdraw-underlying",
		map[string]any{"holder": holder, "vault": id},
		map[string]any{"burned": uint64(len(ids))},
		ChangeSet{
			Vault:     v.row(),
			DelShares: delShares,
			DelVotes:  delVotes,
			Burns:     []BurnRow{{Account: r.burner, Batches: r.burns.Batches(r.burner)}},
		})
}

// requireSoleHolder verifies that every minted share not already burned by
// holder through redeem is currently in holder's hands, and that the full
// supply was minted at all.
func (r *Registry) requireSoleHolder(v *Vault, holder fraction.Account) error {
	if !v.Shares.MintingComplete() {
		return fraction.Newf(fraction.SharesOutstanding,
			"only %d of %d shares minted", v.Shares.TotalMinted(), v.Shares.Cap()).WithVault(v.Record.ID)
	}
	if v.Record.Redeemer != "" && v.Record.Redeemer != holder {
		return fraction.Newf(fraction.SharesOutstanding,
			"vault is being redeemed by another account").WithVault(v.Record.ID).WithAccount(holder)
	}
	if v.Shares.BalanceOf(holder)+v.Record.Redeemed != v.Shares.TotalMinted() {
		return fraction.Newf(fraction.SharesOutstanding,
			"caller holds %d of %d outstanding shares",
			v.Shares.BalanceOf(holder), v.Shares.LiveCount()).WithVault(v.Record.ID).WithAccount(holder)
	}
	return nil
}

// ReclaimStorage drains one recorded burn batch, freeing the storage the
// dead shares occupied. Permissionless and purely administrative: the
// batch bookkeeping never affects balances or proceeds.
func (r *Registry) ReclaimStorage(reclaimer fraction.Account, index uint64) (uint64, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	freed, err := r.burns.Drain(reclaimer, index)
	if err != nil {
		return 0, err
	}
	err = r.commit("reclaim-storage",
		map[string]any{"reclaimer": reclaimer, "index": index},
		map[string]any{"freed": freed},
		ChangeSet{Burns: []BurnRow{{Account: reclaimer, Batches: r.burns.Batches(reclaimer)}}})
	return freed, err
}
