package vault

import "github.com/fracdao/fractional/internal/fraction"

// SnapshotCanonical serializes the registry's complete state as canonical
// JSON. Two registries holding the same state produce identical bytes, so
// replay verification and state-equality tests reduce to byte compares.
func (r *Registry) SnapshotCanonical() ([]byte, error) {
	vaults := make([]any, 0, len(r.vaults))
	for _, id := range r.VaultIDs() {
		v := r.vaults[id]

		items := make([]any, len(v.Record.Underlying))
		for i, it := range v.Record.Underlying {
			items[i] = it
		}

		shares := make([]any, 0, v.Shares.LiveCount())
		for _, holder := range sharesByHolder(v) {
			shares = append(shares, map[string]any{
				"id":    holder.id,
				"owner": holder.owner,
			})
		}

		votes := make([]any, 0)
		for _, sid := range v.Book.VotedShares() {
			price, _ := v.Book.VoteOf(sid)
			votes = append(votes, map[string]any{"id": sid, "price": price})
		}

		vaults = append(vaults, map[string]any{
			"id":                v.Record.ID,
			"curator":           v.Record.Curator,
			"underlying":        items,
			"underlying_holder": v.Record.UnderlyingHolder,
			"fee_receiver":      v.Record.FeeReceiver,
			"fee_receiver_path": v.Record.FeeReceiverPath,
			"state":             v.Record.State,
			"auction_end":       v.Record.AuctionEnd,
			"live_price":        v.Record.LivePrice,
			"winning":           v.Record.Winning,
			"net_proceeds":      v.Record.NetProceeds,
			"proceeds_left":     v.Record.ProceedsLeft,
			"redeemed":          v.Record.Redeemed,
			"redeemer":          v.Record.Redeemer,
			"total_minted":      v.Shares.TotalMinted(),
			"cap":               v.Shares.Cap(),
			"shares":            shares,
			"votes":             votes,
		})
	}

	balances := make([]any, 0)
	receivers := make([]any, 0)
	for _, acct := range r.funds.Accounts() {
		if bal := r.funds.Balance(acct); bal > 0 {
			balances = append(balances, map[string]any{"account": acct, "amount": bal})
		}
		for _, path := range r.funds.ReceiverPaths(acct) {
			receivers = append(receivers, map[string]any{"account": acct, "path": path})
		}
	}

	escrows := make([]any, 0)
	for _, vid := range r.funds.Escrows() {
		escrows = append(escrows, map[string]any{"vault": vid, "amount": r.funds.EscrowBalance(vid)})
	}

	burns := make([]any, 0)
	for _, acct := range r.burns.Reclaimers() {
		batches := r.burns.Batches(acct)
		counts := make([]any, len(batches))
		for i, c := range batches {
			counts[i] = c
		}
		burns = append(burns, map[string]any{"account": acct, "batches": counts})
	}

	return fraction.MarshalCanonical(map[string]any{
		"time":      r.clock.Now(),
		"seq":       r.seq,
		"fee_bips":  r.feeBips,
		"vaults":    vaults,
		"balances":  balances,
		"receivers": receivers,
		"escrows":   escrows,
		"burns":     burns,
	})
}

type shareEntry struct {
	id    fraction.ShareID
	owner fraction.Account
}

// sharesByHolder lists the live shares of a vault in id order.
func sharesByHolder(v *Vault) []shareEntry {
	ids := make([]shareEntry, 0, v.Shares.LiveCount())
	for s := fraction.ShareID(1); uint64(s) <= v.Shares.TotalMinted(); s++ {
		if owner, ok := v.Shares.OwnerOf(s); ok {
			ids = append(ids, shareEntry{id: s, owner: owner})
		}
	}
	return ids
}
