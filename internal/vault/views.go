package vault

import (
	"sort"

	"github.com/fracdao/fractional/internal/fraction"
)

// VaultCount returns how many vaults have been minted.
func (r *Registry) VaultCount() uint64 {
	return uint64(len(r.vaults))
}

// VaultIDs returns all vault ids, sorted.
func (r *Registry) VaultIDs() []fraction.VaultID {
	ids := make([]fraction.VaultID, 0, len(r.vaults))
	for id := range r.vaults {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// GetVault returns the externally visible view of a vault.
func (r *Registry) GetVault(id fraction.VaultID) (Info, error) {
	v, err := r.vault(id)
	if err != nil {
		return Info{}, err
	}
	return Info{
		ID:            v.Record.ID,
		Curator:       v.Record.Curator,
		State:         v.Record.State,
		AuctionEnd:    v.Record.AuctionEnd,
		AuctionLength: r.policy.AuctionLength,
		LivePrice:     v.Record.LivePrice,
		Winning:       v.Record.Winning,
		TotalMinted:   v.Shares.TotalMinted(),
		Cap:           v.Shares.Cap(),
		LiveShares:    v.Shares.LiveCount(),
		NetProceeds:   v.Record.NetProceeds,
		ProceedsLeft:  v.Record.ProceedsLeft,
	}, nil
}

// GetReserveInfo returns the vault's voting weight and weighted reserve.
func (r *Registry) GetReserveInfo(id fraction.VaultID) (ReserveInfo, error) {
	v, err := r.vault(id)
	if err != nil {
		return ReserveInfo{}, err
	}
	weight, reserve, ok := v.Book.Query()
	return ReserveInfo{VotingWeight: weight, Reserve: reserve, Defined: ok}, nil
}

// GetEscrowBalance returns the currency held in a vault's auction escrow.
func (r *Registry) GetEscrowBalance(id fraction.VaultID) (fraction.Amount, error) {
	if _, err := r.vault(id); err != nil {
		return 0, err
	}
	return r.funds.EscrowBalance(id), nil
}

// GetUnderlyingIds returns the vault's custodied item ids.
func (r *Registry) GetUnderlyingIds(id fraction.VaultID) ([]fraction.ItemID, error) {
	v, err := r.vault(id)
	if err != nil {
		return nil, err
	}
	return append([]fraction.ItemID(nil), v.Record.Underlying...), nil
}

// UnderlyingOwner reports where the underlying sits: the empty account
// while the vault custodies it, else the account it was released to.
func (r *Registry) UnderlyingOwner(id fraction.VaultID) (fraction.Account, error) {
	v, err := r.vault(id)
	if err != nil {
		return "", err
	}
	return v.Record.UnderlyingHolder, nil
}

// GetSupply returns a vault's historical total minted share count.
func (r *Registry) GetSupply(id fraction.VaultID) (uint64, error) {
	v, err := r.vault(id)
	if err != nil {
		return 0, err
	}
	return v.Shares.TotalMinted(), nil
}

// ShareBalance returns how many of a vault's shares an account holds.
func (r *Registry) ShareBalance(id fraction.VaultID, acct fraction.Account) (uint64, error) {
	v, err := r.vault(id)
	if err != nil {
		return 0, err
	}
	return v.Shares.BalanceOf(acct), nil
}

// Holdings returns the share ids an account holds in a vault, sorted.
func (r *Registry) Holdings(id fraction.VaultID, acct fraction.Account) ([]fraction.ShareID, error) {
	v, err := r.vault(id)
	if err != nil {
		return nil, err
	}
	return v.Shares.Holdings(acct), nil
}

// Balance returns an account's spendable settlement-currency balance.
func (r *Registry) Balance(acct fraction.Account) fraction.Amount {
	return r.funds.Balance(acct)
}

// GetBurnBatchCount returns the number of pending burn batches recorded
// against a reclaim account.
func (r *Registry) GetBurnBatchCount(acct fraction.Account) uint64 {
	return r.burns.Count(acct)
}

// GetBurnBatchAt returns the share count of one pending burn batch.
func (r *Registry) GetBurnBatchAt(acct fraction.Account, index uint64) (uint64, error) {
	return r.burns.At(acct, index)
}

// BurnerAccount returns the reclaim account settlement burns accrue to.
func (r *Registry) BurnerAccount() fraction.Account {
	return r.burner
}
