// Package testutil provides deterministic fixtures for registry tests:
// a registry with fixed operation tokens and the standard scenario the
// original deployment's conformance suite revolves around (a 1000-share
// vault over one custodied item).
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fracdao/fractional/internal/fraction"
	"github.com/fracdao/fractional/internal/policy"
	"github.com/fracdao/fractional/internal/vault"
)

// ProtocolOwner is the protocol owner account used by fixtures.
const ProtocolOwner = fraction.Account("fractional")

// NewRegistry creates an in-memory registry with the default policy and
// fixed operation tokens, so journals and golden traces are stable.
func NewRegistry(t *testing.T, opts ...vault.Option) *vault.Registry {
	t.Helper()
	base := []vault.Option{vault.WithTokenGenerator(vault.NewFixedGenerator("op"))}
	return vault.NewRegistry(policy.Default(), ProtocolOwner, append(base, opts...)...)
}

// NewRegistryWithPolicy is NewRegistry with an explicit policy.
func NewRegistryWithPolicy(t *testing.T, p policy.Policy, opts ...vault.Option) *vault.Registry {
	t.Helper()
	base := []vault.Option{vault.WithTokenGenerator(vault.NewFixedGenerator("op"))}
	return vault.NewRegistry(p, ProtocolOwner, append(base, opts...)...)
}

// MintStandardVault mints the canonical test vault: one underlying item,
// a 1000-share cap, fully minted to the curator in ten batches of 100.
func MintStandardVault(t *testing.T, r *vault.Registry, curator fraction.Account) fraction.VaultID {
	t.Helper()
	id, err := r.MintVault(curator, []fraction.ItemID{42}, 1000)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		_, err := r.MintShares(curator, id, 100)
		require.NoError(t, err)
	}
	supply, err := r.GetSupply(id)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), supply)
	return id
}

// Fund credits settlement currency to an account via the faucet.
func Fund(t *testing.T, r *vault.Registry, acct fraction.Account, whole uint64) {
	t.Helper()
	require.NoError(t, r.Faucet(acct, fraction.MustWhole(whole)))
}
