package harness

import (
	"fmt"

	"github.com/fracdao/fractional/internal/fraction"
	"github.com/fracdao/fractional/internal/vault"
)

// EvaluateAssertions checks every assertion against the final registry
// state and records mismatches on the result.
func EvaluateAssertions(result *Result, assertions []Assertion, reg *vault.Registry) {
	for i, a := range assertions {
		if msg := evaluateAssertion(&a, reg); msg != "" {
			result.AddError(fmt.Sprintf("assertion %d (%s): %s", i, a.Type, msg))
		}
	}
}

// evaluateAssertion checks one assertion. Returns an empty string on
// success, a mismatch description otherwise.
func evaluateAssertion(a *Assertion, reg *vault.Registry) string {
	switch a.Type {
	case AssertBalance:
		want, err := fraction.ParseAmount(a.Amount)
		if err != nil {
			return fmt.Sprintf("bad amount %q: %v", a.Amount, err)
		}
		got := reg.Balance(fraction.Account(a.Account))
		if got != want {
			return fmt.Sprintf("account %s balance = %s, want %s", a.Account, got, want)
		}

	case AssertEscrow:
		want, err := fraction.ParseAmount(a.Amount)
		if err != nil {
			return fmt.Sprintf("bad amount %q: %v", a.Amount, err)
		}
		got, err := reg.GetEscrowBalance(fraction.VaultID(a.Vault))
		if err != nil {
			return err.Error()
		}
		if got != want {
			return fmt.Sprintf("vault %d escrow = %s, want %s", a.Vault, got, want)
		}

	case AssertVaultState:
		info, err := reg.GetVault(fraction.VaultID(a.Vault))
		if err != nil {
			return err.Error()
		}
		if got := info.State.String(); got != a.State {
			return fmt.Sprintf("vault %d state = %s, want %s", a.Vault, got, a.State)
		}

	case AssertReserve:
		ri, err := reg.GetReserveInfo(fraction.VaultID(a.Vault))
		if err != nil {
			return err.Error()
		}
		if ri.VotingWeight != a.Weight {
			return fmt.Sprintf("vault %d voting weight = %d, want %d", a.Vault, ri.VotingWeight, a.Weight)
		}
		if a.Reserve != "" {
			want, err := fraction.ParseAmount(a.Reserve)
			if err != nil {
				return fmt.Sprintf("bad reserve %q: %v", a.Reserve, err)
			}
			if !ri.Defined {
				return fmt.Sprintf("vault %d reserve undefined, want %s", a.Vault, want)
			}
			if ri.Reserve != want {
				return fmt.Sprintf("vault %d reserve = %s, want %s", a.Vault, ri.Reserve, want)
			}
		}

	case AssertSupply:
		got, err := reg.GetSupply(fraction.VaultID(a.Vault))
		if err != nil {
			return err.Error()
		}
		if got != a.Total {
			return fmt.Sprintf("vault %d supply = %d, want %d", a.Vault, got, a.Total)
		}

	case AssertShareBalance:
		got, err := reg.ShareBalance(fraction.VaultID(a.Vault), fraction.Account(a.Account))
		if err != nil {
			return err.Error()
		}
		if got != a.Count {
			return fmt.Sprintf("vault %d account %s holds %d shares, want %d", a.Vault, a.Account, got, a.Count)
		}

	case AssertUnderlyingOwner:
		got, err := reg.UnderlyingOwner(fraction.VaultID(a.Vault))
		if err != nil {
			return err.Error()
		}
		if string(got) != a.Account {
			return fmt.Sprintf("vault %d underlying held by %q, want %q", a.Vault, got, a.Account)
		}

	case AssertProceedsLeft:
		want, err := fraction.ParseAmount(a.Amount)
		if err != nil {
			return fmt.Sprintf("bad amount %q: %v", a.Amount, err)
		}
		info, err := reg.GetVault(fraction.VaultID(a.Vault))
		if err != nil {
			return err.Error()
		}
		if info.ProceedsLeft != want {
			return fmt.Sprintf("vault %d proceeds left = %s, want %s", a.Vault, info.ProceedsLeft, want)
		}

	case AssertBurnBatches:
		got := reg.GetBurnBatchCount(fraction.Account(a.Account))
		if got != a.Count {
			return fmt.Sprintf("account %s has %d burn batches, want %d", a.Account, got, a.Count)
		}

	default:
		return fmt.Sprintf("unknown assertion type %q", a.Type)
	}
	return ""
}
