package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fracdao/fractional/internal/policy"
	"github.com/fracdao/fractional/internal/vault"
)

// assertionFixture builds a registry holding one live auction: bob's
// ten-share vault, all voting 100, with alice's opening bid escrowed.
func assertionFixture(t *testing.T) *vault.Registry {
	t.Helper()
	reg := newScenarioRegistry(policy.Default())
	steps := []Step{
		{Op: "faucet", Args: map[string]any{"account": "alice", "amount": "500"}},
		{Op: "mint-vault", Args: map[string]any{"curator": "bob", "items": []any{1}, "cap": 10}},
		{Op: "mint-shares", Args: map[string]any{"caller": "bob", "vault": 1, "count": 10}},
		{Op: "cast-vote", Args: map[string]any{"caller": "bob", "vault": 1, "start": 1, "count": 10, "price": "100"}},
		{Op: "start", Args: map[string]any{"bidder": "alice", "vault": 1, "amount": "100"}},
	}
	for _, step := range steps {
		require.NoError(t, reg.ApplyOp(step.Op, step.Args))
	}
	return reg
}

func TestEvaluateAssertions_AllHold(t *testing.T) {
	reg := assertionFixture(t)
	result := NewResult()

	EvaluateAssertions(result, []Assertion{
		{Type: AssertBalance, Account: "alice", Amount: "400"},
		{Type: AssertEscrow, Vault: 1, Amount: "100"},
		{Type: AssertVaultState, Vault: 1, State: "live"},
		{Type: AssertReserve, Vault: 1, Weight: 10, Reserve: "100"},
		{Type: AssertSupply, Vault: 1, Total: 10},
		{Type: AssertShareBalance, Vault: 1, Account: "bob", Count: 10},
		{Type: AssertUnderlyingOwner, Vault: 1, Account: ""},
		{Type: AssertProceedsLeft, Vault: 1, Amount: "0"},
		{Type: AssertBurnBatches, Account: "protocol/burner", Count: 0},
	}, reg)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
}

func TestEvaluateAssertions_Mismatches(t *testing.T) {
	reg := assertionFixture(t)

	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{"balance", Assertion{Type: AssertBalance, Account: "alice", Amount: "500"}, "balance"},
		{"escrow", Assertion{Type: AssertEscrow, Vault: 1, Amount: "0"}, "escrow"},
		{"state", Assertion{Type: AssertVaultState, Vault: 1, State: "ended"}, "state"},
		{"weight", Assertion{Type: AssertReserve, Vault: 1, Weight: 4}, "voting weight"},
		{"reserve", Assertion{Type: AssertReserve, Vault: 1, Weight: 10, Reserve: "50"}, "reserve"},
		{"supply", Assertion{Type: AssertSupply, Vault: 1, Total: 5}, "supply"},
		{"shares", Assertion{Type: AssertShareBalance, Vault: 1, Account: "alice", Count: 10}, "shares"},
		{"owner", Assertion{Type: AssertUnderlyingOwner, Vault: 1, Account: "alice"}, "underlying"},
		{"proceeds", Assertion{Type: AssertProceedsLeft, Vault: 1, Amount: "100"}, "proceeds"},
		{"burns", Assertion{Type: AssertBurnBatches, Account: "protocol/burner", Count: 3}, "burn batches"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewResult()
			EvaluateAssertions(result, []Assertion{tt.assertion}, reg)
			assert.False(t, result.Pass)
			require.Len(t, result.Errors, 1)
			assert.Contains(t, result.Errors[0], tt.want)
		})
	}
}

func TestEvaluateAssertions_UnknownVault(t *testing.T) {
	reg := assertionFixture(t)
	result := NewResult()

	EvaluateAssertions(result, []Assertion{
		{Type: AssertVaultState, Vault: 99, State: "live"},
	}, reg)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "no vault with id 99")
}

func TestEvaluateAssertions_BadAmount(t *testing.T) {
	reg := assertionFixture(t)
	result := NewResult()

	EvaluateAssertions(result, []Assertion{
		{Type: AssertBalance, Account: "alice", Amount: "not-a-number"},
	}, reg)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "bad amount")
}
