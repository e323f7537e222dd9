package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validScenarioYAML = `
name: transfer-clears-votes
description: Transferred shares drop their votes.
setup:
  - op: mint-vault
    args:
      curator: bob
      items: [1]
      cap: 10
  - op: mint-shares
    args:
      caller: bob
      vault: 1
      count: 10
flow:
  - op: cast-vote
    args:
      caller: bob
      vault: 1
      start: 1
      count: 10
      price: "25"
  - op: transfer-shares
    args:
      from: bob
      to: carol
      vault: 1
      ids: [1, 2, 3]
assertions:
  - type: reserve
    vault: 1
    weight: 7
    reserve: "25"
  - type: share_balance
    vault: 1
    account: carol
    count: 3
`

func TestParseScenario_Valid(t *testing.T) {
	scenario, err := ParseScenario([]byte(validScenarioYAML))
	require.NoError(t, err)

	assert.Equal(t, "transfer-clears-votes", scenario.Name)
	assert.Len(t, scenario.Setup, 2)
	assert.Len(t, scenario.Flow, 2)
	assert.Len(t, scenario.Assertions, 2)
	assert.Nil(t, scenario.Policy)

	// And the parsed scenario actually runs.
	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestParseScenario_PolicyOverrides(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: short
description: Policy override parsing.
policy:
  auction_length: 10
  min_raise_bips: 1000
flow:
  - op: tick
    args:
      delta: 1
assertions:
  - type: burn_batches
    account: protocol/burner
    count: 0
`))
	require.NoError(t, err)
	require.NotNil(t, scenario.Policy)
	require.NotNil(t, scenario.Policy.AuctionLength)
	assert.Equal(t, uint64(10), *scenario.Policy.AuctionLength)
	require.NotNil(t, scenario.Policy.MinRaiseBips)
	assert.Equal(t, uint64(1000), *scenario.Policy.MinRaiseBips)
	assert.Nil(t, scenario.Policy.ExtensionWindow)
}

func TestParseScenario_UnknownFieldRejected(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
description: Misspelled section.
flow:
  - op: tick
    args:
      delta: 1
assertion:
  - type: balance
    account: alice
    amount: "1"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "no_name",
			yaml: "description: d\nflow:\n  - op: tick\n    args: {delta: 1}\nassertions:\n  - {type: burn_batches, account: a}\n",
			want: "name is required",
		},
		{
			name: "no_description",
			yaml: "name: n\nflow:\n  - op: tick\n    args: {delta: 1}\nassertions:\n  - {type: burn_batches, account: a}\n",
			want: "description is required",
		},
		{
			name: "no_flow",
			yaml: "name: n\ndescription: d\nassertions:\n  - {type: burn_batches, account: a}\n",
			want: "flow list is required",
		},
		{
			name: "no_assertions",
			yaml: "name: n\ndescription: d\nflow:\n  - op: tick\n    args: {delta: 1}\n",
			want: "assertions list is required",
		},
		{
			name: "flow_step_without_op",
			yaml: "name: n\ndescription: d\nflow:\n  - args: {delta: 1}\nassertions:\n  - {type: burn_batches, account: a}\n",
			want: "op is required",
		},
		{
			name: "flow_step_without_args",
			yaml: "name: n\ndescription: d\nflow:\n  - op: tick\nassertions:\n  - {type: burn_batches, account: a}\n",
			want: "args is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseScenario_SetupExpectRejected(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: n
description: d
setup:
  - op: tick
    args: {delta: 1}
    expect:
      error: BAD_REQUEST
flow:
  - op: tick
    args: {delta: 1}
assertions:
  - {type: burn_batches, account: a}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup steps must succeed")
}

func TestValidateAssertion(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		wantErr   bool
	}{
		{name: "balance_ok", assertion: Assertion{Type: AssertBalance, Account: "a", Amount: "1"}},
		{name: "balance_missing_amount", assertion: Assertion{Type: AssertBalance, Account: "a"}, wantErr: true},
		{name: "escrow_ok", assertion: Assertion{Type: AssertEscrow, Vault: 1, Amount: "1"}},
		{name: "escrow_missing_vault", assertion: Assertion{Type: AssertEscrow, Amount: "1"}, wantErr: true},
		{name: "state_ok", assertion: Assertion{Type: AssertVaultState, Vault: 1, State: "live"}},
		{name: "state_missing_state", assertion: Assertion{Type: AssertVaultState, Vault: 1}, wantErr: true},
		{name: "reserve_ok", assertion: Assertion{Type: AssertReserve, Vault: 1, Weight: 5}},
		{name: "reserve_missing_vault", assertion: Assertion{Type: AssertReserve}, wantErr: true},
		{name: "supply_ok", assertion: Assertion{Type: AssertSupply, Vault: 1, Total: 10}},
		{name: "share_balance_missing_account", assertion: Assertion{Type: AssertShareBalance, Vault: 1}, wantErr: true},
		{name: "owner_ok", assertion: Assertion{Type: AssertUnderlyingOwner, Vault: 1, Account: "a"}},
		{name: "proceeds_ok", assertion: Assertion{Type: AssertProceedsLeft, Vault: 1, Amount: "0"}},
		{name: "burn_batches_missing_account", assertion: Assertion{Type: AssertBurnBatches}, wantErr: true},
		{name: "empty_type", assertion: Assertion{}, wantErr: true},
		{name: "unknown_type", assertion: Assertion{Type: "journal_length"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAssertion(0, &tt.assertion)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validScenarioYAML), 0o644))

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "transfer-clears-votes", scenario.Name)
}
