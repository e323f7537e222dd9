package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: redeem-all
description: A sole holder redeems the full supply and takes the underlying.
setup:
  - op: mint-vault
    args:
      curator: bob
      items: [7]
      cap: 10
  - op: mint-shares
    args:
      caller: bob
      vault: 1
      count: 10
flow:
  - op: redeem
    args:
      holder: bob
      vault: 1
      amount: 10
assertions:
  - type: vault_state
    vault: 1
    state: consumed
  - type: underlying_owner
    vault: 1
    account: bob
`

const failingScenario = `name: wrong-state
description: Asserts a state the vault never reaches.
setup:
  - op: mint-vault
    args:
      curator: bob
      items: [3]
      cap: 4
flow:
  - op: mint-shares
    args:
      caller: bob
      vault: 1
      count: 4
assertions:
  - type: vault_state
    vault: 1
    state: live
`

func writeScenario(t *testing.T, dir, file, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644))
}

func TestTestCommand_AllPass(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "redeem-all.yaml", passingScenario)

	out, err := execute(t, "test", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "PASS redeem-all")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.Contains(t, out, "All scenarios passed")
}

func TestTestCommand_FailingAssertion(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "wrong-state.yaml", failingScenario)

	out, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "FAIL wrong-state")
	assert.Contains(t, out, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestTestCommand_GoldenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "redeem-all.yaml", passingScenario)

	out, err := execute(t, "test", dir, "--update")
	require.NoError(t, err, out)

	goldenPath := filepath.Join(dir, "golden", "redeem-all.golden")
	golden, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"scenario_name":"redeem-all"`)

	// The freshly written golden matches on the next run.
	out, err = execute(t, "test", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "PASS redeem-all")

	// A tampered golden is caught.
	require.NoError(t, os.WriteFile(goldenPath, []byte(`{"scenario_name":"redeem-all","trace":[]}`), 0o644))
	out, err = execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommand_Filter(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "redeem-all.yaml", passingScenario)
	writeScenario(t, dir, "wrong-state.yaml", failingScenario)

	out, err := execute(t, "test", dir, "--filter", "redeem-*")
	require.NoError(t, err, out)
	assert.Contains(t, out, "PASS redeem-all")
	assert.NotContains(t, out, "wrong-state")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
}

func TestTestCommand_MissingDir(t *testing.T) {
	_, err := execute(t, "test", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommand_EmptyDir(t *testing.T) {
	out, err := execute(t, "test", t.TempDir())
	require.NoError(t, err, out)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommand_MalformedScenario(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "broken.yaml", "name: broken\nassertion: []\n")

	out, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "FAIL broken.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestTestCommand_JSONOutput(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "redeem-all.yaml", passingScenario)
	writeScenario(t, dir, "wrong-state.yaml", failingScenario)

	out, err := execute(t, "test", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)

	var result TestResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Failed)
}
