package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fracdao/fractional/internal/fraction"
)

// Every checked-in scenario must run clean: flow outcomes as declared,
// assertions holding, replay reproducing the final state.
func TestScenarioFiles(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRunWithGolden_RedeemExit(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "redeem-exit.yaml"))
	require.NoError(t, err)
	require.NoError(t, RunWithGolden(t, scenario))
}

func TestTraceSnapshot_CanonicalForm(t *testing.T) {
	snapshot := TraceSnapshot{
		ScenarioName: "shape",
		Trace: []TraceEvent{
			{Op: "faucet", Args: map[string]any{"account": "alice", "amount": "5"}, Seq: 1, Result: map[string]any{"balance": "5"}},
			{Op: "start", Args: map[string]any{"vault": 1}, Error: "QUORUM_NOT_MET"},
		},
	}

	text, err := fraction.MarshalCanonical(snapshot.toCanonicalMap())
	require.NoError(t, err)

	want := `{"scenario_name":"shape","trace":[` +
		`{"args":{"account":"alice","amount":"5"},"op":"faucet","result":{"balance":"5"},"seq":1},` +
		`{"args":{"vault":1},"error":"QUORUM_NOT_MET","op":"start"}]}`
	assert.Equal(t, want, string(text))

	again, err := fraction.MarshalCanonical(snapshot.toCanonicalMap())
	require.NoError(t, err)
	assert.Equal(t, string(text), string(again))
}
