package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fracdao/fractional/internal/fraction"
	"github.com/fracdao/fractional/internal/vault"
)

func TestPayload_Text(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.Payload(map[string]any{
		"balance": fraction.Amount(250_000_000),
		"account": fraction.Account("alice"),
	}))

	// Keys print sorted.
	assert.Equal(t, "account: alice\nbalance: 2.50000000\n", buf.String())
}

func TestPayload_JSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Payload(map[string]any{
		"balance": fraction.Amount(250_000_000),
		"vault":   fraction.VaultID(3),
	}))

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, `{"balance":"2.50000000","vault":3}`, string(resp.Data))
}

func TestOpResult_Text(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	rec := vault.OpRecord{
		Name:   "mint-shares",
		Seq:    7,
		Result: map[string]any{"first": fraction.ShareID(1), "total": uint64(100)},
	}
	require.NoError(t, f.OpResult(rec))

	assert.Equal(t, "ok mint-shares seq=7\n  first: 1\n  total: 100\n", buf.String())
}

func TestOpResult_JSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	rec := vault.OpRecord{
		Token:  "op-1",
		Name:   "tick",
		Seq:    2,
		Result: map[string]any{"now": uint64(50)},
	}
	require.NoError(t, f.OpResult(rec))

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, `{"op":"tick","result":{"now":50},"seq":2,"token":"op-1"}`, string(resp.Data))
}

func TestError_Formats(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}
	require.NoError(t, f.Error("BID_TOO_LOW", "bid below reserve"))
	assert.Equal(t, "error [BID_TOO_LOW]: bid below reserve\n", buf.String())

	buf.Reset()
	f.Format = "json"
	require.NoError(t, f.Error("BID_TOO_LOW", "bid below reserve"))

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "BID_TOO_LOW", resp.Error.Code)
}

func TestVerboseLog(t *testing.T) {
	var out, diag bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &out, ErrWriter: &diag, Verbose: true}

	f.VerboseLog("replayed %d op(s)", 4)
	assert.Empty(t, out.String())
	assert.Equal(t, "replayed 4 op(s)\n", diag.String())

	f.Verbose = false
	diag.Reset()
	f.VerboseLog("quiet")
	assert.Empty(t, diag.String())
}

func TestExitError(t *testing.T) {
	base := errors.New("disk full")
	err := WrapExitError(ExitCommandError, "failed to open database", base)
	assert.Equal(t, "failed to open database: disk full", err.Error())
	assert.Equal(t, base, errors.Unwrap(err))
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "refused")))
}
