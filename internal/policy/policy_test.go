package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	p := Default()

	// Two days, fifteen-minute window: the original deployment's values.
	assert.Equal(t, uint64(172800), p.AuctionLength)
	assert.Equal(t, uint64(900), p.ExtensionWindow)
	assert.Equal(t, uint64(500), p.MinRaiseBips)
	assert.Equal(t, uint64(1000), p.MaxFeeBips)
	assert.Equal(t, uint64(10000), p.MaxSupply)
	assert.Equal(t, uint64(100), p.CashBatchLimit)
}

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "policy.cue"), []byte(content), 0o644))
	return dir
}

func TestLoad(t *testing.T) {
	dir := writePolicy(t, `
policy: {
	auction_length:   600
	min_raise_bips:   1000
	extension_window: 60
	max_fee_bips:     250
	max_supply:       1000
	cash_batch_limit: 50
}
`)
	p, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, uint64(600), p.AuctionLength)
	assert.Equal(t, uint64(1000), p.MinRaiseBips)
	assert.Equal(t, uint64(60), p.ExtensionWindow)
	assert.Equal(t, uint64(250), p.MaxFeeBips)
	assert.Equal(t, uint64(1000), p.MaxSupply)
	assert.Equal(t, uint64(50), p.CashBatchLimit)
}

func TestLoad_MissingField(t *testing.T) {
	dir := writePolicy(t, `
policy: {
	auction_length: 600
}
`)
	_, err := Load(dir)
	require.Error(t, err)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "min_raise_bips", le.Field)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{
			name: "extension window exceeds auction length",
			content: `policy: {
	auction_length:   600
	min_raise_bips:   500
	extension_window: 600
	max_fee_bips:     250
	max_supply:       1000
	cash_batch_limit: 100
}`,
			field: "extension_window",
		},
		{
			name: "raise over 100 percent",
			content: `policy: {
	auction_length:   600
	min_raise_bips:   20000
	extension_window: 60
	max_fee_bips:     250
	max_supply:       1000
	cash_batch_limit: 100
}`,
			field: "min_raise_bips",
		},
		{
			name: "zero supply cap",
			content: `policy: {
	auction_length:   600
	min_raise_bips:   500
	extension_window: 60
	max_fee_bips:     250
	max_supply:       0
	cash_batch_limit: 100
}`,
			field: "max_supply",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writePolicy(t, tt.content)
			_, err := Load(dir)
			require.Error(t, err)
			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, tt.field, le.Field)
		})
	}
}

func TestLoad_MissingDir(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoad_EmptyDir(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}
