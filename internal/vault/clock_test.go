package vault_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fracdao/fractional/internal/vault"
)

func TestClock_StartsAtZero(t *testing.T) {
	c := vault.NewClock()
	assert.Equal(t, uint64(0), c.Now())
}

func TestClock_Advance(t *testing.T) {
	c := vault.NewClock()

	assert.Equal(t, uint64(100), c.Advance(100))
	assert.Equal(t, uint64(100), c.Now())

	// Time only moves when ticked, and only forward.
	assert.Equal(t, uint64(100), c.Now())
	assert.Equal(t, uint64(272900), c.Advance(272800))
}

func TestClock_NewClockAt(t *testing.T) {
	c := vault.NewClockAt(172800)
	assert.Equal(t, uint64(172800), c.Now())
}

func TestTokens_Fixed(t *testing.T) {
	g := vault.NewFixedGenerator("op")
	assert.Equal(t, "op-1", g.Generate())
	assert.Equal(t, "op-2", g.Generate())
}

func TestTokens_UUIDv7Unique(t *testing.T) {
	g := vault.UUIDv7Generator{}
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok := g.Generate()
		assert.Len(t, tok, 36)
		assert.False(t, seen[tok], "token %s generated twice", tok)
		seen[tok] = true
	}
}
