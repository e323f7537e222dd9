package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fracdao/fractional/internal/fraction"
)

func TestLedger_MintAndTransfer(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Mint("alice", fraction.MustWhole(1000)))
	require.NoError(t, l.Transfer("alice", "bob", fraction.MustWhole(300)))

	assert.Equal(t, fraction.MustWhole(700), l.Balance("alice"))
	assert.Equal(t, fraction.MustWhole(300), l.Balance("bob"))
}

func TestLedger_TransferInsufficient(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Mint("alice", fraction.MustWhole(10)))

	err := l.Transfer("alice", "bob", fraction.MustWhole(11))
	assert.True(t, fraction.HasCode(err, fraction.InsufficientFunds))
	assert.Equal(t, fraction.MustWhole(10), l.Balance("alice"), "failed transfer must not move funds")
	assert.Equal(t, fraction.Amount(0), l.Balance("bob"))
}

func TestLedger_EscrowRoundTrip(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Mint("alice", fraction.MustWhole(1000)))

	require.NoError(t, l.EscrowDeposit(1, "alice", fraction.MustWhole(100)))
	assert.Equal(t, fraction.MustWhole(900), l.Balance("alice"))
	assert.Equal(t, fraction.MustWhole(100), l.EscrowBalance(1))

	// Outbid refund restores the exact amount.
	require.NoError(t, l.EscrowPay(1, "alice", fraction.MustWhole(100)))
	assert.Equal(t, fraction.MustWhole(1000), l.Balance("alice"))
	assert.Equal(t, fraction.Amount(0), l.EscrowBalance(1))
}

func TestLedger_EscrowDepositInsufficient(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Mint("alice", fraction.MustWhole(50)))

	err := l.EscrowDeposit(1, "alice", fraction.MustWhole(100))
	assert.True(t, fraction.HasCode(err, fraction.InsufficientFunds))
	assert.Equal(t, fraction.MustWhole(50), l.Balance("alice"))
	assert.Equal(t, fraction.Amount(0), l.EscrowBalance(1))
}

func TestLedger_EscrowOverdraw(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Mint("alice", fraction.MustWhole(100)))
	require.NoError(t, l.EscrowDeposit(1, "alice", fraction.MustWhole(100)))

	err := l.EscrowPay(1, "bob", fraction.MustWhole(101))
	assert.True(t, fraction.HasCode(err, fraction.InsufficientFunds))
	assert.Equal(t, fraction.MustWhole(100), l.EscrowBalance(1))
}

func TestLedger_ReceiverPaths(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Mint("bidder", fraction.MustWhole(500)))
	require.NoError(t, l.EscrowDeposit(2, "bidder", fraction.MustWhole(300)))

	// Unregistered path blocks the payment and moves nothing.
	err := l.EscrowPayVia(2, "treasury", "/public/feeReceiver", fraction.MustParseAmount("7.5"))
	require.True(t, fraction.HasCode(err, fraction.FeeSinkUnavailable))
	assert.Equal(t, fraction.MustWhole(300), l.EscrowBalance(2))
	assert.Equal(t, fraction.Amount(0), l.Balance("treasury"))

	// After registration the same payment succeeds.
	require.NoError(t, l.RegisterReceiver("treasury", "/public/feeReceiver"))
	assert.True(t, l.CanDeposit("treasury", "/public/feeReceiver"))
	require.NoError(t, l.EscrowPayVia(2, "treasury", "/public/feeReceiver", fraction.MustParseAmount("7.5")))
	assert.Equal(t, fraction.MustParseAmount("7.5"), l.Balance("treasury"))
	assert.Equal(t, fraction.MustParseAmount("292.5"), l.EscrowBalance(2))
}

func TestLedger_Accounts(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Mint("carol", fraction.MustWhole(1)))
	require.NoError(t, l.Mint("alice", fraction.MustWhole(1)))
	require.NoError(t, l.RegisterReceiver("bob", "/public/r"))

	assert.Equal(t, []fraction.Account{"alice", "bob", "carol"}, l.Accounts())
	assert.Equal(t, []string{"/public/r"}, l.ReceiverPaths("bob"))
}
