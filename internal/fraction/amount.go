package fraction

import (
	"fmt"
	"math/bits"
	"strings"
)

// Amount is an unsigned fixed-point currency amount with eight decimal
// places, matching the settlement currency of the original deployment.
//
// All arithmetic is checked: operations that would wrap return an
// AmountOverflow error instead of producing a silently wrong balance.
// Floats never touch an Amount; parsing and formatting are string-based.
type Amount uint64

// AmountScale is the number of base units per whole currency unit.
const AmountScale = 100_000_000

const amountDecimals = 8

// Whole returns an Amount representing n whole currency units.
func Whole(n uint64) (Amount, error) {
	hi, lo := bits.Mul64(n, AmountScale)
	if hi != 0 {
		return 0, Newf(AmountOverflow, "amount %d overflows", n)
	}
	return Amount(lo), nil
}

// MustWhole is Whole for constants known to fit. Panics on overflow.
// Intended for tests and policy defaults.
func MustWhole(n uint64) Amount {
	a, err := Whole(n)
	if err != nil {
		panic(err)
	}
	return a
}

// ParseAmount parses a decimal string such as "292.5" or "100" into an
// Amount. At most eight fractional digits are accepted.
func ParseAmount(s string) (Amount, error) {
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" && frac == "" {
		return 0, Newf(AmountOverflow, "empty amount")
	}
	if len(frac) > amountDecimals {
		return 0, Newf(AmountOverflow, "amount %q has more than %d decimal places", s, amountDecimals)
	}
	var units uint64
	for _, r := range whole {
		if r < '0' || r > '9' {
			return 0, Newf(AmountOverflow, "invalid amount %q", s)
		}
		hi, lo := bits.Mul64(units, 10)
		if hi != 0 {
			return 0, Newf(AmountOverflow, "amount %q overflows", s)
		}
		units = lo + uint64(r-'0')
		if units < lo {
			return 0, Newf(AmountOverflow, "amount %q overflows", s)
		}
	}
	a, err := Whole(units)
	if err != nil {
		return 0, Newf(AmountOverflow, "amount %q overflows", s)
	}
	var fracUnits uint64
	for _, r := range frac {
		if r < '0' || r > '9' {
			return 0, Newf(AmountOverflow, "invalid amount %q", s)
		}
		fracUnits = fracUnits*10 + uint64(r-'0')
	}
	for i := len(frac); i < amountDecimals; i++ {
		fracUnits *= 10
	}
	return a.Add(Amount(fracUnits))
}

// MustParseAmount is ParseAmount that panics on error. For tests.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String formats the amount with all eight decimal places, e.g.
// "292.50000000". This matches the original deployment's view output and
// keeps journal records byte-stable.
func (a Amount) String() string {
	return fmt.Sprintf("%d.%08d", uint64(a)/AmountScale, uint64(a)%AmountScale)
}

// Add returns a+b, or AmountOverflow if the sum wraps.
func (a Amount) Add(b Amount) (Amount, error) {
	sum, carry := bits.Add64(uint64(a), uint64(b), 0)
	if carry != 0 {
		return 0, Newf(AmountOverflow, "amount addition overflows")
	}
	return Amount(sum), nil
}

// Sub returns a-b, or AmountOverflow if b exceeds a.
func (a Amount) Sub(b Amount) (Amount, error) {
	if b > a {
		return 0, Newf(AmountOverflow, "amount subtraction underflows")
	}
	return a - b, nil
}

// MulDiv returns a*num/den computed with a 128-bit intermediate, so
// pro-rata payouts like proceeds*k/supply never overflow en route.
// Division truncates toward zero. den must be nonzero and the quotient
// must fit in 64 bits.
func (a Amount) MulDiv(num, den uint64) (Amount, error) {
	if den == 0 {
		return 0, Newf(AmountOverflow, "division by zero")
	}
	hi, lo := bits.Mul64(uint64(a), num)
	if hi >= den {
		return 0, Newf(AmountOverflow, "amount multiplication overflows")
	}
	q, _ := bits.Div64(hi, lo, den)
	return Amount(q), nil
}

// FeeBips returns a*bips/10000, the protocol fee carved from a winning bid.
func (a Amount) FeeBips(bips uint64) (Amount, error) {
	return a.MulDiv(bips, 10_000)
}

// CmpMul compares a*x against b*y without overflow, using 128-bit
// products. Returns -1, 0, or +1. Used for reserve-price and quorum checks
// so no intermediate division can round the comparison the wrong way.
func CmpMul(a Amount, x uint64, b Amount, y uint64) int {
	ahi, alo := bits.Mul64(uint64(a), x)
	bhi, blo := bits.Mul64(uint64(b), y)
	switch {
	case ahi != bhi:
		if ahi < bhi {
			return -1
		}
		return 1
	case alo != blo:
		if alo < blo {
			return -1
		}
		return 1
	default:
		return 0
	}
}
