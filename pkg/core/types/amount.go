package types

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/holiman/uint256"
)

// EtherDecimals is the number of decimal places between ether and wei.
// 1 ETH = 10^18 wei.
const EtherDecimals = 18

var (
	ErrOverflow       = errors.New("amount overflow")
	ErrDivisionByZero = errors.New("division by zero")
	ErrInvalidEther   = errors.New("invalid ether value")
	ErrInvalidWei     = errors.New("invalid wei value")
)

// Amount represents a quantity of ether in wei (smallest indivisible unit).
// Amounts are immutable: every operation returns a new Amount. Two Amounts
// are == iff their wei counts are equal.
type Amount struct {
	wei uint256.Int
}

var (
	// Zero is the zero amount.
	Zero = Amount{}
	// MaxAmount is 2^256 - 1 wei, the largest representable amount.
	MaxAmount = Amount{wei: *new(uint256.Int).SetAllOne()}

	weiPerEtherFloat = new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(EtherDecimals), nil))
)

// NewAmount wraps a wei count verbatim. A nil value yields Zero.
func NewAmount(wei *uint256.Int) Amount {
	if wei == nil {
		return Zero
	}
	return Amount{wei: *wei}
}

// NewAmountFromUint64 wraps a wei count held in a uint64.
func NewAmountFromUint64(wei uint64) Amount {
	var a Amount
	a.wei.SetUint64(wei)
	return a
}

// NewAmountFromEther converts a decimal ether value to wei as floor(eth * 10^18).
//
// The multiplication happens in float64, so the result is approximate for any
// value that needs more than 53 significant bits. Never use it as the last step
// before a value-critical operation such as signing; use NewAmount or ParseWei.
func NewAmountFromEther(eth float64) (Amount, error) {
	if math.IsNaN(eth) || math.IsInf(eth, 0) || eth < 0 {
		return Zero, fmt.Errorf("%w: %v", ErrInvalidEther, eth)
	}
	scaled := eth * math.Pow10(EtherDecimals)
	if math.IsInf(scaled, 0) {
		return Zero, fmt.Errorf("%w: converting %v ETH to wei", ErrOverflow, eth)
	}
	wei, _ := new(big.Float).SetFloat64(math.Floor(scaled)).Int(nil)

	var a Amount
	if a.wei.SetFromBig(wei) {
		return Zero, fmt.Errorf("%w: converting %v ETH to wei", ErrOverflow, eth)
	}
	return a, nil
}

// ParseWei parses an exact base-10 wei count such as "1500000000000000000".
// Only ASCII digits are accepted: no sign, whitespace, separators or exponent.
func ParseWei(s string) (Amount, error) {
	if s == "" {
		return Zero, fmt.Errorf("%w: empty string", ErrInvalidWei)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return Zero, fmt.Errorf("%w: %q: unexpected character at offset %d", ErrInvalidWei, s, i)
		}
	}
	var a Amount
	if err := a.wei.SetFromDecimal(s); err != nil {
		return Zero, fmt.Errorf("%w: %q: %v", ErrInvalidWei, s, err)
	}
	return a, nil
}

// AmountFromBytes decodes a big-endian wei count of at most 32 bytes.
func AmountFromBytes(b []byte) (Amount, error) {
	if len(b) > 32 {
		return Zero, fmt.Errorf("%w: %d bytes, want at most 32", ErrInvalidWei, len(b))
	}
	var a Amount
	a.wei.SetBytes(b)
	return a, nil
}

// Wei returns a copy of the exact wei count.
func (a Amount) Wei() *uint256.Int {
	return a.wei.Clone()
}

// Uint64 returns the wei count if it fits in a uint64.
func (a Amount) Uint64() (uint64, error) {
	if !a.wei.IsUint64() {
		return 0, fmt.Errorf("%w: %s wei does not fit in 64 bits", ErrOverflow, a.wei.Dec())
	}
	return a.wei.Uint64(), nil
}

// ToBig returns the wei count as a new big.Int.
func (a Amount) ToBig() *big.Int {
	return a.wei.ToBig()
}

// Bytes returns the wei count as 32 big-endian bytes.
func (a Amount) Bytes() []byte {
	b := a.wei.Bytes32()
	return b[:]
}

// Ether returns the amount in ETH as a float64 approximation (display only,
// never arithmetic). The full 256-bit value takes part in the division.
func (a Amount) Ether() float64 {
	if a.wei.IsZero() {
		return 0
	}
	q := new(big.Float).SetPrec(256).Quo(new(big.Float).SetInt(a.wei.ToBig()), weiPerEtherFloat)
	f, _ := q.Float64()
	return f
}

// IsZero reports whether the amount is 0 wei.
func (a Amount) IsZero() bool {
	return a.wei.IsZero()
}

// Cmp returns -1, 0 or +1 as a is less than, equal to or greater than b.
func (a Amount) Cmp(b Amount) int {
	return a.wei.Cmp(&b.wei)
}

func (a Amount) Lt(b Amount) bool { return a.wei.Lt(&b.wei) }
func (a Amount) Gt(b Amount) bool { return a.wei.Gt(&b.wei) }
func (a Amount) Eq(b Amount) bool { return a.wei.Eq(&b.wei) }

// Add returns a + b.
func (a Amount) Add(b Amount) (Amount, error) {
	var r Amount
	if _, overflow := r.wei.AddOverflow(&a.wei, &b.wei); overflow {
		return Zero, fmt.Errorf("%w: adding %s to %s", ErrOverflow, b.wei.Dec(), a.wei.Dec())
	}
	return r, nil
}

// Sub returns a - b. An underflow (b > a) is reported as ErrOverflow.
func (a Amount) Sub(b Amount) (Amount, error) {
	var r Amount
	if _, overflow := r.wei.SubOverflow(&a.wei, &b.wei); overflow {
		return Zero, fmt.Errorf("%w: subtracting %s from %s", ErrOverflow, b.wei.Dec(), a.wei.Dec())
	}
	return r, nil
}

// MulScalar returns a * n.
func (a Amount) MulScalar(n uint64) (Amount, error) {
	var r Amount
	if _, overflow := r.wei.MulOverflow(&a.wei, uint256.NewInt(n)); overflow {
		return Zero, fmt.Errorf("%w: multiplying %s by %d", ErrOverflow, a.wei.Dec(), n)
	}
	return r, nil
}

// Mul returns the product of the two wei counts.
func (a Amount) Mul(b Amount) (Amount, error) {
	var r Amount
	if _, overflow := r.wei.MulOverflow(&a.wei, &b.wei); overflow {
		return Zero, fmt.Errorf("%w: multiplying %s by %s", ErrOverflow, a.wei.Dec(), b.wei.Dec())
	}
	return r, nil
}

// Div returns floor(a / b). Division by zero matches both ErrOverflow and
// ErrDivisionByZero.
func (a Amount) Div(b Amount) (Amount, error) {
	if b.wei.IsZero() {
		return Zero, fmt.Errorf("%w: %w: dividing %s by 0", ErrOverflow, ErrDivisionByZero, a.wei.Dec())
	}
	var r Amount
	r.wei.Div(&a.wei, &b.wei)
	return r, nil
}

// String implements fmt.Stringer, e.g. "1.5 ETH (1500000000000000000 wei)".
// The ETH half is lossy; never parse it back.
func (a Amount) String() string {
	return strconv.FormatFloat(a.Ether(), 'f', -1, 64) + " ETH (" + a.wei.Dec() + " wei)"
}
