package types

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
)

func mustParseWei(t *testing.T, s string) Amount {
	t.Helper()
	a, err := ParseWei(s)
	if err != nil {
		t.Fatalf("ParseWei(%q) failed: %v", s, err)
	}
	return a
}

func TestNewAmountKeepsValue(t *testing.T) {
	in := uint256.NewInt(42)
	a := NewAmount(in)

	// Mutating the input must not affect the Amount.
	in.SetUint64(7)
	if got := a.Wei().Uint64(); got != 42 {
		t.Errorf("wei = %d, want 42", got)
	}

	// Mutating the returned copy must not affect the Amount either.
	w := a.Wei()
	w.SetUint64(9)
	if got := a.Wei().Uint64(); got != 42 {
		t.Errorf("wei after copy mutation = %d, want 42", got)
	}

	if NewAmount(nil) != Zero {
		t.Error("NewAmount(nil) should be Zero")
	}
}

func TestZeroEther(t *testing.T) {
	if got := NewAmountFromUint64(0).Ether(); got != 0.0 {
		t.Errorf("Ether() = %v, want 0", got)
	}
}

func TestNewAmountFromEther(t *testing.T) {
	tests := []struct {
		eth  float64
		want string
	}{
		{0, "0"},
		{1.5, "1500000000000000000"},
		{1, "1000000000000000000"},
		{0.25, "250000000000000000"},
		// Above 2^64 wei: must not saturate.
		{100, "100000000000000000000"},
	}
	for _, tt := range tests {
		a, err := NewAmountFromEther(tt.eth)
		if err != nil {
			t.Fatalf("NewAmountFromEther(%v) failed: %v", tt.eth, err)
		}
		if got := a.Wei().Dec(); got != tt.want {
			t.Errorf("NewAmountFromEther(%v) = %s wei, want %s", tt.eth, got, tt.want)
		}
	}
}

func TestNewAmountFromEtherInvalid(t *testing.T) {
	for _, eth := range []float64{-1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := NewAmountFromEther(eth); !errors.Is(err, ErrInvalidEther) {
			t.Errorf("NewAmountFromEther(%v) error = %v, want ErrInvalidEther", eth, err)
		}
	}

	// 1e60 ETH is 1e78 wei, above 2^256 - 1 (~1.16e77).
	if _, err := NewAmountFromEther(1e60); !errors.Is(err, ErrOverflow) {
		t.Errorf("NewAmountFromEther(1e60) error = %v, want ErrOverflow", err)
	}
}

func TestEtherUsesFullWidth(t *testing.T) {
	// 1000 ETH is above 2^64 wei.
	a := mustParseWei(t, "1000000000000000000000")
	if got := a.Ether(); got != 1000 {
		t.Errorf("Ether() = %v, want 1000", got)
	}
	if got := mustParseWei(t, "2500000000000000000").Ether(); got != 2.5 {
		t.Errorf("Ether() = %v, want 2.5", got)
	}
}

func TestUint64(t *testing.T) {
	v, err := NewAmountFromUint64(math.MaxUint64).Uint64()
	if err != nil || v != math.MaxUint64 {
		t.Errorf("Uint64() = %d, %v; want %d, nil", v, err, uint64(math.MaxUint64))
	}

	wide := mustParseWei(t, "18446744073709551616") // 2^64
	if _, err := wide.Uint64(); !errors.Is(err, ErrOverflow) {
		t.Errorf("Uint64() error = %v, want ErrOverflow", err)
	}
}

func TestParseWeiInvalid(t *testing.T) {
	inputs := []string{
		"",
		"abc",
		"-1",
		"1.5",
		"+5",
		" 5 ",
		"5\n",
		"1_000",
		"1e18",
		// 2^256
		"115792089237316195423570985008687907853269984665640564039457584007913129639936",
	}
	for _, s := range inputs {
		if _, err := ParseWei(s); !errors.Is(err, ErrInvalidWei) {
			t.Errorf("ParseWei(%q) error = %v, want ErrInvalidWei", s, err)
		}
	}
}

func TestParseWeiLeadingZeros(t *testing.T) {
	if got := mustParseWei(t, "0007"); got != NewAmountFromUint64(7) {
		t.Errorf("ParseWei(\"0007\") = %s, want 7 wei", got)
	}
}

func TestBytesRoundTrip(t *testing.T) {
	a := mustParseWei(t, "1500000000000000000")
	b := a.Bytes()
	if len(b) != 32 {
		t.Fatalf("len(Bytes()) = %d, want 32", len(b))
	}
	got, err := AmountFromBytes(b)
	if err != nil {
		t.Fatalf("AmountFromBytes failed: %v", err)
	}
	if got != a {
		t.Errorf("AmountFromBytes = %s, want %s", got, a)
	}
	if _, err := AmountFromBytes(make([]byte, 33)); err == nil {
		t.Error("AmountFromBytes should reject 33 bytes")
	}
}

func TestToBig(t *testing.T) {
	want, _ := new(big.Int).SetString("1500000000000000000", 10)
	if got := mustParseWei(t, "1500000000000000000").ToBig(); got.Cmp(want) != 0 {
		t.Errorf("ToBig() = %s, want %s", got, want)
	}
}

func TestAdd(t *testing.T) {
	a := NewAmountFromUint64(math.MaxUint64)
	b := NewAmountFromUint64(1)
	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if got := sum.Wei().Dec(); got != "18446744073709551616" {
		t.Errorf("sum = %s, want 18446744073709551616", got)
	}

	// Operands are untouched.
	if a != NewAmountFromUint64(math.MaxUint64) || b != NewAmountFromUint64(1) {
		t.Error("Add mutated an operand")
	}

	// Exactly MaxAmount is still representable.
	almost, _ := MaxAmount.Sub(b)
	if got, err := almost.Add(b); err != nil || got != MaxAmount {
		t.Errorf("(max-1)+1 = %v, %v; want MaxAmount, nil", got, err)
	}
}

func TestAddOverflow(t *testing.T) {
	_, err := MaxAmount.Add(NewAmountFromUint64(1))
	if !errors.Is(err, ErrOverflow) {
		t.Fatalf("max+1 error = %v, want ErrOverflow", err)
	}
	want := "amount overflow: adding 1 to 115792089237316195423570985008687907853269984665640564039457584007913129639935"
	if err.Error() != want {
		t.Errorf("error message = %q, want %q", err.Error(), want)
	}
}

func TestSub(t *testing.T) {
	got, err := NewAmountFromUint64(10).Sub(NewAmountFromUint64(3))
	if err != nil {
		t.Fatalf("Sub failed: %v", err)
	}
	if got != NewAmountFromUint64(7) {
		t.Errorf("10-3 = %s, want 7 wei", got)
	}

	if got, err := NewAmountFromUint64(5).Sub(NewAmountFromUint64(5)); err != nil || !got.IsZero() {
		t.Errorf("5-5 = %v, %v; want 0, nil", got, err)
	}
}

func TestSubUnderflow(t *testing.T) {
	pairs := [][2]uint64{{0, 1}, {3, 10}, {math.MaxUint64 - 1, math.MaxUint64}}
	for _, p := range pairs {
		_, err := NewAmountFromUint64(p[0]).Sub(NewAmountFromUint64(p[1]))
		if !errors.Is(err, ErrOverflow) {
			t.Errorf("%d-%d error = %v, want ErrOverflow", p[0], p[1], err)
		}
	}
}

func TestMulScalar(t *testing.T) {
	got, err := NewAmountFromUint64(10).MulScalar(3)
	if err != nil {
		t.Fatalf("MulScalar failed: %v", err)
	}
	if got != NewAmountFromUint64(30) {
		t.Errorf("10*3 = %s, want 30 wei", got)
	}

	if _, err := MaxAmount.MulScalar(2); !errors.Is(err, ErrOverflow) {
		t.Errorf("max*2 error = %v, want ErrOverflow", err)
	}
	if got, err := MaxAmount.MulScalar(1); err != nil || got != MaxAmount {
		t.Errorf("max*1 = %v, %v; want MaxAmount, nil", got, err)
	}
	if got, err := MaxAmount.MulScalar(0); err != nil || !got.IsZero() {
		t.Errorf("max*0 = %v, %v; want 0, nil", got, err)
	}
}

func TestMul(t *testing.T) {
	got, err := WeiPerGWei.Mul(WeiPerGWei)
	if err != nil {
		t.Fatalf("Mul failed: %v", err)
	}
	if got != WeiPerEther {
		t.Errorf("1e9*1e9 = %s, want %s", got, WeiPerEther)
	}

	// (2^128) * (2^128) = 2^256 overflows.
	half := mustParseWei(t, "340282366920938463463374607431768211456")
	if _, err := half.Mul(half); !errors.Is(err, ErrOverflow) {
		t.Errorf("2^128*2^128 error = %v, want ErrOverflow", err)
	}
}

func TestDiv(t *testing.T) {
	tests := []struct {
		a, b, want uint64
	}{
		{30, 3, 10},
		{31, 3, 10},
		{2, 3, 0},
		{0, 7, 0},
	}
	for _, tt := range tests {
		got, err := NewAmountFromUint64(tt.a).Div(NewAmountFromUint64(tt.b))
		if err != nil {
			t.Fatalf("%d/%d failed: %v", tt.a, tt.b, err)
		}
		if got != NewAmountFromUint64(tt.want) {
			t.Errorf("%d/%d = %s, want %d wei", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestDivByZero(t *testing.T) {
	_, err := NewAmountFromUint64(5).Div(Zero)
	if !errors.Is(err, ErrOverflow) {
		t.Errorf("5/0 error = %v, want ErrOverflow", err)
	}
	if !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("5/0 error = %v, want ErrDivisionByZero", err)
	}
}

func TestOrdering(t *testing.T) {
	values := []Amount{
		Zero,
		NewAmountFromUint64(1),
		NewAmountFromUint64(math.MaxUint64),
		mustParseWei(t, "18446744073709551616"),
		MaxAmount,
	}
	for i, a := range values {
		for j, b := range values {
			lt, eq, gt := a.Lt(b), a.Eq(b), a.Gt(b)
			n := 0
			for _, v := range []bool{lt, eq, gt} {
				if v {
					n++
				}
			}
			if n != 1 {
				t.Errorf("values[%d] vs values[%d]: lt=%v eq=%v gt=%v", i, j, lt, eq, gt)
			}

			want := 0
			switch {
			case i < j:
				want = -1
			case i > j:
				want = 1
			}
			if got := a.Cmp(b); got != want {
				t.Errorf("values[%d].Cmp(values[%d]) = %d, want %d", i, j, got, want)
			}
			if eq != (a == b) {
				t.Errorf("values[%d]: Eq and == disagree", i)
			}
		}
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		wei  string
		want string
	}{
		{"1500000000000000000", "1.5 ETH (1500000000000000000 wei)"},
		{"0", "0 ETH (0 wei)"},
		{"1000000000000000000", "1 ETH (1000000000000000000 wei)"},
	}
	for _, tt := range tests {
		if got := mustParseWei(t, tt.wei).String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
