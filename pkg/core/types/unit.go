package types

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Unit is a denomination of ether, expressed as the power of ten of wei it
// represents.
type Unit uint8

// These are the ether denominations, named as in go-ethereum's params package.
const (
	Wei   Unit = 0
	GWei  Unit = 9
	Ether Unit = EtherDecimals
)

var (
	// WeiPerGWei is 10^9 wei.
	WeiPerGWei = mustMultiplier(GWei)
	// WeiPerEther is 10^18 wei.
	WeiPerEther = mustMultiplier(Ether)
)

func (u Unit) String() string {
	switch u {
	case Wei:
		return "wei"
	case GWei:
		return "gwei"
	case Ether:
		return "ETH"
	default:
		return fmt.Sprintf("1e%d wei", uint8(u))
	}
}

// maxUnit is the largest exponent with 10^u below 2^256.
const maxUnit Unit = 77

// Multiplier returns the number of wei in one u, or ErrOverflow when 10^u does
// not fit in 256 bits.
func (u Unit) Multiplier() (Amount, error) {
	if u > maxUnit {
		return Zero, fmt.Errorf("%w: unit %s exceeds 10^%d wei", ErrOverflow, u, uint8(maxUnit))
	}
	var a Amount
	a.wei.Exp(uint256.NewInt(10), uint256.NewInt(uint64(u)))
	return a, nil
}

// NewAmountFromUnit returns exactly n*10^u wei. Unlike NewAmountFromEther it
// never goes through floating point.
func NewAmountFromUnit(n uint64, u Unit) (Amount, error) {
	m, err := u.Multiplier()
	if err != nil {
		return Zero, err
	}
	return m.MulScalar(n)
}

func mustMultiplier(u Unit) Amount {
	m, err := u.Multiplier()
	if err != nil {
		panic(err)
	}
	return m
}
