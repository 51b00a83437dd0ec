package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressSize is the length of an account address in bytes.
const AddressSize = 20

// Address identifies a ledger account.
type Address [AddressSize]byte

// ZeroAddress is the all-zeroes address. The ledger never holds a balance for it.
var ZeroAddress Address

// AddressFromBytes creates an Address from a byte slice. Returns error if len != 20.
func AddressFromBytes(b []byte) (Address, error) {
	if len(b) != AddressSize {
		return Address{}, fmt.Errorf("address must be %d bytes, got %d", AddressSize, len(b))
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// AddressFromHex parses a hex-encoded address, with or without a 0x prefix.
func AddressFromHex(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, fmt.Errorf("invalid hex: %w", err)
	}
	return AddressFromBytes(b)
}

// Bytes returns the address as a byte slice.
func (a Address) Bytes() []byte {
	return a[:]
}

// Hex returns the lowercase 0x-prefixed hex string.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return a.Hex()
}

// IsZero returns true if every byte is 0x00.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}
