package config

import (
	"fmt"

	"github.com/chronodrachma/ethamount/pkg/core/types"
)

// GenesisAlloc credits an account at ledger initialization. Wei is an exact
// base-10 wei count; never a float.
type GenesisAlloc struct {
	Address string
	Wei     string
}

// NetworkConfig holds the network-wide parameters.
type NetworkConfig struct {
	Name    string
	Symbol  string
	DataDir string // Empty means an in-memory ledger.
	RPCAddr string
	Genesis []GenesisAlloc
}

// DevnetConfig defines the parameters for a local development ledger.
var DevnetConfig = NetworkConfig{
	Name:    "ethamount-devnet",
	Symbol:  "ETH",
	DataDir: "",
	RPCAddr: ":8545",
	Genesis: []GenesisAlloc{
		// 1000 ETH to a well-known dev account.
		{Address: "0x00000000000000000000000000000000000000aa", Wei: "1000000000000000000000"},
	},
}

// Allocations parses the genesis allocations. Repeated addresses are summed
// with checked arithmetic.
func (c NetworkConfig) Allocations() (map[types.Address]types.Amount, error) {
	out := make(map[types.Address]types.Amount, len(c.Genesis))
	for i, g := range c.Genesis {
		addr, err := types.AddressFromHex(g.Address)
		if err != nil {
			return nil, fmt.Errorf("genesis[%d] address: %w", i, err)
		}
		amount, err := types.ParseWei(g.Wei)
		if err != nil {
			return nil, fmt.Errorf("genesis[%d] wei: %w", i, err)
		}
		sum, err := out[addr].Add(amount)
		if err != nil {
			return nil, fmt.Errorf("genesis[%d] %s: %w", i, addr, err)
		}
		out[addr] = sum
	}
	return out, nil
}
