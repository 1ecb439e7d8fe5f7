package models

import "strings"

// Chain identifies the network a token contract lives on.
type Chain string

const (
	ChainSolana   Chain = "solana"
	ChainBase     Chain = "base"
	ChainEthereum Chain = "ethereum"
	ChainArbitrum Chain = "arbitrum"
	ChainOptimism Chain = "optimism"
)

// Chains lists every supported chain in display order.
var Chains = []Chain{ChainSolana, ChainBase, ChainEthereum, ChainArbitrum, ChainOptimism}

func (c Chain) Valid() bool {
	for _, known := range Chains {
		if c == known {
			return true
		}
	}
	return false
}

// IsEVM reports whether contract addresses on c are 0x-prefixed hex.
func (c Chain) IsEVM() bool {
	return c.Valid() && c != ChainSolana
}

// ParseChain lower-cases and trims s; the result may still be invalid.
func ParseChain(s string) Chain {
	return Chain(strings.ToLower(strings.TrimSpace(s)))
}
