package entities

import "strings"

// ChainType groups networks by address format.
type ChainType string

const (
	ChainTypeEVM     ChainType = "EVM"
	ChainTypeBitcoin ChainType = "BITCOIN"
	ChainTypeTron    ChainType = "TRON"
	ChainTypeSVM     ChainType = "SVM"
)

// Chain is a network an asset moves on.
type Chain struct {
	Name    string    `json:"name"`
	Type    ChainType `json:"type"`
	ChainID string    `json:"chainId"`
}

// GetCAIP2ID returns the CAIP-2 style identifier of the network.
func (c *Chain) GetCAIP2ID() string {
	id := strings.TrimSpace(c.ChainID)
	if strings.Contains(id, ":") {
		return id
	}
	switch c.Type {
	case ChainTypeEVM:
		return "eip155:" + id
	case ChainTypeBitcoin:
		return "bip122:" + id
	case ChainTypeTron:
		return "tron:" + id
	case ChainTypeSVM:
		return "solana:" + id
	default:
		return id
	}
}

var (
	ChainBitcoin  = Chain{Name: "Bitcoin", Type: ChainTypeBitcoin, ChainID: "000000000019d6689c085ae165831e93"}
	ChainEthereum = Chain{Name: "Ethereum (ERC20)", Type: ChainTypeEVM, ChainID: "1"}
	ChainTron     = Chain{Name: "Tron (TRC20)", Type: ChainTypeTron, ChainID: "mainnet"}
	ChainSolana   = Chain{Name: "Solana", Type: ChainTypeSVM, ChainID: "5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp"}
)

// Asset is a coin code accepted for deposits and withdrawals.
type Asset struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Chain  Chain  `json:"chain"`
}

// SupportedAssets lists every coin code in display order.
var SupportedAssets = []Asset{
	{Code: "btc", Name: "Bitcoin", Symbol: "BTC", Chain: ChainBitcoin},
	{Code: "eth", Name: "Ethereum", Symbol: "ETH", Chain: ChainEthereum},
	{Code: "usdt_erc20", Name: "Tether USD (ERC20)", Symbol: "USDT", Chain: ChainEthereum},
	{Code: "usdt_trc20", Name: "Tether USD (TRC20)", Symbol: "USDT", Chain: ChainTron},
	{Code: "usdc", Name: "USD Coin", Symbol: "USDC", Chain: ChainEthereum},
	{Code: "sol", Name: "Solana", Symbol: "SOL", Chain: ChainSolana},
}

// LookupAsset finds an asset by its case insensitive code.
func LookupAsset(code string) (Asset, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, a := range SupportedAssets {
		if a.Code == code {
			return a, true
		}
	}
	return Asset{}, false
}
