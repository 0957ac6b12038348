package usecases

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"merovian.backend/internal/domain/entities"
)

var (
	bitcoinAddressRe = regexp.MustCompile(`^(bc1[a-z0-9]{25,87}|[13][a-km-zA-HJ-NP-Z1-9]{25,34})$`)
	tronAddressRe    = regexp.MustCompile(`^T[1-9A-HJ-NP-Za-km-z]{33}$`)
	solanaAddressRe  = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)
)

// ValidAddress reports whether address is well formed for the asset's chain.
func ValidAddress(asset entities.Asset, address string) bool {
	address = strings.TrimSpace(address)
	switch asset.Chain.Type {
	case entities.ChainTypeEVM:
		return common.IsHexAddress(address)
	case entities.ChainTypeBitcoin:
		return bitcoinAddressRe.MatchString(address)
	case entities.ChainTypeTron:
		return tronAddressRe.MatchString(address)
	case entities.ChainTypeSVM:
		return solanaAddressRe.MatchString(address)
	default:
		return false
	}
}

// NormalizeAddress returns the EIP-55 checksum form for EVM addresses and
// the trimmed input otherwise.
func NormalizeAddress(asset entities.Asset, address string) string {
	address = strings.TrimSpace(address)
	if asset.Chain.Type == entities.ChainTypeEVM && common.IsHexAddress(address) {
		return common.HexToAddress(address).Hex()
	}
	return address
}
