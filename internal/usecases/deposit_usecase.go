package usecases

import (
	"context"
	"fmt"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"merovian.backend/internal/domain/entities"
	domainerrors "merovian.backend/internal/domain/errors"
	"merovian.backend/pkg/logger"
)

const (
	DefaultQRSize = 256
	MinQRSize     = 128
	MaxQRSize     = 1024
)

var encodeQR = func(content string, size int) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, size)
}

// DepositUsecase serves receiving addresses. It never writes.
type DepositUsecase struct {
	assets []entities.DepositAsset
	byCode map[string]entities.DepositAsset
}

// NewDepositUsecase builds the catalogue from configured addresses. A
// malformed EVM address is a startup error; other chains are only warned.
func NewDepositUsecase(addresses map[string]string) (*DepositUsecase, error) {
	u := &DepositUsecase{byCode: make(map[string]entities.DepositAsset)}
	for _, asset := range entities.SupportedAssets {
		addr, ok := addresses[asset.Code]
		if !ok || addr == "" {
			continue
		}
		if !ValidAddress(asset, addr) {
			if asset.Chain.Type == entities.ChainTypeEVM {
				return nil, fmt.Errorf("deposit address for %s is not a valid EVM address", asset.Code)
			}
			logger.Warn(context.Background(), "deposit address looks malformed",
				zap.String("asset", asset.Code), zap.String("address", addr))
		}
		da := entities.DepositAsset{
			Asset:   asset,
			Address: NormalizeAddress(asset, addr),
			QRPath:  "/api/v1/deposit/assets/" + asset.Code + "/qr",
		}
		u.assets = append(u.assets, da)
		u.byCode[asset.Code] = da
	}
	return u, nil
}

// ListAssets returns every asset with a configured address.
func (u *DepositUsecase) ListAssets() []entities.DepositAsset {
	out := make([]entities.DepositAsset, len(u.assets))
	copy(out, u.assets)
	return out
}

func (u *DepositUsecase) GetAsset(code string) (entities.DepositAsset, error) {
	asset, ok := entities.LookupAsset(code)
	if !ok {
		return entities.DepositAsset{}, domainerrors.NotFound("Unsupported asset")
	}
	da, ok := u.byCode[asset.Code]
	if !ok {
		return entities.DepositAsset{}, domainerrors.NotFound("Deposits are not enabled for this asset")
	}
	return da, nil
}

// QRCode renders the receiving address of code as a PNG. size is clamped.
func (u *DepositUsecase) QRCode(code string, size int) ([]byte, error) {
	da, err := u.GetAsset(code)
	if err != nil {
		return nil, err
	}
	switch {
	case size == 0:
		size = DefaultQRSize
	case size < MinQRSize:
		size = MinQRSize
	case size > MaxQRSize:
		size = MaxQRSize
	}
	png, err := encodeQR(da.Address, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
