package entities

// DepositAsset is an asset with the platform receiving address.
type DepositAsset struct {
	Asset
	Address string `json:"address"`
	QRPath  string `json:"qrPath"`
}
