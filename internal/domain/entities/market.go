package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketQuote is a 24h ticker snapshot for one symbol.
type MarketQuote struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	Volume        decimal.Decimal `json:"volume"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// MarketMovers is the list served to clients.
type MarketMovers struct {
	Quotes []MarketQuote `json:"quotes"`
	Source string        `json:"source"`
	AsOf   time.Time     `json:"asOf"`
}
