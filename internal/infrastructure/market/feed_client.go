package market

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"merovian.backend/internal/domain/entities"
)

var symbolNames = map[string]string{
	"BTCUSDT":  "Bitcoin",
	"ETHUSDT":  "Ethereum",
	"SOLUSDT":  "Solana",
	"BNBUSDT":  "BNB",
	"ADAUSDT":  "Cardano",
	"DOGEUSDT": "Dogecoin",
	"XRPUSDT":  "Ripple",
}

// TickerFeed reads 24h tickers from a Binance compatible endpoint.
type TickerFeed struct {
	client  *resty.Client
	baseURL string
}

type rawTicker struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
	QuoteVolume        string `json:"quoteVolume"`
	CloseTime          int64  `json:"closeTime"`
}

func NewTickerFeed(baseURL string, opts ...func(*resty.Client)) (*TickerFeed, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("baseURL is required")
	}

	client := resty.New().
		SetHeader("Accept", "application/json").
		SetTimeout(10 * time.Second)

	for _, opt := range opts {
		opt(client)
	}

	return &TickerFeed{client: client, baseURL: baseURL}, nil
}

// Fetch returns quotes in the order of symbols. Unknown or malformed rows
// are skipped.
func (f *TickerFeed) Fetch(ctx context.Context, symbols []string) ([]entities.MarketQuote, error) {
	query, err := json.Marshal(symbols)
	if err != nil {
		return nil, err
	}

	var payload []rawTicker
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParam("symbols", string(query)).
		SetResult(&payload).
		Get(f.baseURL)
	if err != nil {
		return nil, fmt.Errorf("fetch tickers: %w", err)
	}
	if resp.StatusCode() >= 400 {
		return nil, fmt.Errorf("feed responded with status %d", resp.StatusCode())
	}

	bySymbol := make(map[string]rawTicker, len(payload))
	for _, t := range payload {
		bySymbol[strings.ToUpper(t.Symbol)] = t
	}

	quotes := make([]entities.MarketQuote, 0, len(symbols))
	for _, sym := range symbols {
		t, ok := bySymbol[strings.ToUpper(sym)]
		if !ok {
			continue
		}
		price, err := decimal.NewFromString(t.LastPrice)
		if err != nil {
			continue
		}
		change, _ := decimal.NewFromString(t.PriceChangePercent)
		volume, _ := decimal.NewFromString(t.QuoteVolume)

		updated := time.Now().UTC()
		if t.CloseTime > 0 {
			updated = time.UnixMilli(t.CloseTime).UTC()
		}
		quotes = append(quotes, entities.MarketQuote{
			Symbol:        t.Symbol,
			Name:          displayName(t.Symbol),
			Price:         price,
			ChangePercent: change,
			Volume:        volume,
			UpdatedAt:     updated,
		})
	}
	return quotes, nil
}

func displayName(symbol string) string {
	if name, ok := symbolNames[strings.ToUpper(symbol)]; ok {
		return name
	}
	return strings.TrimSuffix(strings.ToUpper(symbol), "USDT")
}
