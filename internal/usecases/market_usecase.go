package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"merovian.backend/internal/domain/entities"
	"merovian.backend/pkg/logger"
	"merovian.backend/pkg/metrics"
)

const (
	MarketSourceLive   = "live"
	MarketSourceCache  = "cache"
	MarketSourceStatic = "static"
)

// QuoteCache stores the last good movers list.
type QuoteCache interface {
	Load(ctx context.Context) (*entities.MarketMovers, bool, error)
	Store(ctx context.Context, movers *entities.MarketMovers, ttl time.Duration) error
}

// staticMovers is served when the feed and the cache are both unavailable.
var staticMovers = []entities.MarketQuote{
	{Symbol: "BTCUSDT", Name: "Bitcoin", Price: decimal.RequireFromString("65438.96"), ChangePercent: decimal.RequireFromString("0.37")},
	{Symbol: "ETHUSDT", Name: "Ethereum", Price: decimal.RequireFromString("2680.50"), ChangePercent: decimal.RequireFromString("-1.42")},
	{Symbol: "SOLUSDT", Name: "Solana", Price: decimal.RequireFromString("98.75"), ChangePercent: decimal.RequireFromString("5.67")},
	{Symbol: "BNBUSDT", Name: "BNB", Price: decimal.RequireFromString("615.00"), ChangePercent: decimal.RequireFromString("1.23")},
	{Symbol: "ADAUSDT", Name: "Cardano", Price: decimal.RequireFromString("0.520"), ChangePercent: decimal.RequireFromString("0.85")},
	{Symbol: "DOGEUSDT", Name: "Dogecoin", Price: decimal.RequireFromString("0.7705"), ChangePercent: decimal.RequireFromString("-0.42")},
	{Symbol: "XRPUSDT", Name: "Ripple", Price: decimal.RequireFromString("2.09"), ChangePercent: decimal.RequireFromString("1.15")},
}

// MarketUsecase serves the market movers list.
type MarketUsecase struct {
	feed     MarketFeed
	cache    QuoteCache
	symbols  []string
	cacheTTL time.Duration

	mu   sync.RWMutex
	last *entities.MarketMovers
}

func NewMarketUsecase(feed MarketFeed, cache QuoteCache, symbols []string, cacheTTL time.Duration) *MarketUsecase {
	return &MarketUsecase{feed: feed, cache: cache, symbols: symbols, cacheTTL: cacheTTL}
}

// Movers returns cached quotes, refreshing from the feed on a miss.
func (u *MarketUsecase) Movers(ctx context.Context) (*entities.MarketMovers, error) {
	if u.cache != nil {
		movers, found, err := u.cache.Load(ctx)
		if err != nil {
			logger.Warn(ctx, "market cache read failed", zap.Error(err))
		}
		if found {
			movers.Source = MarketSourceCache
			return movers, nil
		}
	}
	return u.Refresh(ctx), nil
}

// Refresh pulls the feed and caches the result. On failure the previous
// live result, or the static snapshot, is returned.
func (u *MarketUsecase) Refresh(ctx context.Context) *entities.MarketMovers {
	quotes, err := u.feed.Fetch(ctx, u.symbols)
	if err != nil || len(quotes) == 0 {
		metrics.RecordMarketFetch("error")
		logger.Warn(ctx, "market feed unavailable, serving fallback", zap.Error(err))
		return u.fallback()
	}
	metrics.RecordMarketFetch("ok")

	movers := &entities.MarketMovers{Quotes: quotes, Source: MarketSourceLive, AsOf: time.Now().UTC()}
	u.mu.Lock()
	u.last = movers
	u.mu.Unlock()

	if u.cache != nil {
		if err := u.cache.Store(ctx, movers, u.cacheTTL); err != nil {
			logger.Warn(ctx, "market cache write failed", zap.Error(err))
		}
	}
	return movers
}

func (u *MarketUsecase) fallback() *entities.MarketMovers {
	u.mu.RLock()
	last := u.last
	u.mu.RUnlock()
	if last != nil {
		cp := *last
		cp.Source = MarketSourceCache
		return &cp
	}

	quotes := make([]entities.MarketQuote, len(staticMovers))
	copy(quotes, staticMovers)
	return &entities.MarketMovers{Quotes: quotes, Source: MarketSourceStatic, AsOf: time.Now().UTC()}
}
