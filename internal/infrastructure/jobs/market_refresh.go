package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
	"merovian.backend/internal/domain/entities"
	"merovian.backend/pkg/logger"
)

// MarketRefresher is the part of the market usecase the job drives.
type MarketRefresher interface {
	Refresh(ctx context.Context) *entities.MarketMovers
}

var newScheduler = func() (gocron.Scheduler, error) { return gocron.NewScheduler() }

// MarketRefreshJob keeps the market movers cache warm.
type MarketRefreshJob struct {
	market    MarketRefresher
	interval  time.Duration
	scheduler gocron.Scheduler
}

func NewMarketRefreshJob(market MarketRefresher, interval time.Duration) *MarketRefreshJob {
	if interval <= 0 {
		interval = time.Minute
	}
	return &MarketRefreshJob{market: market, interval: interval}
}

// Start schedules the refresh and runs it once immediately.
func (j *MarketRefreshJob) Start() error {
	scheduler, err := newScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(j.interval),
		gocron.NewTask(func(ctx context.Context) { j.refresh(ctx) }),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return fmt.Errorf("schedule market refresh: %w", err)
	}

	scheduler.Start()
	j.scheduler = scheduler
	logger.Info(context.Background(), "market refresh job started", zap.Duration("interval", j.interval))
	return nil
}

// Stop shuts the scheduler down, waiting for a running refresh.
func (j *MarketRefreshJob) Stop() error {
	if j.scheduler == nil {
		return nil
	}
	err := j.scheduler.Shutdown()
	j.scheduler = nil
	return err
}

func (j *MarketRefreshJob) refresh(ctx context.Context) {
	movers := j.market.Refresh(ctx)
	if movers == nil {
		return
	}
	logger.Debug(ctx, "market movers refreshed",
		zap.String("source", movers.Source),
		zap.Int("quotes", len(movers.Quotes)),
	)
}
