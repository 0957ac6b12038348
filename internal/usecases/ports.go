package usecases

import (
	"context"
	"time"

	"go.uber.org/zap"
	"merovian.backend/internal/domain/entities"
	"merovian.backend/pkg/logger"
	"merovian.backend/pkg/redis"
)

// EventPublisher emits committed row changes to realtime subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, ev entities.ChangeEvent)
}

// ObjectStorage uploads a blob and returns its public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, path, contentType string, data []byte) (string, error)
}

// SessionStore keeps server side login sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, sessionID string, data *redis.SessionData, expiration time.Duration) error
	DeleteSession(ctx context.Context, sessionID string) error
}

// MarketFeed fetches live quotes for symbols.
type MarketFeed interface {
	Fetch(ctx context.Context, symbols []string) ([]entities.MarketQuote, error)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, entities.ChangeEvent) {}

// publish builds and emits an event. Build failures are logged only; the
// write they describe has already committed.
func publish(ctx context.Context, pub EventPublisher, build func() (entities.ChangeEvent, error)) {
	ev, err := build()
	if err != nil {
		logger.Error(ctx, "failed to build change event", zap.Error(err))
		return
	}
	pub.Publish(ctx, ev)
}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}
