package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"merovian.backend/internal/domain/entities"
	"merovian.backend/pkg/logger"
)

// Broker moves committed change events between server instances and feeds
// them into the local hub.
type Broker interface {
	Publish(ctx context.Context, ev entities.ChangeEvent) error
	// Run delivers events to hub until ctx is done.
	Run(ctx context.Context, hub *Hub) error
	Close() error
}

// Publisher adapts a Broker to the usecase port and logs failures. Events
// are published after commit, so a failure never undoes a write.
type Publisher struct {
	broker Broker
}

func NewPublisher(b Broker) *Publisher {
	return &Publisher{broker: b}
}

func (p *Publisher) Publish(ctx context.Context, ev entities.ChangeEvent) {
	if err := p.broker.Publish(ctx, ev); err != nil {
		logger.Error(ctx, "failed to publish change event",
			zap.String("table", ev.Table),
			zap.String("type", string(ev.Type)),
			zap.Error(err),
		)
	}
}

// MemoryBroker dispatches straight into the local hub. Single instance only.
type MemoryBroker struct {
	hub *Hub
}

func NewMemoryBroker(hub *Hub) *MemoryBroker {
	return &MemoryBroker{hub: hub}
}

func (b *MemoryBroker) Publish(_ context.Context, ev entities.ChangeEvent) error {
	b.hub.Dispatch(ev)
	return nil
}

func (b *MemoryBroker) Run(ctx context.Context, _ *Hub) error {
	<-ctx.Done()
	return nil
}

func (b *MemoryBroker) Close() error { return nil }

func encodeEvent(ev entities.ChangeEvent) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode change event: %w", err)
	}
	return data, nil
}

func decodeEvent(payload []byte) (entities.ChangeEvent, error) {
	var ev entities.ChangeEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return ev, fmt.Errorf("decode change event: %w", err)
	}
	return ev, nil
}
