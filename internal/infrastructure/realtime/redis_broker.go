package realtime

import (
	"context"
	"strings"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"merovian.backend/internal/domain/entities"
	"merovian.backend/pkg/logger"
)

const redisChannelPrefix = "realtime:"

// RedisBroker carries events over redis pub/sub, one channel per table.
type RedisBroker struct {
	client *goredis.Client
}

func NewRedisBroker(client *goredis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

func (b *RedisBroker) Publish(ctx context.Context, ev entities.ChangeEvent) error {
	data, err := encodeEvent(ev)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, redisChannelPrefix+ev.Table, data).Err()
}

func (b *RedisBroker) Run(ctx context.Context, hub *Hub) error {
	pubsub := b.client.PSubscribe(ctx, redisChannelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			ev, err := decodeEvent([]byte(msg.Payload))
			if err != nil {
				logger.Warn(ctx, "dropping malformed realtime message",
					zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			if ev.Table == "" {
				ev.Table = strings.TrimPrefix(msg.Channel, redisChannelPrefix)
			}
			hub.Dispatch(ev)
		}
	}
}

func (b *RedisBroker) Close() error { return nil }
