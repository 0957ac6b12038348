package realtime

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"merovian.backend/internal/domain/entities"
	"merovian.backend/internal/infrastructure/models"
	"merovian.backend/pkg/logger"
)

// PostgresChannel is the NOTIFY channel carrying change events.
const PostgresChannel = "realtime_changes"

const (
	// MaxNotifyPayload is the largest payload postgres accepts (it must be
	// shorter than 8000 bytes).
	MaxNotifyPayload = 7999
	// spilled notifications carry "ref:<realtime_events.id>"
	refPrefix = "ref:"
	// spilled rows outlive every listener's read
	refRetention = time.Hour
)

// notifyListener is the part of *pq.Listener the broker uses.
type notifyListener interface {
	Listen(channel string) error
	NotificationChannel() <-chan *pq.Notification
	Close() error
}

var newListener = func(connStr string, report pq.EventCallbackType) notifyListener {
	return pq.NewListener(connStr, 10*time.Second, time.Minute, report)
}

// PostgresBroker carries events with pg_notify and a lib/pq listener.
// Events over MaxNotifyPayload are stored in realtime_events and notified
// by reference.
type PostgresBroker struct {
	db      *gorm.DB
	connStr string
	notify  func(ctx context.Context, payload string) error

	mu sync.Mutex
	ln notifyListener
}

func NewPostgresBroker(db *gorm.DB, connStr string) *PostgresBroker {
	b := &PostgresBroker{db: db, connStr: connStr}
	b.notify = b.pgNotify
	return b
}

func (b *PostgresBroker) pgNotify(ctx context.Context, payload string) error {
	return b.db.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", PostgresChannel, payload).Error
}

func (b *PostgresBroker) Publish(ctx context.Context, ev entities.ChangeEvent) error {
	data, err := encodeEvent(ev)
	if err != nil {
		return err
	}
	if len(data) <= MaxNotifyPayload {
		return b.notify(ctx, string(data))
	}

	row := models.RealtimeEvent{ID: uuid.New(), Payload: data, CreatedAt: time.Now()}
	if err := b.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("store oversized event: %w", err)
	}
	if err := b.db.WithContext(ctx).Where("created_at < ?", time.Now().Add(-refRetention)).
		Delete(&models.RealtimeEvent{}).Error; err != nil {
		logger.Warn(ctx, "failed to prune realtime events", zap.Error(err))
	}
	return b.notify(ctx, refPrefix+row.ID.String())
}

// resolve turns a notification payload back into its event, loading
// spilled events from realtime_events.
func (b *PostgresBroker) resolve(ctx context.Context, payload string) (entities.ChangeEvent, error) {
	ref, ok := strings.CutPrefix(payload, refPrefix)
	if !ok {
		return decodeEvent([]byte(payload))
	}
	id, err := uuid.Parse(ref)
	if err != nil {
		return entities.ChangeEvent{}, fmt.Errorf("bad event reference %q: %w", ref, err)
	}
	var row models.RealtimeEvent
	if err := b.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return entities.ChangeEvent{}, fmt.Errorf("load event %s: %w", id, err)
	}
	return decodeEvent(row.Payload)
}

func (b *PostgresBroker) Run(ctx context.Context, hub *Hub) error {
	ln := newListener(b.connStr, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn(ctx, "postgres listener event", zap.Int("event", int(ev)), zap.Error(err))
		}
	})
	b.mu.Lock()
	b.ln = ln
	b.mu.Unlock()

	if err := ln.Listen(PostgresChannel); err != nil {
		return fmt.Errorf("listen %s: %w", PostgresChannel, err)
	}

	notifications := ln.NotificationChannel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case n, ok := <-notifications:
			if !ok {
				return nil
			}
			// nil after a reconnect
			if n == nil {
				continue
			}
			ev, err := b.resolve(ctx, n.Extra)
			if err != nil {
				logger.Warn(ctx, "dropping unreadable notification", zap.Error(err))
				continue
			}
			hub.Dispatch(ev)
		}
	}
}

func (b *PostgresBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ln == nil {
		return nil
	}
	return b.ln.Close()
}
