package realtime

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"merovian.backend/internal/domain/entities"
	"merovian.backend/pkg/logger"
	"merovian.backend/pkg/metrics"
)

// Handler receives matching change events. It runs on the dispatching
// goroutine and must not block.
type Handler func(entities.ChangeEvent)

// Hub fans committed change events out to in-process subscriptions.
type Hub struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]*Subscription
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]*Subscription)}
}

// Subscription is a live registration. Close releases it.
type Subscription struct {
	id      uint64
	hub     *Hub
	table   string
	event   entities.ChangeType
	filter  Filter
	handler Handler
	once    sync.Once
}

func (s *Subscription) Table() string { return s.table }

func (s *Subscription) Event() entities.ChangeType { return s.event }

func (s *Subscription) Filter() Filter { return s.filter }

// Close unregisters the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s.id)
		s.hub.mu.Unlock()
		metrics.SubscriptionClosed()
	})
}

func (s *Subscription) matches(ev entities.ChangeEvent) bool {
	if s.table != ev.Table {
		return false
	}
	if s.event != entities.ChangeAll && s.event != ev.Type {
		return false
	}
	return s.filter.Matches(ev)
}

// Subscribe registers handler for events on table of the given type.
// An empty event means every type.
func (h *Hub) Subscribe(table string, event entities.ChangeType, filter Filter, handler Handler) *Subscription {
	if event == "" {
		event = entities.ChangeAll
	}
	h.mu.Lock()
	h.nextID++
	sub := &Subscription{
		id:      h.nextID,
		hub:     h,
		table:   table,
		event:   event,
		filter:  filter,
		handler: handler,
	}
	h.subs[sub.id] = sub
	h.mu.Unlock()

	metrics.SubscriptionOpened()
	return sub
}

// Dispatch delivers ev to every matching subscription.
func (h *Hub) Dispatch(ev entities.ChangeEvent) {
	h.mu.RLock()
	matched := make([]*Subscription, 0, 4)
	for _, sub := range h.subs {
		if sub.matches(ev) {
			matched = append(matched, sub)
		}
	}
	h.mu.RUnlock()

	metrics.RecordRealtimeEvent(ev.Table, string(ev.Type))
	logger.Debug(context.Background(), "realtime dispatch",
		zap.String("table", ev.Table),
		zap.String("type", string(ev.Type)),
		zap.Int("subscribers", len(matched)),
	)
	for _, sub := range matched {
		sub.handler(ev)
	}
}

// Count returns the number of live subscriptions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
