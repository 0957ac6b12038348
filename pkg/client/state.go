package client

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"
	"merovian.backend/internal/domain/entities"
)

// ProfileState holds the latest known profile.
type ProfileState struct {
	mu      sync.RWMutex
	profile *entities.Profile
}

// Get returns a copy of the held profile, or nil.
func (s *ProfileState) Get() *entities.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	cp := *s.profile
	return &cp
}

// Set replaces the held profile unconditionally. Used after a fetch.
func (s *ProfileState) Set(p *entities.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == nil {
		s.profile = nil
		return
	}
	cp := *p
	s.profile = &cp
}

// Apply merges a pushed profile record. The record wins only when it is
// the same profile and carries a newer version; anything else is ignored.
func (s *ProfileState) Apply(record json.RawMessage) (bool, error) {
	var incoming entities.Profile
	if err := json.Unmarshal(record, &incoming); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil || s.profile.ID != incoming.ID {
		return false, nil
	}
	if incoming.Version <= s.profile.Version {
		return false, nil
	}
	s.profile = &incoming
	return true, nil
}

// MessageLog is a ticket thread kept in creation order without duplicates.
type MessageLog struct {
	mu   sync.Mutex
	seen map[uuid.UUID]struct{}
	msgs []entities.TicketMessage
}

// Append adds m unless its id is already present. Returns whether it was
// added.
func (l *MessageLog) Append(m entities.TicketMessage) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen == nil {
		l.seen = make(map[uuid.UUID]struct{})
	}
	if _, dup := l.seen[m.ID]; dup {
		return false
	}
	l.seen[m.ID] = struct{}{}

	// late arrivals slot in by created_at; equal stamps keep arrival order
	i := sort.Search(len(l.msgs), func(i int) bool {
		return l.msgs[i].CreatedAt.After(m.CreatedAt)
	})
	l.msgs = append(l.msgs, entities.TicketMessage{})
	copy(l.msgs[i+1:], l.msgs[i:])
	l.msgs[i] = m
	return true
}

// AppendRecord decodes a pushed ticket_messages record and appends it.
func (l *MessageLog) AppendRecord(record json.RawMessage) (bool, error) {
	var m entities.TicketMessage
	if err := json.Unmarshal(record, &m); err != nil {
		return false, err
	}
	return l.Append(m), nil
}

// Messages returns a snapshot of the thread.
func (l *MessageLog) Messages() []entities.TicketMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]entities.TicketMessage, len(l.msgs))
	copy(out, l.msgs)
	return out
}

func (l *MessageLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.msgs)
}
