package client

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/zap"
	"merovian.backend/internal/domain/entities"
	"merovian.backend/pkg/logger"
)

type sessionAPI interface {
	User(ctx context.Context) (*entities.Identity, error)
	Profile(ctx context.Context) (*entities.Profile, error)
}

// ChannelOpener is the part of the realtime bridge a watcher needs.
type ChannelOpener interface {
	Channel(ctx context.Context, table string, event entities.ChangeType, filter string, handler ChangeHandler) (*Channel, error)
}

// Session is the single source of the signed in identity and profile.
// Loading is tracked apart from a nil profile so callers can tell "not yet
// known" from "no profile".
type Session struct {
	api   sessionAPI
	state ProfileState

	mu       sync.RWMutex
	identity *entities.Identity
	loading  bool
	onChange func(*entities.Profile)
}

func NewSession(api sessionAPI) *Session {
	return &Session{api: api}
}

// OnChange registers fn to run after every profile change, fetched or
// pushed.
func (s *Session) OnChange(fn func(*entities.Profile)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Load resolves the identity and then its profile. Without an identity the
// state is empty. A failed profile fetch is logged and leaves the profile
// nil; only transport level failures reading the identity are returned.
func (s *Session) Load(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	identity, err := s.api.User(ctx)
	if err != nil {
		s.mu.Lock()
		s.identity = nil
		s.mu.Unlock()
		s.state.Set(nil)
		if IsStatus(err, http.StatusUnauthorized) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	s.identity = identity
	s.mu.Unlock()

	s.fetchProfile(ctx)
	return nil
}

// Refresh re-reads the profile when an identity is present.
func (s *Session) Refresh(ctx context.Context) {
	if s.Identity() == nil {
		return
	}
	s.fetchProfile(ctx)
}

func (s *Session) fetchProfile(ctx context.Context) {
	profile, err := s.api.Profile(ctx)
	if err != nil {
		logger.Warn(ctx, "failed to load profile", zap.Error(err))
		profile = nil
	}
	s.state.Set(profile)
	s.notify()
}

// Watch keeps the profile current from pushed UPDATE events on the
// caller's own row. Close the returned channel to stop.
func (s *Session) Watch(ctx context.Context, rt ChannelOpener) (*Channel, error) {
	identity := s.Identity()
	if identity == nil {
		return nil, &APIError{Status: http.StatusUnauthorized, Message: "User not authenticated"}
	}
	return rt.Channel(ctx, entities.TableProfiles, entities.ChangeUpdate, "id=eq."+identity.ID.String(), func(ev entities.ChangeEvent) {
		applied, err := s.state.Apply(ev.Record)
		if err != nil {
			logger.Warn(ctx, "ignoring malformed profile event", zap.Error(err))
			return
		}
		if applied {
			s.notify()
		}
	})
}

func (s *Session) notify() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn(s.state.Get())
	}
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) Identity() *entities.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// Profile returns the cached profile or nil.
func (s *Session) Profile() *entities.Profile {
	return s.state.Get()
}

// Apply merges a pushed record into the cached profile.
func (s *Session) Apply(record []byte) (bool, error) {
	applied, err := s.state.Apply(record)
	if applied {
		s.notify()
	}
	return applied, err
}
