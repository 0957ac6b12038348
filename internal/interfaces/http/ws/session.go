package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"merovian.backend/internal/domain/entities"
	"merovian.backend/internal/infrastructure/realtime"
	"merovian.backend/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxFrameSize   = 4096
	sendBufferSize = 256
	// maxSubscriptions caps the live subscriptions of one socket.
	maxSubscriptions = 64
)

// session is one websocket connection and the hub subscriptions it owns.
type session struct {
	id     string
	userID uuid.UUID
	conn   *websocket.Conn
	hub    *realtime.Hub
	authz  *Authorizer
	ctx    context.Context

	send chan []byte
	done chan struct{}
	once sync.Once

	mu   sync.Mutex
	subs map[string]*realtime.Subscription
}

func newSession(ctx context.Context, conn *websocket.Conn, userID uuid.UUID, hub *realtime.Hub, authz *Authorizer) *session {
	return &session{
		id:     uuid.New().String(),
		userID: userID,
		conn:   conn,
		hub:    hub,
		authz:  authz,
		ctx:    ctx,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		subs:   make(map[string]*realtime.Subscription),
	}
}

// run blocks until the connection ends, then releases every subscription.
func (s *session) run() {
	go s.writePump()
	s.readPump()
	s.close()
}

func (s *session) close() {
	s.once.Do(func() {
		close(s.done)
		s.mu.Lock()
		for ref, sub := range s.subs {
			sub.Close()
			delete(s.subs, ref)
		}
		s.mu.Unlock()
		_ = s.conn.Close()
	})
}

func (s *session) readPump() {
	s.conn.SetReadLimit(maxFrameSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn(s.ctx, "realtime socket closed unexpectedly", zap.String("session_id", s.id), zap.Error(err))
			}
			return
		}

		var frame ClientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.reply(ServerFrame{Type: FrameError, Error: "malformed frame"})
			continue
		}
		switch frame.Type {
		case FrameSubscribe:
			s.subscribe(frame)
		case FrameUnsubscribe:
			s.unsubscribe(frame.Ref)
		default:
			s.reply(ServerFrame{Type: FrameError, Ref: frame.Ref, Error: "unknown frame type"})
		}
	}
}

func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.close()
	}()

	for {
		select {
		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}

func (s *session) subscribe(frame ClientFrame) {
	if frame.Ref == "" {
		s.reply(ServerFrame{Type: FrameError, Error: "ref is required"})
		return
	}
	switch frame.Event {
	case "", entities.ChangeAll, entities.ChangeInsert, entities.ChangeUpdate:
	default:
		s.reply(ServerFrame{Type: FrameError, Ref: frame.Ref, Error: "unknown event type"})
		return
	}
	filter, err := realtime.ParseFilter(frame.Filter)
	if err != nil {
		s.reply(ServerFrame{Type: FrameError, Ref: frame.Ref, Error: err.Error()})
		return
	}
	if err := s.authz.Authorize(s.ctx, s.userID, frame.Table, filter); err != nil {
		logger.Info(s.ctx, "realtime subscription denied",
			zap.String("table", frame.Table), zap.String("filter", filter.String()), zap.Error(err))
		s.reply(ServerFrame{Type: FrameError, Ref: frame.Ref, Error: err.Error()})
		return
	}

	s.mu.Lock()
	if _, exists := s.subs[frame.Ref]; exists {
		s.mu.Unlock()
		s.reply(ServerFrame{Type: FrameError, Ref: frame.Ref, Error: "ref already in use"})
		return
	}
	if len(s.subs) >= maxSubscriptions {
		s.mu.Unlock()
		s.reply(ServerFrame{Type: FrameError, Ref: frame.Ref, Error: "too many subscriptions"})
		return
	}
	ref := frame.Ref
	s.subs[ref] = s.hub.Subscribe(frame.Table, frame.Event, filter, func(ev entities.ChangeEvent) {
		s.deliver(ref, ev)
	})
	s.mu.Unlock()

	s.reply(ServerFrame{Type: FrameSubscribed, Ref: ref})
}

func (s *session) unsubscribe(ref string) {
	s.mu.Lock()
	sub, ok := s.subs[ref]
	delete(s.subs, ref)
	s.mu.Unlock()
	if ok {
		sub.Close()
	}
}

func (s *session) deliver(ref string, ev entities.ChangeEvent) {
	s.reply(ServerFrame{Type: FrameChange, Ref: ref, Change: &ev})
}

// reply queues a frame. A client that cannot keep up is disconnected so it
// resubscribes and reloads instead of missing changes.
func (s *session) reply(f ServerFrame) {
	msg, err := encodeFrame(f)
	if err != nil {
		logger.Error(s.ctx, "failed to encode realtime frame", zap.Error(err))
		return
	}
	select {
	case <-s.done:
	case s.send <- msg:
	default:
		logger.Warn(s.ctx, "realtime send buffer full, closing socket", zap.String("session_id", s.id))
		go s.close()
	}
}
