package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"merovian.backend/internal/domain/entities"
	"merovian.backend/pkg/logger"
)

const (
	realtimePath      = "/realtime/v1/websocket"
	realtimeWriteWait = 10 * time.Second
)

// ErrRealtimeClosed is returned once the socket is gone.
var ErrRealtimeClosed = errors.New("realtime connection closed")

type clientFrame struct {
	Type   string              `json:"type"`
	Ref    string              `json:"ref"`
	Table  string              `json:"table,omitempty"`
	Event  entities.ChangeType `json:"event,omitempty"`
	Filter string              `json:"filter,omitempty"`
}

type serverFrame struct {
	Type   string                `json:"type"`
	Ref    string                `json:"ref,omitempty"`
	Change *entities.ChangeEvent `json:"change,omitempty"`
	Error  string                `json:"error,omitempty"`
}

// ChangeHandler receives events for one channel, in delivery order, on the
// bridge's read goroutine.
type ChangeHandler func(entities.ChangeEvent)

// Realtime is a websocket bridge to the change feed. Each Channel is one
// server side subscription.
type Realtime struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	mu       sync.Mutex
	nextRef  uint64
	channels map[string]*Channel
	pending  map[string]chan error
	closed   bool
	err      error

	done      chan struct{}
	closeOnce sync.Once
}

// Channel is a live subscription. Close is idempotent.
type Channel struct {
	ref       string
	table     string
	rt        *Realtime
	handler   ChangeHandler
	closeOnce sync.Once
}

var dialer = websocket.DefaultDialer

// DialRealtime opens the socket with token as the access token.
func DialRealtime(ctx context.Context, baseURL, token string) (*Realtime, error) {
	u, err := realtimeURL(baseURL, token)
	if err != nil {
		return nil, err
	}
	conn, resp, err := dialer.DialContext(ctx, u, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, &APIError{Status: resp.StatusCode, Message: "Unauthorized"}
		}
		return nil, fmt.Errorf("dial realtime: %w", err)
	}

	rt := &Realtime{
		conn:     conn,
		channels: make(map[string]*Channel),
		pending:  make(map[string]chan error),
		done:     make(chan struct{}),
	}
	go rt.readLoop()
	return rt, nil
}

// Realtime opens a bridge with the client's access token.
func (c *Client) Realtime(ctx context.Context) (*Realtime, error) {
	token := c.Credentials().AccessToken
	if token == "" {
		return nil, errors.New("realtime needs a token login, sessions are not accepted on the socket")
	}
	return DialRealtime(ctx, c.baseURL, token)
}

func realtimeURL(baseURL, token string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + realtimePath
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Channel subscribes to table rows. event is INSERT, UPDATE or "*" (empty
// means both); filter is "column=eq.value" or empty.
func (r *Realtime) Channel(ctx context.Context, table string, event entities.ChangeType, filter string, handler ChangeHandler) (*Channel, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRealtimeClosed
	}
	r.nextRef++
	ref := strconv.FormatUint(r.nextRef, 10)
	ch := &Channel{ref: ref, table: table, rt: r, handler: handler}
	ack := make(chan error, 1)
	r.channels[ref] = ch
	r.pending[ref] = ack
	r.mu.Unlock()

	err := r.write(clientFrame{Type: "subscribe", Ref: ref, Table: table, Event: event, Filter: filter})
	if err == nil {
		select {
		case err = <-ack:
		case <-ctx.Done():
			err = ctx.Err()
			// the subscribe frame is on the wire and the server may still
			// accept it; frames are handled in order, so this releases it
			r.forget(ref)
			_ = r.write(clientFrame{Type: "unsubscribe", Ref: ref})
			return nil, err
		case <-r.done:
			err = ErrRealtimeClosed
		}
	}
	if err != nil {
		r.forget(ref)
		return nil, err
	}
	return ch, nil
}

// Close releases the server subscription.
func (ch *Channel) Close() error {
	var err error
	ch.closeOnce.Do(func() {
		if !ch.rt.forget(ch.ref) {
			return
		}
		err = ch.rt.write(clientFrame{Type: "unsubscribe", Ref: ch.ref})
		if errors.Is(err, ErrRealtimeClosed) {
			err = nil
		}
	})
	return err
}

// Close closes every channel and the socket.
func (r *Realtime) Close() error {
	var err error
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		r.channels = map[string]*Channel{}
		r.mu.Unlock()

		r.writeMu.Lock()
		_ = r.conn.SetWriteDeadline(time.Now().Add(realtimeWriteWait))
		_ = r.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		r.writeMu.Unlock()
		err = r.conn.Close()
		<-r.done
	})
	return err
}

// Done is closed when the read loop exits.
func (r *Realtime) Done() <-chan struct{} {
	return r.done
}

// Err is the reason the read loop exited, nil after a local Close.
func (r *Realtime) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Active returns the number of open channels.
func (r *Realtime) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.channels)
}

func (r *Realtime) forget(ref string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, ref)
	if _, ok := r.channels[ref]; !ok {
		return false
	}
	delete(r.channels, ref)
	return true
}

func (r *Realtime) write(f clientFrame) error {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return ErrRealtimeClosed
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	_ = r.conn.SetWriteDeadline(time.Now().Add(realtimeWriteWait))
	if err := r.conn.WriteJSON(f); err != nil {
		return fmt.Errorf("%w: %v", ErrRealtimeClosed, err)
	}
	return nil
}

func (r *Realtime) readLoop() {
	defer close(r.done)
	for {
		_, data, err := r.conn.ReadMessage()
		if err != nil {
			r.mu.Lock()
			if !r.closed {
				r.err = err
				r.closed = true
			}
			for ref, ack := range r.pending {
				ack <- ErrRealtimeClosed
				delete(r.pending, ref)
			}
			r.mu.Unlock()
			return
		}

		var f serverFrame
		if err := json.Unmarshal(data, &f); err != nil {
			logger.Warn(context.Background(), "realtime: malformed frame", zap.Error(err))
			continue
		}
		r.route(f)
	}
}

func (r *Realtime) route(f serverFrame) {
	r.mu.Lock()
	ack, waiting := r.pending[f.Ref]
	ch := r.channels[f.Ref]
	if waiting && (f.Type == "subscribed" || f.Type == "error") {
		delete(r.pending, f.Ref)
	}
	r.mu.Unlock()

	switch f.Type {
	case "subscribed":
		if waiting {
			ack <- nil
		}
	case "error":
		if waiting {
			ack <- errors.New(f.Error)
			return
		}
		logger.Warn(context.Background(), "realtime: server error", zap.String("ref", f.Ref), zap.String("error", f.Error))
	case "change":
		if ch != nil && f.Change != nil && ch.handler != nil {
			ch.handler(*f.Change)
		}
	}
}
