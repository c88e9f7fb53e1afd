package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("connection closed")
)

const writeWait = 5 * time.Second

// WSConn is an indirection over *websocket.Conn to ease testing.
type WSConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(mt int, data []byte) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	Close() error
}

// Subscriber is one WebSocket client listening on a room channel.
type Subscriber struct {
	ID   string
	conn WSConn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func NewSubscriber(id string, conn WSConn, buffer int) *Subscriber {
	if buffer <= 0 {
		buffer = 32
	}
	return &Subscriber{ID: id, conn: conn, send: make(chan []byte, buffer)}
}

func (s *Subscriber) TrySend(data []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	select {
	case s.send <- data:
	default:
		return ErrBackpressure
	}
	return nil
}

func (s *Subscriber) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.send)
	_ = s.conn.Close()
}

func (s *Subscriber) writePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-s.send:
			if !ok {
				return
			}
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "broadcast.sub").Str("sub", s.ID).Msg("writePump set deadline")
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "broadcast.sub").Str("sub", s.ID).Msg("writePump write error")
				return
			}
		}
	}
}

// readPump only answers pings; subscribers never mutate rooms over the socket.
func (s *Subscriber) readPump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Str("module", "broadcast.sub").Str("sub", s.ID).Msg("readPump read error")
			return
		}
		var env struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &env); err != nil {
			log.Warn().Err(err).Str("module", "broadcast.sub").Str("sub", s.ID).Msg("bad json")
			continue
		}
		if env.Type == "ping" {
			_ = s.TrySend([]byte(`{"type":"pong"}`))
		}
	}
}
