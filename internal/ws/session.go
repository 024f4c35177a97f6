package ws

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Session is one live client connection, bound to at most one user at a
// time. The registry owns the binding; routing code only ever looks a
// session up, never constructs or destroys one.
type Session interface {
	ID() string
	WriteJSON(v any) error
	Close() error
}

type wsSession struct {
	id   string
	mu   sync.Mutex
	conn *websocket.Conn
}

func newSession(conn *websocket.Conn) *wsSession {
	return &wsSession{
		id:   uuid.NewString(),
		conn: conn,
	}
}

func (s *wsSession) ID() string { return s.id }

// WriteJSON serializes writes; pushes can originate from any connection's
// handler, not just this session's own read loop.
func (s *wsSession) WriteJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

func (s *wsSession) Close() error {
	return s.conn.Close()
}
