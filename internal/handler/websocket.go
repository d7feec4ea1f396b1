package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"securechat/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	sendBufferSize = 64
)

// createUpgrader creates a WebSocket upgrader with the given allowed origins
func createUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowedMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		allowedMap[origin] = true
	}

	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return allowedMap[origin]
		},
	}
}

// session is one live WebSocket connection. It satisfies room.Session: the
// registry and pipeline only ever see the id and the Send side.
type session struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

func newSession(conn *websocket.Conn) *session {
	return &session{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

func (s *session) ID() string { return s.id }

// Send queues a frame for the write pump. It never blocks: a session that
// cannot keep up gets the frame dropped rather than stalling a broadcast.
func (s *session) Send(message []byte) error {
	select {
	case <-s.done:
		return errors.New("session closed")
	case s.send <- message:
		return nil
	default:
		return errors.New("session send buffer full")
	}
}

// writePump is the only goroutine that writes to the connection
func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case <-s.done:
			return
		case message := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// HandleWebSocket handles GET /ws. Each connection gets one session; its
// events are processed in arrival order, and any single event's failure is
// logged without tearing the session down.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := createUpgrader(h.Config.AllowedOrigins)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	s := newSession(conn)
	h.Registry.Register(s)
	log.Printf("[WebSocket] Session %s connected. Total sessions: %d", s.id, len(h.Registry.Sessions()))

	go s.writePump()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var event model.Event
		if err := conn.ReadJSON(&event); err != nil {
			break
		}
		h.dispatchEvent(s, event)
	}

	// 切断時は全ルームから退出させてからセッションを破棄する
	h.Registry.Unregister(s)
	close(s.done)
	conn.Close()
	log.Printf("[WebSocket] Session %s disconnected. Total sessions: %d", s.id, len(h.Registry.Sessions()))
}

func (h *Handler) dispatchEvent(s *session, event model.Event) {
	switch event.Type {
	case model.EventJoinChat:
		h.Registry.Join(s, event.ChatID)
		log.Printf("[WebSocket] Session %s joined conversation %s", s.id, event.ChatID)

	case model.EventLeaveChat:
		h.Registry.Leave(s, event.ChatID)
		log.Printf("[WebSocket] Session %s left conversation %s", s.id, event.ChatID)

	case model.EventSendMessage:
		if event.Message == nil {
			log.Printf("[WebSocket] ❌ sendMessage from session %s without a message payload", s.id)
			return
		}
		if err := h.Pipeline.Send(*event.Message); err != nil {
			log.Printf("[WebSocket] ❌ Pipeline error for session %s: %v", s.id, err)
		}

	default:
		log.Printf("[WebSocket] Unknown event type %q from session %s", event.Type, s.id)
	}
}
