package ws

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/pariharkamal9829/interview-copilot/internal/relay"
)

const (
	readDeadline  = 60 * time.Second
	writeDeadline = 10 * time.Second
	pingInterval  = 54 * time.Second
)

// Handler upgrades HTTP requests and feeds frames into the relay hub.
type Handler struct {
	hub      *relay.Hub
	upgrader websocket.Upgrader
}

// New creates the websocket handler.
func New(hub *relay.Hub) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the websocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

// conn adapts a gorilla connection to relay.Conn. The hub loop and the
// ping loop both write, so writes are serialized here.
type conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *conn) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeDeadline))
	return c.ws.WriteJSON(v)
}

func (c *conn) Close() error {
	return c.ws.Close()
}

func (c *conn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeDeadline))
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsc, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}

	c := &conn{ws: wsc}
	id := h.hub.Connect(c)
	defer func() {
		h.hub.Disconnect(id)
		wsc.Close()
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	wsc.SetReadDeadline(time.Now().Add(readDeadline))
	wsc.SetPongHandler(func(string) error {
		wsc.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	go pingLoop(ctx, c)

	for {
		_, raw, err := wsc.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[ws] read error on %s: %v", id, err)
			}
			return
		}
		wsc.SetReadDeadline(time.Now().Add(readDeadline))
		h.hub.Dispatch(id, raw)
	}
}

func pingLoop(ctx context.Context, c *conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return
			}
		}
	}
}
