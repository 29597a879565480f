package relay

import (
	"context"
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/pariharkamal9829/interview-copilot/internal/config"
	"github.com/pariharkamal9829/interview-copilot/internal/model/interview"
	"github.com/pariharkamal9829/interview-copilot/internal/model/wire"
	"github.com/pariharkamal9829/interview-copilot/internal/service/session"
)

// Hub is the session-scoped message router. All registry and session
// mutation happens on one dispatch goroutine: connection events, inbound
// messages and AI completion results are queued onto the same channel and
// processed to completion one at a time, so no locking discipline is
// needed beyond the store's own. Gateway calls are the only operations
// that suspend, and they run off-loop, re-entering as aiResultEvents.
type Hub struct {
	events  chan event
	clients map[string]*client
	store   *session.Store
	gateway CompletionGateway
	cfg     config.RelayConfig

	count atomic.Int64
	ctx   context.Context
}

type event any

type connectEvent struct {
	id   string
	conn Conn
}

type disconnectEvent struct {
	id string
}

type messageEvent struct {
	id  string
	raw []byte
}

type aiResultEvent struct {
	connID      string
	sessionID   string
	requestType string
	payload     json.RawMessage
	err         error
}

type transcriptEvent struct {
	sessionID string
	entry     interview.TranscriptEntry
}

// NewHub wires the router to its owned stores. gateway may be nil, in
// which case every AI request is answered with an upstream-unavailable
// error.
func NewHub(store *session.Store, gateway CompletionGateway, cfg config.RelayConfig) *Hub {
	return &Hub{
		events:  make(chan event, 256),
		clients: make(map[string]*client),
		store:   store,
		gateway: gateway,
		cfg:     cfg,
		ctx:     context.Background(),
	}
}

// Run processes events until the context is cancelled. It must be running
// before any connection is attached.
func (h *Hub) Run(ctx context.Context) {
	h.ctx = ctx

	sweepInterval := h.cfg.SweepInterval
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	log.Printf("[relay] dispatch loop started")
	for {
		select {
		case <-ctx.Done():
			log.Printf("[relay] dispatch loop stopped")
			return
		case ev := <-h.events:
			h.handleEvent(ev)
		case <-ticker.C:
			h.sweep()
		}
	}
}

// Connect attaches a transport and returns its connection id. The welcome
// frame is sent from the dispatch loop.
func (h *Hub) Connect(conn Conn) string {
	id := uuid.NewString()
	h.events <- connectEvent{id: id, conn: conn}
	return id
}

// Disconnect detaches the connection; terminal, the registry entry is
// removed and the session (if any) is notified.
func (h *Hub) Disconnect(id string) {
	h.events <- disconnectEvent{id: id}
}

// Dispatch queues one raw inbound frame for the connection.
func (h *Hub) Dispatch(id string, raw []byte) {
	h.events <- messageEvent{id: id, raw: raw}
}

// InjectTranscript feeds an out-of-band final transcript entry (the
// recordings watcher path) through the same serialized route as live
// transcriptions.
func (h *Hub) InjectTranscript(sessionID string, entry interview.TranscriptEntry) {
	h.events <- transcriptEvent{sessionID: sessionID, entry: entry}
}

// ClientCount reports the number of attached connections.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// handleEvent isolates one event; a panicking handler never takes the
// dispatch loop down with it.
func (h *Hub) handleEvent(ev event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[relay] handler panic recovered: %v", r)
		}
	}()

	switch e := ev.(type) {
	case connectEvent:
		h.handleConnect(e)
	case disconnectEvent:
		h.handleDisconnect(e)
	case messageEvent:
		h.handleMessage(e)
	case aiResultEvent:
		h.handleAIResult(e)
	case transcriptEvent:
		h.handleTranscriptInject(e)
	}
}

func (h *Hub) handleConnect(e connectEvent) {
	c := &client{
		id:          e.id,
		conn:        e.conn,
		connectedAt: time.Now().UTC(),
	}
	h.clients[e.id] = c
	h.count.Add(1)
	log.Printf("[relay] client connected id=%s total=%d", e.id, len(h.clients))

	h.send(c, wire.NewEvent(wire.TypeConnected, map[string]any{
		"clientId": e.id,
		"message":  "Connected to Interview Copilot relay",
	}))
}

func (h *Hub) handleDisconnect(e disconnectEvent) {
	c, ok := h.clients[e.id]
	if !ok {
		return
	}
	delete(h.clients, e.id)
	h.count.Add(-1)
	log.Printf("[relay] client disconnected id=%s name=%q total=%d", e.id, c.name, len(h.clients))

	if c.sessionID == "" {
		return
	}
	h.store.Leave(c.sessionID, c.id)
	h.broadcastSession(c.sessionID, c.id, wire.NewEvent(wire.TypeUserLeft, map[string]any{
		"clientId": c.id,
		"name":     c.name,
		"role":     c.role,
	}))
}

func (h *Hub) handleTranscriptInject(e transcriptEvent) {
	if err := h.store.AppendTranscript(e.sessionID, e.entry); err != nil {
		log.Printf("[relay] dropped injected transcript for unknown session %s", e.sessionID)
		return
	}
	h.broadcastSession(e.sessionID, "", wire.TranscriptionEvent(e.entry))
}

func (h *Hub) sweep() {
	removed := h.store.SweepIdle(h.cfg.SessionIdleTTL, time.Now().UTC())
	if len(removed) > 0 {
		log.Printf("[relay] swept %d idle sessions: %v", len(removed), removed)
	}
}

// send delivers one frame, silently skipping transports that are gone.
func (h *Hub) send(c *client, ev wire.Event) {
	if err := c.conn.Send(ev); err != nil {
		log.Printf("[relay] dropping frame for closed connection %s", c.id)
	}
}

// broadcastSession delivers to every connection in the session except the
// excluded id. Pass an empty exclude to reach everyone.
func (h *Hub) broadcastSession(sessionID, exclude string, ev wire.Event) {
	for _, c := range h.clients {
		if c.sessionID != sessionID || c.id == exclude {
			continue
		}
		h.send(c, ev)
	}
}

// broadcastRole delivers only to connections holding the role inside the
// session. Notes and analyses use this to keep candidate-side privacy.
func (h *Hub) broadcastRole(sessionID string, role interview.Role, ev wire.Event) {
	for _, c := range h.clients {
		if c.sessionID != sessionID || c.role != role {
			continue
		}
		h.send(c, ev)
	}
}
