package relay

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pariharkamal9829/interview-copilot/internal/model/interview"
)

// Conn is the transport seen by the hub: something that can deliver one
// JSON message. The websocket handler supplies the production
// implementation; tests supply in-memory fakes.
type Conn interface {
	Send(v any) error
	Close() error
}

// CompletionGateway abstracts the AI completion service so the hub can be
// exercised against stubs.
type CompletionGateway interface {
	Complete(ctx context.Context, requestType string, data json.RawMessage) (json.RawMessage, error)
}

// client is the registry entry for one connection. It is owned by the
// dispatch loop and never touched from other goroutines.
type client struct {
	id          string
	conn        Conn
	name        string
	role        interview.Role
	sessionID   string
	connectedAt time.Time
}

func (c *client) registered() bool {
	return c.name != ""
}
