package wire

import (
	"encoding/json"
	"time"

	"github.com/pariharkamal9829/interview-copilot/internal/model/interview"
)

// Inbound message types. Every frame on the socket is a flat JSON object
// whose "type" field selects the handler.
const (
	TypeRegister      = "register"
	TypeJoinSession   = "join-session"
	TypeTranscription = "transcription"
	TypeQuestion      = "question"
	TypeAnswer        = "answer"
	TypeNote          = "note"
	TypeAIRequest     = "ai-request"
	TypePing          = "ping"
)

// Outbound message types.
const (
	TypeConnected         = "connected"
	TypeRegisterConfirmed = "register-confirmed"
	TypeSessionJoined     = "session-joined"
	TypeUserJoined        = "user-joined"
	TypeUserLeft          = "user-left"
	TypeAIProcessing      = "ai-processing"
	TypeAIResponse        = "ai-response"
	TypeAIError           = "ai-error"
	TypePong              = "pong"
	TypeError             = "error"
)

// Envelope carries only the discriminator; the full frame is re-decoded
// into the payload struct selected by Type.
type Envelope struct {
	Type string `json:"type"`
}

// Register declares the connection's display name and role.
type Register struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// JoinSession moves the connection into the named session, creating it
// on first use.
type JoinSession struct {
	SessionID string `json:"sessionId"`
}

// Transcription is a live speech fragment from a capture agent.
type Transcription struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	IsFinal    bool    `json:"isFinal"`
	Language   string  `json:"language"`
}

// Question is an interview question announced to the session.
type Question struct {
	Question   string `json:"question"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
}

// Answer is a candidate response tied to a previously asked question.
type Answer struct {
	Answer     string `json:"answer"`
	QuestionID string `json:"questionId"`
}

// Note is an interviewer-private annotation.
type Note struct {
	Note     string `json:"note"`
	Category string `json:"category"`
}

// AIRequest forwards a structured prompt through the completion gateway.
type AIRequest struct {
	RequestType string          `json:"requestType"`
	Data        json.RawMessage `json:"data"`
}

// Event is the generic outbound frame. Fields beyond Type and Timestamp
// live in the payload map so every handler can shape its own body, the
// way the relay always has.
type Event map[string]any

// NewEvent builds an outbound frame with the type and timestamp set.
func NewEvent(typ string, fields map[string]any) Event {
	ev := Event{
		"type":      typ,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range fields {
		ev[k] = v
	}
	return ev
}

// TranscriptionEvent shapes the broadcast form of a transcript entry.
func TranscriptionEvent(entry interview.TranscriptEntry) Event {
	return NewEvent(TypeTranscription, map[string]any{
		"clientId":   entry.ConnectionID,
		"speaker":    entry.Speaker,
		"role":       entry.Role,
		"text":       entry.Text,
		"confidence": entry.Confidence,
		"isFinal":    entry.IsFinal,
		"language":   entry.Language,
	})
}
