package relay

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/pariharkamal9829/interview-copilot/internal/model/interview"
	"github.com/pariharkamal9829/interview-copilot/internal/model/wire"
	"github.com/pariharkamal9829/interview-copilot/internal/service/ai"
)

// handleMessage classifies one inbound frame by its type discriminator.
// All validation failures are reported to the sender only, tagged with
// the originating type.
func (h *Hub) handleMessage(e messageEvent) {
	c, ok := h.clients[e.id]
	if !ok {
		return
	}

	var env wire.Envelope
	if err := json.Unmarshal(e.raw, &env); err != nil {
		h.send(c, wire.ErrorEvent("", wire.CodeInvalidJSON, "Invalid JSON format"))
		return
	}

	switch env.Type {
	case wire.TypeRegister:
		h.handleRegister(c, e.raw)
	case wire.TypeJoinSession:
		h.handleJoinSession(c, e.raw)
	case wire.TypeTranscription:
		h.handleTranscription(c, e.raw)
	case wire.TypeQuestion:
		h.handleQuestion(c, e.raw)
	case wire.TypeAnswer:
		h.handleAnswer(c, e.raw)
	case wire.TypeNote:
		h.handleNote(c, e.raw)
	case wire.TypeAIRequest:
		h.handleAIRequest(c, e.raw)
	case wire.TypePing:
		h.send(c, wire.NewEvent(wire.TypePong, nil))
	default:
		h.send(c, wire.ErrorEvent(env.Type, wire.CodeUnknownType, "Unknown message type: "+env.Type))
	}
}

// handleRegister moves the connection to Registered. Re-registration is
// allowed and overwrites name and role; an invalid role leaves any prior
// registration untouched.
func (h *Hub) handleRegister(c *client, raw []byte) {
	var msg wire.Register
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.send(c, wire.ErrorEvent(wire.TypeRegister, wire.CodeInvalidJSON, "Invalid register payload"))
		return
	}

	role := interview.Role(msg.Role)
	if !role.Valid() {
		h.send(c, wire.ErrorEvent(wire.TypeRegister, wire.CodeInvalidRole,
			`Invalid role. Must be "interviewer" or "candidate"`))
		return
	}

	name := msg.Name
	if name == "" {
		name = "Anonymous"
	}
	c.name = name
	c.role = role
	log.Printf("[relay] client %s registered as %s (%s)", c.id, role, name)

	h.send(c, wire.NewEvent(wire.TypeRegisterConfirmed, map[string]any{
		"clientId": c.id,
		"name":     c.name,
		"role":     c.role,
	}))

	if c.sessionID != "" {
		h.broadcastSession(c.sessionID, c.id, wire.NewEvent(wire.TypeUserJoined, map[string]any{
			"clientId": c.id,
			"name":     c.name,
			"role":     c.role,
		}))
	}
}

// handleJoinSession moves the connection into the named session, creating
// it on first use and leaving any previous session first.
func (h *Hub) handleJoinSession(c *client, raw []byte) {
	var msg wire.JoinSession
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.send(c, wire.ErrorEvent(wire.TypeJoinSession, wire.CodeInvalidJSON, "Invalid join-session payload"))
		return
	}

	if !c.registered() {
		h.send(c, wire.ErrorEvent(wire.TypeJoinSession, wire.CodeNotRegistered,
			"Please register first before joining a session"))
		return
	}
	if msg.SessionID == "" {
		h.send(c, wire.ErrorEvent(wire.TypeJoinSession, wire.CodeMissingField, "sessionId is required"))
		return
	}

	sess := h.store.Join(msg.SessionID, interview.Participant{
		ConnectionID: c.id,
		Name:         c.name,
		Role:         c.role,
		JoinedAt:     time.Now().UTC(),
	})
	c.sessionID = msg.SessionID
	log.Printf("[relay] %s joined session %s", c.name, msg.SessionID)

	h.send(c, wire.NewEvent(wire.TypeSessionJoined, map[string]any{
		"sessionId":    sess.ID,
		"participants": sess.Participants,
	}))

	h.broadcastSession(c.sessionID, c.id, wire.NewEvent(wire.TypeUserJoined, map[string]any{
		"clientId": c.id,
		"name":     c.name,
		"role":     c.role,
	}))
}

func (h *Hub) handleTranscription(c *client, raw []byte) {
	var msg wire.Transcription
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.send(c, wire.ErrorEvent(wire.TypeTranscription, wire.CodeInvalidJSON, "Invalid transcription payload"))
		return
	}
	if !h.requireSession(c, wire.TypeTranscription) {
		return
	}
	if msg.Text == "" {
		h.send(c, wire.ErrorEvent(wire.TypeTranscription, wire.CodeMissingField, "text is required"))
		return
	}

	language := msg.Language
	if language == "" {
		language = "en"
	}
	entry := interview.TranscriptEntry{
		ConnectionID: c.id,
		Speaker:      c.name,
		Role:         c.role,
		Text:         msg.Text,
		Confidence:   msg.Confidence,
		IsFinal:      msg.IsFinal,
		Language:     language,
		Timestamp:    time.Now().UTC(),
	}

	// Final entries are persisted; interim ones are relayed only.
	if err := h.store.AppendTranscript(c.sessionID, entry); err != nil {
		h.send(c, wire.ErrorEvent(wire.TypeTranscription, wire.CodeNotFound, "session no longer exists"))
		return
	}

	h.broadcastSession(c.sessionID, "", wire.TranscriptionEvent(entry))
}

func (h *Hub) handleQuestion(c *client, raw []byte) {
	var msg wire.Question
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.send(c, wire.ErrorEvent(wire.TypeQuestion, wire.CodeInvalidJSON, "Invalid question payload"))
		return
	}
	if !h.requireSession(c, wire.TypeQuestion) {
		return
	}
	if msg.Question == "" {
		h.send(c, wire.ErrorEvent(wire.TypeQuestion, wire.CodeMissingField, "question is required"))
		return
	}

	record := interview.QuestionRecord{
		ID:          uuid.NewString(),
		Interviewer: c.name,
		Question:    msg.Question,
		Category:    defaultString(msg.Category, "general"),
		Difficulty:  defaultString(msg.Difficulty, "medium"),
		Timestamp:   time.Now().UTC(),
	}
	if err := h.store.AppendQuestion(c.sessionID, record); err != nil {
		h.send(c, wire.ErrorEvent(wire.TypeQuestion, wire.CodeNotFound, "session no longer exists"))
		return
	}

	h.broadcastSession(c.sessionID, "", wire.NewEvent(wire.TypeQuestion, map[string]any{
		"id":          record.ID,
		"clientId":    c.id,
		"interviewer": record.Interviewer,
		"question":    record.Question,
		"category":    record.Category,
		"difficulty":  record.Difficulty,
	}))
}

func (h *Hub) handleAnswer(c *client, raw []byte) {
	var msg wire.Answer
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.send(c, wire.ErrorEvent(wire.TypeAnswer, wire.CodeInvalidJSON, "Invalid answer payload"))
		return
	}
	if !h.requireSession(c, wire.TypeAnswer) {
		return
	}
	if msg.Answer == "" {
		h.send(c, wire.ErrorEvent(wire.TypeAnswer, wire.CodeMissingField, "answer is required"))
		return
	}

	h.broadcastSession(c.sessionID, "", wire.NewEvent(wire.TypeAnswer, map[string]any{
		"clientId":   c.id,
		"candidate":  c.name,
		"answer":     msg.Answer,
		"questionId": msg.QuestionID,
	}))
}

// handleNote records an interviewer-private note. Candidate-authored
// notes are rejected and delivered to no one.
func (h *Hub) handleNote(c *client, raw []byte) {
	var msg wire.Note
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.send(c, wire.ErrorEvent(wire.TypeNote, wire.CodeInvalidJSON, "Invalid note payload"))
		return
	}
	if !h.requireSession(c, wire.TypeNote) {
		return
	}
	if c.role != interview.RoleInterviewer {
		h.send(c, wire.ErrorEvent(wire.TypeNote, wire.CodeInvalidRole, "Only interviewers can take notes"))
		return
	}
	if msg.Note == "" {
		h.send(c, wire.ErrorEvent(wire.TypeNote, wire.CodeMissingField, "note is required"))
		return
	}

	record := interview.NoteRecord{
		Author:    c.name,
		Note:      msg.Note,
		Category:  defaultString(msg.Category, "general"),
		Timestamp: time.Now().UTC(),
	}
	if err := h.store.AppendNote(c.sessionID, record); err != nil {
		h.send(c, wire.ErrorEvent(wire.TypeNote, wire.CodeNotFound, "session no longer exists"))
		return
	}

	h.broadcastRole(c.sessionID, interview.RoleInterviewer, wire.NewEvent(wire.TypeNote, map[string]any{
		"clientId": c.id,
		"author":   record.Author,
		"note":     record.Note,
		"category": record.Category,
	}))
}

// handleAIRequest launches the completion off the dispatch path. The
// result re-enters the loop as an aiResultEvent so routing happens under
// the same serialization as everything else.
func (h *Hub) handleAIRequest(c *client, raw []byte) {
	var msg wire.AIRequest
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.send(c, wire.ErrorEvent(wire.TypeAIRequest, wire.CodeInvalidJSON, "Invalid ai-request payload"))
		return
	}
	if msg.RequestType == "" {
		h.send(c, wire.ErrorEvent(wire.TypeAIRequest, wire.CodeMissingField, "requestType is required"))
		return
	}

	if h.gateway == nil {
		h.send(c, wire.NewEvent(wire.TypeAIError, map[string]any{
			"requestType": msg.RequestType,
			"code":        wire.CodeUpstreamUnavailable,
			"error":       "AI service is not configured",
		}))
		return
	}

	h.send(c, wire.NewEvent(wire.TypeAIProcessing, map[string]any{
		"requestType": msg.RequestType,
	}))

	connID := c.id
	sessionID := c.sessionID
	requestType := msg.RequestType
	data := msg.Data
	ctx := h.ctx

	go func() {
		payload, err := h.gateway.Complete(ctx, requestType, data)
		h.events <- aiResultEvent{
			connID:      connID,
			sessionID:   sessionID,
			requestType: requestType,
			payload:     payload,
			err:         err,
		}
	}()
}

// handleAIResult routes a finished completion using the same delivery
// rules as ordinary traffic: analyses and feedback stay interviewer-side,
// generated questions return to the requester, improved transcriptions go
// to the whole session. Errors go to the requester only.
func (h *Hub) handleAIResult(e aiResultEvent) {
	requester := h.clients[e.connID]

	if e.err != nil {
		if requester == nil {
			return
		}
		code, message, fields := classifyAIError(e.err)
		ev := map[string]any{
			"requestType": e.requestType,
			"code":        code,
			"error":       message,
		}
		for k, v := range fields {
			ev[k] = v
		}
		h.send(requester, wire.NewEvent(wire.TypeAIError, ev))
		return
	}

	ev := wire.NewEvent(wire.TypeAIResponse, map[string]any{
		"requestType": e.requestType,
		"data":        e.payload,
	})

	switch e.requestType {
	case ai.RequestAnalyzeAnswer, ai.RequestGetFeedback, ai.RequestSuggestFollowup:
		if e.sessionID != "" {
			h.broadcastRole(e.sessionID, interview.RoleInterviewer, ev)
			return
		}
	case ai.RequestImproveTranscription:
		if e.sessionID != "" {
			h.broadcastSession(e.sessionID, "", ev)
			return
		}
	}

	if requester != nil {
		h.send(requester, ev)
	}
}

// classifyAIError maps gateway failures onto wire error codes. Malformed
// completions keep the raw upstream text attached.
func classifyAIError(err error) (code, message string, fields map[string]any) {
	var malformed *ai.MalformedCompletionError
	if errors.As(err, &malformed) {
		return wire.CodeMalformedCompletion, malformed.Error(), map[string]any{"raw": malformed.Raw}
	}

	var missing *ai.MissingFieldError
	if errors.As(err, &missing) {
		return wire.CodeMissingField, missing.Error(), nil
	}

	if errors.Is(err, ai.ErrUnknownRequestType) {
		return wire.CodeUnknownType, err.Error(), nil
	}
	if errors.Is(err, ai.ErrUpstreamUnavailable) {
		return wire.CodeUpstreamUnavailable, err.Error(), nil
	}
	return wire.CodeUpstreamUnavailable, err.Error(), nil
}

// requireSession rejects session-bound messages from connections that
// have not joined one.
func (h *Hub) requireSession(c *client, requestType string) bool {
	if c.sessionID == "" {
		h.send(c, wire.ErrorEvent(requestType, wire.CodeNotFound, "Join a session first"))
		return false
	}
	return true
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
