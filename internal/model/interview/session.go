package interview

import "time"

// Session groups the connections of one interview conversation and
// accumulates everything spoken, asked and noted during it.
type Session struct {
	ID           string            `json:"id"`
	CreatedAt    time.Time         `json:"createdAt"`
	LastActivity time.Time         `json:"lastActivity"`
	Participants []Participant     `json:"participants"`
	Transcript   []TranscriptEntry `json:"transcript"`
	Questions    []QuestionRecord  `json:"questions"`
	Notes        []NoteRecord      `json:"notes"`
}

// Participant is a connection's membership record inside a session.
type Participant struct {
	ConnectionID string    `json:"connectionId"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	JoinedAt     time.Time `json:"joinedAt"`
}

// Summary is the shallow session view returned by the listing endpoint.
type Summary struct {
	ID               string    `json:"id"`
	CreatedAt        time.Time `json:"createdAt"`
	ParticipantCount int       `json:"participantCount"`
	QuestionCount    int       `json:"questionCount"`
	TranscriptLength int       `json:"transcriptLength"`
}
