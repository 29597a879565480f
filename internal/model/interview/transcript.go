package interview

import "time"

// TranscriptEntry is one transcription fragment. Only entries marked
// final are persisted to the session transcript; interim fragments are
// relayed for live display and forgotten.
type TranscriptEntry struct {
	ConnectionID string    `json:"connectionId,omitempty"`
	Speaker      string    `json:"speaker"`
	Role         Role      `json:"role"`
	Text         string    `json:"text"`
	Confidence   float64   `json:"confidence"`
	IsFinal      bool      `json:"isFinal"`
	Language     string    `json:"language"`
	Timestamp    time.Time `json:"timestamp"`
}

// QuestionRecord is an interview question asked during the session.
type QuestionRecord struct {
	ID          string    `json:"id"`
	Interviewer string    `json:"interviewer"`
	Question    string    `json:"question"`
	Category    string    `json:"category"`
	Difficulty  string    `json:"difficulty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NoteRecord is an interviewer-private annotation. Notes never reach
// candidate connections.
type NoteRecord struct {
	Author    string    `json:"author"`
	Note      string    `json:"note"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
}
