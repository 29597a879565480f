package session

import (
	"errors"
	"sync"
	"time"

	"github.com/pariharkamal9829/interview-copilot/internal/model/interview"
)

var ErrNotFound = errors.New("session not found")

// Store owns all interview session state. The relay mutates it from its
// dispatch loop; the HTTP surface reads snapshots concurrently, hence the
// lock. Sessions are created lazily on first join and survive until the
// idle sweep reclaims them.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*interview.Session
}

// NewStore bootstraps an empty in-memory session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*interview.Session)}
}

// Join adds the participant to the named session, creating the session
// if it does not exist yet. A connection belongs to at most one session,
// so any membership left over in another session is removed first.
func (s *Store) Join(sessionID string, p interview.Participant) interview.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		if id == sessionID {
			continue
		}
		s.removeParticipantLocked(sess, p.ConnectionID)
	}

	sess, ok := s.sessions[sessionID]
	if !ok {
		now := time.Now().UTC()
		sess = &interview.Session{
			ID:           sessionID,
			CreatedAt:    now,
			Participants: make([]interview.Participant, 0, 2),
		}
		s.sessions[sessionID] = sess
	}

	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now().UTC()
	}
	sess.Participants = append(sess.Participants, p)
	sess.LastActivity = time.Now().UTC()

	return snapshot(sess)
}

// Leave removes the connection from the session's participant list. The
// session record itself stays, even when emptied, so the id cannot be
// silently reused for a fresh conversation.
func (s *Store) Leave(sessionID, connectionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return false
	}
	removed := s.removeParticipantLocked(sess, connectionID)
	if removed {
		sess.LastActivity = time.Now().UTC()
	}
	return removed
}

func (s *Store) removeParticipantLocked(sess *interview.Session, connectionID string) bool {
	for i, p := range sess.Participants {
		if p.ConnectionID == connectionID {
			sess.Participants = append(sess.Participants[:i], sess.Participants[i+1:]...)
			return true
		}
	}
	return false
}

// AppendTranscript persists the entry when it is final. Interim entries
// only refresh the session's activity clock; they are relayed live but
// never stored.
func (s *Store) AppendTranscript(sessionID string, entry interview.TranscriptEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	if entry.IsFinal {
		sess.Transcript = append(sess.Transcript, entry)
	}
	sess.LastActivity = time.Now().UTC()
	return nil
}

// AppendQuestion records a question asked during the session.
func (s *Store) AppendQuestion(sessionID string, q interview.QuestionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	sess.Questions = append(sess.Questions, q)
	sess.LastActivity = time.Now().UTC()
	return nil
}

// AppendNote records an interviewer-private note.
func (s *Store) AppendNote(sessionID string, n interview.NoteRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	sess.Notes = append(sess.Notes, n)
	sess.LastActivity = time.Now().UTC()
	return nil
}

// Get returns a snapshot of the session.
func (s *Store) Get(sessionID string) (interview.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return interview.Session{}, ErrNotFound
	}
	return snapshot(sess), nil
}

// List returns shallow summaries of every live session.
func (s *Store) List() []interview.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]interview.Summary, 0, len(s.sessions))
	for _, sess := range s.sessions {
		summaries = append(summaries, interview.Summary{
			ID:               sess.ID,
			CreatedAt:        sess.CreatedAt,
			ParticipantCount: len(sess.Participants),
			QuestionCount:    len(sess.Questions),
			TranscriptLength: len(sess.Transcript),
		})
	}
	return summaries
}

// Count reports the number of live sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// SweepIdle removes sessions whose last activity is older than ttl and
// returns their ids. Sessions with connected participants are kept
// regardless of age.
func (s *Store) SweepIdle(ttl time.Duration, now time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	for id, sess := range s.sessions {
		if len(sess.Participants) > 0 {
			continue
		}
		idleSince := sess.LastActivity
		if idleSince.IsZero() {
			idleSince = sess.CreatedAt
		}
		if now.Sub(idleSince) > ttl {
			delete(s.sessions, id)
			removed = append(removed, id)
		}
	}
	return removed
}

func snapshot(sess *interview.Session) interview.Session {
	out := *sess
	out.Participants = append([]interview.Participant(nil), sess.Participants...)
	out.Transcript = append([]interview.TranscriptEntry(nil), sess.Transcript...)
	out.Questions = append([]interview.QuestionRecord(nil), sess.Questions...)
	out.Notes = append([]interview.NoteRecord(nil), sess.Notes...)
	return out
}
