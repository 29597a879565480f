package session_test

import (
	"testing"
	"time"

	"github.com/pariharkamal9829/interview-copilot/internal/model/interview"
	"github.com/pariharkamal9829/interview-copilot/internal/service/session"
)

func participant(connID, name string, role interview.Role) interview.Participant {
	return interview.Participant{ConnectionID: connID, Name: name, Role: role}
}

func TestJoinCreatesSessionLazily(t *testing.T) {
	store := session.NewStore()

	sess := store.Join("room-1", participant("c1", "Alice", interview.RoleInterviewer))

	if sess.ID != "room-1" {
		t.Fatalf("unexpected session id: %s", sess.ID)
	}
	if len(sess.Participants) != 1 {
		t.Fatalf("expected 1 participant, got %d", len(sess.Participants))
	}
	if sess.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}
}

func TestJoinMovesConnectionBetweenSessions(t *testing.T) {
	store := session.NewStore()
	store.Join("room-a", participant("c1", "Alice", interview.RoleInterviewer))

	sessB := store.Join("room-b", participant("c1", "Alice", interview.RoleInterviewer))

	if len(sessB.Participants) != 1 {
		t.Fatalf("expected 1 participant in room-b, got %d", len(sessB.Participants))
	}

	sessA, err := store.Get("room-a")
	if err != nil {
		t.Fatalf("Get room-a err: %v", err)
	}
	if len(sessA.Participants) != 0 {
		t.Fatalf("expected room-a to be empty, got %d participants", len(sessA.Participants))
	}
}

func TestAppendTranscriptPersistsOnlyFinalEntries(t *testing.T) {
	store := session.NewStore()
	store.Join("room-1", participant("c1", "Alice", interview.RoleCandidate))

	interim := interview.TranscriptEntry{Speaker: "Alice", Text: "so I think", IsFinal: false}
	final1 := interview.TranscriptEntry{Speaker: "Alice", Text: "so I think goroutines", IsFinal: true}
	final2 := interview.TranscriptEntry{Speaker: "Alice", Text: "are cheap", IsFinal: true}

	for _, entry := range []interview.TranscriptEntry{interim, final1, final2} {
		if err := store.AppendTranscript("room-1", entry); err != nil {
			t.Fatalf("AppendTranscript err: %v", err)
		}
	}

	sess, err := store.Get("room-1")
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if len(sess.Transcript) != 2 {
		t.Fatalf("expected 2 persisted entries, got %d", len(sess.Transcript))
	}
	if sess.Transcript[0].Text != final1.Text || sess.Transcript[1].Text != final2.Text {
		t.Fatalf("transcript out of order: %+v", sess.Transcript)
	}
}

func TestAppendTranscriptUnknownSession(t *testing.T) {
	store := session.NewStore()

	err := store.AppendTranscript("missing", interview.TranscriptEntry{Text: "x", IsFinal: true})
	if err != session.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLeaveKeepsEmptySessionRecord(t *testing.T) {
	store := session.NewStore()
	store.Join("room-1", participant("c1", "Alice", interview.RoleInterviewer))

	if !store.Leave("room-1", "c1") {
		t.Fatal("expected Leave to remove the participant")
	}

	sess, err := store.Get("room-1")
	if err != nil {
		t.Fatalf("expected session to survive: %v", err)
	}
	if len(sess.Participants) != 0 {
		t.Fatalf("expected empty participant list, got %d", len(sess.Participants))
	}
}

func TestSweepIdleRemovesOnlyEmptyStaleSessions(t *testing.T) {
	store := session.NewStore()
	store.Join("occupied", participant("c1", "Alice", interview.RoleInterviewer))
	store.Join("stale", participant("c2", "Bob", interview.RoleCandidate))
	store.Leave("stale", "c2")

	// Nothing is old enough yet.
	if removed := store.SweepIdle(time.Hour, time.Now().UTC()); len(removed) != 0 {
		t.Fatalf("expected no sessions swept, got %v", removed)
	}

	removed := store.SweepIdle(time.Hour, time.Now().UTC().Add(2*time.Hour))
	if len(removed) != 1 || removed[0] != "stale" {
		t.Fatalf("expected only the stale session swept, got %v", removed)
	}

	if _, err := store.Get("occupied"); err != nil {
		t.Fatalf("occupied session should survive the sweep: %v", err)
	}
	if _, err := store.Get("stale"); err != session.ErrNotFound {
		t.Fatalf("expected stale session to be gone, got %v", err)
	}
}

func TestListSummaries(t *testing.T) {
	store := session.NewStore()
	store.Join("room-1", participant("c1", "Alice", interview.RoleInterviewer))
	store.AppendQuestion("room-1", interview.QuestionRecord{Question: "why Go?"})

	summaries := store.List()
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if summaries[0].ParticipantCount != 1 || summaries[0].QuestionCount != 1 {
		t.Fatalf("unexpected summary: %+v", summaries[0])
	}
}
