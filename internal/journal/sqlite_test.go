package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestJournal(t *testing.T) *SQLiteJournal {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := NewSQLiteJournal(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(j.Close)
	return j
}

func TestSQLiteJournalRoundTrip(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	if err := j.Ping(ctx); err != nil {
		t.Fatal(err)
	}

	first := &Record{
		Status:      "failed",
		Destination: "agent1aaa",
		Transport:   "agentverse_mailbox",
		MessageType: "chat_acknowledgement",
		Detail:      "HTTP 500: boom",
	}
	if err := j.Record(ctx, first); err != nil {
		t.Fatal(err)
	}
	if first.ID == "" {
		t.Fatal("Record must assign an id")
	}
	if first.CreatedAt.IsZero() {
		t.Fatal("Record must assign a timestamp")
	}

	time.Sleep(2 * time.Millisecond)

	second := &Record{
		Status:      "submitted",
		Destination: "agent1bbb",
		Transport:   "agentverse_mailbox",
		MessageType: "chat_message",
	}
	if err := j.Record(ctx, second); err != nil {
		t.Fatal(err)
	}

	count, err := j.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("Count = %d, want 2", count)
	}

	recent, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Fatalf("Recent returned %d records, want 2", len(recent))
	}
	if recent[0].ID != second.ID {
		t.Fatalf("newest record must come first, got %s", recent[0].ID)
	}
	if recent[1].Detail != "HTTP 500: boom" {
		t.Fatalf("detail not persisted: %q", recent[1].Detail)
	}
	if recent[0].Status != "submitted" || recent[0].Destination != "agent1bbb" {
		t.Fatalf("record fields lost: %+v", recent[0])
	}
}

func TestSQLiteJournalRecentLimit(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	for i := 0; i < 5; i++ {
		rec := &Record{
			Status:      "submitted",
			Destination: "agent1ccc",
			Transport:   "agentverse_mailbox",
			MessageType: "chat_message",
		}
		if err := j.Record(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := j.Recent(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 3 {
		t.Fatalf("Recent(3) returned %d records", len(recent))
	}
}
