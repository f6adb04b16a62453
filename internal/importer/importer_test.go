package importer

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/vishnutej000/Memories-sub001/internal/chatparse"
	"github.com/vishnutej000/Memories-sub001/internal/core"
	"github.com/vishnutej000/Memories-sub001/internal/sink"
)

const transcript = "12/05/2023, 14:30 - Alice: Great news! 😊\n" +
	"12/05/2023, 14:31 - You: that is wonderful\n" +
	"12/05/2023, 14:32 - Alice: see you soon\n"

type fakeChatStore struct {
	mu    sync.Mutex
	chats []core.Chat
	err   error
}

func (f *fakeChatStore) InsertChat(_ context.Context, chat core.Chat) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.chats = append(f.chats, chat)
	return nil
}

type fakeWriter struct {
	mu      sync.Mutex
	records []sink.Record
	flushes int
}

func (f *fakeWriter) Write(rec sink.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeWriter) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	return nil
}

func TestImportText(t *testing.T) {
	store := &fakeChatStore{}
	writer := &fakeWriter{}
	imp := New(store, writer, chatparse.Options{}, "", "Vish")

	chat, err := imp.ImportText(context.Background(), "holiday", transcript)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if chat.ID == "" {
		t.Fatalf("expected generated chat id")
	}
	if chat.Title != "holiday" {
		t.Fatalf("unexpected title: %q", chat.Title)
	}
	if chat.MessageCount != 3 {
		t.Fatalf("expected 3 messages, got %d", chat.MessageCount)
	}
	if chat.Range == nil || chat.Range.Start.Equal(chat.Range.End) {
		t.Fatalf("unexpected range: %+v", chat.Range)
	}

	if len(store.chats) != 1 || store.chats[0].ID != chat.ID {
		t.Fatalf("chat not stored: %+v", store.chats)
	}
	if len(writer.records) != 3 {
		t.Fatalf("expected 3 records written, got %d", len(writer.records))
	}
	for _, rec := range writer.records {
		if rec.ChatID != chat.ID {
			t.Fatalf("record bound to wrong chat: %q", rec.ChatID)
		}
	}
	if writer.records[0].Msg.SentimentScore <= 0 {
		t.Fatalf("expected positive sentiment on first message, got %f", writer.records[0].Msg.SentimentScore)
	}
	if writer.flushes != 1 {
		t.Fatalf("expected one flush, got %d", writer.flushes)
	}
}

func TestImportTextRenamesOwner(t *testing.T) {
	store := &fakeChatStore{}
	writer := &fakeWriter{}
	imp := New(store, writer, chatparse.Options{}, "", "Vish")

	chat, err := imp.ImportText(context.Background(), "holiday", transcript)
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if writer.records[1].Msg.Sender != "Vish" {
		t.Fatalf("owner marker not renamed: %q", writer.records[1].Msg.Sender)
	}
	if len(chat.Participants) != 2 || chat.Participants[0] != "Alice" || chat.Participants[1] != "Vish" {
		t.Fatalf("unexpected participants: %v", chat.Participants)
	}
}

func TestImportTextKeepsMarkerWithoutOwner(t *testing.T) {
	store := &fakeChatStore{}
	writer := &fakeWriter{}
	imp := New(store, writer, chatparse.Options{}, "", "")

	chat, err := imp.ImportText(context.Background(), "holiday", transcript)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if writer.records[1].Msg.Sender != "You" {
		t.Fatalf("expected marker kept, got %q", writer.records[1].Msg.Sender)
	}
	if len(chat.Participants) != 2 || chat.Participants[1] != "You" {
		t.Fatalf("unexpected participants: %v", chat.Participants)
	}
}

func TestImportTextStoreError(t *testing.T) {
	store := &fakeChatStore{err: os.ErrPermission}
	writer := &fakeWriter{}
	imp := New(store, writer, chatparse.Options{}, "", "")

	if _, err := imp.ImportText(context.Background(), "holiday", transcript); err == nil {
		t.Fatalf("expected store error to propagate")
	}
	if len(writer.records) != 0 {
		t.Fatalf("no messages should be written when the chat insert fails")
	}
}

func TestSetWriter(t *testing.T) {
	store := &fakeChatStore{}
	first := &fakeWriter{}
	second := &fakeWriter{}
	imp := New(store, first, chatparse.Options{}, "", "")
	imp.SetWriter(second)

	if _, err := imp.ImportText(context.Background(), "holiday", transcript); err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(first.records) != 0 || len(second.records) != 3 {
		t.Fatalf("writer swap not honored: %d/%d", len(first.records), len(second.records))
	}
}

func TestRescan(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "trip.txt"), []byte(transcript), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.md"), []byte("not a transcript"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	store := &fakeChatStore{}
	writer := &fakeWriter{}
	imp := New(store, writer, chatparse.Options{}, dir, "")

	n, err := imp.Rescan(context.Background())
	if err != nil {
		t.Fatalf("rescan: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 import, got %d", n)
	}
	if len(store.chats) != 1 || store.chats[0].Title != "trip" {
		t.Fatalf("unexpected chats: %+v", store.chats)
	}

	// A second pass skips files already ingested.
	n, err = imp.Rescan(context.Background())
	if err != nil {
		t.Fatalf("rescan: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected no reimport, got %d", n)
	}

	// New files are picked up.
	if err := os.WriteFile(filepath.Join(dir, "later.TXT"), []byte(transcript), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	n, err = imp.Rescan(context.Background())
	if err != nil {
		t.Fatalf("rescan: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 new import, got %d", n)
	}
}

func TestRescanWithoutDir(t *testing.T) {
	imp := New(&fakeChatStore{}, &fakeWriter{}, chatparse.Options{}, "", "")
	if _, err := imp.Rescan(context.Background()); err == nil {
		t.Fatalf("expected error when no import dir is configured")
	}
}
