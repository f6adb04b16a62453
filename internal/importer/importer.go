// Package importer coordinates transcript ingestion: it hands raw text to a
// parse worker, stores the resulting chat and messages, and keeps track of
// which files from the import directory have already been ingested.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vishnutej000/Memories-sub001/internal/chatparse"
	"github.com/vishnutej000/Memories-sub001/internal/core"
	"github.com/vishnutej000/Memories-sub001/internal/sink"
	"github.com/vishnutej000/Memories-sub001/internal/worker"
)

// ChatStore persists chat header rows.
type ChatStore interface {
	InsertChat(ctx context.Context, chat core.Chat) error
}

type flusher interface {
	Flush() error
}

// Importer ingests transcripts from uploads and from a drop directory.
type Importer struct {
	store  ChatStore
	writer sink.Writer
	opts   chatparse.Options
	dir    string
	owner  string
	logger *slog.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

func New(store ChatStore, writer sink.Writer, opts chatparse.Options, dir, owner string) *Importer {
	return &Importer{
		store:  store,
		writer: writer,
		opts:   opts,
		dir:    dir,
		owner:  strings.TrimSpace(owner),
		logger: slog.Default(),
		seen:   make(map[string]struct{}),
	}
}

// SetWriter swaps the message writer. The API broadcast wrapper and the
// batching buffer are layered on after construction, before any import runs.
func (i *Importer) SetWriter(w sink.Writer) {
	i.writer = w
}

// ImportText parses one transcript and stores the result. The parse runs in
// a one-shot worker; sentiment is scored before anything is written.
func (i *Importer) ImportText(ctx context.Context, title, text string) (core.Chat, error) {
	opts := i.opts
	trace := chatparse.NewTrace(title, len(text))
	opts.Trace = trace

	parsed, err := worker.Do(ctx, text, opts, true)
	if err != nil {
		return core.Chat{}, fmt.Errorf("parse %q: %w", title, err)
	}
	i.applyOwner(&parsed)

	chat := core.Chat{
		ID:           uuid.NewString(),
		Title:        title,
		Participants: parsed.Participants,
		MessageCount: len(parsed.Messages),
		Range:        parsed.Range,
		ImportedAt:   time.Now().UTC(),
	}
	if err := i.store.InsertChat(ctx, chat); err != nil {
		return core.Chat{}, fmt.Errorf("store chat %q: %w", title, err)
	}
	for _, msg := range parsed.Messages {
		if err := i.writer.Write(sink.Record{ChatID: chat.ID, Msg: msg}); err != nil {
			return core.Chat{}, fmt.Errorf("store message: %w", err)
		}
	}
	if f, ok := i.writer.(flusher); ok {
		if err := f.Flush(); err != nil {
			return core.Chat{}, fmt.Errorf("flush messages: %w", err)
		}
	}

	trace.Log(i.logger, "import complete")
	return chat, nil
}

// applyOwner rewrites the export's first-person marker to the configured
// display name and rebuilds the participant list.
func (i *Importer) applyOwner(parsed *core.ParsedChat) {
	if i.owner == "" {
		return
	}
	renamed := false
	for idx := range parsed.Messages {
		if parsed.Messages[idx].Sender == chatparse.OwnerMarker {
			parsed.Messages[idx].Sender = i.owner
			renamed = true
		}
	}
	if !renamed {
		return
	}
	seen := make(map[string]struct{}, len(parsed.Participants))
	out := parsed.Participants[:0]
	for _, p := range parsed.Participants {
		if p == chatparse.OwnerMarker {
			p = i.owner
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	parsed.Participants = out
}

// ImportFile ingests one transcript file and remembers its path so a rescan
// does not ingest it twice.
func (i *Importer) ImportFile(ctx context.Context, path string) (core.Chat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.Chat{}, fmt.Errorf("read transcript: %w", err)
	}
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	chat, err := i.ImportText(ctx, title, string(data))
	if err != nil {
		return core.Chat{}, err
	}

	i.mu.Lock()
	i.seen[path] = struct{}{}
	i.mu.Unlock()
	return chat, nil
}

// Rescan walks the import directory and ingests transcript files not seen
// before. It returns how many files were imported.
func (i *Importer) Rescan(ctx context.Context) (int, error) {
	if i.dir == "" {
		return 0, fmt.Errorf("import directory not configured")
	}
	entries, err := os.ReadDir(i.dir)
	if err != nil {
		return 0, fmt.Errorf("read import dir: %w", err)
	}

	imported := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			continue
		}
		path := filepath.Join(i.dir, entry.Name())

		i.mu.Lock()
		_, done := i.seen[path]
		i.mu.Unlock()
		if done {
			continue
		}

		if _, err := i.ImportFile(ctx, path); err != nil {
			i.logger.Error("import failed", "path", path, "err", err)
			continue
		}
		imported++
	}
	return imported, nil
}
