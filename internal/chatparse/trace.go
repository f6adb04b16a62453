package chatparse

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
)

// Stage labels one step of the parse pipeline for per-document accounting.
type Stage string

const (
	StageLinesSeen       Stage = "lines_seen"
	StageMessageStarted  Stage = "message_started"
	StageContinuation    Stage = "continuation"
	StageSkippedSystem   Stage = "skipped_system"
	StageSkippedOrphan   Stage = "skipped_orphan"
	StageMessagesEmitted Stage = "messages_emitted"

	StageDroppedPrefix = "dropped_"
)

// StageDropped builds a Stage for a dropped candidate message.
func StageDropped(reason string) Stage {
	return Stage(fmt.Sprintf("%s%s", StageDroppedPrefix, reason))
}

// Trace captures counters for one document's trip through the parser.
type Trace struct {
	Source  string
	Bytes   int
	TraceID string

	mu       sync.Mutex
	counters map[Stage]int64
}

// NewTrace seeds a trace for a document identified by source (a filename or
// upload title) and its byte length.
func NewTrace(source string, size int) *Trace {
	digest := sha256.Sum256([]byte(source + "\x1f" + strconv.Itoa(size)))
	return &Trace{
		Source:   source,
		Bytes:    size,
		TraceID:  hex.EncodeToString(digest[:8]),
		counters: make(map[Stage]int64),
	}
}

// Inc increments the counter for the given stage and returns the new value.
func (t *Trace) Inc(stage Stage) int64 {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counters[stage]++
	return t.counters[stage]
}

// Count returns the current value for a stage.
func (t *Trace) Count(stage Stage) int64 {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counters[stage]
}

// Log emits the trace via structured logging.
func (t *Trace) Log(logger *slog.Logger, msg string) {
	if t == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info(msg,
		"trace_id", t.TraceID,
		"source", t.Source,
		"bytes", t.Bytes,
		"counters", t.snapshot(),
	)
}

func (t *Trace) snapshot() map[Stage]int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[Stage]int64, len(t.counters))
	for stage, n := range t.counters {
		out[stage] = n
	}
	return out
}
