package sink

import (
	"errors"
	"sync"
	"time"

	"github.com/vishnutej000/Memories-sub001/internal/core"
)

// Record is one message destined for storage, tagged with its chat.
type Record struct {
	ChatID string
	Msg    core.ChatMessage
}

type Writer interface {
	Write(Record) error
}

// BufferedWriter batches records before handing them to the base writer.
// Large imports (tens of thousands of messages) flush in chunks instead of
// one insert per row.
type BufferedWriter struct {
	base          Writer
	batchSize     int
	flushInterval time.Duration

	mu      sync.Mutex
	buffer  []Record
	timer   *time.Timer
	closed  bool
	lastErr error
}

type BufferedOptions struct {
	BatchSize     int
	FlushInterval time.Duration
}

func NewBufferedWriter(base Writer, opts BufferedOptions) *BufferedWriter {
	batch := opts.BatchSize
	if batch <= 0 {
		batch = 1
	}
	return &BufferedWriter{
		base:          base,
		batchSize:     batch,
		flushInterval: opts.FlushInterval,
	}
}

func (b *BufferedWriter) Write(rec Record) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return errors.New("buffered writer closed")
	}

	pendingErr := b.lastErr
	b.lastErr = nil

	b.buffer = append(b.buffer, rec)
	if len(b.buffer) == 1 && b.flushInterval > 0 {
		b.startTimerLocked()
	}

	if len(b.buffer) < b.batchSize {
		b.mu.Unlock()
		return pendingErr
	}

	recs := append([]Record(nil), b.buffer...)
	b.buffer = b.buffer[:0]
	b.stopTimerLocked()
	b.mu.Unlock()

	if err := b.writeAll(recs); err != nil {
		return err
	}
	return pendingErr
}

// Flush writes out everything currently buffered.
func (b *BufferedWriter) Flush() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return errors.New("buffered writer closed")
	}
	recs := append([]Record(nil), b.buffer...)
	b.buffer = b.buffer[:0]
	b.stopTimerLocked()
	pendingErr := b.lastErr
	b.lastErr = nil
	b.mu.Unlock()

	if len(recs) > 0 {
		if err := b.writeAll(recs); err != nil {
			return err
		}
	}
	return pendingErr
}

// Close flushes any buffered records and rejects further writes.
func (b *BufferedWriter) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.stopTimerLocked()
	recs := append([]Record(nil), b.buffer...)
	b.buffer = nil
	pendingErr := b.lastErr
	b.lastErr = nil
	b.mu.Unlock()

	if len(recs) > 0 {
		if err := b.writeAll(recs); err != nil {
			return err
		}
	}
	return pendingErr
}

func (b *BufferedWriter) onTimer() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	if len(b.buffer) == 0 {
		b.timer = nil
		b.mu.Unlock()
		return
	}
	recs := append([]Record(nil), b.buffer...)
	b.buffer = b.buffer[:0]
	b.timer = nil
	b.mu.Unlock()

	if err := b.writeAll(recs); err != nil {
		b.mu.Lock()
		b.lastErr = err
		b.mu.Unlock()
	}
}

func (b *BufferedWriter) startTimerLocked() {
	if b.flushInterval <= 0 {
		return
	}
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.flushInterval, b.onTimer)
}

func (b *BufferedWriter) stopTimerLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

func (b *BufferedWriter) writeAll(recs []Record) error {
	for _, rec := range recs {
		if err := b.base.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
