package sink

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/vishnutej000/Memories-sub001/internal/core"
)

type recordingWriter struct {
	mu        sync.Mutex
	records   []Record
	failAfter int
	calls     int
}

func (r *recordingWriter) Write(rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.failAfter > 0 && r.calls >= r.failAfter {
		return fmt.Errorf("boom")
	}
	r.records = append(r.records, rec)
	return nil
}

func (r *recordingWriter) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func rec(id string) Record {
	return Record{ChatID: "chat-1", Msg: core.ChatMessage{ID: id}}
}

func TestBufferedWriterBatchFlush(t *testing.T) {
	base := &recordingWriter{}
	bw := NewBufferedWriter(base, BufferedOptions{BatchSize: 2, FlushInterval: time.Hour})
	defer func() {
		if err := bw.Close(); err != nil {
			t.Fatalf("close error: %v", err)
		}
	}()

	if err := bw.Write(rec("1")); err != nil {
		t.Fatalf("write1: %v", err)
	}
	if base.Count() != 0 {
		t.Fatalf("expected no flush yet")
	}
	if err := bw.Write(rec("2")); err != nil {
		t.Fatalf("write2: %v", err)
	}
	if base.Count() != 2 {
		t.Fatalf("expected batch flush, got %d", base.Count())
	}
}

func TestBufferedWriterFlushInterval(t *testing.T) {
	base := &recordingWriter{}
	bw := NewBufferedWriter(base, BufferedOptions{BatchSize: 10, FlushInterval: 20 * time.Millisecond})
	defer func() {
		if err := bw.Close(); err != nil {
			t.Fatalf("close error: %v", err)
		}
	}()

	if err := bw.Write(rec("interval")); err != nil {
		t.Fatalf("write: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if base.Count() != 1 {
		t.Fatalf("expected timer flush, got %d", base.Count())
	}
}

func TestBufferedWriterExplicitFlush(t *testing.T) {
	base := &recordingWriter{}
	bw := NewBufferedWriter(base, BufferedOptions{BatchSize: 100, FlushInterval: time.Hour})
	defer func() {
		_ = bw.Close()
	}()

	if err := bw.Write(rec("a")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := bw.Write(rec("b")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if base.Count() != 0 {
		t.Fatalf("expected nothing flushed before Flush")
	}
	if err := bw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if base.Count() != 2 {
		t.Fatalf("expected 2 records after flush, got %d", base.Count())
	}
	// Flushing an empty buffer is a no-op.
	if err := bw.Flush(); err != nil {
		t.Fatalf("empty flush: %v", err)
	}
}

func TestBufferedWriterErrorPropagation(t *testing.T) {
	base := &recordingWriter{failAfter: 1}
	bw := NewBufferedWriter(base, BufferedOptions{BatchSize: 1, FlushInterval: 0})
	defer func() {
		_ = bw.Close()
	}()

	if err := bw.Write(rec("err")); err == nil {
		t.Fatalf("expected error from underlying writer")
	}
}

func TestBufferedWriterClosedRejectsWrites(t *testing.T) {
	base := &recordingWriter{}
	bw := NewBufferedWriter(base, BufferedOptions{BatchSize: 2})
	if err := bw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := bw.Write(rec("late")); err == nil {
		t.Fatalf("expected write after close to fail")
	}
	if err := bw.Flush(); err == nil {
		t.Fatalf("expected flush after close to fail")
	}
}
