package chatparse

import (
	"context"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vishnutej000/Memories-sub001/internal/core"
)

const (
	defaultSampleLines = 50
	defaultCheckEvery  = 500
)

// Options tune a single parse. The zero value is usable.
type Options struct {
	// Now anchors 2-digit year expansion; zero means the wall clock. Tests
	// inject a fixed instant for determinism.
	Now time.Time
	// SampleLines bounds the format-detection sample (default 50).
	SampleLines int
	// CheckEvery is the line interval between cancellation checks
	// (default 500).
	CheckEvery int
	// NextID overrides message-id minting.
	NextID func() string
	// Trace, when set, collects per-stage counters for the document.
	Trace *Trace
}

// NewMessageID mints the default message identifier.
func NewMessageID() string {
	u := uuid.New()
	return "msg_" + hex.EncodeToString(u[:4])
}

// Parse converts one exported transcript into a ParsedChat. The
// transformation is pure: no I/O, no shared state, same input and options
// give the same output. Zero recognizable messages is a valid empty result,
// not an error; the only error paths are cancellation via ctx.
func Parse(ctx context.Context, text string, opts Options) (core.ParsedChat, error) {
	sample := opts.SampleLines
	if sample <= 0 {
		sample = defaultSampleLines
	}
	checkEvery := opts.CheckEvery
	if checkEvery <= 0 {
		checkEvery = defaultCheckEvery
	}
	nextID := opts.NextID
	if nextID == nil {
		nextID = NewMessageID
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	format := DetectFormat(lines, sample)
	asm := NewAssembler(format, opts.Now, nextID, opts.Trace)

	for i, line := range lines {
		if i%checkEvery == 0 {
			select {
			case <-ctx.Done():
				// Discard partial state; a half-parsed document must never
				// reach the caller.
				return core.ParsedChat{}, ctx.Err()
			default:
			}
		}
		asm.Feed(line)
	}
	messages := asm.Finish()

	return core.ParsedChat{
		Messages:     messages,
		Participants: participantSet(messages),
		Range:        dateRange(messages),
	}, nil
}

func participantSet(messages []core.ChatMessage) []string {
	seen := make(map[string]struct{}, 8)
	var out []string
	for _, m := range messages {
		if _, ok := seen[m.Sender]; ok {
			continue
		}
		seen[m.Sender] = struct{}{}
		out = append(out, m.Sender)
	}
	sort.Strings(out)
	return out
}

func dateRange(messages []core.ChatMessage) *core.DateRange {
	if len(messages) == 0 {
		return nil
	}
	r := &core.DateRange{Start: messages[0].Ts, End: messages[0].Ts}
	for _, m := range messages[1:] {
		if m.Ts.Before(r.Start) {
			r.Start = m.Ts
		}
		if m.Ts.After(r.End) {
			r.End = m.Ts
		}
	}
	return r
}
