package chatparse

import (
	"strings"
	"time"

	"github.com/vishnutej000/Memories-sub001/internal/core"
)

// Content markers the exporter substitutes for non-text payloads.
var (
	deletedMarkers = []string{
		"This message was deleted",
		"You deleted this message",
	}
	audioMarkers = []string{
		"audio omitted",
		"voice message omitted",
		"<Audio omitted>",
	}
	mediaMarkers = []string{
		"<Media omitted>",
		"image omitted",
		"video omitted",
		"sticker omitted",
		"GIF omitted",
		"document omitted",
	}
	forwardedMarkers = []string{
		"Forwarded message",
		"<Forwarded>",
	}
)

type assemblerState int

const (
	stateNone assemblerState = iota
	stateAccumulating
)

// pending is a message still collecting continuation lines.
type pending struct {
	ts      time.Time
	sender  string
	content strings.Builder
}

// Assembler folds raw lines into finished ChatMessages. It is a two-state
// machine: either no message is open, or one is accumulating continuation
// lines until the next message/system line or end of input closes it.
type Assembler struct {
	format Format
	now    time.Time
	nextID func() string
	trace  *Trace

	state    assemblerState
	current  pending
	messages []core.ChatMessage
}

// NewAssembler builds an assembler for the given dialect. now anchors 2-digit
// year expansion; nextID mints message identifiers.
func NewAssembler(format Format, now time.Time, nextID func() string, trace *Trace) *Assembler {
	return &Assembler{
		format: format,
		now:    now,
		nextID: nextID,
		trace:  trace,
	}
}

// Feed advances the state machine by one raw line.
func (a *Assembler) Feed(line string) {
	a.trace.Inc(StageLinesSeen)

	if strings.TrimSpace(line) == "" {
		return
	}

	// Timestamped line without a "sender:" part is a platform event.
	if a.format.Event.MatchString(line) {
		a.flush()
		a.trace.Inc(StageSkippedSystem)
		return
	}

	if m := a.format.Msg.FindStringSubmatch(line); m != nil {
		a.flush()

		dateStr, timeStr, sender, content := m[1], m[2], m[3], m[4]
		if isSystemEvent(sender, content) {
			a.trace.Inc(StageSkippedSystem)
			return
		}

		ts, err := NormalizeDate(dateStr, timeStr, a.now)
		if err != nil {
			// A single bad timestamp drops this candidate only; the scan
			// continues with the next line.
			a.trace.Inc(StageDropped("invalid_date"))
			return
		}

		a.current = pending{ts: ts, sender: NormalizeSender(sender)}
		a.current.content.WriteString(content)
		a.state = stateAccumulating
		a.trace.Inc(StageMessageStarted)
		return
	}

	if a.state == stateAccumulating {
		a.current.content.WriteString("\n")
		a.current.content.WriteString(line)
		a.trace.Inc(StageContinuation)
		return
	}

	// Unattributable line before any message started.
	a.trace.Inc(StageSkippedOrphan)
}

// Finish flushes any open message and returns everything assembled so far.
func (a *Assembler) Finish() []core.ChatMessage {
	a.flush()
	return a.messages
}

func (a *Assembler) flush() {
	if a.state != stateAccumulating {
		return
	}
	a.state = stateNone

	content := a.current.content.String()
	msg := core.ChatMessage{
		ID:      a.nextID(),
		Ts:      a.current.ts,
		Sender:  a.current.sender,
		Content: content,
		Type:    core.TypeText,
	}
	classifyContent(&msg)
	msg.EmojiCount = CountEmoji(content)

	a.messages = append(a.messages, msg)
	a.trace.Inc(StageMessagesEmitted)
	a.current = pending{}
}

// classifyContent sets the type tag and the deleted/forwarded flags from the
// final merged content. Deletion wins over media; audio is kept distinct from
// visual media so voice notes can be told apart downstream.
func classifyContent(msg *core.ChatMessage) {
	content := msg.Content
	if containsAny(content, deletedMarkers) {
		msg.IsDeleted = true
		return
	}
	switch {
	case containsAny(content, audioMarkers):
		msg.Type = core.TypeAudio
	case containsAny(content, mediaMarkers):
		msg.Type = core.TypeMedia
	}
	if containsAny(content, forwardedMarkers) {
		msg.IsForwarded = true
	}
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
