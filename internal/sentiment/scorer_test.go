package sentiment

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/vishnutej000/Memories-sub001/internal/core"
)

func textMsg(content string) core.ChatMessage {
	return core.ChatMessage{
		ID:      "msg_test",
		Ts:      time.Date(2023, time.May, 12, 14, 30, 0, 0, time.UTC),
		Sender:  "Alice",
		Content: content,
		Type:    core.TypeText,
	}
}

func TestScorePositiveWithEmoji(t *testing.T) {
	// "great" plus two positive emoji, three tokens: base 1.0 diluted by
	// 3/40 of the cap.
	got := Score(textMsg("Great news! 😊😊"))
	want := 0.9625
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestScoreNegative(t *testing.T) {
	got := Score(textMsg("that was terrible 😢"))
	if got >= 0 {
		t.Fatalf("expected negative score, got %v", got)
	}
}

func TestScoreNeutralNoLexiconHits(t *testing.T) {
	if got := Score(textMsg("see you at the station at six")); got != 0 {
		t.Fatalf("expected 0 for neutral text, got %v", got)
	}
}

func TestScoreNegationFlipsPolarity(t *testing.T) {
	plain := Score(textMsg("this is good"))
	negated := Score(textMsg("this is not good"))
	if plain <= 0 {
		t.Fatalf("expected positive baseline, got %v", plain)
	}
	if negated >= 0 {
		t.Fatalf("expected negation to flip polarity, got %v", negated)
	}

	// Double negation cancels out.
	doubled := Score(textMsg("no no it is good"))
	if doubled <= 0 {
		t.Fatalf("expected even negation count to keep polarity, got %v", doubled)
	}
}

func TestScoreSnapsNearNeutralToZero(t *testing.T) {
	// 6 positive vs 5 negative hits: base 1/11, well under the snap
	// threshold after dilution.
	content := strings.TrimSpace(strings.Repeat("good ", 6) + strings.Repeat("bad ", 5))
	if got := Score(textMsg(content)); got != 0 {
		t.Fatalf("expected near-neutral snap to 0, got %v", got)
	}
}

func TestScoreBounds(t *testing.T) {
	for _, content := range []string{
		strings.Repeat("love ", 30),
		strings.Repeat("hate ", 30),
		"😂😂😂😂😂😂😂😂",
	} {
		got := Score(textMsg(content))
		if got < -1 || got > 1 {
			t.Fatalf("score out of bounds for %q: %v", content, got)
		}
	}
}

func TestScoreLongMessageDilution(t *testing.T) {
	short := Score(textMsg("good"))
	long := Score(textMsg("good " + strings.Repeat("word ", 50)))
	if long >= short {
		t.Fatalf("expected dilution: short=%v long=%v", short, long)
	}
	// Dilution bottoms out at half the undiluted magnitude.
	if long < short/2-1e-9 {
		t.Fatalf("dilution exceeded 50%%: short=%v long=%v", short, long)
	}
}

func TestScoreSkipsNonTextAndDeleted(t *testing.T) {
	media := textMsg("awesome 😍")
	media.Type = core.TypeMedia
	if got := Score(media); got != 0 {
		t.Fatalf("expected 0 for media, got %v", got)
	}

	audio := textMsg("love it")
	audio.Type = core.TypeAudio
	if got := Score(audio); got != 0 {
		t.Fatalf("expected 0 for audio, got %v", got)
	}

	deleted := textMsg("great stuff")
	deleted.IsDeleted = true
	if got := Score(deleted); got != 0 {
		t.Fatalf("expected 0 for deleted, got %v", got)
	}
}

func TestScoreAllMatchesScore(t *testing.T) {
	messages := []core.ChatMessage{
		textMsg("Great news! 😊😊"),
		textMsg("that was terrible"),
		textMsg("see you tomorrow"),
	}
	media := textMsg("awesome")
	media.Type = core.TypeMedia
	messages = append(messages, media)

	scored := ScoreAll(messages)
	if len(scored) != len(messages) {
		t.Fatalf("length mismatch: %d vs %d", len(scored), len(messages))
	}
	for i, msg := range scored {
		if msg.ID != messages[i].ID || msg.Content != messages[i].Content {
			t.Fatalf("order disturbed at %d", i)
		}
		if want := Score(messages[i]); msg.SentimentScore != want {
			t.Fatalf("index %d: ScoreAll=%v Score=%v", i, msg.SentimentScore, want)
		}
	}
	// Input slice must be untouched.
	for i, msg := range messages {
		if msg.SentimentScore != 0 {
			t.Fatalf("input mutated at %d: %v", i, msg.SentimentScore)
		}
	}
}

func TestScoreAllEmpty(t *testing.T) {
	if got := ScoreAll(nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
}
