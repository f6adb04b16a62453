package analysis

import (
	"testing"
	"time"

	"github.com/vishnutej000/Memories-sub001/internal/core"
)

func textAt(content string) core.ChatMessage {
	return core.ChatMessage{
		Sender:  "Alice",
		Content: content,
		Type:    core.TypeText,
		Ts:      time.Date(2023, time.May, 12, 9, 0, 0, 0, time.UTC),
	}
}

func TestKeywordsRankingAndFiltering(t *testing.T) {
	messages := []core.ChatMessage{
		textAt("the weekend plans: beach beach beach!"),
		textAt("Beach again, or maybe hiking?"),
		textAt("hiking it is"),
	}

	result := Keywords(messages, 10)
	if len(result.Keywords) == 0 {
		t.Fatalf("expected keywords")
	}
	if result.Keywords[0].Word != "beach" || result.Keywords[0].Count != 4 {
		t.Fatalf("expected beach x4 first, got %+v", result.Keywords[0])
	}
	for _, kw := range result.Keywords {
		if _, stop := stopWords[kw.Word]; stop {
			t.Fatalf("stopword leaked: %q", kw.Word)
		}
		if len(kw.Word) < 3 {
			t.Fatalf("short token leaked: %q", kw.Word)
		}
	}
}

func TestKeywordsSkipsNonTextAndDeleted(t *testing.T) {
	media := textAt("beach beach beach")
	media.Type = core.TypeMedia
	deleted := textAt("beach beach beach")
	deleted.IsDeleted = true

	result := Keywords([]core.ChatMessage{media, deleted}, 10)
	if len(result.Keywords) != 0 || result.TotalWords != 0 {
		t.Fatalf("non-text content leaked into keywords: %+v", result)
	}
}

func TestKeywordsDropsNonAlphabeticTokens(t *testing.T) {
	result := Keywords([]core.ChatMessage{textAt("call me at 5551234 or route66 tomorrow")}, 10)
	for _, kw := range result.Keywords {
		if kw.Word == "route66" || kw.Word == "5551234" {
			t.Fatalf("non-alphabetic token leaked: %q", kw.Word)
		}
	}
}

func TestKeywordsLimit(t *testing.T) {
	result := Keywords([]core.ChatMessage{textAt("apple banana cherry durian elderberry")}, 2)
	if len(result.Keywords) != 2 {
		t.Fatalf("expected limit 2, got %d", len(result.Keywords))
	}
	// Default limit when zero.
	result = Keywords([]core.ChatMessage{textAt("apple banana cherry")}, 0)
	if len(result.Keywords) != 3 {
		t.Fatalf("expected all 3 under default limit, got %d", len(result.Keywords))
	}
}
