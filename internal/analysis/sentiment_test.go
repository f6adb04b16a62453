package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/vishnutej000/Memories-sub001/internal/core"
)

func scoredAt(day int, score float64) core.ChatMessage {
	return core.ChatMessage{
		Sender:         "Alice",
		Content:        "scored",
		Type:           core.TypeText,
		Ts:             time.Date(2023, time.May, day, 12, 0, 0, 0, time.UTC),
		SentimentScore: score,
	}
}

func TestLabelFor(t *testing.T) {
	cases := []struct {
		score float64
		want  SentimentLabel
	}{
		{0.5, LabelPositive},
		{0.05, LabelPositive},
		{0.049, LabelNeutral},
		{0, LabelNeutral},
		{-0.049, LabelNeutral},
		{-0.05, LabelNegative},
		{-0.9, LabelNegative},
	}
	for _, tc := range cases {
		if got := LabelFor(tc.score); got != tc.want {
			t.Fatalf("LabelFor(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestSentimentDailyBucketsAndOverall(t *testing.T) {
	messages := []core.ChatMessage{
		scoredAt(12, 0.8),
		scoredAt(12, 0.4),
		scoredAt(13, -0.6),
	}

	summary := Sentiment(messages)
	if len(summary.Daily) != 2 {
		t.Fatalf("expected 2 days, got %d", len(summary.Daily))
	}
	first := summary.Daily[0]
	if first.Date != "2023-05-12" || first.MessageCount != 2 {
		t.Fatalf("unexpected first day: %+v", first)
	}
	if math.Abs(first.Sentiment.Score-0.6) > 1e-9 || first.Sentiment.Label != LabelPositive {
		t.Fatalf("unexpected first day sentiment: %+v", first.Sentiment)
	}
	second := summary.Daily[1]
	if second.Date != "2023-05-13" || second.Sentiment.Label != LabelNegative {
		t.Fatalf("unexpected second day: %+v", second)
	}

	// Overall is the mean of the daily means: (0.6 + -0.6) / 2 = 0.
	if summary.Overall.Score != 0 || summary.Overall.Label != LabelNeutral {
		t.Fatalf("unexpected overall: %+v", summary.Overall)
	}
}

func TestSentimentSkipsNonText(t *testing.T) {
	media := scoredAt(12, 0.9)
	media.Type = core.TypeMedia
	deleted := scoredAt(12, 0.9)
	deleted.IsDeleted = true

	summary := Sentiment([]core.ChatMessage{media, deleted})
	if len(summary.Daily) != 0 {
		t.Fatalf("non-text messages leaked into daily buckets: %+v", summary.Daily)
	}
	if summary.Overall.Label != LabelNeutral {
		t.Fatalf("expected neutral overall for empty input, got %+v", summary.Overall)
	}
}
