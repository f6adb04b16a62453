package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/vishnutej000/Memories-sub001/internal/core"
)

func msgAt(sender string, ts time.Time) core.ChatMessage {
	return core.ChatMessage{Sender: sender, Content: "hi", Type: core.TypeText, Ts: ts}
}

func TestCalculateEmpty(t *testing.T) {
	stats := Calculate(nil)
	if stats.TotalMessages != 0 || stats.Range != nil {
		t.Fatalf("unexpected empty stats: %+v", stats)
	}
	if stats.ByUser == nil || stats.ByDay == nil || stats.ByHour == nil {
		t.Fatalf("expected empty slices, not nil")
	}
}

func TestCalculateCountsAndRanking(t *testing.T) {
	// Friday 2023-05-12 and Saturday 2023-05-13.
	fri := time.Date(2023, time.May, 12, 9, 0, 0, 0, time.UTC)
	sat := time.Date(2023, time.May, 13, 21, 0, 0, 0, time.UTC)

	messages := []core.ChatMessage{
		msgAt("Alice", fri),
		msgAt("Alice", fri.Add(time.Minute)),
		msgAt("Alice", sat),
		msgAt("Bob", fri.Add(2*time.Minute)),
	}

	stats := Calculate(messages)
	if stats.TotalMessages != 4 {
		t.Fatalf("expected 4 total, got %d", stats.TotalMessages)
	}
	if stats.Range == nil || !stats.Range.Start.Equal(fri) || !stats.Range.End.Equal(sat) {
		t.Fatalf("range mismatch: %+v", stats.Range)
	}

	if len(stats.ByUser) != 2 || stats.ByUser[0].User != "Alice" || stats.ByUser[0].Count != 3 {
		t.Fatalf("unexpected user ranking: %+v", stats.ByUser)
	}
	if math.Abs(stats.ByUser[0].Percentage-75.0) > 1e-9 {
		t.Fatalf("expected 75%%, got %v", stats.ByUser[0].Percentage)
	}

	if stats.BusiestDay != "Friday" || stats.QuietestDay != "Saturday" {
		t.Fatalf("day ranking mismatch: busiest=%q quietest=%q", stats.BusiestDay, stats.QuietestDay)
	}
	if stats.BusiestHour != 9 {
		t.Fatalf("expected busiest hour 9, got %d", stats.BusiestHour)
	}

	// 4 messages over 2 active dates.
	if math.Abs(stats.AverageMessagesDay-2.0) > 1e-9 {
		t.Fatalf("expected 2.0 avg/day, got %v", stats.AverageMessagesDay)
	}
}

func TestCalculateUserTieBreaksByName(t *testing.T) {
	ts := time.Date(2023, time.May, 12, 9, 0, 0, 0, time.UTC)
	stats := Calculate([]core.ChatMessage{msgAt("Zed", ts), msgAt("Amy", ts)})
	if stats.ByUser[0].User != "Amy" {
		t.Fatalf("expected alphabetical tie-break, got %+v", stats.ByUser)
	}
}
