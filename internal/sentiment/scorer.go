package sentiment

import (
	"math"
	"runtime"
	"strings"
	"sync"

	"github.com/vishnutej000/Memories-sub001/internal/core"
)

const (
	// tokenCap bounds the length-dilution contribution.
	tokenCap = 40.0
	// snapThreshold zeroes near-neutral scores.
	snapThreshold = 0.1
)

// Score computes the bounded sentiment of one message. Non-text and deleted
// messages score exactly 0 by convention so downstream aggregation never
// needs a null check.
func Score(msg core.ChatMessage) float64 {
	if msg.Type != core.TypeText || msg.IsDeleted {
		return 0
	}
	return scoreText(msg.Content)
}

func scoreText(content string) float64 {
	lowered := strings.ToLower(content)

	positive := countOccurrences(lowered, positiveLexicon)
	negative := countOccurrences(lowered, negativeLexicon)
	if positive+negative == 0 {
		return 0
	}

	score := float64(positive-negative) / float64(positive+negative)
	if countNegations(lowered)%2 == 1 {
		score = -score
	}

	// Long messages dilute the signal: pull magnitude toward 0 by up to 50%.
	tokenCount := float64(len(strings.Fields(content)))
	intensity := 1 - math.Min(0.5, tokenCount/tokenCap)
	score *= 0.5 + intensity/2

	score = math.Max(-1, math.Min(1, score))
	if math.Abs(score) < snapThreshold {
		return 0
	}
	return score
}

func countOccurrences(lowered string, lexicon []string) int {
	total := 0
	for _, entry := range lexicon {
		total += strings.Count(lowered, entry)
	}
	return total
}

func countNegations(lowered string) int {
	count := 0
	for _, field := range strings.Fields(lowered) {
		word := strings.Trim(field, ".,!?;:\"'()")
		if _, ok := negationTriggers[word]; ok {
			count++
		}
	}
	return count
}

// ScoreAll returns a copy of messages with SentimentScore populated. Each
// message scores independently, so the pass shards across goroutines with a
// results slice indexed by position; no ordering constraint, no shared
// mutable state.
func ScoreAll(messages []core.ChatMessage) []core.ChatMessage {
	out := make([]core.ChatMessage, len(messages))
	copy(out, messages)
	if len(out) == 0 {
		return out
	}

	shards := runtime.GOMAXPROCS(0)
	if shards > len(out) {
		shards = len(out)
	}
	chunk := (len(out) + shards - 1) / shards

	var wg sync.WaitGroup
	for start := 0; start < len(out); start += chunk {
		end := start + chunk
		if end > len(out) {
			end = len(out)
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				out[i].SentimentScore = Score(out[i])
			}
		}(start, end)
	}
	wg.Wait()
	return out
}
