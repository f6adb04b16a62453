package analysis

import (
	"sort"

	"github.com/vishnutej000/Memories-sub001/internal/core"
)

// SentimentLabel buckets a score for display.
type SentimentLabel string

const (
	LabelPositive SentimentLabel = "positive"
	LabelNeutral  SentimentLabel = "neutral"
	LabelNegative SentimentLabel = "negative"
)

// SentimentScore pairs a numeric score with its label.
type SentimentScore struct {
	Score float64        `json:"score"`
	Label SentimentLabel `json:"label"`
}

// DailySentiment is the mean score of one calendar day.
type DailySentiment struct {
	Date         string         `json:"date"`
	Sentiment    SentimentScore `json:"sentiment"`
	MessageCount int            `json:"message_count"`
}

// SentimentSummary aggregates scored messages per day plus an overall mean.
type SentimentSummary struct {
	Overall SentimentScore   `json:"overall"`
	Daily   []DailySentiment `json:"daily"`
}

// LabelFor buckets a score: positive at >= 0.05, negative at <= -0.05.
func LabelFor(score float64) SentimentLabel {
	switch {
	case score >= 0.05:
		return LabelPositive
	case score <= -0.05:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// Sentiment aggregates already-scored messages. Only text messages
// contribute; days appear in chronological order.
func Sentiment(messages []core.ChatMessage) SentimentSummary {
	type bucket struct {
		sum   float64
		count int
	}
	byDate := make(map[string]*bucket)

	for _, m := range messages {
		if m.Type != core.TypeText || m.IsDeleted {
			continue
		}
		key := dateKey(m.Ts)
		b, ok := byDate[key]
		if !ok {
			b = &bucket{}
			byDate[key] = b
		}
		b.sum += m.SentimentScore
		b.count++
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	summary := SentimentSummary{Daily: []DailySentiment{}}
	total := 0.0
	for _, date := range dates {
		b := byDate[date]
		mean := b.sum / float64(b.count)
		total += mean
		summary.Daily = append(summary.Daily, DailySentiment{
			Date:         date,
			Sentiment:    SentimentScore{Score: mean, Label: LabelFor(mean)},
			MessageCount: b.count,
		})
	}
	if len(dates) > 0 {
		overall := total / float64(len(dates))
		summary.Overall = SentimentScore{Score: overall, Label: LabelFor(overall)}
	} else {
		summary.Overall = SentimentScore{Score: 0, Label: LabelNeutral}
	}
	return summary
}
