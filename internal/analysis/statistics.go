package analysis

import (
	"sort"
	"time"

	"github.com/vishnutej000/Memories-sub001/internal/core"
)

// UserCount is one participant's share of the conversation.
type UserCount struct {
	User       string  `json:"user"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// DayCount counts messages sent on one weekday.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// HourCount counts messages sent in one hour of the day.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// Statistics summarizes messaging activity for a chat.
type Statistics struct {
	TotalMessages      int             `json:"total_messages"`
	Range              *core.DateRange `json:"dateRange,omitempty"`
	ByUser             []UserCount     `json:"message_count_by_user"`
	ByDay              []DayCount      `json:"message_count_by_day"`
	ByHour             []HourCount     `json:"message_count_by_hour"`
	AverageMessagesDay float64         `json:"average_messages_per_day"`
	BusiestDay         string          `json:"busiest_day"`
	QuietestDay        string          `json:"quietest_day"`
	BusiestHour        int             `json:"busiest_hour"`
}

// Calculate derives activity statistics from a message stream.
func Calculate(messages []core.ChatMessage) Statistics {
	if len(messages) == 0 {
		return Statistics{ByUser: []UserCount{}, ByDay: []DayCount{}, ByHour: []HourCount{}}
	}

	stats := Statistics{TotalMessages: len(messages)}

	rng := core.DateRange{Start: messages[0].Ts, End: messages[0].Ts}
	userCounts := make(map[string]int)
	dayCounts := make(map[string]int)
	hourCounts := make(map[int]int)
	activeDates := make(map[string]struct{})

	for _, m := range messages {
		if m.Ts.Before(rng.Start) {
			rng.Start = m.Ts
		}
		if m.Ts.After(rng.End) {
			rng.End = m.Ts
		}
		userCounts[m.Sender]++
		dayCounts[m.Ts.Weekday().String()]++
		hourCounts[m.Ts.Hour()]++
		activeDates[m.Ts.Format("2006-01-02")] = struct{}{}
	}
	stats.Range = &rng

	for user, count := range userCounts {
		stats.ByUser = append(stats.ByUser, UserCount{
			User:       user,
			Count:      count,
			Percentage: float64(count) / float64(len(messages)) * 100,
		})
	}
	sort.Slice(stats.ByUser, func(i, j int) bool {
		if stats.ByUser[i].Count != stats.ByUser[j].Count {
			return stats.ByUser[i].Count > stats.ByUser[j].Count
		}
		return stats.ByUser[i].User < stats.ByUser[j].User
	})

	for day, count := range dayCounts {
		stats.ByDay = append(stats.ByDay, DayCount{Day: day, Count: count})
	}
	sort.Slice(stats.ByDay, func(i, j int) bool {
		if stats.ByDay[i].Count != stats.ByDay[j].Count {
			return stats.ByDay[i].Count > stats.ByDay[j].Count
		}
		return stats.ByDay[i].Day < stats.ByDay[j].Day
	})
	if len(stats.ByDay) > 0 {
		stats.BusiestDay = stats.ByDay[0].Day
		stats.QuietestDay = stats.ByDay[len(stats.ByDay)-1].Day
	}

	for hour := 0; hour < 24; hour++ {
		if count, ok := hourCounts[hour]; ok {
			stats.ByHour = append(stats.ByHour, HourCount{Hour: hour, Count: count})
		}
	}
	busiest := 0
	for hour, count := range hourCounts {
		if count > hourCounts[busiest] || (count == hourCounts[busiest] && hour < busiest) {
			busiest = hour
		}
	}
	stats.BusiestHour = busiest

	stats.AverageMessagesDay = float64(len(messages)) / float64(len(activeDates))

	return stats
}

// dateKey formats a timestamp as the per-day bucket key.
func dateKey(ts time.Time) string {
	return ts.Format("2006-01-02")
}
