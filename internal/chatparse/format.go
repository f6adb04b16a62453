package chatparse

import "regexp"

// Format is one known transcript line dialect. Msg matches a message line and
// captures (date, time, sender, content); Event matches a timestamped line
// that carries no "sender: " part (group events, encryption notices).
type Format struct {
	Name  string
	Msg   *regexp.Regexp
	Event *regexp.Regexp
}

const datePart = `(\d{1,4}[/.\-]\d{1,2}[/.\-]\d{1,4})`

// Dialects in priority order: most specific first, ties in the detector vote
// go to the earlier entry. The set mirrors the exports seen in the wild:
// bracketed iOS-style with seconds, dashed Android-style with and without
// AM/PM, with and without seconds.
var formats = []Format{
	{
		Name:  "bracket-seconds",
		Msg:   regexp.MustCompile(`^\[` + datePart + `,? (\d{1,2}:\d{2}:\d{2}(?: ?(?:AM|PM|am|pm))?)\] ([^:]+): (.*)$`),
		Event: regexp.MustCompile(`^\[` + datePart + `,? \d{1,2}:\d{2}:\d{2}(?: ?(?:AM|PM|am|pm))?\] [^:]*$`),
	},
	{
		Name:  "dash-ampm",
		Msg:   regexp.MustCompile(`^` + datePart + `, (\d{1,2}:\d{2}(?::\d{2})? ?(?:AM|PM|am|pm)) - ([^:]+): (.*)$`),
		Event: regexp.MustCompile(`^` + datePart + `, \d{1,2}:\d{2}(?::\d{2})? ?(?:AM|PM|am|pm) - [^:]*$`),
	},
	{
		Name:  "dash-seconds",
		Msg:   regexp.MustCompile(`^` + datePart + `, (\d{1,2}:\d{2}:\d{2}) - ([^:]+): (.*)$`),
		Event: regexp.MustCompile(`^` + datePart + `, \d{1,2}:\d{2}:\d{2} - [^:]*$`),
	},
	{
		Name:  "dash-24h",
		Msg:   regexp.MustCompile(`^` + datePart + `, (\d{1,2}:\d{2}) - ([^:]+): (.*)$`),
		Event: regexp.MustCompile(`^` + datePart + `, \d{1,2}:\d{2} - [^:]*$`),
	},
	{
		Name:  "bracket-minutes",
		Msg:   regexp.MustCompile(`^\[` + datePart + `,? (\d{1,2}:\d{2}(?: ?(?:AM|PM|am|pm))?)\] ([^:]+): (.*)$`),
		Event: regexp.MustCompile(`^\[` + datePart + `,? \d{1,2}:\d{2}(?: ?(?:AM|PM|am|pm))?\] [^:]*$`),
	},
}

// DefaultFormat is returned when no sampled line matches any dialect. The
// assembler then simply emits zero messages; detection never fails.
func DefaultFormat() Format { return formats[0] }

// DetectFormat votes each known dialect against the first sampleLines lines
// and returns the dialect with the most message-line matches. Ties keep the
// higher-priority dialect.
func DetectFormat(lines []string, sampleLines int) Format {
	if sampleLines <= 0 {
		sampleLines = 50
	}
	if len(lines) > sampleLines {
		lines = lines[:sampleLines]
	}

	best := DefaultFormat()
	bestCount := 0
	for _, f := range formats {
		count := 0
		for _, line := range lines {
			if f.Msg.MatchString(line) {
				count++
			}
		}
		if count > bestCount {
			best = f
			bestCount = count
		}
	}
	return best
}
