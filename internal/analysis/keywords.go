package analysis

import (
	"sort"
	"strings"
	"unicode"

	"github.com/vishnutej000/Memories-sub001/internal/core"
)

// KeywordItem is one ranked keyword.
type KeywordItem struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// KeywordAnalysis holds the ranked keywords and the filtered token total.
type KeywordAnalysis struct {
	Keywords   []KeywordItem `json:"keywords"`
	TotalWords int           `json:"total_words"`
}

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "had": {}, "her": {}, "was": {},
	"one": {}, "our": {}, "out": {}, "has": {}, "him": {}, "his": {},
	"how": {}, "its": {}, "may": {}, "now": {}, "she": {}, "too": {},
	"use": {}, "that": {}, "with": {}, "have": {}, "this": {}, "will": {},
	"your": {}, "from": {}, "they": {}, "been": {}, "were": {}, "what": {},
	"when": {}, "where": {}, "which": {}, "their": {}, "there": {},
	"would": {}, "about": {}, "could": {}, "should": {}, "because": {},
	"just": {}, "like": {}, "them": {}, "then": {}, "than": {}, "some": {},
	"into": {}, "only": {}, "also": {}, "very": {}, "over": {}, "after": {},
	"dont": {}, "okay": {}, "yeah": {}, "yes": {},
}

// Keywords extracts the top-N alphabetic tokens across text messages,
// lowercased, stopword-filtered, minimum 3 characters, frequency ranked.
func Keywords(messages []core.ChatMessage, limit int) KeywordAnalysis {
	if limit <= 0 {
		limit = 20
	}

	counts := make(map[string]int)
	total := 0
	for _, m := range messages {
		if m.Type != core.TypeText || m.IsDeleted {
			continue
		}
		for _, field := range strings.Fields(strings.ToLower(m.Content)) {
			token := strings.TrimFunc(field, func(r rune) bool {
				return !unicode.IsLetter(r)
			})
			if len(token) < 3 || !isAlphabetic(token) {
				continue
			}
			if _, ok := stopWords[token]; ok {
				continue
			}
			counts[token]++
			total++
		}
	}

	ranked := make([]KeywordItem, 0, len(counts))
	for word, count := range counts {
		ranked = append(ranked, KeywordItem{Word: word, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Word < ranked[j].Word
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return KeywordAnalysis{Keywords: ranked, TotalWords: total}
}

func isAlphabetic(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
