package chatparse

// Unicode blocks with emoji presentation. Variation selectors and ZWJ are
// deliberately not counted, so a joined sequence counts once per pictograph
// rather than once per codepoint.
var emojiRanges = [][2]rune{
	{0x1F300, 0x1F5FF}, // symbols and pictographs
	{0x1F600, 0x1F64F}, // emoticons
	{0x1F680, 0x1F6FF}, // transport and map
	{0x1F900, 0x1F9FF}, // supplemental symbols
	{0x1FA70, 0x1FAFF}, // symbols extended-A
	{0x1F1E6, 0x1F1FF}, // regional indicators
	{0x2600, 0x26FF},   // miscellaneous symbols
	{0x2700, 0x27BF},   // dingbats
}

// CountEmoji counts runes with emoji presentation in s.
func CountEmoji(s string) int {
	count := 0
	for _, r := range s {
		for _, rng := range emojiRanges {
			if r >= rng[0] && r <= rng[1] {
				count++
				break
			}
		}
	}
	return count
}
