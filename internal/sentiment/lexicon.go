package sentiment

// Fixed lexicons for the heuristic scorer. Entries are matched by substring
// containment on lower-cased content, so emoji glyphs sit in the same lists
// as words.
var positiveLexicon = []string{
	"good", "great", "awesome", "amazing", "excellent", "fantastic",
	"wonderful", "love", "happy", "glad", "nice", "best", "perfect",
	"thanks", "thank you", "congrats", "congratulations", "beautiful",
	"brilliant", "cool", "enjoy", "excited", "fun", "haha", "lol",
	"yay", "win", "wow",
	"😊", "😍", "😂", "🤣", "😁", "😄", "🎉", "❤", "👍", "🥰", "✨",
}

var negativeLexicon = []string{
	"bad", "terrible", "awful", "horrible", "worst", "hate", "sad",
	"angry", "annoyed", "annoying", "upset", "disappointed", "sorry",
	"problem", "wrong", "fail", "failed", "broken", "sick", "tired",
	"cry", "pain", "hurt", "ugh", "unfortunately", "worried", "afraid",
	"😢", "😭", "😡", "😠", "💔", "👎", "😞", "😔", "😕",
}

// Negation triggers counted as isolated words; odd parity flips the score.
var negationTriggers = map[string]struct{}{
	"not":       {},
	"no":        {},
	"never":     {},
	"don't":     {},
	"dont":      {},
	"can't":     {},
	"cant":      {},
	"won't":     {},
	"wont":      {},
	"isn't":     {},
	"isnt":      {},
	"wasn't":    {},
	"wasnt":     {},
	"didn't":    {},
	"didnt":     {},
	"doesn't":   {},
	"doesnt":    {},
	"couldn't":  {},
	"couldnt":   {},
	"wouldn't":  {},
	"wouldnt":   {},
	"shouldn't": {},
	"shouldnt":  {},
}
