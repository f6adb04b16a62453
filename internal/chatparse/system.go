package chatparse

import "strings"

// Platform event phrases. A matched message line whose content contains one
// of these describes a group/security/call event rather than something a
// participant typed; the line is dropped and contributes no participant.
var systemPhrases = []string{
	"Messages and calls are end-to-end encrypted",
	"Messages to this group are now secured",
	"You created group",
	"created this group",
	"created group",
	"added you",
	"You added",
	"You were added",
	"You removed",
	"You left",
	"joined using this group's invite link",
	"changed the subject",
	"changed this group's icon",
	"changed the group description",
	"changed their phone number",
	"Security code changed",
	"Missed voice call",
	"Missed video call",
	"Your security code with",
	"You blocked this contact",
	"You unblocked this contact",
}

// Verb-only phrases that need word matching to avoid eating ordinary
// sentences ("we removed the couch").
var systemVerbSuffixes = []string{
	" added ",
	" removed ",
	" left",
}

func isSystemContent(content string) bool {
	for _, phrase := range systemPhrases {
		if strings.Contains(content, phrase) {
			return true
		}
	}
	return false
}

// isSystemEvent reports whether a matched (timestamp, sender, content) line
// is really a platform event. Some dialects put the actor where the sender
// goes ("System: Alice added Bob"); content matching catches those too.
func isSystemEvent(sender, content string) bool {
	if isSystemContent(content) {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(sender), "System") {
		for _, suffix := range systemVerbSuffixes {
			if strings.Contains(" "+content+" ", suffix) {
				return true
			}
		}
	}
	return false
}
