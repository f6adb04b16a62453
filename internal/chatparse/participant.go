package chatparse

import "strings"

// OwnerMarker is the reserved self-identifier some exports use for the
// account that produced the transcript. It passes through normalization
// untouched so it never collides with a contact named "You (…)".
const OwnerMarker = "You"

// NormalizeSender strips contact-style annotations from a raw sender string:
// "John Doe (+1 555-123-4567)" and "John Doe (Work)" both become "John Doe".
// The function is idempotent; an already-canonical name is returned as-is.
func NormalizeSender(raw string) string {
	s := strings.TrimSpace(raw)
	if s == OwnerMarker {
		return s
	}
	if i := strings.Index(s, "("); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
