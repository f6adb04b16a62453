package chatparse

import "testing"

func TestNormalizeSender(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain name", "Alice", "Alice"},
		{"surrounding whitespace", "  Bob  ", "Bob"},
		{"phone annotation", "John Doe (+1 555-123-4567)", "John Doe"},
		{"label annotation", "John Doe (Work)", "John Doe"},
		{"owner marker untouched", "You", "You"},
		{"paren only", "(unknown)", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeSender(tc.in)
			if got != tc.want {
				t.Fatalf("NormalizeSender(%q) = %q, want %q", tc.in, got, tc.want)
			}
			// Normalizing twice must not change the result.
			if again := NormalizeSender(got); again != got {
				t.Fatalf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}
