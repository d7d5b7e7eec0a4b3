package names

import (
	"strings"
	"testing"
)

func TestNickname(t *testing.T) {
	for i := 0; i < 100; i++ {
		nick := Nickname()
		adj, noun, ok := strings.Cut(nick, " ")
		if !ok || adj == "" || noun == "" {
			t.Fatalf("malformed nickname %q", nick)
		}
	}
}

func TestEventNameSuggestions(t *testing.T) {
	t.Run("returns distinct names", func(t *testing.T) {
		got := EventNameSuggestions(5)
		if len(got) != 5 {
			t.Fatalf("expected 5 suggestions, got %d", len(got))
		}
		seen := map[string]bool{}
		for _, name := range got {
			if seen[name] {
				t.Errorf("duplicate suggestion %q", name)
			}
			seen[name] = true
		}
	})

	t.Run("caps at available themes", func(t *testing.T) {
		got := EventNameSuggestions(1000)
		if len(got) != len(eventThemes) {
			t.Fatalf("expected %d suggestions, got %d", len(eventThemes), len(got))
		}
	})
}
