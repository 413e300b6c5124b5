package fuzzy

import (
	"testing"
)

func TestMatcher_FindBest(t *testing.T) {
	matcher := NewMatcher(2)

	tests := []struct {
		name       string
		input      string
		candidates []string
		expected   string
	}{
		{"exact match excluded", "move", []string{"move", "sink", "quit"}, ""},
		{"simple typo", "mvoe", []string{"move", "sink", "quit"}, "move"},
		{"missing letter", "snk", []string{"move", "sink", "quit"}, "sink"},
		{"no good match", "xyz", []string{"move", "sink"}, ""},
		{"too short", "m", []string{"move"}, ""},
		{"case insensitive", "SINK", []string{"sink"}, ""},
		{"case insensitive typo", "SNK", []string{"sink"}, "sink"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := matcher.FindBest(tt.input, tt.candidates)
			if result != tt.expected {
				t.Errorf("FindBest(%q, %v) = %q, want %q", tt.input, tt.candidates, result, tt.expected)
			}
		})
	}
}

func TestMatcher_Ordering(t *testing.T) {
	matches := NewMatcher(2).FindMatches("port", []string{"sort", "porta", "pot", "host"})
	if len(matches) == 0 {
		t.Fatal("Expected matches")
	}
	if matches[0].Value != "porta" {
		t.Errorf("Expected prefix match 'porta' first, got %q", matches[0].Value)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i-1].Score < matches[i].Score {
			t.Errorf("Matches not sorted by score: %v", matches)
		}
	}
}

func TestMatcher_Distance(t *testing.T) {
	m := NewMatcher(3)
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"abc", "ab", 1},
		{"kitten", "sitting", 3},
		{"a", "abcdef", 4}, // beyond max, reported as max+1
	}
	for _, tt := range tests {
		if got := m.distance(tt.a, tt.b); got != tt.want {
			t.Errorf("distance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSuggestFlag(t *testing.T) {
	flags := []string{"--name", "-n", "--texts", "-t", "--port"}

	tests := []struct {
		input string
		want  string
	}{
		{"--nmae", "--name"},
		{"--txets", "--texts"},
		{"-prot", "--port"},
		{"--zzzzzz", ""},
	}
	for _, tt := range tests {
		if got := SuggestFlag(tt.input, flags); got != tt.want {
			t.Errorf("SuggestFlag(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSuggestCommand(t *testing.T) {
	if got := SuggestCommand("mve", []string{"move", "sink", "quit"}); got != "move" {
		t.Errorf("Expected 'move', got %q", got)
	}
	if got := SuggestCommand("launch", []string{"move", "sink"}); got != "" {
		t.Errorf("Expected no suggestion, got %q", got)
	}
}
