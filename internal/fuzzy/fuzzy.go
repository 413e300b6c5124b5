// Package fuzzy ranks candidate names for "did you mean" hints.
// Used by argline when a leftover token resembles a flag or a sub-command.
package fuzzy

import (
	"sort"
	"strings"
)

// DefaultMaxDistance is the edit distance used by SuggestFlag and SuggestCommand.
const DefaultMaxDistance = 2

// Matcher ranks candidates by edit distance.
type Matcher struct {
	maxDistance int
	minLength   int
}

// NewMatcher creates a matcher accepting at most maxDistance edits.
func NewMatcher(maxDistance int) *Matcher {
	return &Matcher{
		maxDistance: maxDistance,
		minLength:   2,
	}
}

// Match is one ranked candidate.
type Match struct {
	Value    string
	Distance int
	Score    float64 // 0.0 to 1.0, higher is better
}

// FindBest returns the best candidate or "" when none is close enough.
func (m *Matcher) FindBest(input string, candidates []string) string {
	matches := m.FindMatches(input, candidates)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Value
}

// FindMatches returns all candidates within range, best first. Exact
// matches are skipped: they are not typos.
func (m *Matcher) FindMatches(input string, candidates []string) []Match {
	if len(input) < m.minLength {
		return nil
	}

	input = strings.ToLower(input)
	var matches []Match
	for _, candidate := range candidates {
		lower := strings.ToLower(candidate)
		if lower == input {
			continue
		}
		distance := m.distance(input, lower)
		if distance > m.maxDistance {
			continue
		}
		matches = append(matches, Match{
			Value:    candidate,
			Distance: distance,
			Score:    m.score(input, lower, distance),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// score blends edit distance with a prefix bonus.
func (m *Matcher) score(input, candidate string, distance int) float64 {
	longest := max(len(input), len(candidate))
	if longest == 0 {
		return 1.0
	}
	s := 1.0 - float64(distance)/float64(longest)

	prefix := 0
	for prefix < len(input) && prefix < len(candidate) && input[prefix] == candidate[prefix] {
		prefix++
	}
	if shortest := min(len(input), len(candidate)); shortest > 0 {
		s += float64(prefix) / float64(shortest) * 0.3
	}
	return min(s, 1.0)
}

// distance is the Levenshtein distance, cut short once it exceeds maxDistance.
func (m *Matcher) distance(a, b string) int {
	if abs(len(a)-len(b)) > m.maxDistance {
		return m.maxDistance + 1
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for i := range prev {
		prev[i] = i
	}

	for i := 1; i <= len(b); i++ {
		curr[0] = i
		rowMin := i
		for j := 1; j <= len(a); j++ {
			cost := 1
			if a[j-1] == b[i-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
			rowMin = min(rowMin, curr[j])
		}
		if rowMin > m.maxDistance {
			return m.maxDistance + 1
		}
		prev, curr = curr, prev
	}
	return prev[len(a)]
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

// SuggestFlag finds the flag closest to input. Leading dashes are ignored
// while comparing, the returned value is the flag as given in flags.
func SuggestFlag(input string, flags []string) string {
	bare := strings.TrimLeft(input, "-")
	names := make([]string, len(flags))
	for i, f := range flags {
		names[i] = strings.TrimLeft(f, "-")
	}
	best := NewMatcher(DefaultMaxDistance).FindBest(bare, names)
	if best == "" {
		return ""
	}
	for i, n := range names {
		if n == best && strings.HasPrefix(flags[i], "--") {
			return flags[i]
		}
	}
	return "--" + best
}

// SuggestCommand finds the sub-command closest to input.
func SuggestCommand(input string, commands []string) string {
	return Suggest(input, commands)
}

// Suggest finds the candidate closest to input using DefaultMaxDistance.
func Suggest(input string, candidates []string) string {
	return NewMatcher(DefaultMaxDistance).FindBest(input, candidates)
}
