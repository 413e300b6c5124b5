//nolint:testpackage // using package name 'benchmark' to access unexported fields for testing
package benchmark

import (
	"testing"

	fuzzy "github.com/dzonerzy/go-argline/internal/fuzzy"
)

// Category: fuzzy (exported paths only)

var fuzzyCandidates = []string{
	"--help", "--verbose", "--config", "--output", "--input",
	"--force", "--debug", "--port", "--host", "--timeout", "--retries",
}

func BenchmarkMatcher_FindBest(b *testing.B) {
	matcher := fuzzy.NewMatcher(2)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		matcher.FindBest("--hepl", fuzzyCandidates)
	}
}

func BenchmarkMatcher_FindMatches(b *testing.B) {
	matcher := fuzzy.NewMatcher(2)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		matcher.FindMatches("--ver", fuzzyCandidates)
	}
}

func BenchmarkSuggestions(b *testing.B) {
	b.Run("SuggestFlag", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			fuzzy.SuggestFlag("--prot", fuzzyCandidates)
		}
	})
	b.Run("SuggestCommand", func(b *testing.B) {
		commands := []string{"move", "sink", "status", "quit"}
		for i := 0; i < b.N; i++ {
			fuzzy.SuggestCommand("mvoe", commands)
		}
	})
}
