//nolint:testpackage // using package name 'benchmark' to access unexported fields for testing
package benchmark

import (
	"testing"

	"github.com/dzonerzy/go-argline/argline"
	"github.com/dzonerzy/go-argline/internal/quote"
)

// Category: parser

func simpleSchema() *argline.Schema {
	return argline.NewSchema("bench").
		Int("port").Default(8080).Back().
		Bool("verbose").Back().
		MustBuild()
}

func BenchmarkParserSimple(b *testing.B) {
	schema := simpleSchema()
	args := []string{"--port", "8080", "--verbose"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		values, err := schema.Parse(args)
		if err != nil {
			b.Fatal(err)
		}
		if v, _ := values["verbose"].(bool); !v {
			b.Fatalf("verbose not parsed")
		}
	}
}

func BenchmarkParserPositional(b *testing.B) {
	schema := argline.NewSchema("bench").
		Int("one").Back().
		Int("many").Many().Back().
		Int("two").Back().
		MustBuild()
	args := []string{"1", "2", "3", "4", "5"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := schema.Parse(args); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParserShortFlags(b *testing.B) {
	schema := simpleSchema()
	args := []string{"-v", "-p", "8080"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := schema.Parse(args); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParserErrorSuggestion(b *testing.B) {
	schema := simpleSchema()
	args := []string{"--prot", "8080"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := schema.Parse(args); err == nil {
			b.Fatal("expected error")
		}
	}
}

func BenchmarkComprehensiveTypes(b *testing.B) {
	schema := argline.NewSchema("bench").
		String("name").Back().
		Int("port").Back().
		Duration("timeout").Back().
		Float("ratio").Back().
		Date("since").Back().
		String("tags").Many().Back().
		Int("ports").Many().Back().
		Choice("mode", "fast", "safe").Default("safe").Back().
		Bool("verbose").Back().
		MustBuild()
	args := []string{
		"--name", "go-argline",
		"--port", "0xFF",
		"--timeout", "1h30m",
		"--ratio", "3.14",
		"--since", "2024-01-31",
		"--tags", "cli", "parser", "go",
		"--ports", "80", "443", "8080",
		"--mode", "fast",
		"--verbose",
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := schema.Parse(args); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTokenizer(b *testing.B) {
	line := `copy "my file.txt" other.txt "" --mode fast --tags a "b c"`
	b.Run("Split", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, err := quote.Split(line); err != nil {
				b.Fatal(err)
			}
		}
	})
	tokens, _ := quote.Split(line)
	b.Run("Join", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = quote.Join(tokens)
		}
	})
}

func BenchmarkCommandRendering(b *testing.B) {
	schema := argline.NewSchema("bench").
		String("src").Many().Back().
		String("dest").Back().
		Int("retries").Default(3).Back().
		Bool("force").Back().
		MustBuild()
	values := argline.NewValues(schema)
	if err := values.Update(map[string]any{
		"src":     []string{"a b.txt", "c.txt"},
		"dest":    "out",
		"retries": 5,
		"force":   true,
	}); err != nil {
		b.Fatal(err)
	}
	for _, short := range []bool{false, true} {
		name := "Long"
		if short {
			name = "Short"
		}
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := values.Command(short); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
