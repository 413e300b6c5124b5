//nolint:testpackage // using package name 'benchmark' to access unexported fields for testing
package benchmark

import (
	"io"
	"testing"

	mw "github.com/dzonerzy/go-argline/middleware"
)

// Minimal bench context implementing middleware.Context
type benchCtx struct {
	done chan struct{}
}

func newBenchCtx() *benchCtx { return &benchCtx{done: make(chan struct{})} }

func (b *benchCtx) Done() <-chan struct{} { return b.done }
func (b *benchCtx) Cancel()               { close(b.done) }
func (b *benchCtx) Line() string          { return `--name "Ann Lee" --verbose` }
func (b *benchCtx) Set(_ string, _ any)   {}
func (b *benchCtx) Get(_ string) any      { return nil }

// Command name is used by middleware for messages; provide a stub
type benchCmd struct{}

func (benchCmd) Name() string           { return "bench" }
func (benchCmd) Description() string    { return "" }
func (b *benchCtx) Command() mw.Command { return benchCmd{} }

var noop = func(_ mw.Context) error { return nil }

func benchAction(b *testing.B, action mw.ActionFunc) {
	b.Helper()
	ctx := newBenchCtx()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = action(ctx)
	}
}

func BenchmarkMW_SilentLogger(b *testing.B) {
	benchAction(b, mw.SilentLogger()(noop))
}

func BenchmarkMW_TextLogger(b *testing.B) {
	benchAction(b, mw.LoggerWithWriter(io.Discard)(noop))
}

func BenchmarkMW_JSONLogger(b *testing.B) {
	benchAction(b, mw.LoggerWithWriter(io.Discard, mw.WithLogFormat(mw.LogFormatJSON))(noop))
}

func BenchmarkMW_Recovery_NoStack(b *testing.B) {
	benchAction(b, mw.Recovery(mw.WithStackTrace(false))(noop))
}

func BenchmarkMW_NoopRecovery(b *testing.B) {
	benchAction(b, mw.NoopRecovery()(noop))
}

func BenchmarkMW_Chain(b *testing.B) {
	chain := mw.Chain(mw.SilentLogger(), mw.Recovery(mw.WithStackTrace(false)), mw.SafeRecovery())
	benchAction(b, chain.Apply(noop))
}
