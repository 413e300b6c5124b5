//nolint:testpackage // using package name 'benchmark' to access unexported fields for testing
package benchmark

import (
	"context"
	"testing"

	"github.com/dzonerzy/go-argline/argline"
	mw "github.com/dzonerzy/go-argline/middleware"
)

// Category: middleware

func BenchmarkMiddlewareChain(b *testing.B) {
	root := argline.New(argline.NewSchema("bench").MustBuild(), nil)
	run := argline.New(
		argline.NewSchema("run").Bool("verbose").Back().MustBuild(),
		func(*argline.Context) error { return nil },
	)
	run.Use(mw.SilentLogger(), mw.Recovery(mw.WithStackTrace(false)))
	root.MustAddCommand("run", run)

	args := []string{"run", "-v"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := root.RunArgs(context.Background(), args); err != nil {
			b.Fatal(err)
		}
	}
}

// NOTE: micro-benchmarks for individual middleware live in bench_middleware_unit_test.go.
