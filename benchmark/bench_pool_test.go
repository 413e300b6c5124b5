package benchmark_test

import (
	"strconv"
	"testing"

	"github.com/dzonerzy/go-argline/internal/pool"
)

var tokenLine = []string{"move", "2", "-3", "--speed", "fast", "--label", "north east"}

func BenchmarkTokenSlices(b *testing.B) {
	b.Run("Pooled", func(b *testing.B) {
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				t := pool.GetTokens()
				*t = append(*t, tokenLine...)
				pool.PutTokens(t)
			}
		})
	})

	b.Run("Fresh", func(b *testing.B) {
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				t := make([]string, 0, 16)
				t = append(t, tokenLine...)
				_ = t
			}
		})
	})
}

func BenchmarkBufferClasses(b *testing.B) {
	bp := pool.NewBufferPool()
	for _, n := range []int{48, 200, 900, 3000, 9000} {
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			payload := make([]byte, n)
			b.ReportAllocs()
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					buf := bp.Get(n)
					*buf = append(*buf, payload...)
					bp.Put(buf)
				}
			})
		})
	}
}

type entry struct {
	fields map[string]any
}

func BenchmarkResetPool(b *testing.B) {
	p := pool.NewPoolWithReset(
		func() *entry { return &entry{fields: make(map[string]any, 4)} },
		func(e *entry) { clear(e.fields) },
	)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e := p.Get()
		e.fields["request_id"] = "r-1"
		e.fields["moved"] = i
		p.Put(e)
	}
}
