package benchmark

import (
	"bytes"
	"testing"

	arglineio "github.com/dzonerzy/go-argline/io"
)

// Category: io

func BenchmarkIO_Styling(b *testing.B) {
	m := arglineio.New().ForceColor()
	s := "hello world"
	b.Run("Bold", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = m.Bold(s)
		}
	})
	b.Run("Underline", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = m.Underline(s)
		}
	})
}

func BenchmarkIO_Logger(b *testing.B) {
	buf := &bytes.Buffer{}
	m := arglineio.New().WithOut(buf).WithErr(buf).NoColor()
	formats := map[string]arglineio.LogFormat{
		"Symbols": arglineio.LogFormatSymbols,
		"Tagged":  arglineio.LogFormatTagged,
		"Plain":   arglineio.LogFormatPlain,
	}
	for name, format := range formats {
		log := arglineio.NewLogger(m).WithFormat(format)
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				log.Info("parsed %d arguments", i)
				buf.Reset()
			}
		})
	}
}
