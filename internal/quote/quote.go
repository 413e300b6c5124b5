// Package quote splits command lines into tokens and joins them back.
//
// The grammar has a single quote character (default '"'). Text between a
// pair of quotes is one token, taken verbatim. Everything else is split on
// whitespace. There are no escapes: a token can not contain the quote
// character itself.
package quote

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dzonerzy/go-argline/internal/pool"
)

// DefaultQuote is the quote character used by Split and Join.
const DefaultQuote = '"'

// ErrUnbalancedQuote is matched by every UnbalancedQuoteError.
var ErrUnbalancedQuote = errors.New("unbalanced quote")

// UnbalancedQuoteError reports a quote character without a matching partner.
type UnbalancedQuoteError struct {
	Line   string
	Quote  rune
	Offset int // byte offset of the unmatched quote
}

func (e *UnbalancedQuoteError) Error() string {
	return fmt.Sprintf("unbalanced quote %q at offset %d in %q", e.Quote, e.Offset, e.Line)
}

func (e *UnbalancedQuoteError) Unwrap() error { return ErrUnbalancedQuote }

// Tokenizer splits and joins with a fixed quote character.
type Tokenizer struct {
	quote rune
}

var defaultTokenizer = Tokenizer{quote: DefaultQuote}

// New returns a tokenizer using q as quote character. Whitespace and the
// zero rune fall back to DefaultQuote.
func New(q rune) Tokenizer {
	if q == 0 || unicode.IsSpace(q) || q == utf8.RuneError {
		q = DefaultQuote
	}
	return Tokenizer{quote: q}
}

// Quote returns the quote character.
func (t Tokenizer) Quote() rune {
	if t.quote == 0 {
		return DefaultQuote
	}
	return t.quote
}

// Split converts line into tokens.
func (t Tokenizer) Split(line string) ([]string, error) {
	q := string(t.Quote())
	parts := strings.Split(line, q)
	// every quote opens or closes a token, so an even part count means one is left open
	if len(parts)%2 == 0 {
		return nil, &UnbalancedQuoteError{Line: line, Quote: t.Quote(), Offset: strings.LastIndex(line, q)}
	}

	tokens := make([]string, 0, len(parts))
	for i, part := range parts {
		if i%2 == 1 {
			tokens = append(tokens, part)
			continue
		}
		tokens = append(tokens, strings.Fields(part)...)
	}
	return tokens, nil
}

// Join renders tokens as a single line. Empty tokens and tokens containing
// whitespace are quoted.
func (t Tokenizer) Join(tokens []string) string {
	size := 0
	for _, tok := range tokens {
		size += len(tok) + 3
	}
	buf := pool.GetBuffer(size)
	defer pool.PutBuffer(buf)

	for i, tok := range tokens {
		if i > 0 {
			*buf = append(*buf, ' ')
		}
		if NeedsQuote(tok) {
			*buf = utf8.AppendRune(*buf, t.Quote())
			*buf = append(*buf, tok...)
			*buf = utf8.AppendRune(*buf, t.Quote())
			continue
		}
		*buf = append(*buf, tok...)
	}
	return string(*buf)
}

// Representable reports whether tok survives a Join/Split round trip.
func (t Tokenizer) Representable(tok string) bool {
	return !strings.ContainsRune(tok, t.Quote())
}

// NeedsQuote reports whether Join wraps tok in quotes.
func NeedsQuote(tok string) bool {
	return tok == "" || strings.IndexFunc(tok, unicode.IsSpace) >= 0
}

// Split converts line into tokens using DefaultQuote.
func Split(line string) ([]string, error) { return defaultTokenizer.Split(line) }

// Join renders tokens using DefaultQuote.
func Join(tokens []string) string { return defaultTokenizer.Join(tokens) }
