package argline

import (
	"fmt"
	"strings"

	"github.com/dzonerzy/go-argline/internal/fuzzy"
	"github.com/dzonerzy/go-argline/internal/pool"
	"github.com/dzonerzy/go-argline/internal/quote"
)

// ParseTokens assigns tokens to arguments without decoding them.
//
// Tokens before the first known flag are positional candidates; every flag
// opens a bucket that collects the tokens up to the next flag, a repeated
// flag starts its bucket over. Positional arguments not claimed by a flag
// then take tokens greedily from the left while they have bounded arity,
// then from the right, and a single remaining unbounded argument takes the
// rest. Arguments nobody supplied are RawAbsent.
func (s *Schema) ParseTokens(tokens []string) (map[string]Raw, error) {
	raw := make(map[string]Raw, s.args.Len())

	positionals := pool.GetTokens()
	defer pool.PutTokens(positionals)

	var current *Argument
	for _, tok := range tokens {
		if arg, ok := s.flags[tok]; ok {
			current = arg
			raw[arg.name] = Raw{State: RawFlagged}
			continue
		}
		if current == nil {
			*positionals = append(*positionals, tok)
			continue
		}
		r := raw[current.name]
		r.State = RawTokens
		r.Tokens = append(r.Tokens, tok)
		raw[current.name] = r
	}

	if err := s.assignPositionals(*positionals, raw); err != nil {
		return nil, err
	}

	for pair := s.args.Oldest(); pair != nil; pair = pair.Next() {
		if _, ok := raw[pair.Key]; !ok {
			raw[pair.Key] = Raw{State: RawAbsent}
		}
	}
	return raw, nil
}

func (s *Schema) assignPositionals(tokens []string, raw map[string]Raw) error {
	if len(tokens) == 0 {
		return nil
	}

	var candidates []*Argument
	for pair := s.args.Oldest(); pair != nil; pair = pair.Next() {
		if _, claimed := raw[pair.Key]; pair.Value.positional && !claimed {
			candidates = append(candidates, pair.Value)
		}
	}

	assign := func(a *Argument, toks []string) {
		raw[a.name] = Raw{State: RawTokens, Tokens: append([]string(nil), toks...)}
	}

	// from the left
	for len(tokens) > 0 && len(candidates) > 0 {
		w := candidates[0].arity.width()
		if w < 0 {
			break
		}
		w = min(w, len(tokens))
		assign(candidates[0], tokens[:w])
		tokens, candidates = tokens[w:], candidates[1:]
	}

	// from the right
	for len(tokens) > 0 && len(candidates) > 0 {
		last := candidates[len(candidates)-1]
		w := last.arity.width()
		if w < 0 {
			break
		}
		w = min(w, len(tokens))
		assign(last, tokens[len(tokens)-w:])
		tokens, candidates = tokens[:len(tokens)-w], candidates[:len(candidates)-1]
	}

	if len(tokens) > 0 && len(candidates) == 1 {
		assign(candidates[0], tokens)
		return nil
	}
	if len(tokens) > 0 {
		return s.tooMany(tokens)
	}
	return nil
}

func (s *Schema) tooMany(tokens []string) *ParseError {
	err := NewParseError(ErrorTypeTooManyPositional,
		fmt.Sprintf("too many positional arguments: %s", quote.Join(tokens))).withValue(quote.Join(tokens))
	for _, tok := range tokens {
		if strings.HasPrefix(tok, "-") {
			if hint := fuzzy.SuggestFlag(tok, s.FlagNames()); hint != "" {
				return err.withSuggestion(hint)
			}
		}
	}
	return err
}

// Resolve turns raw input into values for every argument. layer supplies
// values for absent arguments ahead of the declared defaults; its values
// must already be validated.
func (s *Schema) Resolve(raw map[string]Raw, layer map[string]any) (map[string]any, error) {
	out := make(map[string]any, s.args.Len())
	for pair := s.args.Oldest(); pair != nil; pair = pair.Next() {
		a := pair.Value
		r := raw[a.name]
		if r.State == RawAbsent {
			if v, ok := layer[a.name]; ok {
				out[a.name] = v
				continue
			}
		}
		v, err := a.ParseTokens(r)
		if err != nil {
			return nil, err
		}
		out[a.name] = v
	}
	return out, nil
}

// Parse runs ParseTokens and Resolve with no layered defaults.
func (s *Schema) Parse(tokens []string) (map[string]any, error) {
	raw, err := s.ParseTokens(tokens)
	if err != nil {
		return nil, err
	}
	return s.Resolve(raw, nil)
}

func suggestName(input string, names []string) string {
	return fuzzy.Suggest(input, names)
}
