package argline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/dzonerzy/go-argline/internal/fuzzy"
	"github.com/dzonerzy/go-argline/internal/quote"
	arglineio "github.com/dzonerzy/go-argline/io"
	"github.com/dzonerzy/go-argline/middleware"
)

// TargetFunc is the function a parser invokes with its resolved values.
type TargetFunc func(ctx *Context) error

// GUIFunc is called when a command line starts with --gui. It receives the
// parser whose values a form should edit.
type GUIFunc func(ctx context.Context, p *Parser) error

// State is a step of the dispatch state machine.
type State int

const (
	StateRoot State = iota
	StateHelp
	StateGUI
	StateDispatchChild
	StateParseLocal
)

func (s State) String() string {
	switch s {
	case StateRoot:
		return "root"
	case StateHelp:
		return "help"
	case StateGUI:
		return "gui"
	case StateDispatchChild:
		return "dispatch-child"
	case StateParseLocal:
		return "parse-local"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Parser binds a schema, its values and an optional target, and routes
// command lines through a tree of sub-command parsers.
type Parser struct {
	name        string
	program     string
	description string

	schema *Schema
	values *Values
	target TargetFunc
	gui    GUIFunc

	parent   *Parser
	children *orderedmap.OrderedMap[string, *Parser]

	tok      quote.Tokenizer
	quoteSet bool

	middleware middleware.MiddlewareChain
	sources    *PrecedenceManager

	io        *arglineio.IOManager
	logger    *arglineio.Logger
	exitCodes *ExitCodeManager
}

// New creates a parser for schema. target may be nil for parsers that only
// route to sub-commands or only hold values.
func New(schema *Schema, target TargetFunc) *Parser {
	p := &Parser{
		name:     schema.Name(),
		schema:   schema,
		values:   NewValues(schema),
		target:   target,
		children: orderedmap.New[string, *Parser](),
		tok:      quote.New(quote.DefaultQuote),
		sources:  NewPrecedenceManager(),
	}
	p.values.reserved = func(tok string) bool {
		_, ok := p.children.Get(tok)
		return ok
	}
	return p
}

// Parser configuration methods

// Program sets the program name used by Command and help output.
func (p *Parser) Program(name string) *Parser {
	p.program = name
	return p
}

// Describe sets the text shown at the top of the help output.
func (p *Parser) Describe(text string) *Parser {
	p.description = text
	return p
}

// Quote sets the quote character for this parser and the sub-commands that
// did not set their own.
func (p *Parser) Quote(q rune) *Parser {
	p.setQuote(quote.New(q))
	p.quoteSet = true
	return p
}

func (p *Parser) setQuote(t quote.Tokenizer) {
	p.tok = t
	p.values.tok = t
	for pair := p.children.Oldest(); pair != nil; pair = pair.Next() {
		if !pair.Value.quoteSet {
			pair.Value.setQuote(t)
		}
	}
}

// Use appends middleware wrapping this parser's target and the targets of
// its sub-commands.
func (p *Parser) Use(mw ...middleware.Middleware) *Parser {
	p.middleware = p.middleware.Use(mw...)
	return p
}

// GUI registers the handler for --gui.
func (p *Parser) GUI(fn GUIFunc) *Parser {
	p.gui = fn
	return p
}

// WithIO replaces the IO manager. Sub-commands without their own inherit it.
func (p *Parser) WithIO(m *arglineio.IOManager) *Parser {
	p.io = m
	return p
}

// WithLogger replaces the logger. Sub-commands without their own inherit it.
func (p *Parser) WithLogger(l *arglineio.Logger) *Parser {
	p.logger = l
	return p
}

// Accessors

// Name returns the sub-command name, or the schema name for a root parser.
func (p *Parser) Name() string { return p.name }

// Description returns the text set by Describe.
func (p *Parser) Description() string { return p.description }

// Schema returns the argument set.
func (p *Parser) Schema() *Schema { return p.schema }

// Values returns the value store.
func (p *Parser) Values() *Values { return p.values }

// Parent returns the parser this one is registered under, or nil.
func (p *Parser) Parent() *Parser { return p.parent }

// IO returns the IO manager of this parser or its closest ancestor.
func (p *Parser) IO() *arglineio.IOManager {
	switch {
	case p.io != nil:
		return p.io
	case p.parent != nil:
		return p.parent.IO()
	}
	p.io = arglineio.New()
	return p.io
}

// Logger returns the logger of this parser or its closest ancestor.
func (p *Parser) Logger() *arglineio.Logger {
	switch {
	case p.logger != nil:
		return p.logger
	case p.parent != nil:
		return p.parent.Logger()
	}
	p.logger = arglineio.NewLogger(p.IO())
	return p.logger
}

// ExitCodes returns the exit-code manager shared by the whole tree.
// Resolution precedence is: ExitError > concrete error type > category > default.
func (p *Parser) ExitCodes() *ExitCodeManager {
	root := p.root()
	if root.exitCodes == nil {
		root.exitCodes = NewExitCodeManager()
	}
	return root.exitCodes
}

func (p *Parser) root() *Parser {
	for p.parent != nil {
		p = p.parent
	}
	return p
}

// Command tree

// AddCommand registers child under name. The name is matched against the
// first token of a command line.
func (p *Parser) AddCommand(name string, child *Parser) error {
	switch {
	case name == "" || strings.IndexFunc(name, unicode.IsSpace) >= 0:
		return configErrorf(p.name, "", "invalid sub-command name %q", name)
	case strings.HasPrefix(name, "-"):
		return configErrorf(p.name, "", "sub-command name %q may not start with '-'", name)
	case child == nil:
		return configErrorf(p.name, "", "sub-command %q is nil", name)
	case child.parent != nil:
		return configErrorf(p.name, "", "sub-command %q is already registered under '%s'", name, child.parent.name)
	}
	if _, exists := p.children.Get(name); exists {
		return configErrorf(p.name, "", "duplicate sub-command %q", name)
	}
	for anc := p; anc != nil; anc = anc.parent {
		if anc == child {
			return configErrorf(p.name, "", "sub-command %q would create a cycle", name)
		}
	}

	child.parent = p
	child.name = name
	if !child.quoteSet {
		child.setQuote(p.tok)
	}
	p.children.Set(name, child)
	return nil
}

// MustAddCommand is AddCommand panicking on error, for static trees.
func (p *Parser) MustAddCommand(name string, child *Parser) *Parser {
	if err := p.AddCommand(name, child); err != nil {
		panic(err)
	}
	return p
}

// Child returns the sub-command registered under name.
func (p *Parser) Child(name string) (*Parser, bool) {
	return p.children.Get(name)
}

// Children returns the sub-command names in registration order.
func (p *Parser) Children() []string {
	names := make([]string, 0, p.children.Len())
	for pair := p.children.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Route returns the state the first token leads to.
func (p *Parser) Route(tokens []string) State {
	if len(tokens) == 0 {
		return StateParseLocal
	}
	switch first := tokens[0]; {
	case first == HelpFlag || first == HelpShort:
		return StateHelp
	case first == GUIFlag:
		return StateGUI
	default:
		if _, ok := p.children.Get(first); ok {
			return StateDispatchChild
		}
	}
	return StateParseLocal
}

// Execution

// Run splits line and runs it.
func (p *Parser) Run(ctx context.Context, line string) error {
	tokens, err := p.tok.Split(line)
	if err != nil {
		p.Logger().Debug("%s: %v", p.path(), err)
		return err
	}
	return p.RunArgs(ctx, tokens)
}

// RunArgs routes tokens: help and gui are handled here, a sub-command name
// hands the rest of the tokens to that child, anything else is parsed into
// this parser's values and its target is invoked.
func (p *Parser) RunArgs(ctx context.Context, tokens []string) error {
	state := p.Route(tokens)
	p.Logger().Debug("%s: %s -> %s %q", p.path(), StateRoot, state, tokens)

	switch state {
	case StateHelp:
		return p.WriteHelp(p.IO().Out())
	case StateGUI:
		if p.gui == nil {
			return NewParseError(ErrorTypeGUIUnavailable,
				fmt.Sprintf("'%s' has no graphical interface", p.path()))
		}
		return p.gui(ctx, p)
	case StateDispatchChild:
		child, _ := p.children.Get(tokens[0])
		return child.RunArgs(ctx, tokens[1:])
	}

	if err := p.ParseArgs(tokens); err != nil {
		return p.suggestCommand(err, tokens)
	}
	return p.Invoke(ctx, true)
}

// suggestCommand adds a sub-command hint to a parse error caused by a
// mistyped sub-command name.
func (p *Parser) suggestCommand(err error, tokens []string) error {
	var pe *ParseError
	if p.children.Len() == 0 || len(tokens) == 0 || !errors.As(err, &pe) || pe.Suggestion != "" {
		return err
	}
	if hint := fuzzy.SuggestCommand(tokens[0], p.Children()); hint != "" {
		pe.Suggestion = hint
	}
	return err
}

// Main runs os.Args, reports a failure on stderr and returns the exit code.
func (p *Parser) Main(ctx context.Context) int {
	err := p.RunArgs(ctx, os.Args[1:])
	var exitErr *ExitError
	if err != nil && !(errors.As(err, &exitErr) && exitErr.Err == nil) {
		Report(p.IO().Err(), err)
	}
	return p.ExitCodes().Resolve(err)
}

// Parse splits line and parses it into the values without invoking the
// target.
func (p *Parser) Parse(line string) error {
	tokens, err := p.tok.Split(line)
	if err != nil {
		return err
	}
	return p.ParseArgs(tokens)
}

// ParseArgs parses tokens into the values. On success the explicit values
// are exactly those the tokens supplied; on failure nothing changes.
func (p *Parser) ParseArgs(tokens []string) error {
	layer, err := p.sources.Resolve(p.schema, p.tok)
	if err != nil {
		return err
	}
	raw, err := p.schema.ParseTokens(tokens)
	if err != nil {
		return err
	}
	resolved, err := p.schema.Resolve(raw, layer)
	if err != nil {
		return err
	}

	set := make(map[string]any, len(resolved))
	for name, r := range raw {
		if r.State != RawAbsent && resolved[name] != nil {
			set[name] = resolved[name]
		}
	}
	p.values.layer = layer
	p.values.replace(set)
	p.Logger().Debug("%s: parsed %v", p.path(), set)
	return nil
}

// Invoke calls the target with the current values, wrapped in the
// middleware of this parser and its ancestors. Without a target it fails
// with ErrNoTarget when raise is set and does nothing otherwise.
func (p *Parser) Invoke(ctx context.Context, raise bool) error {
	if p.target == nil {
		if !raise {
			return nil
		}
		return NewParseError(ErrorTypeNoTarget, fmt.Sprintf("'%s' has no target to invoke", p.path()))
	}
	if missing := p.values.Missing(); len(missing) > 0 {
		return NewParseError(ErrorTypeMissingArgument,
			fmt.Sprintf("missing value for '%s'", missing[0])).forArgument(missing[0])
	}

	c := newContext(ctx, p)
	defer c.Cancel()

	action := p.chain().Apply(func(mc middleware.Context) error {
		tc, ok := mc.(*Context)
		if !ok {
			return NewParseError(ErrorTypeInternal, "invalid middleware context type")
		}
		return p.target(tc)
	})
	err := action(c)

	if ee, ok := c.Get(exitKey).(*ExitError); ok && ee != nil {
		err = ee
	}
	return err
}

func (p *Parser) chain() middleware.MiddlewareChain {
	var levels []*Parser
	for q := p; q != nil; q = q.parent {
		levels = append(levels, q)
	}
	var chain middleware.MiddlewareChain
	for i := len(levels) - 1; i >= 0; i-- {
		chain = chain.Use(levels[i].middleware...)
	}
	return chain
}

// Command renders the canonical command line of the current values. With
// includeProgram it is prefixed by the program name and the sub-command
// path leading to this parser, so that the root parser can run it.
func (p *Parser) Command(short, includeProgram bool) (string, error) {
	tokens, err := p.values.Tokens(short)
	if err != nil {
		return "", err
	}
	if includeProgram {
		tokens = append(p.commandPath(), tokens...)
	}
	return p.tok.Join(tokens), nil
}

func (p *Parser) commandPath() []string {
	var path []string
	q := p
	for ; q.parent != nil; q = q.parent {
		path = append([]string{q.name}, path...)
	}
	return append([]string{q.programName()}, path...)
}

func (p *Parser) programName() string {
	if p.program != "" {
		return p.program
	}
	return p.name
}

// path is the space separated sub-command path used in messages.
func (p *Parser) path() string {
	return strings.Join(p.commandPath(), " ")
}
