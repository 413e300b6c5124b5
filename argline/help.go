package argline

import (
	"fmt"
	"io"
	"strings"
)

// WriteHelp writes the usage line, the options table and the sub-commands
// of this parser.
func (p *Parser) WriteHelp(w io.Writer) error {
	m := p.IO()
	var b strings.Builder

	if p.description != "" {
		b.WriteString(p.description)
		b.WriteString("\n\n")
	}

	b.WriteString(m.Bold("Usage:"))
	b.WriteString("\n  ")
	b.WriteString(p.usage())
	b.WriteString("\n")

	rows := p.optionRows()
	width := 0
	for _, r := range rows {
		width = max(width, len(r[0]))
	}
	b.WriteString("\n")
	b.WriteString(m.Bold("Options:"))
	b.WriteString("\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "  %-*s  %s\n", width, r[0], r[1])
	}

	if p.children.Len() > 0 {
		names := p.Children()
		width = 0
		for _, name := range names {
			width = max(width, len(name))
		}
		b.WriteString("\n")
		b.WriteString(m.Bold("Commands:"))
		b.WriteString("\n")
		for pair := p.children.Oldest(); pair != nil; pair = pair.Next() {
			fmt.Fprintf(&b, "  %-*s  %s\n", width, pair.Key, pair.Value.description)
		}
		fmt.Fprintf(&b, "\nUse \"%s COMMAND --help\" for more information about a command.\n", p.path())
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (p *Parser) usage() string {
	parts := []string{p.path()}
	if p.children.Len() > 0 {
		parts = append(parts, "[COMMAND]")
	}
	for _, a := range p.schema.Positionals() {
		name := strings.ToUpper(a.name)
		if a.arity.Unbounded() {
			name += "..."
		} else if n, ok := a.arity.Exact(); ok {
			name = strings.TrimSpace(strings.Repeat(name+" ", n))
		}
		if !a.Required() {
			name = "[" + name + "]"
		}
		parts = append(parts, name)
	}
	if p.schema.Len() > 0 {
		parts = append(parts, "[OPTIONS]")
	}
	return strings.Join(parts, " ")
}

// optionRows returns one (flags, description) pair per argument followed
// by the built-in flags.
func (p *Parser) optionRows() [][2]string {
	rows := make([][2]string, 0, p.schema.Len()+2)
	for _, a := range p.schema.Arguments() {
		flags := "    " + a.long
		if a.short != "" {
			flags = a.short + ", " + a.long
		}
		if !a.isSwitch && !a.hasConst {
			flags += " <" + a.TypeName() + ">"
		}

		var desc []string
		if a.help != "" {
			desc = append(desc, a.help)
		}
		switch {
		case a.Required():
			desc = append(desc, "(required)")
		case !a.isSwitch && a.def != nil:
			if tokens, err := a.Encode(a.def); err == nil && len(tokens) > 0 {
				desc = append(desc, "(default: "+p.tok.Join(tokens)+")")
			}
		}
		if a.positional {
			desc = append(desc, "(positional)")
		}
		rows = append(rows, [2]string{flags, strings.Join(desc, " ")})
	}
	rows = append(rows, [2]string{HelpShort + ", " + HelpFlag, "Show help"})
	if p.gui != nil {
		rows = append(rows, [2]string{"    " + GUIFlag, "Open the graphical form"})
	}
	return rows
}
