package argline

import (
	"os"
	"strings"
)

// Save writes the canonical command line of the current values to path as
// a single line.
func (p *Parser) Save(path string, short bool) error {
	line, err := p.Command(short, false)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(line+"\n"), 0o644)
}

// Load parses the first line of path into the values, as Parse does.
func (p *Parser) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	line, _, _ := strings.Cut(string(data), "\n")
	return p.Parse(strings.TrimSuffix(line, "\r"))
}
