package argline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/dzonerzy/go-argline/internal/quote"
)

// D is a map of argument names to values, used with FromDefaults.
type D map[string]any

// SourceType represents the type of configuration source. Higher types
// override lower ones; the command line overrides them all.
type SourceType int

const (
	SourceTypeDefaults SourceType = iota
	SourceTypeFile
	SourceTypeEnv
)

func (t SourceType) String() string {
	switch t {
	case SourceTypeDefaults:
		return "defaults"
	case SourceTypeFile:
		return "file"
	case SourceTypeEnv:
		return "env"
	default:
		return fmt.Sprintf("SourceType(%d)", int(t))
	}
}

// ConfigSource supplies values for absent arguments.
type ConfigSource struct {
	Type SourceType
	Name string
	Load func(schema *Schema) (map[string]any, error)
}

// PrecedenceManager layers configuration sources under the command line.
type PrecedenceManager struct {
	sources []ConfigSource
}

// NewPrecedenceManager creates a new precedence manager
func NewPrecedenceManager() *PrecedenceManager {
	return &PrecedenceManager{sources: make([]ConfigSource, 0)}
}

// AddSource adds a configuration source.
func (pm *PrecedenceManager) AddSource(src ConfigSource) {
	pm.sources = append(pm.sources, src)
}

// Len returns the number of sources.
func (pm *PrecedenceManager) Len() int { return len(pm.sources) }

// Resolve loads every source in precedence order, validates its values
// against schema and returns the merged layer. Keys are argument names;
// nested maps are flattened to dotted keys and '-' matches '_'.
func (pm *PrecedenceManager) Resolve(schema *Schema, tok quote.Tokenizer) (map[string]any, error) {
	if len(pm.sources) == 0 {
		return nil, nil
	}

	sources := append([]ConfigSource(nil), pm.sources...)
	sort.SliceStable(sources, func(i, j int) bool { return sources[i].Type < sources[j].Type })

	result := make(map[string]any)
	for _, src := range sources {
		data, err := src.Load(schema)
		if err != nil {
			return nil, &ConfigError{Schema: schema.name, Message: src.Type.String() + " source " + src.Name, Cause: err}
		}

		flat := make(map[string]any, len(data))
		flattenMap("", data, flat)
		entries := make(map[string]any, len(flat))
		for key, val := range flat {
			entries[argumentKey(schema, key)] = val
		}

		scratch := &Values{schema: schema, set: make(map[string]any), tok: tok}
		if err := scratch.Update(entries); err != nil {
			return nil, fmt.Errorf("%s source %s: %w", src.Type, src.Name, err)
		}
		for name, val := range scratch.set {
			result[name] = val
		}
	}
	return result, nil
}

// flattenMap converts nested maps to dotted keys (e.g., {"a":{"b":1}} => {"a.b":1})
func flattenMap(prefix string, src map[string]any, dst map[string]any) {
	for k, v := range src {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			flattenMap(key, sub, dst)
			continue
		}
		dst[key] = v
	}
}

func argumentKey(schema *Schema, key string) string {
	if _, ok := schema.Argument(key); ok {
		return key
	}
	for _, alt := range []string{
		strings.ReplaceAll(key, "-", "_"),
		strings.ReplaceAll(key, "_", "-"),
	} {
		if _, ok := schema.Argument(alt); ok {
			return alt
		}
	}
	return key
}

// envName returns PREFIX_NAME, upper-cased, with '-' and '.' as '_'.
func envName(prefix, name string) string {
	if prefix != "" {
		name = prefix + "_" + name
	}
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(name))
}

// FromDefaults layers values over the declared defaults.
func (p *Parser) FromDefaults(defaults D) *Parser {
	data := make(map[string]any, len(defaults))
	for k, v := range defaults {
		data[k] = v
	}
	p.sources.AddSource(ConfigSource{
		Type: SourceTypeDefaults,
		Name: "map",
		Load: func(*Schema) (map[string]any, error) { return data, nil },
	})
	return p
}

// FromEnv reads PREFIX_NAME environment variables. Values are decoded like
// command line text; many-valued arguments are split with the parser's
// tokenizer.
func (p *Parser) FromEnv(prefix string) *Parser {
	p.sources.AddSource(ConfigSource{
		Type: SourceTypeEnv,
		Name: prefix,
		Load: func(schema *Schema) (map[string]any, error) {
			data := make(map[string]any)
			for _, a := range schema.Arguments() {
				if value := os.Getenv(envName(prefix, a.name)); value != "" {
					data[a.name] = value
				}
			}
			return data, nil
		},
	})
	return p
}

// FromFile reads a JSON, YAML or TOML file, chosen by extension. A missing
// file supplies nothing.
func (p *Parser) FromFile(path string) *Parser {
	p.sources.AddSource(ConfigSource{
		Type: SourceTypeFile,
		Name: path,
		Load: func(*Schema) (map[string]any, error) { return loadConfigFile(path) },
	})
	return p
}

var errUnsupportedFormat = errors.New("unsupported config format")

func loadConfigFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var config map[string]any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	case ".toml":
		err = toml.Unmarshal(data, &config)
	default:
		return nil, fmt.Errorf("%w: %s (use .json, .yaml or .toml)", errUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	return config, nil
}
