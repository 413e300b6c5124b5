package argline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
)

// choiceType restricts a base type to a fixed set of values.
type choiceType struct {
	base    Type
	choices []any
}

// Choice returns a string type accepting only the given values.
func Choice(values ...string) Type {
	choices := make([]any, len(values))
	for i, v := range values {
		choices[i] = v
	}
	return choiceType{base: String, choices: choices}
}

// ChoiceOf returns a type accepting only the given values of base. Values
// that can not be cast to base make the type reject everything.
func ChoiceOf(base Type, values ...any) Type {
	choices := make([]any, 0, len(values))
	for _, v := range values {
		if c, err := base.Cast(v); err == nil {
			choices = append(choices, c)
		}
	}
	return choiceType{base: base, choices: choices}
}

func (c choiceType) Name() string {
	names := make([]string, len(c.choices))
	for i, v := range c.choices {
		s, err := c.base.Encode(v)
		if err != nil {
			s = fmt.Sprint(v)
		}
		names[i] = s
	}
	return "Choice(" + strings.Join(names, " | ") + ")"
}

func (c choiceType) GoType() reflect.Type { return c.base.GoType() }

func (c choiceType) Decode(s string) (any, error) {
	v, err := c.base.Decode(s)
	if err != nil {
		return nil, err
	}
	return c.member(v)
}

func (c choiceType) Encode(v any) (string, error) { return c.base.Encode(v) }

func (c choiceType) Cast(v any) (any, error) {
	cast, err := c.base.Cast(v)
	if err != nil {
		return nil, err
	}
	return c.member(cast)
}

// Choices returns the accepted values.
func (c choiceType) Choices() []any { return append([]any(nil), c.choices...) }

func (c choiceType) member(v any) (any, error) {
	for _, choice := range c.choices {
		if sameValue(choice, v) {
			return v, nil
		}
	}
	return nil, fmt.Errorf("must be one of %s", strings.TrimSuffix(strings.TrimPrefix(c.Name(), "Choice("), ")"))
}

// pathType is a string type holding a file system path.
type pathType struct {
	dir        bool
	existing   bool
	extensions []string
}

// File returns a path type for files. With existing set the file must
// exist. Extensions, when given, restrict the accepted suffix (".log" and
// "log" are equivalent).
func File(existing bool, extensions ...string) Type {
	exts := make([]string, len(extensions))
	for i, e := range extensions {
		exts[i] = "." + strings.ToLower(strings.TrimPrefix(e, "."))
	}
	return pathType{existing: existing, extensions: exts}
}

// Folder returns a path type for directories.
func Folder(existing bool) Type {
	return pathType{dir: true, existing: existing}
}

func (p pathType) Name() string {
	name := "file"
	if p.dir {
		name = "folder"
	}
	if len(p.extensions) > 0 {
		name += "(" + strings.Join(p.extensions, ", ") + ")"
	}
	return name
}

func (p pathType) GoType() reflect.Type { return reflect.TypeOf("") }

func (p pathType) Decode(s string) (any, error) {
	if strings.Contains(s, ",") {
		return nil, errors.New("path may not contain ','")
	}
	if len(p.extensions) > 0 {
		ext := strings.ToLower(filepath.Ext(s))
		ok := false
		for _, e := range p.extensions {
			if e == ext {
				ok = true
				break
			}
		}
		if !ok {
			return nil, fmt.Errorf("extension must be one of %s", strings.Join(p.extensions, ", "))
		}
	}
	if p.existing {
		info, err := os.Stat(s)
		if err != nil {
			return nil, fmt.Errorf("%s does not exist", s)
		}
		if info.IsDir() != p.dir {
			if p.dir {
				return nil, fmt.Errorf("%s is not a folder", s)
			}
			return nil, fmt.Errorf("%s is a folder", s)
		}
	}
	return s, nil
}

func (p pathType) Encode(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %T is not a path", errNotConvertible, v)
	}
	return s, nil
}

func (p pathType) Cast(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a path", errNotConvertible, v)
	}
	return p.Decode(s)
}
