package ir

import (
	"fmt"
	"strings"

	"ownck/internal/source"
)

// Path addresses a binding or one of its members: "p", "p.x", "t.0".
type Path struct {
	Name   string   `msgpack:"name"`
	Fields []string `msgpack:"fields,omitempty"`
}

// ParsePath splits a dotted selector chain. Names are NFC-normalised.
func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Path{}, fmt.Errorf("empty path")
	}
	parts := strings.Split(s, ".")
	for _, p := range parts {
		if p == "" {
			return Path{}, fmt.Errorf("invalid path %q: empty selector", s)
		}
	}
	p := Path{Name: source.Normalize(parts[0])}
	if len(parts) > 1 {
		p.Fields = make([]string, len(parts)-1)
		for i, sel := range parts[1:] {
			p.Fields[i] = source.Normalize(sel)
		}
	}
	return p, nil
}

// P is ParsePath for literals known to be well-formed; it panics otherwise.
func P(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// IsWhole reports whether the path names the entire binding.
func (p Path) IsWhole() bool {
	return len(p.Fields) == 0
}

// Key returns the member part of the path ("x.y" for "p.x.y").
func (p Path) Key() string {
	return strings.Join(p.Fields, ".")
}

func (p Path) String() string {
	if len(p.Fields) == 0 {
		return p.Name
	}
	return p.Name + "." + p.Key()
}
