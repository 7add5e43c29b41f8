package ir

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"ownck/internal/source"
)

// Format selects the document encoding of an IR file.
type Format uint8

const (
	FormatAuto Format = iota
	FormatTOML
	FormatYAML
	FormatBinary
)

// ErrUnsupportedFormat is returned for files whose extension is not an IR document.
var ErrUnsupportedFormat = errors.New("unsupported IR document format")

// FormatForPath picks the format by extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".oir":
		return FormatBinary, nil
	}
	return FormatAuto, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

// IsDocument reports whether path looks like an IR document.
func IsDocument(path string) bool {
	_, err := FormatForPath(path)
	return err == nil
}

// LoadFile reads and decodes an IR document. The path is used as the file
// component of default statement locations.
func LoadFile(path string) (*Program, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Load(path, data, format)
}

// Load decodes data in the given format.
func Load(file string, data []byte, format Format) (*Program, error) {
	if format == FormatAuto {
		var err error
		if format, err = FormatForPath(file); err != nil {
			return nil, err
		}
	}
	if format == FormatBinary {
		p, err := DecodeProgram(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		if p.File == "" {
			p.File = file
		}
		return p, nil
	}

	var doc document
	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, fmt.Errorf("%s: failed to parse TOML: %w", file, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%s: failed to parse YAML: %w", file, err)
		}
	default:
		return nil, fmt.Errorf("%s: %w", file, ErrUnsupportedFormat)
	}
	return doc.program(file)
}

type document struct {
	Name  string    `toml:"name" yaml:"name"`
	Stmts []rawStmt `toml:"stmt" yaml:"stmt"`
}

type rawStmt struct {
	Op      string      `toml:"op" yaml:"op"`
	At      string      `toml:"at" yaml:"at"`
	Name    string      `toml:"name" yaml:"name"`
	Mut     bool        `toml:"mut" yaml:"mut"`
	Init    *rawExpr    `toml:"init" yaml:"init"`
	Value   *rawExpr    `toml:"value" yaml:"value"`
	Pattern *rawPattern `toml:"pattern" yaml:"pattern"`
	Handle  string      `toml:"handle" yaml:"handle"`
	Via     string      `toml:"via" yaml:"via"`
	Lift    uint8       `toml:"lift" yaml:"lift"`
}

type rawExpr struct {
	Op    string    `toml:"op" yaml:"op"`
	Path  string    `toml:"path" yaml:"path"`
	Shape *rawShape `toml:"shape" yaml:"shape"`
}

type rawShape struct {
	Kind   string     `toml:"kind" yaml:"kind"`
	Fields []rawField `toml:"fields" yaml:"fields"`
	Elems  []rawShape `toml:"elems" yaml:"elems"`
	Len    int        `toml:"len" yaml:"len"`
	Elem   *rawShape  `toml:"elem" yaml:"elem"`
}

type rawField struct {
	Name  string    `toml:"name" yaml:"name"`
	Shape *rawShape `toml:"shape" yaml:"shape"`
}

type rawPattern struct {
	Kind  string       `toml:"kind" yaml:"kind"`
	Name  string       `toml:"name" yaml:"name"`
	Field string       `toml:"field" yaml:"field"`
	Elems []rawPattern `toml:"elems" yaml:"elems"`
}

func (d *document) program(file string) (*Program, error) {
	p := &Program{Name: d.Name, File: file, Stmts: make([]Stmt, 0, len(d.Stmts))}
	if p.Name == "" {
		p.Name = filepath.Base(file)
	}
	for i := range d.Stmts {
		stmt, err := d.Stmts[i].stmt(file, i)
		if err != nil {
			return nil, fmt.Errorf("%s: stmt %d: %w", file, i+1, err)
		}
		p.Stmts = append(p.Stmts, stmt)
	}
	return p, nil
}

func (r *rawStmt) stmt(file string, idx int) (Stmt, error) {
	kind, err := ParseStmtKind(strings.TrimSpace(r.Op))
	if err != nil {
		return Stmt{}, err
	}
	at, err := source.ParseLoc(r.At)
	if err != nil {
		return Stmt{}, err
	}
	if !at.IsValid() {
		line, err := safecast.Conv[uint32](idx + 1)
		if err != nil {
			return Stmt{}, fmt.Errorf("statement index overflow: %w", err)
		}
		at = source.Loc{File: file, Line: line}
	}
	s := Stmt{Kind: kind, At: at, Mutable: r.Mut, Handle: r.Handle, Via: r.Via, Lift: r.Lift}

	switch kind {
	case StmtDeclareBinding:
		if r.Name == "" {
			return Stmt{}, errors.New("let requires name")
		}
		s.Name = source.Normalize(r.Name)
		if s.Value, err = r.Init.expr(); err != nil {
			return Stmt{}, err
		}
	case StmtDeclarePattern, StmtAssignPattern:
		if r.Pattern == nil {
			return Stmt{}, fmt.Errorf("%s requires pattern", kind)
		}
		pat, err := r.Pattern.pattern()
		if err != nil {
			return Stmt{}, err
		}
		s.Pattern = &pat
		init := r.Init
		if kind == StmtAssignPattern || init == nil {
			init = r.Value
		}
		if s.Value, err = init.expr(); err != nil {
			return Stmt{}, err
		}
	case StmtAssign:
		if s.Target, err = ParsePath(r.Name); err != nil {
			return Stmt{}, err
		}
		if s.Value, err = r.Value.expr(); err != nil {
			return Stmt{}, err
		}
	case StmtRead, StmtMove, StmtMutate, StmtBorrowShared, StmtBorrowExclusive:
		if r.Name == "" && r.Via != "" && (kind == StmtBorrowShared || kind == StmtBorrowExclusive) {
			// reborrow through a handle may omit the target
			break
		}
		if s.Target, err = ParsePath(r.Name); err != nil {
			return Stmt{}, err
		}
	case StmtUseBorrow:
		if r.Handle == "" {
			return Stmt{}, errors.New("use-borrow requires handle")
		}
	case StmtEnterScope, StmtExitScope:
	}
	return s, nil
}

func (r *rawExpr) expr() (*Expr, error) {
	if r == nil {
		return Literal(Unknown()), nil
	}
	op := strings.TrimSpace(r.Op)
	if op == "" {
		op = "literal"
		if r.Path != "" {
			op = "move"
		}
	}
	kind, err := ParseExprKind(op)
	if err != nil {
		return nil, err
	}
	e := &Expr{Kind: kind}
	if kind == ExprLiteral {
		if e.Shape, err = r.Shape.shape(); err != nil {
			return nil, err
		}
		return e, nil
	}
	if e.Path, err = ParsePath(r.Path); err != nil {
		return nil, fmt.Errorf("%s initializer: %w", kind, err)
	}
	return e, nil
}

func (r *rawShape) shape() (Shape, error) {
	if r == nil {
		return Unknown(), nil
	}
	switch strings.TrimSpace(r.Kind) {
	case "", "unknown":
		return Unknown(), nil
	case "scalar":
		return Scalar(), nil
	case "tuple":
		elems := make([]Shape, len(r.Elems))
		for i := range r.Elems {
			s, err := r.Elems[i].shape()
			if err != nil {
				return Shape{}, err
			}
			elems[i] = s
		}
		return Tuple(elems...), nil
	case "struct":
		fields := make([]Field, len(r.Fields))
		seen := make(map[string]struct{}, len(r.Fields))
		for i, f := range r.Fields {
			if f.Name == "" {
				return Shape{}, errors.New("struct field requires name")
			}
			name := source.Normalize(f.Name)
			if _, dup := seen[name]; dup {
				return Shape{}, fmt.Errorf("duplicate struct field %q", name)
			}
			seen[name] = struct{}{}
			s, err := f.Shape.shape()
			if err != nil {
				return Shape{}, err
			}
			fields[i] = F(name, s)
		}
		return Struct(fields...), nil
	case "array":
		if r.Len < 0 {
			return Shape{}, fmt.Errorf("negative array length %d", r.Len)
		}
		elem, err := r.Elem.shape()
		if err != nil {
			return Shape{}, err
		}
		return Array(r.Len, elem), nil
	}
	return Shape{}, fmt.Errorf("unknown shape kind %q", r.Kind)
}

func (r *rawPattern) pattern() (Pattern, error) {
	kind := strings.TrimSpace(r.Kind)
	if kind == "" {
		switch r.Name {
		case "_":
			kind = "wild"
		case "..":
			kind = "rest"
		default:
			kind = "bind"
		}
	}
	var p Pattern
	switch kind {
	case "bind":
		if r.Name == "" {
			return Pattern{}, errors.New("bind pattern requires name")
		}
		p = Bind(r.Name)
	case "wild":
		p = Wild()
	case "rest":
		p = Rest()
	case "tuple", "array", "struct":
		elems := make([]Pattern, len(r.Elems))
		for i := range r.Elems {
			e, err := r.Elems[i].pattern()
			if err != nil {
				return Pattern{}, err
			}
			elems[i] = e
		}
		switch kind {
		case "tuple":
			p = TuplePat(elems...)
		case "array":
			p = ArrayPat(elems...)
		default:
			p = StructPat(elems...)
		}
	default:
		return Pattern{}, fmt.Errorf("unknown pattern kind %q", r.Kind)
	}
	if r.Field != "" {
		p.Field = source.Normalize(r.Field)
	}
	return p, nil
}
