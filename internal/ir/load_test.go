package ir

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"ownck/internal/source"
)

const tomlScenario = `
name = "destructure"

[[stmt]]
op = "let"
name = "t"
at = "main.src:1:5"
init = { op = "literal", shape = { kind = "tuple", elems = [{ kind = "scalar" }, { kind = "scalar" }] } }

[[stmt]]
op = "let-pattern"
init = { op = "move", path = "t" }
[stmt.pattern]
kind = "tuple"
elems = [{ name = "a" }, { name = "_" }, { name = ".." }]

[[stmt]]
op = "borrow"
name = "a"
handle = "h"

[[stmt]]
op = "use-borrow"
handle = "h"

[[stmt]]
op = "read"
name = "p.x"
`

func TestLoadTOML(t *testing.T) {
	prog, err := Load("scenario.toml", []byte(tomlScenario), FormatAuto)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if prog.Name != "destructure" || len(prog.Stmts) != 5 {
		t.Fatalf("unexpected program %q with %d stmts", prog.Name, len(prog.Stmts))
	}

	let := prog.Stmts[0]
	if let.Kind != StmtDeclareBinding || let.Name != "t" || let.At != (source.Loc{File: "main.src", Line: 1, Col: 5}) {
		t.Fatalf("unexpected let %+v", let)
	}
	if got := let.Value.Shape.String(); got != "(scalar, scalar)" {
		t.Fatalf("unexpected shape %s", got)
	}

	pat := prog.Stmts[1]
	if pat.Kind != StmtDeclarePattern || pat.Value.Kind != ExprMove || pat.Value.Path.Name != "t" {
		t.Fatalf("unexpected pattern stmt %+v", pat)
	}
	if got := pat.Pattern.String(); got != "(a, _, ..)" {
		t.Fatalf("unexpected pattern %s", got)
	}
	// default locations use the statement index
	if pat.At != (source.Loc{File: "scenario.toml", Line: 2}) {
		t.Fatalf("unexpected default location %v", pat.At)
	}

	if b := prog.Stmts[2]; b.Kind != StmtBorrowShared || b.Handle != "h" || b.Target.Name != "a" {
		t.Fatalf("unexpected borrow %+v", b)
	}
	if r := prog.Stmts[4]; r.Target.String() != "p.x" {
		t.Fatalf("unexpected read path %v", r.Target)
	}
}

const yamlScenario = `
name: borrow
stmt:
  - op: let
    name: s
    mut: true
    init: {op: literal, shape: {kind: struct, fields: [{name: x, shape: {kind: scalar}}]}}
  - op: borrow-mut
    name: s
    handle: h1
  - op: mutate
    name: s
  - op: assign
    name: s
    value: {op: literal}
`

func TestLoadYAML(t *testing.T) {
	prog, err := Load("b.yaml", []byte(yamlScenario), FormatAuto)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	kinds := make([]StmtKind, len(prog.Stmts))
	for i, s := range prog.Stmts {
		kinds[i] = s.Kind
	}
	want := []StmtKind{StmtDeclareBinding, StmtBorrowExclusive, StmtMutate, StmtAssign}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	if !prog.Stmts[0].Mutable {
		t.Fatal("expected mutable let")
	}
	if got := prog.Stmts[0].Value.Shape.String(); got != "{ x: scalar }" {
		t.Fatalf("unexpected shape %s", got)
	}
}

func TestLoadBinaryRoundTrip(t *testing.T) {
	b := NewBuilder("prog.src")
	b.Let("arr", false, Literal(Array(3, Scalar())))
	b.LetPattern(ArrayPat(Bind("first"), Rest()), false, MoveOf("arr"))
	b.Enter()
	b.BorrowLifted(StmtBorrowShared, "first", "h", 1)
	b.Exit()
	orig := b.Program()

	dir := t.TempDir()
	path := filepath.Join(dir, "prog.oir")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := EncodeProgram(f, orig); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !reflect.DeepEqual(loaded, orig) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", loaded, orig)
	}

	again, err := MarshalProgram(loaded)
	if err != nil {
		t.Fatal(err)
	}
	first, err := MarshalProgram(orig)
	if err != nil {
		t.Fatal(err)
	}
	if string(again) != string(first) {
		t.Fatal("canonical encoding is not stable")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{name: "unknown op", doc: "[[stmt]]\nop = \"jump\"\n", want: `stmt 1: unknown op "jump"`},
		{name: "let without name", doc: "[[stmt]]\nop = \"let\"\n", want: "let requires name"},
		{name: "bad location", doc: "[[stmt]]\nop = \"enter\"\nat = \"nowhere\"\n", want: "invalid location"},
		{name: "bad shape", doc: "[[stmt]]\nop = \"let\"\nname = \"x\"\ninit = { shape = { kind = \"blob\" } }\n", want: `unknown shape kind "blob"`},
		{name: "pattern missing", doc: "[[stmt]]\nop = \"let-pattern\"\n", want: "requires pattern"},
		{name: "empty selector", doc: "[[stmt]]\nop = \"read\"\nname = \"p..x\"\n", want: "empty selector"},
		{name: "duplicate field", doc: "[[stmt]]\nop = \"let\"\nname = \"x\"\ninit = { shape = { kind = \"struct\", fields = [{ name = \"a\" }, { name = \"a\" }] } }\n", want: "duplicate struct field"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("bad.toml", []byte(tt.doc), FormatTOML)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := LoadFile("program.json")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if IsDocument("x.txt") || !IsDocument("x.yml") {
		t.Fatal("IsDocument misclassified extensions")
	}
}

func TestLoadBinaryRejectsMalformedStatements(t *testing.T) {
	tests := []struct {
		name string
		prog *Program
		want string
	}{
		{name: "unknown kind", prog: &Program{Stmts: []Stmt{{Kind: 42}}}, want: "stmt 1: unknown statement kind 42"},
		{name: "zero kind", prog: &Program{Stmts: []Stmt{{Kind: StmtEnterScope}, {}}}, want: "stmt 2: unknown statement kind 0"},
		{name: "let without name", prog: &Program{Stmts: []Stmt{{Kind: StmtDeclareBinding}}}, want: "let requires name"},
		{name: "move without target", prog: &Program{Stmts: []Stmt{{Kind: StmtMove}}}, want: "empty path"},
		{name: "use-borrow without handle", prog: &Program{Stmts: []Stmt{{Kind: StmtUseBorrow}}}, want: "requires handle"},
		{name: "pattern missing", prog: &Program{Stmts: []Stmt{{Kind: StmtDeclarePattern}}}, want: "requires pattern"},
		{
			name: "negative array length",
			prog: &Program{Stmts: []Stmt{{Kind: StmtDeclareBinding, Name: "a", Value: Literal(Shape{Kind: ShapeArray, Len: -1})}}},
			want: "negative array length -1",
		},
		{
			name: "nested shape kind",
			prog: &Program{Stmts: []Stmt{{Kind: StmtDeclareBinding, Name: "t", Value: Literal(Tuple(Scalar(), Shape{Kind: 9}))}}},
			want: "unknown shape kind 9",
		},
		{
			name: "initializer kind",
			prog: &Program{Stmts: []Stmt{{Kind: StmtDeclareBinding, Name: "x", Value: &Expr{Kind: 7, Path: P("y")}}}},
			want: "unknown initializer kind 7",
		},
		{
			name: "pattern kind",
			prog: &Program{Stmts: []Stmt{{Kind: StmtDeclarePattern, Pattern: &Pattern{Kind: PatTuple, Elems: []Pattern{{Kind: 12}}}}}},
			want: "unknown pattern kind 12",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalProgram(tt.prog)
			if err != nil {
				t.Fatal(err)
			}
			_, err = Load("bad.oir", data, FormatAuto)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestBuilderProgramsValidate(t *testing.T) {
	b := NewBuilder("ok.src")
	b.Let("t", true, Literal(Tuple(Scalar(), Array(2, Scalar()))))
	b.LetPattern(TuplePat(Bind("a"), Wild()), false, ReadOf("t"))
	b.Borrow("t.1", "h")
	b.Reborrow(StmtBorrowShared, "", "h2", "h")
	b.UseBorrow("h2")
	if err := b.Program().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
