package borrowck

import (
	"ownck/internal/diag"
	"ownck/internal/ir"
)

// Result is the outcome of one verification run.
type Result struct {
	Violations []Violation `msgpack:"violations"`
	Dropped    int         `msgpack:"dropped"`
	Aborted    bool        `msgpack:"aborted"`
	Bindings   int         `msgpack:"bindings"`
	Borrows    int         `msgpack:"borrows"`
	Events     []Event     `msgpack:"-"`
}

// Verify runs a fresh Checker over prog.
func Verify(prog *ir.Program, opts Options, withEvents bool) Result {
	c := New(opts)
	c.RecordEvents(withEvents)
	c.Check(prog)
	return Result{
		Dropped:    c.Dropped(),
		Violations: c.Drain(),
		Aborted:    c.Aborted(),
		Bindings:   c.bindings.Len(),
		Borrows:    len(c.borrows.infos) - 1,
		Events:     c.Events(),
	}
}

// OK reports whether the program passed.
func (r Result) OK() bool {
	return len(r.Violations) == 0 && r.Dropped == 0
}

// Diagnostics converts violations in order.
func (r Result) Diagnostics() []diag.Diagnostic {
	if len(r.Violations) == 0 {
		return nil
	}
	out := make([]diag.Diagnostic, len(r.Violations))
	for i, v := range r.Violations {
		out[i] = v.Diagnostic()
	}
	return out
}
