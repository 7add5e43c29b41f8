// Package borrowck verifies the ownership and borrowing discipline of an
// ir.Program.
//
// A Checker walks statements in order and keeps three pieces of state: the
// binding arena (one record per declaration, shadowed ones included), the
// scope stack, and the borrow table. Every rule break becomes a Violation in
// discovery order; the walk never stops on one unless
// Options.AbortOnUnknownBinding is set.
//
// Borrow lifetimes are lexical: a borrow lives until the scope it is rooted
// in closes.
package borrowck
