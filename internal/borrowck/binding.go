package borrowck

import (
	"fmt"
	"sort"
	"strings"

	"fortio.org/safecast"

	"ownck/internal/ir"
	"ownck/internal/source"
)

// BindingID indexes the binding arena.
type BindingID uint32

// NoBindingID marks the absence of a binding.
const NoBindingID BindingID = 0

func (id BindingID) IsValid() bool { return id != NoBindingID }

// OwnState is the ownership state of a binding.
type OwnState uint8

const (
	StateLive OwnState = iota
	StateMoved
	StatePartiallyMoved
)

func (s OwnState) String() string {
	switch s {
	case StateLive:
		return "live"
	case StateMoved:
		return "moved"
	case StatePartiallyMoved:
		return "partially-moved"
	default:
		return "unknown"
	}
}

// Binding is one named storage location. Re-declaring a name creates a new
// Binding; the shadowed record keeps its own state.
type Binding struct {
	ID      BindingID
	Name    string
	Mutable bool
	Scope   ScopeID
	Shape   ir.Shape
	State   OwnState
	Decl    source.Loc
	MovedAt source.Loc
	// Borrow is the borrow this binding holds when declared from &x / &mut x.
	Borrow  BorrowID
	Shadows BindingID
	Alive   bool

	// moves holds member moves of a partially moved binding.
	moves   *moveNode
	moveSeq uint64
}

// MovedFields lists moved member paths of a partially moved binding in the
// order they were moved.
func (b *Binding) MovedFields() []string {
	if b.State != StatePartiallyMoved || b.moves == nil {
		return nil
	}
	var nodes []*moveNode
	var paths []string
	b.moves.walk(nil, func(n *moveNode, fields []string) {
		nodes = append(nodes, n)
		paths = append(paths, strings.Join(fields, "."))
	})
	idx := make([]int, len(nodes))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return nodes[idx[i]].seq < nodes[idx[j]].seq })
	out := make([]string, len(idx))
	for i, k := range idx {
		out[i] = paths[k]
	}
	return out
}

// movedOverlap finds the earliest move that makes fields unusable: a move of
// fields itself, of an enclosing member or of anything below it.
func (b *Binding) movedOverlap(fields []string) (source.Loc, bool) {
	if b.State == StateMoved {
		return b.MovedAt, true
	}
	if b.moves == nil {
		return source.NoLoc, false
	}
	var best earliest
	n := b.moves
	for _, sel := range fields {
		if n = n.children[sel]; n == nil {
			break
		}
		if n.moved {
			best.offer(n.seq, n.at)
		}
	}
	if n != nil {
		best.offer(n.firstSeq, n.firstAt)
	}
	return best.at, best.seq != 0
}

// enclosingMove reports a move of the whole binding or of a strict ancestor
// of fields. A whole-binding target never has an enclosing move.
func (b *Binding) enclosingMove(fields []string) (source.Loc, bool) {
	if len(fields) == 0 {
		return source.NoLoc, false
	}
	if b.State == StateMoved {
		return b.MovedAt, true
	}
	var best earliest
	n := b.moves
	for _, sel := range fields[:len(fields)-1] {
		if n == nil {
			break
		}
		if n = n.children[sel]; n != nil && n.moved {
			best.offer(n.seq, n.at)
		}
	}
	return best.at, best.seq != 0
}

// markMoved records a move of fields. Coverage is tracked per member, so a
// binding whose members are all moved becomes moved as a whole in time
// proportional to the path length.
func (b *Binding) markMoved(fields []string, at source.Loc, partial bool) {
	if len(fields) == 0 || !partial || b.Shape.Kind == ir.ShapeScalar {
		b.moveWhole(at)
		return
	}
	if b.moves == nil {
		b.moves = &moveNode{shape: b.Shape}
	}
	b.State = StatePartiallyMoved
	n := b.moves
	for _, sel := range fields {
		if n = n.child(sel); n.moved {
			// already covered by an earlier move
			return
		}
	}
	b.moveSeq++
	wasFull := n.isFull()
	n.moved, n.seq, n.at = true, b.moveSeq, at
	for p := n; p != nil && p.firstSeq == 0; p = p.parent {
		p.firstSeq, p.firstAt = n.seq, at
	}
	if !wasFull {
		for c := n; c.parent != nil; c = c.parent {
			p := c.parent
			before := p.isFull()
			p.full++
			if before || !p.isFull() {
				break
			}
		}
	}
	if b.moves.isFull() {
		b.moveWhole(at)
	}
}

func (b *Binding) moveWhole(at source.Loc) {
	b.State = StateMoved
	b.MovedAt = at
	b.moves = nil
}

// reinit makes the whole binding live again with a new shape.
func (b *Binding) reinit(shape ir.Shape) {
	b.State = StateLive
	b.MovedAt = source.NoLoc
	b.moves = nil
	b.Shape = shape
}

// reinitMember clears moves at or below fields. A wholly moved binding stays
// moved.
func (b *Binding) reinitMember(fields []string) {
	if b.State == StateMoved || b.moves == nil || len(fields) == 0 {
		return
	}
	n := b.moves
	for _, sel := range fields {
		if n = n.children[sel]; n == nil {
			return
		}
	}
	p := n.parent
	delete(p.children, n.sel)
	if n.isFull() {
		for q := p; q != nil; q = q.parent {
			before := q.isFull()
			q.full--
			if !before || q.isFull() {
				break
			}
		}
	}
	if n.firstSeq != 0 {
		for q := p; q != nil && q.firstSeq == n.firstSeq; q = q.parent {
			q.refreshFirst()
		}
	}
	for q := p; q.parent != nil && !q.moved && len(q.children) == 0; {
		next := q.parent
		delete(next.children, q.sel)
		q = next
	}
	if b.moves.firstSeq == 0 {
		b.moves = nil
		b.State = StateLive
	}
}

// moveNode records moves at and below one member of a binding.
type moveNode struct {
	parent   *moveNode
	sel      string
	shape    ir.Shape
	children map[string]*moveNode

	moved bool
	seq   uint64
	at    source.Loc
	// full counts direct children that are fully moved.
	full int
	// firstSeq/firstAt locate the earliest move recorded in the subtree.
	firstSeq uint64
	firstAt  source.Loc
}

func (n *moveNode) child(sel string) *moveNode {
	if c, ok := n.children[sel]; ok {
		return c
	}
	shape, ok := n.shape.Member(sel)
	if !ok {
		shape = ir.Unknown()
	}
	c := &moveNode{parent: n, sel: sel, shape: shape}
	if n.children == nil {
		n.children = make(map[string]*moveNode)
	}
	n.children[sel] = c
	return c
}

// isFull reports whether nothing of the member is left to use.
func (n *moveNode) isFull() bool {
	if n.moved {
		return true
	}
	arity := n.shape.Arity()
	return n.shape.IsComposite() && arity > 0 && n.full == arity
}

func (n *moveNode) refreshFirst() {
	var best earliest
	if n.moved {
		best.offer(n.seq, n.at)
	}
	for _, c := range n.children {
		best.offer(c.firstSeq, c.firstAt)
	}
	n.firstSeq, n.firstAt = best.seq, best.at
}

func (n *moveNode) walk(prefix []string, fn func(*moveNode, []string)) {
	for sel, c := range n.children {
		path := append(append(make([]string, 0, len(prefix)+1), prefix...), sel)
		if c.moved {
			fn(c, path)
		}
		c.walk(path, fn)
	}
}

// earliest keeps the move with the lowest sequence number offered to it.
type earliest struct {
	seq uint64
	at  source.Loc
}

func (e *earliest) offer(seq uint64, at source.Loc) {
	if seq != 0 && (e.seq == 0 || seq < e.seq) {
		e.seq, e.at = seq, at
	}
}

// BindingTable is the arena of every binding created during a run.
type BindingTable struct {
	items []Binding
}

func NewBindingTable() *BindingTable {
	return &BindingTable{items: []Binding{{}}}
}

// New allocates a live binding.
func (t *BindingTable) New(name string, mutable bool, scope ScopeID, shape ir.Shape, decl source.Loc) *Binding {
	value, err := safecast.Conv[uint32](len(t.items))
	if err != nil {
		panic(fmt.Errorf("binding table overflow: %w", err))
	}
	t.items = append(t.items, Binding{
		ID:      BindingID(value),
		Name:    name,
		Mutable: mutable,
		Scope:   scope,
		Shape:   shape,
		State:   StateLive,
		Decl:    decl,
		Alive:   true,
	})
	return &t.items[value]
}

// Get returns the binding or nil. The pointer is invalidated by New.
func (t *BindingTable) Get(id BindingID) *Binding {
	if id == NoBindingID || int(id) >= len(t.items) {
		return nil
	}
	return &t.items[id]
}

// Len excludes the sentinel.
func (t *BindingTable) Len() int {
	return len(t.items) - 1
}

// Snapshot copies every binding ever created, including destroyed and shadowed ones.
func (t *BindingTable) Snapshot() []Binding {
	if len(t.items) <= 1 {
		return nil
	}
	out := make([]Binding, len(t.items)-1)
	copy(out, t.items[1:])
	return out
}
