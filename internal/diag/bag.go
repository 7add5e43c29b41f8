package diag

type Bag struct {
	items   []Diagnostic
	max     int
	dropped int
}

// NewBag creates a bag holding at most max diagnostics (max <= 0 means unlimited).
func NewBag(max int) *Bag {
	capHint := max
	if capHint <= 0 || capHint > 64 {
		capHint = 16
	}
	return &Bag{
		items: make([]Diagnostic, 0, capHint),
		max:   max,
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() int {
	return b.max
}

// Dropped returns how many diagnostics were rejected by the limit.
func (b *Bag) Dropped() int {
	return b.dropped
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик в порядке добавления.
// Не модифицируйте возвращаемый срез.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge appends diagnostics from other, growing the limit when needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	newTotal := len(b.items) + len(other.items)
	if b.max > 0 && newTotal > b.max {
		b.max = newTotal
	}
	b.items = append(b.items, other.items...)
	b.dropped += other.dropped
}
