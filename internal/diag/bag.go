package diag

import (
	"cmp"
	"slices"
)

// Bag collects diagnostics of one file (or of the whole run after Merge).
// Not thread-safe: each resolution task writes to its own Bag.
type Bag struct {
	items []Diagnostic
	max   int
}

// NewBag creates a Bag limited to max entries; max <= 0 means no limit.
func NewBag(max int) *Bag {
	hint := 16
	if max > 0 && max < 64 {
		hint = max
	}
	return &Bag{items: make([]Diagnostic, 0, hint), max: max}
}

func (b *Bag) full() bool { return b.max > 0 && len(b.items) >= b.max }

// Add returns false when the limit is reached and d is dropped.
func (b *Bag) Add(d Diagnostic) bool {
	if b.full() {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() int { return b.max }

func (b *Bag) Len() int { return len(b.items) }

// Items does not copy; the caller must not modify the slice.
func (b *Bag) Items() []Diagnostic { return b.items }

func (b *Bag) any(pred func(*Diagnostic) bool) bool {
	for i := range b.items {
		if pred(&b.items[i]) {
			return true
		}
	}
	return false
}

func (b *Bag) HasErrors() bool {
	return b.any(func(d *Diagnostic) bool { return d.Severity >= SevError })
}

func (b *Bag) HasWarnings() bool {
	return b.any(func(d *Diagnostic) bool { return d.Severity >= SevWarning })
}

// Count counts diagnostics with the given code; scenario tests rely on it.
func (b *Bag) Count(code Code) int {
	n := 0
	for i := range b.items {
		if b.items[i].Code == code {
			n++
		}
	}
	return n
}

// Merge appends other's items, raising the limit when it would cut them.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if b.max > 0 {
		b.max = max(b.max, len(b.items)+len(other.items))
	}
	b.items = append(b.items, other.items...)
}

// Sort orders by position, then errors before warnings, then code.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		return cmp.Or(
			x.Primary.Compare(y.Primary),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}

// Dedup keeps the first diagnostic per (code, span, message), same key as
// DedupReporter.
func (b *Bag) Dedup() {
	seen := make(map[dedupKey]struct{}, len(b.items))
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool {
		k := dedupKey{code: d.Code, span: d.Primary, msg: d.Message}
		if _, dup := seen[k]; dup {
			return true
		}
		seen[k] = struct{}{}
		return false
	})
}
