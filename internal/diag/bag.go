package diag

import (
	"sort"

	"drift/internal/source"
)

// Bag накапливает диагностики одной проверки с жёстким потолком: всё сверх
// лимита молча отбрасывается, чтобы один сломанный файл не завалил вывод.
type Bag struct {
	items []Diagnostic
	max   uint16
}

func NewBag(max int) *Bag {
	return &Bag{
		items: make([]Diagnostic, 0, max),
		max:   uint16(max),
	}
}

// Add appends a diagnostic, honoring the cap. Reports false when the bag is
// already full and the diagnostic was dropped.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() uint16 {
	return b.max
}

func (b *Bag) Len() int {
	return len(b.items)
}

// HasErrors reports whether at least one error-level diagnostic is present.
func (b *Bag) HasErrors() bool {
	return b.hasAtLeast(SevError)
}

// HasWarnings reports whether at least one warning-or-worse is present.
func (b *Bag) HasWarnings() bool {
	return b.hasAtLeast(SevWarning)
}

func (b *Bag) hasAtLeast(sev Severity) bool {
	for i := range b.items {
		if b.items[i].Severity >= sev {
			return true
		}
	}
	return false
}

// Items возвращает read-only срез диагностик: он смотрит во внутренний
// массив Bag, модифицировать его нельзя.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge забирает диагностики из другого Bag, при необходимости поднимая
// собственный лимит, чтобы ничего не потерять.
func (b *Bag) Merge(other *Bag) {
	newTotal := len(b.items) + len(other.items)
	if uint16(newTotal) > b.max {
		b.max = uint16(newTotal)
	}
	b.items = append(b.items, other.items...)
}

// Sort orders diagnostics by file, span, severity (errors first within a
// position) and code, giving deterministic output across runs.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

type dedupKey struct {
	code Code
	span source.Span
}

// Dedup drops repeated diagnostics with the same code and primary span,
// keeping the first occurrence.
func (b *Bag) Dedup() {
	seen := make(map[dedupKey]struct{}, len(b.items))
	kept := b.items[:0]
	for _, d := range b.items {
		key := dedupKey{code: d.Code, span: d.Primary}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, d)
	}
	b.items = kept
}
