package diag

import (
	"testing"

	"drift/internal/source"
)

func TestBag_LimitAndFlags(t *testing.T) {
	b := NewBag(2)

	if !b.Add(NewError(FlowMissingReturn, source.Span{}, "one")) {
		t.Error("first Add should succeed")
	}
	if !b.Add(New(SevWarning, FlowReturnFromNoReturn, source.Span{}, "two")) {
		t.Error("second Add should succeed")
	}
	if b.Add(NewError(FlowStaticReport, source.Span{}, "three")) {
		t.Error("Add beyond cap should fail")
	}

	if b.Len() != 2 {
		t.Errorf("Len = %d, want 2", b.Len())
	}
	if !b.HasErrors() || !b.HasWarnings() {
		t.Error("expected both errors and warnings present")
	}
}

func TestBag_SortIsDeterministic(t *testing.T) {
	mk := func(file source.FileID, start uint32, sev Severity) Diagnostic {
		return New(sev, FlowInfo, source.Span{File: file, Start: start, End: start + 1}, "m")
	}
	b := NewBag(8)
	b.Add(mk(1, 10, SevInfo))
	b.Add(mk(0, 20, SevError))
	b.Add(mk(0, 5, SevWarning))
	b.Add(mk(0, 5, SevError))

	b.Sort()

	items := b.Items()
	want := []struct {
		file  source.FileID
		start uint32
		sev   Severity
	}{
		{0, 5, SevError},
		{0, 5, SevWarning},
		{0, 20, SevError},
		{1, 10, SevInfo},
	}
	for i, w := range want {
		got := items[i]
		if got.Primary.File != w.file || got.Primary.Start != w.start || got.Severity != w.sev {
			t.Errorf("items[%d] = %v/%d/%v, want %v/%d/%v",
				i, got.Primary.File, got.Primary.Start, got.Severity, w.file, w.start, w.sev)
		}
	}
}

func TestBag_Merge(t *testing.T) {
	a := NewBag(1)
	a.Add(NewError(VerBrokenInvariant, source.Span{}, "a"))
	b := NewBag(1)
	b.Add(NewError(VerBrokenInvariant, source.Span{}, "b"))

	a.Merge(b)
	if a.Len() != 2 {
		t.Errorf("merged Len = %d, want 2", a.Len())
	}
}

func TestBag_Dedup(t *testing.T) {
	sp := source.Span{File: 0, Start: 1, End: 2}
	b := NewBag(4)
	b.Add(NewError(FlowStaticReport, sp, "x"))
	b.Add(NewError(FlowStaticReport, sp, "x"))
	b.Add(NewError(FlowMissingReturn, sp, "y"))

	b.Dedup()
	if b.Len() != 2 {
		t.Errorf("deduped Len = %d, want 2", b.Len())
	}
}
