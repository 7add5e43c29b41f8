package diag

import (
	"testing"

	"ownck/internal/source"
)

func TestFormatShortDiagnostics(t *testing.T) {
	diags := []Diagnostic{
		NewError(OwnUseOfMovedValue, source.Loc{File: "./prog/a.src", Line: 3, Col: 1}, "use of moved value `x`\nagain").
			WithNote(source.Loc{File: "prog/a.src", Line: 2, Col: 5}, "value moved here"),
		New(SevWarning, IRUnbalancedScope, source.Loc{File: "prog/a.src", Line: 9}, "stray exit"),
	}

	expected := "error OWN3001 prog/a.src:3:1 use of moved value `x` again\n" +
		"note OWN3001 prog/a.src:2:5 value moved here\n" +
		"warning IR1002 prog/a.src:9 stray exit"
	if got := FormatShortDiagnostics(diags, true); got != expected {
		t.Fatalf("unexpected output:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}

	withoutNotes := "error OWN3001 prog/a.src:3:1 use of moved value `x` again\n" +
		"warning IR1002 prog/a.src:9 stray exit"
	if got := FormatShortDiagnostics(diags, false); got != withoutNotes {
		t.Fatalf("unexpected output without notes:\n%s", got)
	}
}

func TestBagLimitAndMerge(t *testing.T) {
	bag := NewBag(2)
	loc := source.Loc{File: "a", Line: 1}
	for range 3 {
		bag.Add(NewError(OwnConflictingBorrow, loc, "conflict"))
	}
	if bag.Len() != 2 || bag.Dropped() != 1 {
		t.Fatalf("len=%d dropped=%d", bag.Len(), bag.Dropped())
	}
	if !bag.HasErrors() {
		t.Fatal("expected errors")
	}

	other := NewBag(0)
	other.Add(New(SevInfo, OwnInfo, loc, "info"))
	bag.Merge(other)
	if bag.Len() != 3 || bag.Cap() != 3 {
		t.Fatalf("after merge len=%d cap=%d", bag.Len(), bag.Cap())
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(0)
	r := BagReporter{Bag: bag}
	b := ReportError(r, OwnShapeMismatch, source.Loc{File: "a", Line: 4}, "shape").
		WithNote(source.NoLoc, "dropped").
		WithNote(source.Loc{File: "a", Line: 1}, "declared here")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("expected exactly one diagnostic, got %d", bag.Len())
	}
	if notes := bag.Items()[0].Notes; len(notes) != 1 || notes[0].Msg != "declared here" {
		t.Fatalf("unexpected notes %+v", notes)
	}
}

func TestCodeID(t *testing.T) {
	cases := map[Code]string{
		IRUnknownBinding:   "IR1001",
		OwnUseOfMovedValue: "OWN3001",
		IOLoadFileError:    "IO4001",
		Code(9999):         "E0000",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", code, got, want)
		}
	}
	if OwnUseOfMovedValue.Title() != "Use of moved value" {
		t.Errorf("unexpected title %q", OwnUseOfMovedValue.Title())
	}
}
