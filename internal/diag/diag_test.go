package diag

import (
	"testing"

	"busindex/internal/source"
)

func TestFormatGoldenDiagnostics(t *testing.T) {
	base := "/workspace"
	diags := []Diagnostic{
		{
			Severity: SevError,
			Code:     SubNotPublic,
			Message:  "Subscriber method must be public\nsecond line",
			Primary:  source.Location{Path: "/workspace/app/foo.go", Line: 3, Col: 1},
			Notes: []Note{
				{Loc: source.Location{Path: "/workspace/app/foo.go", Line: 5, Col: 2}, Msg: "declared here"},
			},
		},
		{
			Severity: SevInfo,
			Code:     FbClassNotPublic,
			Message:  "Falling back to reflection because class is not public",
			Primary:  source.Location{Path: "/workspace/app/bar.go", Line: 1, Col: 6},
		},
	}

	expected := "info FBK2001 app/bar.go:1:6 Falling back to reflection because class is not public\n" +
		"error SUB1003 app/foo.go:3:1 Subscriber method must be public second line\n" +
		"note SUB1003 app/foo.go:5:2 declared here"

	if got := FormatGoldenDiagnostics(diags, base, true); got != expected {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestBagLimitKeepsErrors(t *testing.T) {
	bag := NewBag(1)
	if !bag.Add(New(SevInfo, SesInfo, source.NoLocation, "first")) {
		t.Fatalf("first diagnostic must fit")
	}
	if bag.Add(New(SevWarning, SubNoneFound, source.NoLocation, "second")) {
		t.Fatalf("warning over the limit must be dropped")
	}
	if !bag.Add(NewError(SesResolveTwice, source.NoLocation, "third")) {
		t.Fatalf("errors are never dropped")
	}
	if bag.Len() != 2 || bag.Dropped() != 1 {
		t.Fatalf("len=%d dropped=%d", bag.Len(), bag.Dropped())
	}
	if !bag.HasErrors() || !bag.HasWarnings() {
		t.Fatalf("expected errors and warnings to be detected")
	}
}

func TestBagSortAndDedup(t *testing.T) {
	bag := NewBag(0)
	loc := source.Location{Path: "a.go", Line: 2, Col: 1}
	bag.Add(New(SevInfo, SubIndexed, loc, "indexed"))
	bag.Add(NewError(SubParamCount, loc, "bad"))
	bag.Add(NewError(SubParamCount, loc, "bad"))
	bag.Add(New(SevInfo, SesInfo, source.Location{Path: "a.go", Line: 1, Col: 1}, "pass"))

	bag.Dedup()
	if bag.Len() != 3 {
		t.Fatalf("expected 3 after dedup, got %d", bag.Len())
	}
	bag.Sort()
	items := bag.Items()
	if items[0].Code != SesInfo || items[1].Code != SubParamCount || items[2].Code != SubIndexed {
		t.Fatalf("unexpected order: %v", items)
	}
	if bag.Count(SubParamCount) != 1 {
		t.Errorf("expected a single SUB1004 after dedup")
	}
	if got := len(bag.Filter(SevError)); got != 1 {
		t.Errorf("expected one error, got %d", got)
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	loc := source.Location{Path: "x.go", Line: 1, Col: 1}

	ReportError(r, SubStatic, loc, "static").Emit()
	ReportError(r, SubStatic, loc, "static").Emit()
	ReportError(r, SubStatic, source.Location{Path: "x.go", Line: 2, Col: 1}, "static").Emit()

	if bag.Len() != 2 {
		t.Fatalf("expected 2 unique diagnostics, got %d", bag.Len())
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(0)
	b := ReportInfo(BagReporter{Bag: bag}, FbInfo, source.NoLocation, "note").
		WithNote(source.Location{Path: "y.go", Line: 1}, "here")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("builder must emit once, got %d", bag.Len())
	}
	if len(bag.Items()[0].Notes) != 1 {
		t.Errorf("note lost")
	}
}

func TestCodeID(t *testing.T) {
	tests := map[Code]string{
		SubStatic:        "SUB1002",
		FbSuperNotPublic: "FBK2002",
		SesResolveTwice:  "SES3002",
		DirUnknownName:   "DIR4001",
		IOWriteArtifact:  "IO5003",
		ObsTimings:       "OBS6001",
		UnknownCode:      "E0000",
	}
	for code, want := range tests {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", code, got, want)
		}
	}
	if Code(9999).Title() != "Unknown error" {
		t.Errorf("unexpected fallback title")
	}
}
