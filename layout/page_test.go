package layout

import (
	"testing"

	"folio/content"
)

func contentLines(n int) []Line {
	lines := make([]Line, n)
	for i := range lines {
		lines[i] = Line{ChapterID: "c1", BlockID: 0, Start: i * 10, End: i*10 + 10}
	}
	return lines
}

func TestPaginatePartition(t *testing.T) {
	lines := contentLines(10)
	pages := Paginate(lines, 4)
	if len(pages) != 3 {
		t.Fatalf("got %d pages, want 3", len(pages))
	}
	prev := 0
	for i, p := range pages {
		if p.Number != i {
			t.Errorf("page %d has Number %d", i, p.Number)
		}
		if p.Start != prev {
			t.Errorf("page %d starts at %d, want %d", i, p.Start, prev)
		}
		if p.End-p.Start > 4 {
			t.Errorf("page %d holds %d lines, max 4", i, p.End-p.Start)
		}
		prev = p.End
	}
	if prev != len(lines) {
		t.Fatalf("pages cover %d lines, want %d", prev, len(lines))
	}
}

func TestPaginateLastPageShort(t *testing.T) {
	pages := Paginate(contentLines(7), 3)
	last := pages[len(pages)-1]
	if last.End-last.Start != 1 {
		t.Fatalf("last page holds %d lines, want 1", last.End-last.Start)
	}
}

func TestPaginateKeepsHeadingWithSeparator(t *testing.T) {
	// Three body lines, then the separator-plus-heading pair that opens the
	// next section. A four-row page must not end on the separator.
	lines := []Line{
		{BlockID: 0}, {BlockID: 0}, {BlockID: 0},
		{BlockID: -1},
		{BlockID: 1, Kind: content.Heading, Level: 2},
		{BlockID: -1},
		{BlockID: 2}, {BlockID: 2},
	}
	pages := Paginate(lines, 4)
	if pages[0].End != 3 {
		t.Fatalf("first page ends at %d, want 3 (before the separator)", pages[0].End)
	}
	if pages[1].Start != 3 {
		t.Fatalf("second page starts at %d, want 3", pages[1].Start)
	}
}

func TestPaginateHeadingShiftNeverEmptiesPage(t *testing.T) {
	// At one row per page the separator-heading pair would shift a boundary
	// to zero width; the shift must be skipped instead.
	lines := []Line{
		{BlockID: -1},
		{BlockID: 0, Kind: content.Heading, Level: 1},
		{BlockID: 1},
	}
	pages := Paginate(lines, 1)
	for _, p := range pages {
		if p.End <= p.Start {
			t.Fatalf("empty page %+v", p)
		}
	}
	if len(pages) != 3 {
		t.Fatalf("got %d pages, want 3", len(pages))
	}
}

func TestPaginateEmpty(t *testing.T) {
	pages := Paginate(nil, 5)
	if len(pages) != 1 || pages[0].Start != 0 || pages[0].End != 0 {
		t.Fatalf("pages = %+v, want one zero page", pages)
	}
}

func TestPaginateRowsClamped(t *testing.T) {
	pages := Paginate(contentLines(3), 0)
	if len(pages) != 3 {
		t.Fatalf("got %d pages at clamped rows, want 3", len(pages))
	}
}

func TestPageOf(t *testing.T) {
	pages := Paginate(contentLines(10), 4) // [0,4) [4,8) [8,10)
	cases := []struct{ line, want int }{
		{0, 0}, {3, 0}, {4, 1}, {7, 1}, {8, 2}, {9, 2}, {99, 2}, {-1, 0},
	}
	for _, tc := range cases {
		if got := PageOf(pages, tc.line); got != tc.want {
			t.Errorf("PageOf(%d) = %d, want %d", tc.line, got, tc.want)
		}
	}
}

func TestLineAt(t *testing.T) {
	lines := []Line{
		{BlockID: -1, Start: 0, End: 0},
		{BlockID: 0, Start: 0, End: 10},
		{BlockID: 0, Start: 10, End: 20},
		{BlockID: -1, Start: 20, End: 20},
		{BlockID: 1, Start: 21, End: 30},
	}
	cases := []struct{ flat, want int }{
		{0, 1}, {9, 1}, {10, 2}, {19, 2}, {21, 4}, {29, 4},
		{500, 4}, // past end clamps to last content line
	}
	for _, tc := range cases {
		if got := LineAt(lines, tc.flat); got != tc.want {
			t.Errorf("LineAt(%d) = %d, want %d", tc.flat, got, tc.want)
		}
	}
}

func TestEngineMemoizes(t *testing.T) {
	e := NewEngine()
	ch := paragraphChapter("memoized wrapped lines returned as the same slice")
	a := e.Lines(ch, 12)
	b := e.Lines(ch, 12)
	if len(a) == 0 || len(b) == 0 {
		t.Fatal("no lines")
	}
	if &a[0] != &b[0] {
		t.Fatal("second lookup did not reuse the cached layout")
	}
}

func TestEngineResizePurgesOtherWidths(t *testing.T) {
	e := NewEngine()
	ch := paragraphChapter("layouts at stale widths are discarded on resize")
	old := e.Lines(ch, 12)
	e.Resize(30)
	fresh := e.Lines(ch, 12)
	if &old[0] == &fresh[0] {
		t.Fatal("resize kept a layout computed at another width")
	}
	kept := e.Lines(ch, 30)
	again := e.Lines(ch, 30)
	if &kept[0] != &again[0] {
		t.Fatal("resize dropped the layout at the surviving width")
	}
}

func TestEngineInvalidate(t *testing.T) {
	e := NewEngine()
	ch := paragraphChapter("invalidate drops a single chapter")
	old := e.Lines(ch, 20)
	e.Invalidate(ch.ID)
	fresh := e.Lines(ch, 20)
	if &old[0] == &fresh[0] {
		t.Fatal("invalidate kept the cached layout")
	}
}
