package layout

import (
	"reflect"
	"strings"
	"testing"

	"folio/content"
)

func paragraphChapter(text string) *content.Chapter {
	return content.NewChapter("c1", "One", []content.Block{
		{Kind: content.Paragraph, Spans: []content.Span{{Text: text}}},
	})
}

func lineTexts(lines []Line) []string {
	out := make([]string, len(lines))
	for i := range lines {
		out[i] = lines[i].Text
	}
	return out
}

func TestWrapGreedy(t *testing.T) {
	ch := paragraphChapter("The quick brown fox jumps over the lazy dog")
	got := lineTexts(Wrap(ch, 10))
	want := []string{"The quick", "brown fox", "jumps over", "the lazy", "dog"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Wrap = %q, want %q", got, want)
	}
}

func TestWrapDeterministic(t *testing.T) {
	ch := paragraphChapter("Some words that will wrap over several lines here")
	a := Wrap(ch, 12)
	b := Wrap(ch, 12)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("identical inputs produced different line sequences")
	}
}

func TestWrapLossless(t *testing.T) {
	text := "Content reflows across lines but never loses or reorders words"
	ch := paragraphChapter(text)
	for _, width := range []int{5, 9, 17, 80} {
		lines := Wrap(ch, width)
		var words []string
		for _, l := range lines {
			if !l.Blank() {
				words = append(words, l.Text)
			}
		}
		if got := strings.Join(words, " "); got != text {
			t.Errorf("width %d: rejoined %q, want %q", width, got, text)
		}
	}
}

func TestWrapHardSplitsLongWord(t *testing.T) {
	ch := paragraphChapter("abcdefghij")
	got := lineTexts(Wrap(ch, 4))
	want := []string{"abcd", "efgh", "ij"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Wrap = %q, want %q", got, want)
	}
}

func TestWrapWidthClamped(t *testing.T) {
	ch := paragraphChapter("ab cd")
	got := lineTexts(Wrap(ch, 0))
	want := []string{"a", "b", "c", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Wrap at width 0 = %q, want %q", got, want)
	}
}

func TestWrapEmptyChapter(t *testing.T) {
	ch := content.NewChapter("c0", "Empty", nil)
	lines := Wrap(ch, 40)
	if len(lines) != 1 || !lines[0].Blank() {
		t.Fatalf("empty chapter lines = %+v, want one blank line", lines)
	}
}

func TestWrapHeadingSeparators(t *testing.T) {
	ch := content.NewChapter("c1", "One", []content.Block{
		{Kind: content.Heading, Level: 1, Spans: []content.Span{{Text: "Chapter One"}}},
		{Kind: content.Paragraph, Spans: []content.Span{{Text: "Body text."}}},
	})
	lines := Wrap(ch, 40)
	wantBlank := []bool{true, false, true, false}
	if len(lines) != len(wantBlank) {
		t.Fatalf("got %d lines %q, want %d", len(lines), lineTexts(lines), len(wantBlank))
	}
	for i, b := range wantBlank {
		if lines[i].Blank() != b {
			t.Errorf("line %d blank = %v, want %v (%q)", i, lines[i].Blank(), b, lines[i].Text)
		}
	}
	if lines[1].Text != "Chapter One" || lines[1].Kind != content.Heading {
		t.Errorf("line 1 = %q kind %v, want heading text", lines[1].Text, lines[1].Kind)
	}
	if lines[3].Text != "Body text." {
		t.Errorf("line 3 = %q", lines[3].Text)
	}
}

func TestWrapNoDoubledSeparators(t *testing.T) {
	ch := content.NewChapter("c1", "One", []content.Block{
		{Kind: content.Heading, Level: 1, Spans: []content.Span{{Text: "Head"}}},
		{Kind: content.Blockquote, Spans: []content.Span{{Text: "Quote"}}},
	})
	lines := Wrap(ch, 40)
	for i := 1; i < len(lines); i++ {
		if lines[i].Blank() && lines[i-1].Blank() {
			t.Fatalf("adjacent blank lines at %d: %q", i, lineTexts(lines))
		}
	}
}

func TestWrapForcedBreak(t *testing.T) {
	ch := paragraphChapter("one\ntwo")
	lines := Wrap(ch, 40)
	got := lineTexts(lines)
	want := []string{"one", "two"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Wrap = %q, want %q", got, want)
	}
	// The break rune belongs to the line it ends.
	if lines[0].End != 4 {
		t.Errorf("line 0 End = %d, want 4", lines[0].End)
	}
	if lines[1].Start != 4 {
		t.Errorf("line 1 Start = %d, want 4", lines[1].Start)
	}
}

func TestWrapStyleRanges(t *testing.T) {
	ch := content.NewChapter("c1", "One", []content.Block{
		{Kind: content.Paragraph, Spans: []content.Span{
			{Text: "ab "},
			{Text: "cd", Style: content.Bold},
			{Text: " ef"},
		}},
	})
	lines := Wrap(ch, 40)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	want := []StyleRange{
		{Start: 0, End: 3, Style: 0},
		{Start: 3, End: 5, Style: content.Bold},
		{Start: 5, End: 8, Style: 0},
	}
	if !reflect.DeepEqual(lines[0].Styles, want) {
		t.Fatalf("Styles = %+v, want %+v", lines[0].Styles, want)
	}
}

func TestWrapFirstLineFlag(t *testing.T) {
	ch := content.NewChapter("c1", "One", []content.Block{
		{Kind: content.ListItem, Spans: []content.Span{{Text: "item that wraps over lines"}}},
	})
	lines := Wrap(ch, 10)
	if len(lines) < 2 {
		t.Fatalf("got %d lines, want at least 2", len(lines))
	}
	if !lines[0].First {
		t.Error("first line of block not flagged First")
	}
	for i := 1; i < len(lines); i++ {
		if lines[i].First {
			t.Errorf("continuation line %d flagged First", i)
		}
	}
}

func TestWrapOffsetsCoverContent(t *testing.T) {
	ch := paragraphChapter("spans map back to the flat coordinate space")
	flat := []rune(ch.FlatText())
	for _, l := range Wrap(ch, 11) {
		if l.Blank() {
			continue
		}
		covered := string(flat[l.Start:l.End])
		if !strings.HasPrefix(covered, l.Text) {
			t.Errorf("line %q does not prefix its flat range %q", l.Text, covered)
		}
	}
}
