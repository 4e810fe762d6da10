package layout

import (
	"sort"

	"folio/content"
)

// Page is a contiguous run of wrapped lines sized to one screen.
// Pages partition the chapter's line sequence: contiguous, non-overlapping,
// exhaustive, and never taller than the viewport.
type Page struct {
	ChapterID string
	Number    int // zero-based
	Start     int // first line index
	End       int // one past the last line index
}

// Paginate groups wrapped lines into pages of at most rows lines. The last
// page may be shorter and is never padded. When a boundary would fall right
// after the blank separator leading a heading, it is pulled back one line so
// the heading opens the next page together with its content.
func Paginate(lines []Line, rows int) []Page {
	if rows < 1 {
		rows = 1
	}
	var pages []Page
	chapterID := ""
	if len(lines) > 0 {
		chapterID = lines[0].ChapterID
	}

	start := 0
	for start < len(lines) {
		end := start + rows
		if end > len(lines) {
			end = len(lines)
		}
		if end < len(lines) && end-start > 1 &&
			lines[end-1].Blank() && isHeadingLine(lines[end]) {
			end--
		}
		pages = append(pages, Page{
			ChapterID: chapterID,
			Number:    len(pages),
			Start:     start,
			End:       end,
		})
		start = end
	}
	if len(pages) == 0 {
		pages = append(pages, Page{ChapterID: chapterID})
	}
	return pages
}

func isHeadingLine(l Line) bool {
	return !l.Blank() && l.Kind == content.Heading
}

// PageOf returns the index of the page containing the given line offset,
// clamped into range.
func PageOf(pages []Page, line int) int {
	if len(pages) == 0 {
		return 0
	}
	i := sort.Search(len(pages), func(i int) bool { return pages[i].End > line })
	if i >= len(pages) {
		return len(pages) - 1
	}
	return i
}

// LineAt returns the index of the wrapped line containing the given flat
// rune offset. Offsets past the chapter end clamp to the last content line;
// blank separators are never returned unless the chapter has nothing else.
func LineAt(lines []Line, flat int) int {
	last := 0
	for i, l := range lines {
		if l.Blank() {
			continue
		}
		last = i
		if flat < l.End {
			return i
		}
	}
	return last
}
