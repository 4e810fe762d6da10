package layout

import (
	"github.com/mattn/go-runewidth"

	"folio/content"
)

// StyleRange annotates the rune range [Start, End) of a line's text.
type StyleRange struct {
	Start int
	End   int
	Style content.Style
}

// Line is one terminal-width-bounded rendered line. Start/End are the flat
// rune offsets of the chapter text it covers; blank separator lines cover
// nothing (Start == End) and carry BlockID -1.
type Line struct {
	ChapterID string
	BlockID   int
	Kind      content.BlockKind
	Level     int
	Start     int
	End       int
	Text      string
	Styles    []StyleRange
	First     bool // first rendered line of its block
}

// Blank reports whether the line is an inserted visual separator.
func (l Line) Blank() bool { return l.BlockID < 0 }

// cell is one rune with its style and flat offset. Per-block cell slices
// keep the wrap loop linear in chapter size.
type cell struct {
	r   rune
	st  content.Style
	off int
}

// Wrap converts a chapter's content model into wrapped lines at the given
// width. It is a pure function: identical (content, width) inputs always
// yield an identical line sequence, which is what makes line indices usable
// as reading-position anchors. Width is clamped to a minimum of one column;
// wrapping never fails.
func Wrap(ch *content.Chapter, width int) []Line {
	if width < 1 {
		width = 1
	}

	var lines []Line
	blank := func(off int) Line {
		return Line{ChapterID: ch.ID, BlockID: -1, Start: off, End: off}
	}

	for i := range ch.Blocks {
		b := &ch.Blocks[i]
		separated := b.Kind == content.Heading || b.Kind == content.Blockquote

		if separated && (len(lines) == 0 || !lines[len(lines)-1].Blank()) {
			lines = append(lines, blank(blockStart(b)))
		}
		lines = append(lines, wrapBlock(ch.ID, b, width)...)
		if separated {
			lines = append(lines, blank(blockEnd(b)))
		}
	}

	// A chapter always has at least one line so a line offset of zero is
	// valid even for empty placeholder chapters.
	if len(lines) == 0 {
		lines = append(lines, blank(0))
	}
	return lines
}

func blockStart(b *content.Block) int {
	if len(b.Spans) == 0 {
		return 0
	}
	return b.Spans[0].Offset
}

func blockEnd(b *content.Block) int {
	if len(b.Spans) == 0 {
		return 0
	}
	last := &b.Spans[len(b.Spans)-1]
	return last.Offset + len([]rune(last.Text))
}

func wrapBlock(chapterID string, b *content.Block, width int) []Line {
	cells := flatten(b)
	var lines []Line

	emit := func(cs []cell) {
		if len(cs) == 0 {
			return
		}
		lines = append(lines, makeLine(chapterID, b, cs))
	}

	var cur []cell
	curW := 0

	flushLine := func() {
		emit(cur)
		cur = nil
		curW = 0
	}

	i := 0
	for i < len(cells) {
		switch cells[i].r {
		case '\n':
			// Forced break: always ends the current line, even when empty.
			if len(cur) == 0 {
				lines = append(lines, Line{
					ChapterID: chapterID, BlockID: b.ID, Kind: b.Kind, Level: b.Level,
					Start: cells[i].off, End: cells[i].off + 1,
				})
			} else {
				emit(cur)
				lines[len(lines)-1].End = cells[i].off + 1
				cur = nil
				curW = 0
			}
			i++
			continue
		case ' ':
			// Collapsed word separator; decide together with the next word.
			i++
			word, next := takeWord(cells, i)
			ww := cellsWidth(word)
			if len(cur) > 0 && curW+1+ww <= width {
				cur = append(cur, cells[i-1])
				cur = append(cur, word...)
				curW += 1 + ww
			} else {
				flushLine()
				cur, curW, lines = placeWord(chapterID, b, word, width, lines)
			}
			i = next
			continue
		default:
			// Word at the start of a line (block start or after a break).
			word, next := takeWord(cells, i)
			flushLine()
			cur, curW, lines = placeWord(chapterID, b, word, width, lines)
			i = next
		}
	}
	flushLine()
	if len(lines) > 0 {
		lines[0].First = true
	}
	return lines
}

// placeWord starts a fresh line with the word, hard-splitting it at the
// column boundary when it is wider than the whole viewport. A word is never
// dropped: even at width one, each line takes at least one rune.
func placeWord(chapterID string, b *content.Block, word []cell, width int, lines []Line) ([]cell, int, []Line) {
	for cellsWidth(word) > width {
		n, w := 0, 0
		for n < len(word) {
			rw := runewidth.RuneWidth(word[n].r)
			if n > 0 && w+rw > width {
				break
			}
			w += rw
			n++
		}
		lines = append(lines, makeLine(chapterID, b, word[:n]))
		word = word[n:]
	}
	return word, cellsWidth(word), lines
}

func takeWord(cells []cell, i int) ([]cell, int) {
	j := i
	for j < len(cells) && cells[j].r != ' ' && cells[j].r != '\n' {
		j++
	}
	return cells[i:j], j
}

func cellsWidth(cs []cell) int {
	w := 0
	for i := range cs {
		w += runewidth.RuneWidth(cs[i].r)
	}
	return w
}

func flatten(b *content.Block) []cell {
	var cells []cell
	for i := range b.Spans {
		sp := &b.Spans[i]
		off := sp.Offset
		for _, r := range sp.Text {
			cells = append(cells, cell{r: r, st: sp.Style, off: off})
			off++
		}
	}
	return cells
}

func makeLine(chapterID string, b *content.Block, cs []cell) Line {
	l := Line{
		ChapterID: chapterID,
		BlockID:   b.ID,
		Kind:      b.Kind,
		Level:     b.Level,
		Start:     cs[0].off,
		End:       cs[len(cs)-1].off + 1,
	}
	runes := make([]rune, len(cs))
	for i := range cs {
		runes[i] = cs[i].r
	}
	l.Text = string(runes)

	start := 0
	for i := 1; i <= len(cs); i++ {
		if i == len(cs) || cs[i].st != cs[start].st {
			l.Styles = append(l.Styles, StyleRange{Start: start, End: i, Style: cs[start].st})
			start = i
		}
	}
	return l
}
