package content

import (
	"sort"
	"strings"
)

// Style is a set of inline text attributes.
type Style uint8

const (
	Bold Style = 1 << iota
	Italic
)

func (s Style) Has(f Style) bool { return s&f != 0 }

// BlockKind enumerates the structural block variants. Unknown markup
// degrades to Paragraph, so the layout engine never sees raw tags.
type BlockKind int

const (
	Paragraph BlockKind = iota
	Heading
	Blockquote
	ListItem
)

// Span is a run of characters sharing one style set. Offset is the flat
// rune offset of the span's first rune within its chapter.
type Span struct {
	Text   string
	Style  Style
	Offset int
}

// Block is a structural content unit. ID is chapter-local and stable for
// the session; block order is fixed at build time.
type Block struct {
	ID    int
	Kind  BlockKind
	Level int // heading level 1-6, zero for other kinds
	Spans []Span
}

// Text returns the block's concatenated span text.
func (b *Block) Text() string {
	var sb strings.Builder
	for i := range b.Spans {
		sb.WriteString(b.Spans[i].Text)
	}
	return sb.String()
}

// Position addresses one rune inside a chapter by structure rather than by
// layout: block id, span index within the block, rune offset within the span.
type Position struct {
	Block  int
	Span   int
	Offset int
}

// Chapter holds the immutable content model for one spine entry. The flat
// text is the concatenation of all block texts joined by single newlines;
// flat offsets count runes and are independent of wrap width.
type Chapter struct {
	ID     string
	Title  string
	Blocks []Block

	flat    string
	flatLen int
	starts  []int // flat rune offset of each block's first rune
}

// NewChapter assigns block ids in source order and derives the flat
// coordinate space. Blocks must already be normalized (no empty spans).
func NewChapter(id, title string, blocks []Block) *Chapter {
	c := &Chapter{ID: id, Title: title, Blocks: blocks}
	var sb strings.Builder
	off := 0
	c.starts = make([]int, len(blocks))
	for i := range c.Blocks {
		if i > 0 {
			sb.WriteByte('\n')
			off++
		}
		c.Blocks[i].ID = i
		c.starts[i] = off
		for j := range c.Blocks[i].Spans {
			sp := &c.Blocks[i].Spans[j]
			sp.Offset = off
			off += len([]rune(sp.Text))
			sb.WriteString(sp.Text)
		}
	}
	c.flat = sb.String()
	c.flatLen = off
	return c
}

// FlatText returns the chapter's wrap-independent text.
func (c *Chapter) FlatText() string { return c.flat }

// FlatLen returns the flat text length in runes.
func (c *Chapter) FlatLen() int { return c.flatLen }

// FlatOffset maps a structural position to its flat rune offset.
// Reports false if the position does not address a rune of this chapter.
func (c *Chapter) FlatOffset(p Position) (int, bool) {
	if p.Block < 0 || p.Block >= len(c.Blocks) {
		return 0, false
	}
	b := &c.Blocks[p.Block]
	if p.Span < 0 || p.Span >= len(b.Spans) {
		return 0, false
	}
	sp := &b.Spans[p.Span]
	if p.Offset < 0 || p.Offset >= len([]rune(sp.Text)) {
		return 0, false
	}
	return sp.Offset + p.Offset, true
}

// Resolve maps a flat rune offset back to a structural position. Offsets
// that land on a block separator resolve to the start of the next block,
// so every offset in [0, FlatLen) has a home. Reports false only when the
// chapter is empty or the offset is out of range.
func (c *Chapter) Resolve(flat int) (Position, bool) {
	if len(c.Blocks) == 0 || flat < 0 || flat >= c.flatLen {
		return Position{}, false
	}
	// Last block whose start is <= flat.
	i := sort.Search(len(c.starts), func(i int) bool { return c.starts[i] > flat }) - 1
	if i < 0 {
		i = 0
	}
	b := &c.Blocks[i]
	for j := range b.Spans {
		sp := &b.Spans[j]
		n := len([]rune(sp.Text))
		if flat < sp.Offset+n {
			if flat < sp.Offset {
				return Position{Block: b.ID, Span: j, Offset: 0}, true
			}
			return Position{Block: b.ID, Span: j, Offset: flat - sp.Offset}, true
		}
	}
	// Separator rune between block i and i+1.
	if i+1 < len(c.Blocks) && len(c.Blocks[i+1].Spans) > 0 {
		return Position{Block: i + 1, Span: 0, Offset: 0}, true
	}
	return Position{}, false
}

// Book is the ordered, immutable spine of chapters plus metadata.
type Book struct {
	Title    string
	Author   string
	Chapters []*Chapter
}

// ID identifies the book for progress persistence.
func (b *Book) ID() string { return b.Title + "|" + b.Author }

// Chapter returns the chapter at index i, clamped into range.
// Reports false when the book has no chapters at all.
func (b *Book) Chapter(i int) (*Chapter, bool) {
	if len(b.Chapters) == 0 {
		return nil, false
	}
	if i < 0 {
		i = 0
	}
	if i >= len(b.Chapters) {
		i = len(b.Chapters) - 1
	}
	return b.Chapters[i], true
}
