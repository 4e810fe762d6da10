package reader

import (
	"go.uber.org/zap"

	"folio/content"
	"folio/layout"
	"folio/search"
)

// Mode is the session's navigation mode. Overlay sub-states are part of the
// variant so impossible combinations (e.g. typing while no overlay is open)
// cannot be represented.
type Mode int

const (
	ModeReading Mode = iota
	ModeContents
	ModeSearchTyping
	ModeSearchBrowsing
)

func (m Mode) String() string {
	switch m {
	case ModeContents:
		return "contents"
	case ModeSearchTyping, ModeSearchBrowsing:
		return "search"
	default:
		return "reading"
	}
}

// InSearch reports whether the search overlay is open in either sub-state.
func (m Mode) InSearch() bool { return m == ModeSearchTyping || m == ModeSearchBrowsing }

// Status describes the session for the frame's status row.
type Status struct {
	BookTitle    string
	Author       string
	ChapterTitle string
	Chapter      int // zero-based
	ChapterCount int
	Page         int // zero-based
	PageCount    int
	Mode         Mode
}

// Session owns the navigation state and drives re-layout and re-pagination.
// It is single-owner and single-threaded: every command is fully applied,
// including any required re-layout, before the next frame is read off it.
type Session struct {
	book   *content.Book
	engine *layout.Engine
	log    *zap.Logger

	width  int
	height int

	mode    Mode
	chapter int
	line    int
	done    bool

	lines []layout.Line
	pages []layout.Page

	// contents overlay
	tocCursor int

	// search overlay; the index is built lazily on first open and is
	// wrap-independent, so it survives resizes.
	index   *search.Index
	query   []rune
	results []search.Entry
	cursor  int
}

// NewSession starts a session at chapter zero, line zero, reading mode.
func NewSession(book *content.Book, width, height int, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		book:   book,
		engine: layout.NewEngine(),
		log:    log,
		width:  clampMin(width, 1),
		height: clampMin(height, 1),
	}
	s.relayout()
	return s
}

// Apply processes one command. It returns true while the session is live;
// false once Quit has been applied.
func (s *Session) Apply(cmd Command) bool {
	if s.done {
		return false
	}

	switch c := cmd.(type) {
	case Quit:
		s.done = true

	case Resize:
		s.resize(c.Width, c.Height)

	case Scroll:
		s.scroll(c.Lines)

	case Page:
		if s.mode == ModeReading {
			p := layout.PageOf(s.pages, s.line)
			target := clamp(p+c.Delta, 0, len(s.pages)-1)
			// A clamped page command leaves the offset alone, like every
			// other clamped navigation.
			if target != p {
				s.line = s.pages[target].Start
			}
		}

	case ChapterStep:
		if s.mode == ModeReading {
			s.stepChapter(c.Delta)
		}

	case JumpStart:
		if s.mode == ModeReading {
			s.line = 0
		}

	case JumpEnd:
		if s.mode == ModeReading {
			s.line = len(s.lines) - 1
		}

	case OpenContents:
		if s.mode == ModeReading {
			s.mode = ModeContents
			s.tocCursor = s.chapter
		}

	case OpenSearch:
		if s.mode == ModeReading {
			s.mode = ModeSearchTyping
			s.query = nil
			s.results = nil
			s.cursor = 0
			s.ensureIndex()
		}

	case SearchInput:
		if s.mode.InSearch() {
			if c.Backspace {
				if len(s.query) > 0 {
					s.query = s.query[:len(s.query)-1]
				}
			} else if c.Ch != 0 {
				s.query = append(s.query, c.Ch)
			}
			s.mode = ModeSearchTyping
			s.results = s.index.Search(string(s.query)).Take(search.DefaultLimit)
			s.cursor = 0
		}

	case SearchNext:
		s.moveCursor(1)

	case SearchPrev:
		s.moveCursor(-1)

	case CommitSelection:
		s.commit()

	case Cancel:
		s.closeOverlay()
	}

	return !s.done
}

// Done reports whether Quit has been applied.
func (s *Session) Done() bool { return s.done }

func (s *Session) scroll(n int) {
	switch s.mode {
	case ModeReading:
		s.line = clamp(s.line+n, 0, len(s.lines)-1)
	case ModeContents:
		s.tocCursor = clamp(s.tocCursor+n, 0, len(s.book.Chapters)-1)
	case ModeSearchTyping, ModeSearchBrowsing:
		s.moveCursor(n)
	}
}

func (s *Session) moveCursor(n int) {
	if !s.mode.InSearch() || len(s.results) == 0 {
		return
	}
	s.cursor = clamp(s.cursor+n, 0, len(s.results)-1)
	s.mode = ModeSearchBrowsing
}

func (s *Session) stepChapter(delta int) {
	target := clamp(s.chapter+delta, 0, len(s.book.Chapters)-1)
	if target == s.chapter {
		return
	}
	entered := target < s.chapter // backward entry lands on the chapter end
	s.chapter = target
	s.relayout()
	if entered {
		s.line = len(s.lines) - 1
	} else {
		s.line = 0
	}
}

func (s *Session) commit() {
	switch s.mode {
	case ModeContents:
		if s.tocCursor != s.chapter {
			s.chapter = s.tocCursor
			s.relayout()
		}
		s.line = 0
		s.mode = ModeReading
	case ModeSearchTyping, ModeSearchBrowsing:
		if len(s.results) > 0 {
			e := s.results[clamp(s.cursor, 0, len(s.results)-1)]
			if e.Chapter != s.chapter {
				s.chapter = clamp(e.Chapter, 0, len(s.book.Chapters)-1)
				s.relayout()
			}
			s.line = layout.LineAt(s.lines, e.Offset)
		}
		s.closeOverlay()
	}
}

func (s *Session) closeOverlay() {
	s.mode = ModeReading
	s.query = nil
	s.results = nil
	s.cursor = 0
	s.tocCursor = 0
}

func (s *Session) resize(width, height int) {
	width = clampMin(width, 1)
	height = clampMin(height, 1)
	if width == s.width && height == s.height {
		return
	}
	anchor := s.anchor()
	s.width = width
	s.height = height
	// Stale layouts at the old width are dropped; other chapters re-wrap
	// lazily on the next navigation into them.
	s.engine.Resize(width)
	s.relayout()
	s.line = layout.LineAt(s.lines, anchor)
}

// relayout recomputes the wrapped lines and pages for the current chapter
// and clamps the line offset back into range. It runs synchronously, so a
// frame can never observe stale lines after a chapter or viewport change.
func (s *Session) relayout() {
	ch, ok := s.book.Chapter(s.chapter)
	if !ok {
		s.lines = []layout.Line{{}}
		s.pages = layout.Paginate(s.lines, s.height)
		s.line = 0
		return
	}
	s.lines = s.engine.Lines(ch, s.width)
	s.pages = layout.Paginate(s.lines, s.height)
	s.line = clamp(s.line, 0, len(s.lines)-1)
}

// anchor returns the flat offset of the line the reader is on, preferring
// the first content line at or below it so the position survives reflow.
func (s *Session) anchor() int {
	for i := s.line; i < len(s.lines); i++ {
		if !s.lines[i].Blank() {
			return s.lines[i].Start
		}
	}
	for i := s.line - 1; i >= 0; i-- {
		if !s.lines[i].Blank() {
			return s.lines[i].Start
		}
	}
	return 0
}

func (s *Session) ensureIndex() {
	if s.index != nil {
		return
	}
	s.index = search.NewIndex(s.book)
	s.log.Debug("search index built", zap.Int("lines", s.index.Len()))
}

// Restore re-derives the reading position from the durable (chapter id,
// flat offset) tuple at the current viewport. Unknown chapters and
// out-of-range offsets clamp silently.
func (s *Session) Restore(chapterID string, flat int) {
	for i, ch := range s.book.Chapters {
		if ch.ID == chapterID {
			if i != s.chapter {
				s.chapter = i
				s.relayout()
			}
			s.line = layout.LineAt(s.lines, flat)
			return
		}
	}
}

// Position returns the durable reading position: current chapter id and the
// flat offset of the line the reader is on.
func (s *Session) Position() (string, int) {
	ch, ok := s.book.Chapter(s.chapter)
	if !ok {
		return "", 0
	}
	return ch.ID, s.anchor()
}

// Accessors used by the frame renderer and by tests.

func (s *Session) Book() *content.Book { return s.book }
func (s *Session) Mode() Mode          { return s.mode }
func (s *Session) ChapterIndex() int   { return s.chapter }
func (s *Session) LineOffset() int     { return s.line }
func (s *Session) Width() int          { return s.width }
func (s *Session) Height() int         { return s.height }
func (s *Session) TOCCursor() int      { return s.tocCursor }
func (s *Session) Query() string       { return string(s.query) }
func (s *Session) ResultCursor() int   { return s.cursor }

// Results returns the materialized top-ranked matches for display.
func (s *Session) Results() []search.Entry { return s.results }

// Visible returns the wrapped lines of the current frame, at most one
// viewport tall, starting at the current line offset.
func (s *Session) Visible() []layout.Line {
	if len(s.lines) == 0 {
		return nil
	}
	end := s.line + s.height
	if end > len(s.lines) {
		end = len(s.lines)
	}
	return s.lines[s.line:end]
}

// PageNumber returns the zero-based page holding the current line.
func (s *Session) PageNumber() int { return layout.PageOf(s.pages, s.line) }

// PageCount returns the number of pages in the current chapter.
func (s *Session) PageCount() int { return len(s.pages) }

// Status summarizes the session for the status row.
func (s *Session) Status() Status {
	st := Status{
		BookTitle:    s.book.Title,
		Author:       s.book.Author,
		Chapter:      s.chapter,
		ChapterCount: len(s.book.Chapters),
		Page:         s.PageNumber(),
		PageCount:    s.PageCount(),
		Mode:         s.mode,
	}
	if ch, ok := s.book.Chapter(s.chapter); ok {
		st.ChapterTitle = ch.Title
	}
	return st
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampMin(v, lo int) int {
	if v < lo {
		return lo
	}
	return v
}
