package layout

import (
	"folio/content"
)

type cacheKey struct {
	chapterID string
	width     int
}

// Engine memoizes wrapped-line sequences per (chapter id, width). Wrapping
// is deterministic, so a cached entry is exactly what a fresh Wrap call
// would produce; repeated navigation at a stable width costs a map lookup.
type Engine struct {
	cache map[cacheKey][]Line
}

func NewEngine() *Engine {
	return &Engine{cache: make(map[cacheKey][]Line)}
}

// Lines returns the wrapped lines for the chapter at the given width,
// computing and caching them on first use.
func (e *Engine) Lines(ch *content.Chapter, width int) []Line {
	if width < 1 {
		width = 1
	}
	key := cacheKey{chapterID: ch.ID, width: width}
	if lines, ok := e.cache[key]; ok {
		return lines
	}
	lines := Wrap(ch, width)
	e.cache[key] = lines
	return lines
}

// Resize discards entries computed at other widths. Chapters are re-wrapped
// lazily on the next navigation into them.
func (e *Engine) Resize(width int) {
	if width < 1 {
		width = 1
	}
	for key := range e.cache {
		if key.width != width {
			delete(e.cache, key)
		}
	}
}

// Invalidate drops all cached layouts for one chapter.
func (e *Engine) Invalidate(chapterID string) {
	for key := range e.cache {
		if key.chapterID == chapterID {
			delete(e.cache, key)
		}
	}
}
