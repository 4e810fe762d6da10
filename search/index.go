package search

import (
	"sort"
	"strings"

	"folio/content"
)

// DefaultLimit bounds how many ranked results are materialized for
// interactive display; the iterator can still walk past it.
const DefaultLimit = 200

// Entry is one ranked match: where it is (chapter, flat offset) and the
// minimal span of the candidate line that contains the query as an ordered
// subsequence.
type Entry struct {
	Chapter   int    // chapter index in spine order
	ChapterID string
	Line      int // candidate line index within the chapter's flat text
	Offset    int // flat rune offset of the matched span start
	Col       int // rune offset of the matched span within Text
	Length    int // matched span length in runes
	Text      string
}

type indexLine struct {
	chapter   int
	chapterID string
	line      int
	start     int // flat rune offset of the line's first rune
	text      string
	lower     []rune
}

// Index is a fuzzy-searchable view over the flat chapter texts. It is built
// from wrap-independent coordinates, so terminal resizes never invalidate it.
type Index struct {
	lines []indexLine
}

// NewIndex builds the index for a whole book. Cost is linear in total text.
func NewIndex(book *content.Book) *Index {
	idx := &Index{}
	for ci, ch := range book.Chapters {
		off := 0
		for li, text := range strings.Split(ch.FlatText(), "\n") {
			n := len([]rune(text))
			if strings.TrimSpace(text) != "" {
				idx.lines = append(idx.lines, indexLine{
					chapter:   ci,
					chapterID: ch.ID,
					line:      li,
					start:     off,
					text:      text,
					lower:     []rune(strings.ToLower(text)),
				})
			}
			off += n + 1 // the split newline
		}
	}
	return idx
}

// Len reports how many candidate lines the index holds.
func (idx *Index) Len() int { return len(idx.lines) }

// Results is a ranked sequence of matches; consumers may stop early.
type Results struct {
	entries []Entry
	pos     int
}

// Next yields the next ranked entry.
func (r *Results) Next() (Entry, bool) {
	if r.pos >= len(r.entries) {
		return Entry{}, false
	}
	e := r.entries[r.pos]
	r.pos++
	return e, true
}

// Take returns up to n top-ranked entries without consuming the iterator.
func (r *Results) Take(n int) []Entry {
	if n > len(r.entries) {
		n = len(r.entries)
	}
	return r.entries[:n]
}

// Len reports the total number of matches.
func (r *Results) Len() int { return len(r.entries) }

// Search matches the query against every candidate line: the query's
// characters must appear, case-insensitively, as an ordered (not necessarily
// contiguous) subsequence. Results are ranked by ascending minimal span
// length, then start offset, then chapter order, then line order. An empty
// query yields no results, never "all lines".
func (idx *Index) Search(query string) *Results {
	q := []rune(strings.ToLower(query))
	if len(q) == 0 {
		return &Results{}
	}

	var entries []Entry
	for i := range idx.lines {
		l := &idx.lines[i]
		start, length, ok := matchSpan(l.lower, q)
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			Chapter:   l.chapter,
			ChapterID: l.chapterID,
			Line:      l.line,
			Offset:    l.start + start,
			Col:       start,
			Length:    length,
			Text:      l.text,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Length != b.Length {
			return a.Length < b.Length
		}
		if a.Offset != b.Offset {
			return a.Offset < b.Offset
		}
		if a.Chapter != b.Chapter {
			return a.Chapter < b.Chapter
		}
		return a.Line < b.Line
	})
	return &Results{entries: entries}
}

// matchSpan finds the minimal-length window of text that contains q as an
// ordered subsequence. Both inputs must already be lowercased. Returns the
// window's rune start and length.
func matchSpan(text, q []rune) (int, int, bool) {
	bestStart, bestLen := 0, -1

	i := 0
	for i < len(text) {
		// Forward pass: earliest end of a full match starting at or after i.
		j, k := 0, i
		for k < len(text) && j < len(q) {
			if text[k] == q[j] {
				j++
			}
			k++
		}
		if j < len(q) {
			break
		}
		// Backward pass: latest start for that end.
		j = len(q) - 1
		s := k - 1
		for s >= i {
			if text[s] == q[j] {
				if j == 0 {
					break
				}
				j--
			}
			s--
		}
		if bestLen < 0 || k-s < bestLen {
			bestStart, bestLen = s, k-s
		}
		i = s + 1
	}

	if bestLen < 0 {
		return 0, 0, false
	}
	return bestStart, bestLen, true
}
