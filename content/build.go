package content

import (
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"folio/utils"
)

// RawChapter is what the container collaborator hands the builder: a stable
// id, an optional title and the chapter's raw structured markup. Err carries
// a container-side read failure for this entry; the builder degrades such
// chapters to placeholders instead of failing the load.
type RawChapter struct {
	ID     string
	Title  string
	Markup []byte
	Err    error
}

// Metadata is the book-level information from the container manifest.
type Metadata struct {
	Title  string
	Author string
}

// BuildBook assembles the immutable content model for a whole book. The
// returned error aggregates non-fatal degradations (unreadable or
// unparseable chapters); the book itself is always usable.
func BuildBook(meta Metadata, raws []RawChapter, log *zap.Logger) (*Book, error) {
	book := &Book{Title: meta.Title, Author: meta.Author}
	var degraded error
	for i, raw := range raws {
		ch, err := buildChapter(raw, i)
		if err != nil {
			degraded = multierr.Append(degraded, fmt.Errorf("chapter %q: %w", raw.ID, err))
			log.Warn("chapter degraded to placeholder",
				zap.String("chapter", raw.ID), zap.Error(err))
		}
		book.Chapters = append(book.Chapters, ch)
	}
	log.Info("content model built",
		zap.String("title", book.Title), zap.Int("chapters", len(book.Chapters)))
	return book, degraded
}

func buildChapter(raw RawChapter, index int) (*Chapter, error) {
	if raw.Err != nil {
		text := utils.DecodeText(raw.Markup)
		return NewChapter(raw.ID, fallbackTitle(raw.Title, index), PlainBlocks(text)), raw.Err
	}

	blocks, err := ResolveMarkup(raw.Markup)
	if err != nil || len(blocks) == 0 {
		// Best-effort recovery: dump the markup as plain text.
		text := utils.DecodeText(raw.Markup)
		if err == nil {
			err = fmt.Errorf("no renderable content")
		}
		return NewChapter(raw.ID, fallbackTitle(raw.Title, index), PlainBlocks(text)), err
	}

	title := raw.Title
	if title == "" {
		title = titleFromBlocks(blocks)
	}
	if title == "" {
		title = DocTitle(raw.Markup)
	}
	if title == "" {
		title = titleFromText(blocks)
	}
	return NewChapter(raw.ID, fallbackTitle(title, index), blocks), nil
}

func fallbackTitle(title string, index int) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Sprintf("Chapter %d", index+1)
	}
	return title
}

func titleFromBlocks(blocks []Block) string {
	for i := range blocks {
		if blocks[i].Kind != Heading {
			continue
		}
		if t := strings.TrimSpace(blocks[i].Text()); t != "" && len(t) < 100 {
			return t
		}
		break
	}
	return ""
}

// titleFromText falls back to the first line when it looks like a title:
// short, not a sentence, contains letters.
func titleFromText(blocks []Block) string {
	if len(blocks) == 0 {
		return ""
	}
	first := strings.TrimSpace(blocks[0].Text())
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = strings.TrimSpace(first[:i])
	}
	if len(first) > 3 && len(first) < 100 && !strings.HasSuffix(first, ".") &&
		strings.IndexFunc(first, unicode.IsLetter) >= 0 {
		return first
	}
	return ""
}
