package content

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ResolveMarkup parses a chapter's structured markup and resolves it into
// ordered blocks of styled spans. The underlying HTML parser recovers from
// malformed or unclosed markup on its own, so resolution never fails on bad
// input; at worst the result is plain paragraph text.
func ResolveMarkup(markup []byte) ([]Block, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, err
	}
	root := doc.Find("body")
	var nodes []*html.Node
	if len(root.Nodes) > 0 {
		nodes = root.Nodes
	} else {
		nodes = doc.Selection.Nodes
	}

	r := &resolver{}
	for _, n := range nodes {
		r.walk(n, 0, false)
	}
	r.flush()
	return r.blocks, nil
}

// PlainBlocks turns already-plain text into paragraph blocks, one per
// non-empty line. Used for placeholder chapters whose markup could not be
// resolved.
func PlainBlocks(text string) []Block {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	var blocks []Block
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		blocks = append(blocks, Block{
			Kind:  Paragraph,
			Spans: []Span{{Text: line}},
		})
	}
	return blocks
}

// DocTitle extracts the markup's own <title> text, if any.
func DocTitle(markup []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

type resolver struct {
	blocks []Block

	kind  BlockKind
	level int
	spans []Span
}

func (r *resolver) walk(n *html.Node, style Style, pre bool) {
	switch n.Type {
	case html.TextNode:
		if pre {
			r.appendRaw(n.Data, style)
		} else {
			r.appendText(n.Data, style)
		}
		return
	case html.ElementNode:
	default:
		return
	}

	tag := n.Data
	switch tag {
	case "script", "style", "head", "title", "noscript":
		return
	case "h1", "h2", "h3", "h4", "h5", "h6":
		r.enter(Heading, int(tag[1]-'0'), n, style, pre)
		return
	case "blockquote":
		r.enter(Blockquote, 0, n, style, pre)
		return
	case "li":
		r.enter(ListItem, 0, n, style, pre)
		return
	case "p", "div", "section", "article", "figure", "figcaption", "tr":
		// Paragraph-like containers start a fresh block but keep the
		// enclosing kind, so paragraphs nested in a blockquote stay quoted.
		r.flush()
		r.walkChildren(n, style, pre)
		r.flush()
		return
	case "pre":
		r.flush()
		r.walkChildren(n, style, true)
		r.flush()
		return
	case "b", "strong":
		r.walkChildren(n, style|Bold, pre)
		return
	case "i", "em":
		r.walkChildren(n, style|Italic, pre)
		return
	case "br":
		r.appendBreak(style)
		return
	}

	// Unrecognized elements degrade to their text content.
	r.walkChildren(n, style, pre)
}

// enter opens a block of the given kind, resolves the element's subtree
// inside it, and restores the enclosing kind afterwards.
func (r *resolver) enter(kind BlockKind, level int, n *html.Node, style Style, pre bool) {
	r.flush()
	prevKind, prevLevel := r.kind, r.level
	r.kind, r.level = kind, level
	r.walkChildren(n, style, pre)
	r.flush()
	r.kind, r.level = prevKind, prevLevel
}

func (r *resolver) walkChildren(n *html.Node, style Style, pre bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.walk(c, style, pre)
	}
}

// appendText collapses whitespace runs to single spaces and merges the
// result into the current block.
func (r *resolver) appendText(text string, style Style) {
	var sb strings.Builder
	space := r.trailingSpace()
	empty := r.blockEmpty()
	for _, ch := range text {
		if unicode.IsSpace(ch) {
			if !space && !empty {
				sb.WriteByte(' ')
				space = true
			}
			continue
		}
		sb.WriteRune(ch)
		space = false
		empty = false
	}
	r.push(sb.String(), style)
}

// appendRaw keeps whitespace as-is inside preformatted regions, normalizing
// only line endings.
func (r *resolver) appendRaw(text string, style Style) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	r.push(text, style)
}

func (r *resolver) appendBreak(style Style) {
	// Drop a pending soft space so the break does not carry it over.
	if n := len(r.spans); n > 0 {
		r.spans[n-1].Text = strings.TrimRight(r.spans[n-1].Text, " ")
	}
	r.push("\n", style)
}

func (r *resolver) push(text string, style Style) {
	if text == "" {
		return
	}
	if n := len(r.spans); n > 0 && r.spans[n-1].Style == style {
		r.spans[n-1].Text += text
		return
	}
	r.spans = append(r.spans, Span{Text: text, Style: style})
}

func (r *resolver) blockEmpty() bool {
	for i := range r.spans {
		if strings.TrimSpace(r.spans[i].Text) != "" {
			return false
		}
	}
	return true
}

func (r *resolver) trailingSpace() bool {
	n := len(r.spans)
	if n == 0 {
		return false
	}
	t := r.spans[n-1].Text
	return t != "" && (t[len(t)-1] == ' ' || t[len(t)-1] == '\n')
}

// flush finalizes the block under construction: trailing whitespace is
// trimmed, whitespace-only blocks are dropped.
func (r *resolver) flush() {
	spans := r.spans
	r.spans = nil
	kind, level := r.kind, r.level

	for len(spans) > 0 {
		last := strings.TrimRight(spans[len(spans)-1].Text, " \n\t")
		if last != "" {
			spans[len(spans)-1].Text = last
			break
		}
		spans = spans[:len(spans)-1]
	}
	if len(spans) == 0 {
		return
	}
	// Leading whitespace on the first span.
	spans[0].Text = strings.TrimLeft(spans[0].Text, " ")
	if spans[0].Text == "" {
		spans = spans[1:]
	}
	if len(spans) == 0 {
		return
	}
	r.blocks = append(r.blocks, Block{Kind: kind, Level: level, Spans: spans})
}
