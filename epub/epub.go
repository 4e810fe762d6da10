// Package epub reads EPUB containers: the ZIP archive, the OCF container
// descriptor and the OPF package document. It yields book metadata and the
// spine-ordered raw chapters; resolving markup into the content model is the
// content package's job. Only container-level failures are fatal — a broken
// chapter entry degrades to a placeholder and the load continues.
package epub

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"folio/content"
)

const (
	containerPath = "META-INF/container.xml"

	maxBookSize     = 100 << 20 // refuse anything larger outright
	maxChapterSize  = 5 << 20
	maxInflateRatio = 100 // decompression bomb guard
)

var (
	ErrContainerMissing = errors.New("epub: META-INF/container.xml not found")
	ErrRootfileMissing  = errors.New("epub: no rootfile declared in container.xml")
	ErrEmptySpine       = errors.New("epub: package spine lists no chapters")
)

// Archive is an opened EPUB container.
type Archive struct {
	Meta     content.Metadata
	Chapters []content.RawChapter
}

// Open reads the whole container. The returned error is fatal (no usable
// book); per-chapter read failures are recorded on the RawChapter entries
// instead and logged in aggregate.
func Open(bookPath string, log *zap.Logger) (*Archive, error) {
	if log == nil {
		log = zap.NewNop()
	}

	info, err := os.Stat(bookPath)
	if err != nil {
		return nil, fmt.Errorf("epub: %w", err)
	}
	if info.Size() > maxBookSize {
		return nil, fmt.Errorf("epub: file too large: %d bytes (max %d)", info.Size(), int64(maxBookSize))
	}

	zr, err := zip.OpenReader(bookPath)
	if err != nil {
		return nil, fmt.Errorf("epub: open archive: %w", err)
	}
	defer zr.Close()

	opfPath, err := findRootfile(&zr.Reader)
	if err != nil {
		return nil, err
	}
	log.Debug("rootfile located", zap.String("opf", opfPath))

	meta, spine, err := parsePackage(&zr.Reader, opfPath)
	if err != nil {
		return nil, err
	}
	log.Info("epub opened",
		zap.String("title", meta.Title),
		zap.String("author", meta.Author),
		zap.Int("spine", len(spine)))

	opfDir := path.Dir(opfPath)
	var chapters []content.RawChapter
	var degraded error
	for _, href := range spine {
		data, err := readChapter(&zr.Reader, opfDir, href)
		if err != nil {
			degraded = multierr.Append(degraded, fmt.Errorf("%s: %w", href, err))
			log.Warn("chapter unreadable", zap.String("href", href), zap.Error(err))
		}
		chapters = append(chapters, content.RawChapter{ID: href, Markup: data, Err: err})
	}
	if degraded != nil {
		log.Warn("book loaded with degraded chapters", zap.Error(degraded))
	}

	return &Archive{Meta: meta, Chapters: chapters}, nil
}

// findRootfile reads container.xml and returns the first rootfile's
// full-path attribute.
func findRootfile(zr *zip.Reader) (string, error) {
	data, err := readEntry(zr, containerPath)
	if err != nil {
		return "", ErrContainerMissing
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return "", fmt.Errorf("epub: container.xml: %w", err)
	}
	for _, el := range findAll(doc.Root(), "rootfile") {
		if p := el.SelectAttrValue("full-path", ""); p != "" {
			return p, nil
		}
	}
	return "", ErrRootfileMissing
}

// parsePackage extracts dc:title/dc:creator metadata and the spine-ordered
// chapter hrefs from the OPF document.
func parsePackage(zr *zip.Reader, opfPath string) (content.Metadata, []string, error) {
	meta := content.Metadata{Title: "Unknown", Author: "Unknown"}

	data, err := readEntry(zr, opfPath)
	if err != nil {
		return meta, nil, fmt.Errorf("epub: package document %q: %w", opfPath, err)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return meta, nil, fmt.Errorf("epub: package document: %w", err)
	}
	root := doc.Root()

	if el := first(root, "title"); el != nil && strings.TrimSpace(el.Text()) != "" {
		meta.Title = strings.TrimSpace(el.Text())
	}
	if el := first(root, "creator"); el != nil && strings.TrimSpace(el.Text()) != "" {
		meta.Author = strings.TrimSpace(el.Text())
	}

	manifest := make(map[string]string)
	for _, item := range findAll(root, "item") {
		id := item.SelectAttrValue("id", "")
		href := item.SelectAttrValue("href", "")
		if id != "" && href != "" {
			manifest[id] = href
		}
	}

	var spine []string
	for _, ref := range findAll(root, "itemref") {
		if href, ok := manifest[ref.SelectAttrValue("idref", "")]; ok {
			spine = append(spine, href)
		}
	}
	if len(spine) == 0 {
		return meta, nil, ErrEmptySpine
	}
	return meta, spine, nil
}

// readChapter resolves a spine href against the OPF directory, trying a set
// of conventional fallback prefixes for books that do not follow the OCF
// layout rules (many exist).
func readChapter(zr *zip.Reader, opfDir, href string) ([]byte, error) {
	candidates := []string{path.Join(opfDir, href), href}
	for _, prefix := range []string{"OEBPS", "OPS", "Text", "EPUB", "content"} {
		candidates = append(candidates, path.Join(prefix, href))
	}

	var firstErr error
	for _, name := range candidates {
		data, err := readEntry(zr, name)
		if err == nil {
			return data, nil
		}
		if firstErr == nil && !errors.Is(err, errNotFound) {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, fmt.Errorf("chapter file not found: %s", href)
}

var errNotFound = errors.New("entry not found")

func readEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		if f.UncompressedSize64 > maxChapterSize {
			return nil, fmt.Errorf("entry too large: %d bytes (max %d)", f.UncompressedSize64, maxChapterSize)
		}
		if f.CompressedSize64 > 0 &&
			f.UncompressedSize64/f.CompressedSize64 > maxInflateRatio {
			return nil, fmt.Errorf("suspicious compression ratio %dx for %s",
				f.UncompressedSize64/f.CompressedSize64, name)
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(io.LimitReader(rc, maxChapterSize+1))
	}
	return nil, errNotFound
}

// findAll collects descendants by local tag name, ignoring namespace
// prefixes: real books disagree about prefixing OPF and DC elements.
func findAll(root *etree.Element, tag string) []*etree.Element {
	if root == nil {
		return nil
	}
	var out []*etree.Element
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		if el.Tag == tag {
			out = append(out, el)
		}
		for _, child := range el.ChildElements() {
			walk(child)
		}
	}
	walk(root)
	return out
}

func first(root *etree.Element, tag string) *etree.Element {
	all := findAll(root, tag)
	if len(all) == 0 {
		return nil
	}
	return all[0]
}
