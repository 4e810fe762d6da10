package main

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"
)

func writeBook(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.epub")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return path
}

// A book with one unreadable chapter must still open: the bad chapter
// degrades to a placeholder, only container-level failures abort.
func TestLoadBookDegradedChapterStillOpens(t *testing.T) {
	path := writeBook(t, map[string]string{
		"META-INF/container.xml": `<?xml version="1.0"?>
<container><rootfiles>
  <rootfile full-path="OEBPS/content.opf"/>
</rootfiles></container>`,
		"OEBPS/content.opf": `<?xml version="1.0"?>
<package xmlns:dc="http://purl.org/dc/elements/1.1/">
  <metadata><dc:title>Holey</dc:title></metadata>
  <manifest>
    <item id="c1" href="ch1.xhtml"/>
    <item id="c2" href="missing.xhtml"/>
  </manifest>
  <spine><itemref idref="c1"/><itemref idref="c2"/></spine>
</package>`,
		"OEBPS/ch1.xhtml": `<html><body><p>Readable.</p></body></html>`,
		// missing.xhtml deliberately absent.
	})

	book, err := loadBook(path, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("loadBook failed on a recoverable book: %v", err)
	}
	if book == nil || len(book.Chapters) != 2 {
		t.Fatalf("book = %+v, want 2 chapters with a placeholder", book)
	}
	if got := book.Chapters[0].FlatText(); got != "Readable." {
		t.Errorf("readable chapter text = %q", got)
	}
	if book.Chapters[1].Title != "Chapter 2" {
		t.Errorf("placeholder title = %q, want %q", book.Chapters[1].Title, "Chapter 2")
	}
}

func TestLoadBookContainerErrorIsFatal(t *testing.T) {
	path := writeBook(t, map[string]string{
		"OEBPS/content.opf": `<package/>`,
	})
	if _, err := loadBook(path, zaptest.NewLogger(t)); err == nil {
		t.Fatal("loadBook accepted a book without a container descriptor")
	}
}
