package content

import (
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestBuildBook(t *testing.T) {
	meta := Metadata{Title: "B", Author: "A"}
	raws := []RawChapter{
		{ID: "c1", Markup: []byte(`<body><h1>Opening</h1><p>Text.</p></body>`)},
		{ID: "c2", Markup: []byte(`<body><p>More text.</p></body>`)},
	}
	book, err := BuildBook(meta, raws, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("BuildBook: %v", err)
	}
	if book.Title != "B" || book.Author != "A" {
		t.Errorf("metadata = %q/%q", book.Title, book.Author)
	}
	if len(book.Chapters) != 2 {
		t.Fatalf("got %d chapters, want 2", len(book.Chapters))
	}
	if book.Chapters[0].Title != "Opening" {
		t.Errorf("chapter 1 title = %q, want heading text", book.Chapters[0].Title)
	}
}

func TestBuildBookDegradedChapter(t *testing.T) {
	readErr := errors.New("unreadable entry")
	raws := []RawChapter{
		{ID: "ok", Markup: []byte(`<body><p>fine</p></body>`)},
		{ID: "bad", Markup: []byte("raw fallback text"), Err: readErr},
	}
	book, err := BuildBook(Metadata{Title: "B"}, raws, zaptest.NewLogger(t))
	if err == nil {
		t.Fatal("degradation not reported")
	}
	if !errors.Is(err, readErr) {
		t.Fatalf("aggregated error %v does not wrap the chapter error", err)
	}
	// The degraded chapter is still present and readable as plain text.
	if len(book.Chapters) != 2 {
		t.Fatalf("got %d chapters, want 2", len(book.Chapters))
	}
	if got := book.Chapters[1].FlatText(); got != "raw fallback text" {
		t.Errorf("placeholder text = %q", got)
	}
}

func TestBuildBookEmptyMarkupPlaceholder(t *testing.T) {
	raws := []RawChapter{{ID: "c1", Markup: nil}}
	book, err := BuildBook(Metadata{}, raws, zaptest.NewLogger(t))
	if err == nil {
		t.Fatal("empty chapter not reported as degraded")
	}
	if len(book.Chapters) != 1 {
		t.Fatalf("got %d chapters, want 1", len(book.Chapters))
	}
	if book.Chapters[0].Title != "Chapter 1" {
		t.Errorf("placeholder title = %q, want %q", book.Chapters[0].Title, "Chapter 1")
	}
}

func TestChapterTitleChain(t *testing.T) {
	cases := []struct {
		name   string
		raw    RawChapter
		want   string
		index  int
	}{
		{
			name: "explicit title wins",
			raw:  RawChapter{ID: "c", Title: "Given", Markup: []byte(`<body><h1>Heading</h1></body>`)},
			want: "Given",
		},
		{
			name: "heading block",
			raw:  RawChapter{ID: "c", Markup: []byte(`<body><h2>From Heading</h2><p>x</p></body>`)},
			want: "From Heading",
		},
		{
			name: "document title",
			raw:  RawChapter{ID: "c", Markup: []byte(`<html><head><title>Doc Title</title></head><body><p>This is a full sentence that runs on and on without looking like any kind of title because it simply never ends, not even close to ending, and keeps going well past a hundred characters.</p></body></html>`)},
			want: "Doc Title",
		},
		{
			name: "first line heuristic",
			raw:  RawChapter{ID: "c", Markup: []byte(`<body><p>A Likely Title</p><p>Body follows here.</p></body>`)},
			want: "A Likely Title",
		},
		{
			name:  "numbered fallback",
			raw:   RawChapter{ID: "c", Markup: []byte(`<body><p>Ends with a period.</p></body>`)},
			want:  "Chapter 4",
			index: 3,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ch, err := buildChapter(tc.raw, tc.index)
			if err != nil {
				t.Fatalf("buildChapter: %v", err)
			}
			if ch.Title != tc.want {
				t.Fatalf("title = %q, want %q", ch.Title, tc.want)
			}
		})
	}
}
