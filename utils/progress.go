package utils

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Progress is the durable reading position for one book: the chapter id and
// the flat rune offset inside it. Flat offsets are wrap-independent, so a
// saved position survives terminal resizes and font changes; the session
// re-derives line/page from it at the current viewport.
type Progress struct {
	ChapterID  string    `json:"chapter_id"`
	FlatOffset int       `json:"flat_offset"`
	LastRead   time.Time `json:"last_read"`
}

func progressFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "progress.json"), nil
}

// LoadProgress reads the progress map keyed by book id. A missing file is
// an empty map, not an error.
func LoadProgress() (map[string]Progress, error) {
	path, err := progressFile()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]Progress), nil
	}
	if err != nil {
		return nil, err
	}

	m := make(map[string]Progress)
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// SaveProgress persists the whole progress map.
func SaveProgress(m map[string]Progress) error {
	path, err := progressFile()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// GetProgress retrieves the saved position for a book id.
func GetProgress(m map[string]Progress, bookID string) (Progress, bool) {
	if bookID == "" {
		return Progress{}, false
	}
	p, ok := m[bookID]
	return p, ok
}

// SetProgress records a position for a book id.
func SetProgress(m map[string]Progress, bookID string, p Progress) {
	if bookID == "" {
		return
	}
	m[bookID] = p
}
