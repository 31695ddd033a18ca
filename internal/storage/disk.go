package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists an uploaded file and returns the relative path the
// caller should record. Implementations never read files back.
type Store interface {
	Save(origName string, data []byte) (string, error)
}

// DiskStore writes uploads under Root (the media dir served at /media).
type DiskStore struct{ Root string }

func NewDiskStore(root string) *DiskStore { return &DiskStore{Root: root} }

func (d *DiskStore) Save(origName string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(origName))
	rel := filepath.Join("images", uuid.NewString()+ext)

	full := filepath.Join(d.Root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", err
	}
	// Paths are recorded and served slash-separated regardless of OS.
	return filepath.ToSlash(rel), nil
}
