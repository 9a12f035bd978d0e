package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/glitchgen/pkg/imagebuf"
)

// FileStore keeps snapshots as PNG files in a per-session directory.
// Only the live image is held in memory; every other state is on disk.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates a fresh session directory under baseDir. If baseDir
// is empty, the system temp directory is used. The session directory is
// removed by Close.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		baseDir = filepath.Join(os.TempDir(), "glitchgen")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	dir, err := os.MkdirTemp(baseDir, "session-")
	if err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the session directory.
func (s *FileStore) Dir() string { return s.dir }

// Path returns the snapshot file for id.
func (s *FileStore) Path(id string) string {
	return filepath.Join(s.dir, id+".png")
}

// Save writes buf as a PNG file.
func (s *FileStore) Save(ctx context.Context, id string, buf *imagebuf.Buffer) error {
	data, err := buf.PNG()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.Path(id), data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Load decodes the snapshot for id.
func (s *FileStore) Load(ctx context.Context, id string) (*imagebuf.Buffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.Path(id)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return imagebuf.Open(path)
}

// Delete removes the snapshot for id. Missing snapshots are not an error.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove snapshot: %w", err)
	}
	return nil
}

// Close removes the session directory and everything in it.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return os.RemoveAll(s.dir)
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
