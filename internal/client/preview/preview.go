// Package preview keeps local copies of selected images so they can be shown
// while an upload is pending. Every handle must be released exactly once by
// its owner; releasing again is a no-op.
package preview

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

type Store struct {
	dir  string
	mu   sync.Mutex
	live map[uuid.UUID]*Handle
}

// NewStore keeps previews under dir, creating it if needed. An empty dir
// means a fresh directory under os.TempDir.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		d, err := os.MkdirTemp("", "recipeai-preview-")
		if err != nil {
			return nil, fmt.Errorf("create preview dir: %w", err)
		}
		dir = d
	} else if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create preview dir: %w", err)
	}
	return &Store{dir: dir, live: make(map[uuid.UUID]*Handle)}, nil
}

type Handle struct {
	ID   uuid.UUID
	Name string
	Path string
	Size int64

	store *Store
	once  sync.Once
}

// Create copies r into a new preview file named after name.
func (s *Store) Create(name string, r io.Reader) (*Handle, error) {
	id := uuid.New()
	path := filepath.Join(s.dir, id.String()+filepath.Ext(name))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create preview: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("write preview: %w", err)
	}

	h := &Handle{ID: id, Name: name, Path: path, Size: n, store: s}
	s.mu.Lock()
	s.live[id] = h
	s.mu.Unlock()
	return h, nil
}

// Open returns the number of handles not yet released.
func (s *Store) Open() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Close releases every live handle and removes the directory.
func (s *Store) Close() error {
	s.mu.Lock()
	handles := make([]*Handle, 0, len(s.live))
	for _, h := range s.live {
		handles = append(handles, h)
	}
	s.mu.Unlock()

	for _, h := range handles {
		h.Release()
	}
	return os.RemoveAll(s.dir)
}

func (h *Handle) Release() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		_ = os.Remove(h.Path)
		h.store.mu.Lock()
		delete(h.store.live, h.ID)
		h.store.mu.Unlock()
	})
}
