package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/aipowergrid/photo-gallery/internal/gallery"
)

// Spool is a Capture backed by a directory a camera drops JPEG files into.
// GetPhoto blocks until a new file appears. Producers should write to a
// dot-prefixed temporary name and rename it into place.
type Spool struct {
	dir     string
	watcher *fsnotify.Watcher

	mu   sync.Mutex
	seen map[string]bool
}

// NewSpool starts watching dir, creating it if needed.
func NewSpool(dir string) (*Spool, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create spool directory: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify init: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("fsnotify add %s: %w", dir, err)
	}
	return &Spool{dir: dir, watcher: watcher, seen: make(map[string]bool)}, nil
}

// Dir returns the watched directory.
func (s *Spool) Dir() string {
	return s.dir
}

func (s *Spool) Close() error {
	return s.watcher.Close()
}

// GetPhoto waits for the next JPEG created in the spool directory.
func (s *Spool) GetPhoto(ctx context.Context, _ int) (gallery.Photo, error) {
	for {
		select {
		case <-ctx.Done():
			return gallery.Photo{}, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return gallery.Photo{}, fmt.Errorf("%w: spool closed", ErrCancelled)
			}
			return gallery.Photo{}, fmt.Errorf("watch %s: %w", s.dir, err)
		case event, ok := <-s.watcher.Events:
			if !ok {
				return gallery.Photo{}, fmt.Errorf("%w: spool closed", ErrCancelled)
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 || !isJPEG(event.Name) {
				continue
			}
			if s.markSeen(event.Name) {
				return gallery.Photo{SourcePath: event.Name, Filesystem: true}, nil
			}
		}
	}
}

// markSeen reports whether path is new.
func (s *Spool) markSeen(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[path] {
		return false
	}
	s.seen[path] = true
	return true
}

func isJPEG(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".jpg", ".jpeg":
		return true
	}
	return false
}
