package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/aipowergrid/photo-gallery/internal/gallery"
)

var (
	// ErrCancelled is returned when the caller gave up waiting for a photo.
	ErrCancelled = errors.New("capture cancelled")
	// ErrNoPhoto is returned by an Inbox with nothing queued.
	ErrNoPhoto = errors.New("no photo available")
)

// Inbox is a Capture fed by uploads. Each Push queues one photo and each
// GetPhoto hands out the oldest one.
//
// With a spool directory, uploads are written there and surfaced as
// filesystem resources (durable-file hosts). Otherwise they are registered
// as blob: URLs.
type Inbox struct {
	mu       sync.Mutex
	queue    []gallery.Photo
	spoolDir string
	registry *Registry
}

// NewSpoolInbox returns an Inbox that writes uploads into dir.
func NewSpoolInbox(dir string) (*Inbox, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create spool directory: %w", err)
	}
	return &Inbox{spoolDir: dir}, nil
}

// NewBlobInbox returns an Inbox that registers uploads as blob: URLs.
func NewBlobInbox(registry *Registry) *Inbox {
	return &Inbox{registry: registry}
}

// Push queues an uploaded image.
func (i *Inbox) Push(data []byte, contentType string) (gallery.Photo, error) {
	var photo gallery.Photo
	if i.spoolDir != "" {
		path := filepath.Join(i.spoolDir, "upload-"+ulid.Make().String()+".jpg")
		if err := os.WriteFile(path, data, 0644); err != nil {
			return gallery.Photo{}, fmt.Errorf("spool upload: %w", err)
		}
		photo = gallery.Photo{SourcePath: path, Filesystem: true}
	} else {
		photo = gallery.Photo{SourcePath: i.registry.Put(data, contentType)}
	}

	i.mu.Lock()
	i.queue = append(i.queue, photo)
	i.mu.Unlock()
	return photo, nil
}

// GetPhoto pops the oldest queued photo. Quality is ignored: uploads
// arrive already encoded.
func (i *Inbox) GetPhoto(ctx context.Context, _ int) (gallery.Photo, error) {
	if err := ctx.Err(); err != nil {
		return gallery.Photo{}, fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if len(i.queue) == 0 {
		return gallery.Photo{}, ErrNoPhoto
	}
	photo := i.queue[0]
	i.queue = i.queue[1:]
	return photo, nil
}

// Release removes the spooled file behind a photo once it has been
// persisted. blob: photos are kept: their URL is still the display path.
func (i *Inbox) Release(photo gallery.Photo) {
	if photo.Filesystem {
		_ = os.Remove(photo.SourcePath)
	}
}

// Discard drops a photo that did not make it into the gallery: it is
// removed from the queue if still there, its spool file is deleted and its
// blob: URL revoked.
func (i *Inbox) Discard(photo gallery.Photo) {
	i.mu.Lock()
	for k, queued := range i.queue {
		if queued == photo {
			i.queue = slices.Delete(i.queue, k, k+1)
			break
		}
	}
	i.mu.Unlock()

	if photo.Filesystem {
		_ = os.Remove(photo.SourcePath)
	} else if i.registry != nil {
		i.registry.Revoke(photo.SourcePath)
	}
}

// Settle finishes an upload: Release when the gallery kept the photo,
// Discard otherwise.
func (i *Inbox) Settle(photo gallery.Photo, kept bool) {
	if kept {
		i.Release(photo)
		return
	}
	i.Discard(photo)
}

// Pending returns the number of queued photos.
func (i *Inbox) Pending() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.queue)
}
