// Package capture provides the photo sources and loaders the gallery
// consumes: an upload inbox, a watched spool directory and a fetcher for
// transient blob: and http(s): URLs.
package capture

import (
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
)

const blobScheme = "blob:"

// Blob is an in-memory resource addressed by a blob: URL.
type Blob struct {
	Data        []byte
	ContentType string
}

// Registry holds transient blob: URLs for the lifetime of the process,
// the server-side counterpart of a browser object URL.
type Registry struct {
	mu    sync.RWMutex
	blobs map[string]Blob
}

func NewRegistry() *Registry {
	return &Registry{blobs: make(map[string]Blob)}
}

// Put stores data and returns its blob: URL.
func (r *Registry) Put(data []byte, contentType string) string {
	id := ulid.Make().String()

	r.mu.Lock()
	r.blobs[id] = Blob{Data: data, ContentType: contentType}
	r.mu.Unlock()

	return blobScheme + id
}

// Get looks up a blob by URL or bare id.
func (r *Registry) Get(uri string) (Blob, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.blobs[strings.TrimPrefix(uri, blobScheme)]
	return b, ok
}

// Revoke drops a blob. Unknown URLs are ignored.
func (r *Registry) Revoke(uri string) {
	r.mu.Lock()
	delete(r.blobs, strings.TrimPrefix(uri, blobScheme))
	r.mu.Unlock()
}

// Len returns the number of live blobs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blobs)
}
