package gallery

import "context"

// Photo is the transient resource produced by a Capture.
type Photo struct {
	// SourcePath is a filesystem path when Filesystem is true, otherwise a
	// fetchable URI (blob:, http:, https:).
	SourcePath string
	Filesystem bool
}

// Capture produces a freshly taken photo.
type Capture interface {
	GetPhoto(ctx context.Context, quality int) (Photo, error)
}

// FileStore is durable named-blob storage. Data crosses the boundary as
// base64 text.
type FileStore interface {
	Write(ctx context.Context, name, base64Data string) (storageURI string, err error)
	Read(ctx context.Context, name string) (string, error)
	Delete(ctx context.Context, name string) error
}

// KeyValueStore holds the JSON index under a single key.
type KeyValueStore interface {
	Set(ctx context.Context, key, value string) error
	// Get reports ok=false when the key has never been written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
}

// URIRewriter converts a raw storage URI into one a UI can render.
type URIRewriter interface {
	Rewrite(ctx context.Context, storageURI string) (string, error)
}

// PathReader reads a file by absolute path and returns it base64 encoded.
type PathReader interface {
	ReadPath(ctx context.Context, path string) (string, error)
}

// Fetcher loads the bytes behind a transient URI.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}
