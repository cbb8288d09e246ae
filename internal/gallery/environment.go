package gallery

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
)

// Environment captures everything that differs between a host with durable
// filesystem access and a plain browser-like host. It is picked once when
// the Store is built.
type Environment interface {
	// Durable reports whether this is a durable-file environment.
	Durable() bool
	// Encode turns a captured photo into base64 text.
	Encode(ctx context.Context, photo Photo) (string, error)
	// Locate builds the FilePath and WebViewPath of a freshly written blob.
	Locate(ctx context.Context, photo Photo, name, storageURI string) (filePath, displayPath string, err error)
	// Hydrate attaches inline data to a loaded record, if this environment needs it.
	Hydrate(ctx context.Context, files FileStore, record *PhotoRecord) error
}

// Native is the durable-file environment.
type Native struct {
	Files    PathReader
	Rewriter URIRewriter
}

func (Native) Durable() bool { return true }

// Encode reads the captured file from disk.
func (n Native) Encode(ctx context.Context, photo Photo) (string, error) {
	if n.Files == nil {
		return "", errors.New("native environment has no path reader")
	}
	return n.Files.ReadPath(ctx, photo.SourcePath)
}

// Locate keeps the storage URI as FilePath and rewrites it for display.
func (n Native) Locate(ctx context.Context, _ Photo, _ string, storageURI string) (string, string, error) {
	if n.Rewriter == nil {
		return storageURI, storageURI, nil
	}
	display, err := n.Rewriter.Rewrite(ctx, storageURI)
	if err != nil {
		return "", "", fmt.Errorf("rewrite %s: %w", storageURI, err)
	}
	return storageURI, display, nil
}

// Hydrate is a no-op: WebViewPath is already renderable on native hosts.
func (Native) Hydrate(context.Context, FileStore, *PhotoRecord) error { return nil }

// Web is the browser-like environment. Captures arrive as transient URIs
// and gallery images are rendered from inline data URIs after a reload.
type Web struct {
	Fetcher Fetcher
}

func (Web) Durable() bool { return false }

// Encode fetches the transient source URI.
func (w Web) Encode(ctx context.Context, photo Photo) (string, error) {
	if w.Fetcher == nil {
		return "", errors.New("web environment has no fetcher")
	}
	data, err := w.Fetcher.Fetch(ctx, photo.SourcePath)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", photo.SourcePath, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Locate keeps the transient source URI as the display path; it is still
// valid for the lifetime of the current session.
func (Web) Locate(_ context.Context, photo Photo, name, _ string) (string, string, error) {
	return name, photo.SourcePath, nil
}

// Hydrate reads the blob back and attaches it as a data URI.
func (Web) Hydrate(ctx context.Context, files FileStore, record *PhotoRecord) error {
	data, err := files.Read(ctx, record.FilePath)
	if err != nil {
		return err
	}
	record.InlineData = DataURI(data)
	return nil
}

// DataURI wraps a base64 JPEG payload into a data URI.
func DataURI(base64Data string) string {
	return "data:image/jpeg;base64," + base64Data
}
