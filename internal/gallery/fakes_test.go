package gallery

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"
)

var errBoom = errors.New("boom")

type memFiles struct {
	mu      sync.Mutex
	blobs   map[string]string
	reads   int
	deleted []string

	writeErr  error
	deleteErr error
}

func newMemFiles() *memFiles {
	return &memFiles{blobs: make(map[string]string)}
}

func (m *memFiles) Write(_ context.Context, name, data string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return "", m.writeErr
	}
	m.blobs[name] = data
	return "file:///data/" + name, nil
}

func (m *memFiles) Read(_ context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	data, ok := m.blobs[name]
	if !ok {
		return "", fmt.Errorf("%s: not found", name)
	}
	return data, nil
}

func (m *memFiles) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, name)
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.blobs, name)
	return nil
}

func (m *memFiles) names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.blobs))
	for name := range m.blobs {
		out = append(out, name)
	}
	return out
}

type memKV struct {
	values map[string]string
	setErr error
	getErr error
}

func newMemKV() *memKV {
	return &memKV{values: make(map[string]string)}
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

// stubCapture returns the queued photos in order, then errors.
type stubCapture struct {
	photos    []Photo
	err       error
	qualities []int
}

func (c *stubCapture) GetPhoto(_ context.Context, quality int) (Photo, error) {
	c.qualities = append(c.qualities, quality)
	if c.err != nil {
		return Photo{}, c.err
	}
	if len(c.photos) == 0 {
		return Photo{}, errors.New("no photo queued")
	}
	p := c.photos[0]
	c.photos = c.photos[1:]
	return p, nil
}

type stubFetcher map[string][]byte

func (f stubFetcher) Fetch(_ context.Context, uri string) ([]byte, error) {
	data, ok := f[uri]
	if !ok {
		return nil, fmt.Errorf("fetch %s: %w", uri, errBoom)
	}
	return data, nil
}

type stubPaths map[string][]byte

func (p stubPaths) ReadPath(_ context.Context, path string) (string, error) {
	data, ok := p[path]
	if !ok {
		return "", fmt.Errorf("%s: %w", path, errBoom)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

type prefixRewriter string

func (r prefixRewriter) Rewrite(_ context.Context, uri string) (string, error) {
	return string(r) + uri, nil
}

// tickingClock advances one millisecond per call.
func tickingClock() func() time.Time {
	t := time.UnixMilli(1_700_000_000_000)
	return func() time.Time {
		t = t.Add(time.Millisecond)
		return t
	}
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}
