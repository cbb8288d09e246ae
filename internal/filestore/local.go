// Package filestore keeps photo blobs as plain files in one directory.
package filestore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidName is returned for names that would escape the data directory.
var ErrInvalidName = errors.New("invalid blob name")

// Paths reads arbitrary files by path. It implements gallery.PathReader.
type Paths struct{}

// Local stores each blob as a binary file under Dir. It implements
// gallery.FileStore and, through Paths, gallery.PathReader.
type Local struct {
	Paths
	dir string
}

// NewLocal creates the data directory if needed.
func NewLocal(dir string) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve data directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Local{dir: abs}, nil
}

// Dir returns the absolute data directory.
func (l *Local) Dir() string {
	return l.dir
}

func (l *Local) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(l.dir, name), nil
}

// Write decodes base64Data and writes it atomically. The returned URI is a
// file:// URL of the blob.
func (l *Local) Write(_ context.Context, name, base64Data string) (string, error) {
	p, err := l.path(name)
	if err != nil {
		return "", err
	}
	data, err := base64.StdEncoding.DecodeString(base64Data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", name, err)
	}
	if err := writeFileAtomic(l.dir, name, data); err != nil {
		return "", err
	}
	return fileURI(p), nil
}

// Read returns the blob base64 encoded.
func (l *Local) Read(_ context.Context, name string) (string, error) {
	p, err := l.path(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Delete removes the blob. A missing blob is reported as an error wrapping
// os.ErrNotExist.
func (l *Local) Delete(_ context.Context, name string) error {
	p, err := l.path(name)
	if err != nil {
		return err
	}
	return os.Remove(p)
}

// ReadPath reads an arbitrary file, given as a path or a file:// URL.
func (Paths) ReadPath(_ context.Context, path string) (string, error) {
	if strings.HasPrefix(path, "file://") {
		u, err := url.Parse(path)
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", path, err)
		}
		path = u.Path
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func writeFileAtomic(dir, name string, data []byte) error {
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

func fileURI(p string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(p)}).String()
}
