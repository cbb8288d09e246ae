package filestore

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_WriteReadDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	payload := base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8, 0x01})
	uri, err := store.Write(ctx, "1700000000000.jpeg", payload)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "file://"), uri)
	assert.True(t, strings.HasSuffix(uri, "/1700000000000.jpeg"), uri)

	raw, err := os.ReadFile(filepath.Join(store.Dir(), "1700000000000.jpeg"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 0x01}, raw)

	got, err := store.Read(ctx, "1700000000000.jpeg")
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	viaURI, err := store.ReadPath(ctx, uri)
	require.NoError(t, err)
	assert.Equal(t, payload, viaURI)

	require.NoError(t, store.Delete(ctx, "1700000000000.jpeg"))
	err = store.Delete(ctx, "1700000000000.jpeg")
	assert.True(t, errors.Is(err, os.ErrNotExist), "second delete: %v", err)
}

func TestLocal_NoTempFilesLeft(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = store.Write(context.Background(), "1.jpeg", "aGk=")
	require.NoError(t, err)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "1.jpeg", entries[0].Name())
}

func TestLocal_RejectsBadInput(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", ".", "..", "../x.jpeg", "a/b.jpeg"} {
		_, err := store.Write(ctx, name, "aGk=")
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}

	_, err = store.Write(ctx, "1.jpeg", "***not base64***")
	assert.Error(t, err)
}

func TestLocal_ReadPathPlain(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "IMG_0001.jpg")
	require.NoError(t, os.WriteFile(p, []byte("cam"), 0644))

	store, err := NewLocal(filepath.Join(dir, "data"))
	require.NoError(t, err)

	got, err := store.ReadPath(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("cam")), got)
}

func TestHTTPRewriter(t *testing.T) {
	tests := []struct {
		base     string
		uri      string
		expected string
	}{
		{"http://localhost:4000", "file:///var/lib/gallery/1.jpeg", "http://localhost:4000/files/1.jpeg"},
		{"http://localhost:4000/", "file:///var/lib/gallery/1.jpeg", "http://localhost:4000/files/1.jpeg"},
		{"", "file:///d/2.jpeg", "/files/2.jpeg"},
	}

	for _, tc := range tests {
		t.Run(tc.uri, func(t *testing.T) {
			got, err := HTTPRewriter{BaseURL: tc.base}.Rewrite(context.Background(), tc.uri)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}

	_, err := HTTPRewriter{}.Rewrite(context.Background(), "file:///dir/")
	assert.ErrorIs(t, err, ErrInvalidName)
}
