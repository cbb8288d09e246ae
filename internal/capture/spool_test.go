package capture

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dropFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	tmp := filepath.Join(dir, "."+name+".part")
	require.NoError(t, os.WriteFile(tmp, data, 0644))
	final := filepath.Join(dir, name)
	require.NoError(t, os.Rename(tmp, final))
	return final
}

func TestSpool_ReturnsNewJPEG(t *testing.T) {
	dir := t.TempDir()
	spool, err := NewSpool(dir)
	require.NoError(t, err)
	defer spool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	want := dropFile(t, dir, "IMG_0001.JPG", []byte("jpeg"))

	photo, err := spool.GetPhoto(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, want, photo.SourcePath)
	assert.True(t, photo.Filesystem)
}

func TestSpool_Cancelled(t *testing.T) {
	spool, err := NewSpool(t.TempDir())
	require.NoError(t, err)
	defer spool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = spool.GetPhoto(ctx, 100)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIsJPEG(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/spool/a.jpg", true},
		{"/spool/a.JPEG", true},
		{"/spool/.a.jpg.part", false},
		{"/spool/.hidden.jpg", false},
		{"/spool/a.png", false},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, isJPEG(tc.path))
		})
	}
}
