package capture

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobInbox_FIFO(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry()
	inbox := NewBlobInbox(reg)

	first, err := inbox.Push([]byte("one"), "image/jpeg")
	require.NoError(t, err)
	second, err := inbox.Push([]byte("two"), "image/jpeg")
	require.NoError(t, err)
	assert.False(t, first.Filesystem)
	assert.Equal(t, 2, inbox.Pending())

	got, err := inbox.GetPhoto(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	got, err = inbox.GetPhoto(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, second, got)

	_, err = inbox.GetPhoto(ctx, 100)
	assert.ErrorIs(t, err, ErrNoPhoto)

	inbox.Release(first)
	_, ok := reg.Get(first.SourcePath)
	assert.True(t, ok, "blob URLs stay valid after release")
}

func TestSpoolInbox_WritesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "spool")
	inbox, err := NewSpoolInbox(dir)
	require.NoError(t, err)

	photo, err := inbox.Push([]byte("jpeg"), "image/jpeg")
	require.NoError(t, err)
	assert.True(t, photo.Filesystem)
	assert.Equal(t, dir, filepath.Dir(photo.SourcePath))

	data, err := os.ReadFile(photo.SourcePath)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), data)

	inbox.Release(photo)
	_, err = os.Stat(photo.SourcePath)
	assert.True(t, os.IsNotExist(err))
}

func TestInbox_CancelledContext(t *testing.T) {
	inbox := NewBlobInbox(NewRegistry())
	_, err := inbox.Push([]byte("x"), "image/jpeg")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = inbox.GetPhoto(ctx, 100)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, inbox.Pending())
}

func TestInbox_DiscardAfterCancelledCapture(t *testing.T) {
	reg := NewRegistry()
	inbox := NewBlobInbox(reg)

	first, err := inbox.Push([]byte("first"), "image/jpeg")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = inbox.GetPhoto(ctx, 100)
	require.ErrorIs(t, err, ErrCancelled)

	inbox.Discard(first)
	assert.Zero(t, inbox.Pending())
	assert.Zero(t, reg.Len())

	second, err := inbox.Push([]byte("second"), "image/jpeg")
	require.NoError(t, err)
	got, err := inbox.GetPhoto(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, second, got)

	blob, ok := reg.Get(got.SourcePath)
	require.True(t, ok)
	assert.Equal(t, []byte("second"), blob.Data)
}

func TestInbox_DiscardPoppedPhoto(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "spool")
	inbox, err := NewSpoolInbox(dir)
	require.NoError(t, err)

	photo, err := inbox.Push([]byte("jpeg"), "image/jpeg")
	require.NoError(t, err)
	_, err = inbox.GetPhoto(context.Background(), 100)
	require.NoError(t, err)

	inbox.Discard(photo)
	assert.Zero(t, inbox.Pending())
	_, err = os.Stat(photo.SourcePath)
	assert.True(t, os.IsNotExist(err))

	_, err = inbox.GetPhoto(context.Background(), 100)
	assert.ErrorIs(t, err, ErrNoPhoto)
}
