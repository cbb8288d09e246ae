package capture

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	a := r.Put([]byte("a"), "image/jpeg")
	b := r.Put([]byte("b"), "image/jpeg")
	require.True(t, strings.HasPrefix(a, "blob:"), a)
	require.NotEqual(t, a, b)
	assert.Equal(t, 2, r.Len())

	got, ok := r.Get(a)
	require.True(t, ok)
	assert.Equal(t, []byte("a"), got.Data)
	assert.Equal(t, "image/jpeg", got.ContentType)

	byID, ok := r.Get(strings.TrimPrefix(b, "blob:"))
	require.True(t, ok)
	assert.Equal(t, []byte("b"), byID.Data)

	r.Revoke(a)
	r.Revoke("blob:unknown")
	_, ok = r.Get(a)
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len())
}
