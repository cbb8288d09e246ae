package capture

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.Error(w, "nope", http.StatusNotFound)
			return
		}
		w.Write([]byte("remote"))
	}))
	defer srv.Close()

	reg := NewRegistry()
	local := reg.Put([]byte("local"), "image/jpeg")
	f := NewFetcher(reg, time.Second)
	ctx := context.Background()

	got, err := f.Fetch(ctx, local)
	require.NoError(t, err)
	assert.Equal(t, []byte("local"), got)

	got, err = f.Fetch(ctx, srv.URL+"/photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("remote"), got)

	for _, uri := range []string{"blob:unknown", srv.URL + "/missing", "ftp://host/a.jpg"} {
		_, err := f.Fetch(ctx, uri)
		assert.Error(t, err, uri)
	}
}
