package filestore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// HTTPRewriter maps file:// storage URIs onto the server's /files route so
// the UI can load them over HTTP.
type HTTPRewriter struct {
	BaseURL string
}

func (r HTTPRewriter) Rewrite(_ context.Context, storageURI string) (string, error) {
	name := storageURI[strings.LastIndex(storageURI, "/")+1:]
	if name == "" {
		return "", fmt.Errorf("%w: no file name in %q", ErrInvalidName, storageURI)
	}
	return strings.TrimRight(r.BaseURL, "/") + "/files/" + url.PathEscape(name), nil
}
