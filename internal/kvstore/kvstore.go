// Package kvstore opens the key-value backend that holds the photo index.
package kvstore

import (
	"fmt"
	"io"

	"github.com/aipowergrid/photo-gallery/internal/gallery"
	"github.com/aipowergrid/photo-gallery/internal/kvstore/bolt"
	"github.com/aipowergrid/photo-gallery/internal/kvstore/postgres"
	"github.com/aipowergrid/photo-gallery/internal/kvstore/sqlite"
)

// Store is a KeyValueStore that owns resources.
type Store interface {
	gallery.KeyValueStore
	io.Closer
}

// Open opens the backend named by driver: "bolt" and "sqlite" take a file
// path, "postgres" a connection string.
func Open(driver, dsn string) (Store, error) {
	var (
		store Store
		err   error
	)
	switch driver {
	case "bolt", "":
		store, err = bolt.New(dsn)
	case "sqlite":
		store, err = sqlite.Open(dsn)
	case "postgres":
		store, err = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown kv driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
