package app

import (
	"context"
	"fmt"
	"time"

	"github.com/aipowergrid/photo-gallery/internal/capture"
	"github.com/aipowergrid/photo-gallery/internal/config"
	"github.com/aipowergrid/photo-gallery/internal/filestore"
	"github.com/aipowergrid/photo-gallery/internal/gallery"
	"github.com/aipowergrid/photo-gallery/internal/kvstore"
	"github.com/aipowergrid/photo-gallery/internal/r2"
)

// Deps is the gallery and everything it was built from.
type Deps struct {
	Store    *gallery.Store
	Files    gallery.FileStore
	Index    kvstore.Store
	Inbox    *capture.Inbox
	Registry *capture.Registry
}

// Close releases the index backend.
func (d *Deps) Close() error {
	return d.Index.Close()
}

// Wire builds the gallery described by cfg and restores the saved index.
// A nil source makes the gallery capture from an upload inbox.
func Wire(ctx context.Context, cfg config.Config, source gallery.Capture) (*Deps, error) {
	files, rewriter, err := openFiles(cfg)
	if err != nil {
		return nil, err
	}

	registry := capture.NewRegistry()
	var (
		env   gallery.Environment
		inbox *capture.Inbox
	)
	if cfg.Durable() {
		env = gallery.Native{Files: filestore.Paths{}, Rewriter: rewriter}
		if source == nil {
			if inbox, err = capture.NewSpoolInbox(cfg.SpoolDir); err != nil {
				return nil, err
			}
		}
	} else {
		timeout := time.Duration(cfg.FetchTimeoutSeconds) * time.Second
		env = gallery.Web{Fetcher: capture.NewFetcher(registry, timeout)}
		if source == nil {
			inbox = capture.NewBlobInbox(registry)
		}
	}
	if source == nil {
		source = inbox
	}

	index, err := kvstore.Open(cfg.KVDriver, cfg.KVDSN)
	if err != nil {
		return nil, err
	}

	store := gallery.NewStore(env, source, files, index,
		gallery.WithQuality(cfg.CaptureQuality),
		gallery.WithHydrationLimit(cfg.HydrationLimit),
	)
	if err := store.LoadSaved(ctx); err != nil {
		index.Close()
		return nil, fmt.Errorf("load saved photos: %w", err)
	}

	return &Deps{
		Store:    store,
		Files:    files,
		Index:    index,
		Inbox:    inbox,
		Registry: registry,
	}, nil
}

func openFiles(cfg config.Config) (gallery.FileStore, gallery.URIRewriter, error) {
	switch cfg.FileStore {
	case "r2":
		client, err := r2.NewClient(cfg.R2Endpoint, cfg.R2Bucket, cfg.R2Prefix, cfg.R2AccessKeyID, cfg.R2AccessKeySecret)
		if err != nil {
			return nil, nil, err
		}
		client.SetURLExpiry(time.Duration(cfg.R2URLExpiryMinutes) * time.Minute)
		return client, client, nil
	default:
		local, err := filestore.NewLocal(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return local, filestore.HTTPRewriter{BaseURL: cfg.PublicBaseURL}, nil
	}
}
