package gallery

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultQuality is the capture quality requested from the camera.
const DefaultQuality = 100

// Store keeps the ordered photo list (newest first) in sync with the index
// in the KeyValueStore and the blobs in the FileStore.
//
// The mutex only protects the in-memory list. Operations suspend on
// storage calls between steps and are not transactional, so callers must
// not run CaptureAndAdd, LoadSaved or Delete concurrently.
type Store struct {
	mu    sync.RWMutex
	items []PhotoRecord

	env     Environment
	capture Capture
	files   FileStore
	index   KeyValueStore

	namer        *Namer
	quality      int
	hydrateLimit int
	logger       *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for recovered failures.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithQuality sets the quality passed to Capture.GetPhoto.
func WithQuality(q int) Option {
	return func(s *Store) { s.quality = q }
}

// WithNamer replaces the blob namer, mostly for tests.
func WithNamer(n *Namer) Option {
	return func(s *Store) { s.namer = n }
}

// WithHydrationLimit bounds the number of concurrent blob reads in
// LoadSaved. Zero or less means unbounded.
func WithHydrationLimit(n int) Option {
	return func(s *Store) { s.hydrateLimit = n }
}

// NewStore creates an empty store. Call LoadSaved to restore a previous session.
func NewStore(env Environment, capture Capture, files FileStore, index KeyValueStore, opts ...Option) *Store {
	s := &Store{
		items:   make([]PhotoRecord, 0),
		env:     env,
		capture: capture,
		files:   files,
		index:   index,
		namer:   NewNamer(nil),
		quality: DefaultQuality,
		logger:  log.New(log.Writer(), "gallery: ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Durable reports whether the store runs in a durable-file environment.
func (s *Store) Durable() bool {
	return s.env.Durable()
}

// Photos returns a copy of the current list, newest first.
func (s *Store) Photos() []PhotoRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Len returns the number of photos in the list.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// CaptureAndAdd takes a photo, writes its blob, prepends the record and
// rewrites the index. A failure after the prepend leaves the record in
// memory without a matching index entry; nothing is rolled back.
func (s *Store) CaptureAndAdd(ctx context.Context) (PhotoRecord, error) {
	photo, err := s.capture.GetPhoto(ctx, s.quality)
	if err != nil {
		return PhotoRecord{}, fmt.Errorf("%w: %w", ErrCapture, err)
	}

	data, err := s.env.Encode(ctx, photo)
	if err != nil {
		return PhotoRecord{}, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	name := s.namer.Next()
	storageURI, err := s.files.Write(ctx, name, data)
	if err != nil {
		return PhotoRecord{}, fmt.Errorf("%w: blob %s: %w", ErrStorageWrite, name, err)
	}

	filePath, displayPath, err := s.env.Locate(ctx, photo, name, storageURI)
	if err != nil {
		return PhotoRecord{}, fmt.Errorf("locate %s: %w", name, err)
	}
	record := PhotoRecord{FilePath: filePath, WebViewPath: displayPath}

	s.mu.Lock()
	s.items = append([]PhotoRecord{record}, s.items...)
	snapshot := stripInline(s.items)
	s.mu.Unlock()

	if err := s.persist(ctx, snapshot); err != nil {
		return record, err
	}
	return record, nil
}

// LoadSaved replaces the list with the persisted index. A missing or
// malformed index yields an empty list.
//
// In a non-durable environment every record is hydrated with its blob as a
// data URI. LoadSaved waits for all hydration reads before publishing the
// list, so callers never observe a half-hydrated gallery. A record whose
// read fails is published without InlineData.
func (s *Store) LoadSaved(ctx context.Context) error {
	raw, ok, err := s.index.Get(ctx, IndexKey)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageRead, err)
	}

	records := make([]PhotoRecord, 0)
	if ok {
		if err := json.Unmarshal([]byte(raw), &records); err != nil {
			s.logger.Printf("discarding unreadable index: %v", err)
			records = make([]PhotoRecord, 0)
		}
		if records == nil {
			records = make([]PhotoRecord, 0)
		}
	}

	for _, r := range records {
		s.namer.Observe(r.BlobName())
	}
	if !s.env.Durable() {
		s.hydrate(ctx, records)
	}

	s.mu.Lock()
	s.items = records
	s.mu.Unlock()
	return nil
}

func (s *Store) hydrate(ctx context.Context, records []PhotoRecord) {
	var g errgroup.Group
	if s.hydrateLimit > 0 {
		g.SetLimit(s.hydrateLimit)
	}
	for i := range records {
		rec := &records[i]
		g.Go(func() error {
			if err := s.env.Hydrate(ctx, s.files, rec); err != nil {
				s.logger.Printf("hydrate %s: %v", rec.FilePath, err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Delete removes the photo at position, rewrites the index and then removes
// the blob. The blob removal is best effort: if it fails the record stays
// deleted and the returned error wraps ErrBlobDelete.
func (s *Store) Delete(ctx context.Context, position int) (PhotoRecord, error) {
	s.mu.Lock()
	if position < 0 || position >= len(s.items) {
		n := len(s.items)
		s.mu.Unlock()
		return PhotoRecord{}, fmt.Errorf("%w: %d (have %d)", ErrOutOfRange, position, n)
	}
	removed := s.items[position]
	s.items = slices.Delete(s.items, position, position+1)
	snapshot := stripInline(s.items)
	s.mu.Unlock()

	if err := s.persist(ctx, snapshot); err != nil {
		return removed, err
	}

	name := removed.BlobName()
	if err := s.files.Delete(ctx, name); err != nil {
		s.logger.Printf("delete blob %s: %v", name, err)
		return removed, fmt.Errorf("%w: %s: %w", ErrBlobDelete, name, err)
	}
	return removed, nil
}

func (s *Store) persist(ctx context.Context, records []PhotoRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("%w: encode index: %w", ErrStorageWrite, err)
	}
	if err := s.index.Set(ctx, IndexKey, string(data)); err != nil {
		return fmt.Errorf("%w: index: %w", ErrStorageWrite, err)
	}
	return nil
}
