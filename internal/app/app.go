package app

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aipowergrid/photo-gallery/internal/capture"
	"github.com/aipowergrid/photo-gallery/internal/config"
	"github.com/aipowergrid/photo-gallery/internal/gallery"
)

// MaxUploadBytes caps the size of an uploaded photo.
const MaxUploadBytes = 32 << 20

type App struct {
	cfg     config.Config
	deps    *Deps
	metrics *Metrics

	// mu serializes gallery operations; the store itself does not.
	mu sync.Mutex
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	deps, err := Wire(ctx, cfg, nil)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:     cfg,
		deps:    deps,
		metrics: NewMetrics(),
	}
	a.metrics.Photos.Set(float64(deps.Store.Len()))
	log.Printf("gallery ready: environment=%s files=%s kv=%s photos=%d",
		cfg.Environment, cfg.FileStore, cfg.KVDriver, deps.Store.Len())
	return a, nil
}

func (a *App) Close() error {
	return a.deps.Close()
}

func (a *App) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.allowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(a.metrics.Registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(api chi.Router) {
		api.Get("/photos", a.handleListPhotos)
		api.Post("/photos", a.handleAddPhoto)
		api.Post("/photos/reload", a.handleReload)
		api.Delete("/photos/{position}", a.handleDeletePhoto)
	})

	r.Get("/files/{name}", a.handleFile)
	r.Get("/blob/{id}", a.handleBlob)

	return r
}

func (a *App) allowedOrigins() []string {
	if len(a.cfg.AllowedOrigins) == 0 {
		return []string{"*"}
	}
	return a.cfg.AllowedOrigins
}

type PhotoView struct {
	FilePath    string `json:"filePath"`
	WebViewPath string `json:"webViewPath"`
	InlineData  string `json:"inlineData,omitempty"`
}

func buildPhotoView(p gallery.PhotoRecord) PhotoView {
	return PhotoView{
		FilePath:    p.FilePath,
		WebViewPath: p.WebViewPath,
		InlineData:  p.InlineData,
	}
}

func (a *App) listView() map[string]any {
	photos := a.deps.Store.Photos()
	views := make([]PhotoView, 0, len(photos))
	for _, p := range photos {
		views = append(views, buildPhotoView(p))
	}
	return map[string]any{
		"photos":  views,
		"durable": a.deps.Store.Durable(),
	}
}

func (a *App) handleListPhotos(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.listView())
}

func (a *App) handleAddPhoto(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := readUpload(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("empty upload"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	a.mu.Lock()
	defer a.mu.Unlock()

	started := time.Now()
	photo, err := a.deps.Inbox.Push(data, contentType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	record, err := a.deps.Store.CaptureAndAdd(ctx)
	a.deps.Inbox.Settle(photo, record != gallery.PhotoRecord{})
	a.metrics.Record("add", started, err, a.deps.Store.Len())
	if err != nil {
		log.Printf("add photo: %v", err)
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusCreated, buildPhotoView(record))
}

func (a *App) handleReload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	a.mu.Lock()
	defer a.mu.Unlock()

	started := time.Now()
	stale := a.deps.Store.Photos()
	err := a.deps.Store.LoadSaved(ctx)
	a.metrics.Record("reload", started, err, a.deps.Store.Len())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	// Reloaded web records render from inline data.
	for _, p := range stale {
		a.deps.Registry.Revoke(p.WebViewPath)
	}
	writeJSON(w, http.StatusOK, a.listView())
}

func (a *App) handleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	position, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid position: %w", err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	a.mu.Lock()
	defer a.mu.Unlock()

	started := time.Now()
	removed, err := a.deps.Store.Delete(ctx, position)
	a.metrics.Record("delete", started, err, a.deps.Store.Len())
	if removed.WebViewPath != "" {
		a.deps.Registry.Revoke(removed.WebViewPath)
	}

	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"deleted": buildPhotoView(removed)})
	case errors.Is(err, gallery.ErrBlobDelete):
		// The record is gone; only the blob cleanup failed.
		writeJSON(w, http.StatusOK, map[string]any{
			"deleted": buildPhotoView(removed),
			"warning": err.Error(),
		})
	default:
		writeError(w, statusFor(err), err)
	}
}

func (a *App) handleFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	data, err := a.deps.Files.Read(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("file %s not found", name))
		return
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (a *App) handleBlob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	blob, ok := a.deps.Registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("blob %s not found", id))
		return
	}
	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob.Data)
}

// readUpload accepts either a multipart form with a "photo" field or a raw
// image body.
func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, header, err := r.FormFile("photo")
		if err != nil {
			return nil, "", fmt.Errorf("invalid upload: %w", err)
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, "", fmt.Errorf("invalid upload: %w", err)
		}
		return data, pickString(header.Header.Get("Content-Type"), "image/jpeg"), nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, "", fmt.Errorf("invalid upload: %w", err)
	}
	return data, pickString(r.Header.Get("Content-Type"), "image/jpeg"), nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, gallery.ErrOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, capture.ErrNoPhoto), errors.Is(err, gallery.ErrEncode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, gallery.ErrCapture):
		return http.StatusServiceUnavailable
	case errors.Is(err, gallery.ErrStorageWrite), errors.Is(err, gallery.ErrStorageRead):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{
		"error":  err.Error(),
		"status": status,
	})
}

func pickString(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}
