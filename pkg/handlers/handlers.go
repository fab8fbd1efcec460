package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/eknkc/pug"
	"github.com/go-chi/chi/v5"

	"gallery-showcase/pkg/models"
	"gallery-showcase/pkg/observability"
)

// Version information injected at build time
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// maxAnalyticsBody bounds the size of a client analytics batch
const maxAnalyticsBody = 1 << 20

// GalleryProvider serves the merged gallery list
type GalleryProvider interface {
	Galleries(ctx context.Context) ([]models.GalleryConfig, error)
	Gallery(ctx context.Context, id string) (models.GalleryConfig, error)
	Refresh()
}

// EventRecorder receives client analytics events
type EventRecorder interface {
	Record(event models.ClientEvent)
}

// GalleryHandler serves the gallery API and the index page
type GalleryHandler struct {
	galleries GalleryProvider
	viewsDir  string
}

// NewGalleryHandler creates a new GalleryHandler
func NewGalleryHandler(galleries GalleryProvider, viewsDir string) *GalleryHandler {
	return &GalleryHandler{galleries: galleries, viewsDir: viewsDir}
}

// List handles GET /api/galleries. Failures, panics included, answer 500 with an empty list.
func (h *GalleryHandler) List(w http.ResponseWriter, r *http.Request) {
	log := observability.WithContext(r.Context())

	defer func() {
		if rec := recover(); rec != nil {
			log.Errorf("Panic while loading galleries: %v", rec)
			respondGalleriesError(w)
		}
	}()

	galleries, err := h.galleries.Galleries(r.Context())
	if err != nil {
		log.Errorf("Failed to load galleries: %v", err)
		respondGalleriesError(w)
		return
	}
	if galleries == nil {
		galleries = []models.GalleryConfig{}
	}

	respondJSON(w, http.StatusOK, models.GalleriesResponse{
		Success: true,
		Data:    galleries,
		Count:   len(galleries),
	})
}

func respondGalleriesError(w http.ResponseWriter) {
	respondJSON(w, http.StatusInternalServerError, models.GalleriesResponse{
		Success: false,
		Error:   "Failed to load galleries",
		Data:    []models.GalleryConfig{},
	})
}

// Get handles GET /api/galleries/{id}
func (h *GalleryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	gallery, err := h.galleries.Gallery(r.Context(), id)
	switch {
	case errors.Is(err, models.ErrGalleryNotFound):
		respondJSON(w, http.StatusNotFound, models.GalleryResponse{Error: "Gallery not found"})
		return
	case err != nil:
		observability.WithContext(r.Context()).WithField("gallery_id", id).Errorf("Failed to load gallery: %v", err)
		respondJSON(w, http.StatusInternalServerError, models.GalleryResponse{Error: "Failed to load gallery"})
		return
	}

	respondJSON(w, http.StatusOK, models.GalleryResponse{Success: true, Data: &gallery})
}

// Index renders the gallery page from views/index.pug
func (h *GalleryHandler) Index(w http.ResponseWriter, r *http.Request) {
	log := observability.WithContext(r.Context())
	log.Debugf("Generating Index")

	galleries, err := h.galleries.Galleries(r.Context())
	if err != nil {
		log.Errorf("Failed to load galleries: %v", err)
		galleries = []models.GalleryConfig{}
	}

	template, err := pug.CompileFile(filepath.Join(h.viewsDir, "index.pug"), pug.Options{})
	if err != nil {
		log.Errorf("Template error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := template.Execute(w, models.Index{Galleries: galleries}); err != nil {
		log.Errorf("Template execution error: %v", err)
	}
}

// AnalyticsHandler accepts client event batches
type AnalyticsHandler struct {
	events EventRecorder
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(events EventRecorder) *AnalyticsHandler {
	return &AnalyticsHandler{events: events}
}

// Collect handles POST /api/analytics with a {"events": [...]} body
func (h *AnalyticsHandler) Collect(w http.ResponseWriter, r *http.Request) {
	var batch models.AnalyticsBatch
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAnalyticsBody)).Decode(&batch); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid analytics batch")
		return
	}

	accepted := 0
	for _, event := range batch.Events {
		if event.Name == "" {
			continue
		}
		h.events.Record(event)
		accepted++
	}

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"success":  true,
		"accepted": accepted,
	})
}

// HealthCheck returns the server health status
func HealthCheck(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
	})
}

// VersionResponse is the body of GET /version
type VersionResponse struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildTime string `json:"buildTime"`
}

// VersionHandler returns build information
func VersionHandler(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, VersionResponse{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
	})
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		observability.Warnf("Failed to write response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
