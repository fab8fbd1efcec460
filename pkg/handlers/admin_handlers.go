package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"gallery-showcase/pkg/models"
	"gallery-showcase/pkg/observability"
	"gallery-showcase/pkg/services"
)

// CoverManager generates and clears video covers
type CoverManager interface {
	GenerateCover(ctx context.Context, galleryID, videoFile string, timeMs int, progressCb services.ProgressCallback) error
	GenerateCovers(ctx context.Context, timeMs int, force bool) (models.CoverResult, error)
	ClearCover(ctx context.Context, galleryID, videoFile string) error
	ClearCovers(ctx context.Context) (models.CoverResult, error)
}

// AdminHandler serves the routes under the admin key
type AdminHandler struct {
	galleries GalleryProvider
	covers    CoverManager
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(galleries GalleryProvider, covers CoverManager) *AdminHandler {
	return &AdminHandler{galleries: galleries, covers: covers}
}

// coverRequest selects one video when GalleryID and Video are set, otherwise every video
type coverRequest struct {
	GalleryID string `json:"galleryId"`
	Video     string `json:"video"`
	TimeMs    int    `json:"timeMs"`
	Force     bool   `json:"force"`
}

func (c coverRequest) single() bool {
	return c.GalleryID != "" && c.Video != ""
}

// Refresh drops the cached gallery list
func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	observability.WithContext(r.Context()).Info("Refreshing gallery cache")
	h.galleries.Refresh()
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Gallery cache refreshed",
	})
}

// GenerateCovers handles POST covers. An empty body generates every missing cover.
func (h *AdminHandler) GenerateCovers(w http.ResponseWriter, r *http.Request) {
	log := observability.WithContext(r.Context())

	var req coverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.single() {
		log.Infof("Generating cover for %s/%s at %dms", req.GalleryID, req.Video, req.TimeMs)
		if err := h.covers.GenerateCover(r.Context(), req.GalleryID, req.Video, req.TimeMs, nil); err != nil {
			h.coverError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, models.CoverResult{Message: "Cover generated successfully", Processed: 1})
		return
	}

	log.Infof("Bulk generating covers at %dms, force: %v", req.TimeMs, req.Force)
	result, err := h.covers.GenerateCovers(r.Context(), req.TimeMs, req.Force)
	if err != nil {
		h.coverError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ClearCovers handles DELETE covers. The gallery and video query parameters select one cover.
func (h *AdminHandler) ClearCovers(w http.ResponseWriter, r *http.Request) {
	req := coverRequest{
		GalleryID: r.URL.Query().Get("gallery"),
		Video:     r.URL.Query().Get("video"),
	}

	if req.single() {
		if err := h.covers.ClearCover(r.Context(), req.GalleryID, req.Video); err != nil {
			h.coverError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, models.CoverResult{Message: "Cover cleared successfully", Processed: 1})
		return
	}

	result, err := h.covers.ClearCovers(r.Context())
	if err != nil {
		h.coverError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *AdminHandler) coverError(w http.ResponseWriter, r *http.Request, err error) {
	observability.WithContext(r.Context()).Errorf("Cover operation failed: %v", err)
	if errors.Is(err, models.ErrCoversUnsupported) {
		respondError(w, http.StatusNotImplemented, err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}
