package models

import (
	"errors"
	"time"
)

var (
	// ErrGalleryNotFound is returned when no gallery has the requested id
	ErrGalleryNotFound = errors.New("gallery not found")

	// ErrNoItems is returned when an operation needs at least one media item
	ErrNoItems = errors.New("gallery has no items")

	// ErrCoversUnsupported is returned when the media source cannot store generated covers
	ErrCoversUnsupported = errors.New("cover generation requires a writable media store")
)

// GalleriesResponse is the body of GET /api/galleries
type GalleriesResponse struct {
	Success bool            `json:"success"`
	Data    []GalleryConfig `json:"data"`
	Count   int             `json:"count"`
	Error   string          `json:"error,omitempty"`
}

// GalleryResponse is the body of GET /api/galleries/{id}
type GalleryResponse struct {
	Success bool           `json:"success"`
	Data    *GalleryConfig `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// AnalyticsBatch is a batch of client-side events
type AnalyticsBatch struct {
	Events []ClientEvent `json:"events"`
}

// ClientEvent is one event reported by a gallery client
type ClientEvent struct {
	Name       string                 `json:"name"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Timestamp  int64                  `json:"timestamp,omitempty"`
	SessionID  string                 `json:"sessionId,omitempty"`
}

// HealthResponse is returned by the health endpoints
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// CoverResult reports the outcome of a bulk cover operation
type CoverResult struct {
	Message   string `json:"message"`
	Processed int    `json:"processed"`
	Errors    int    `json:"errors"`
}

// Index represents the main index page data
type Index struct {
	Galleries []GalleryConfig
}
