package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gallery-showcase/pkg/models"
	"gallery-showcase/pkg/overrides"
	"gallery-showcase/pkg/services"
)

func writeGallery(t *testing.T, dir, galleryID string, files ...string) {
	t.Helper()
	gdir := filepath.Join(dir, galleryID)
	require.NoError(t, os.MkdirAll(gdir, 0755))
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(gdir, f), []byte("x"), 0644))
	}
}

type stubProvider struct {
	galleries []models.GalleryConfig
	err       error
	panics    bool
	refreshed int
}

func (s *stubProvider) Galleries(context.Context) ([]models.GalleryConfig, error) {
	if s.panics {
		panic("broken source")
	}
	return s.galleries, s.err
}

func (s *stubProvider) Gallery(_ context.Context, id string) (models.GalleryConfig, error) {
	if s.err != nil {
		return models.GalleryConfig{}, s.err
	}
	for _, g := range s.galleries {
		if g.ID == id {
			return g, nil
		}
	}
	return models.GalleryConfig{}, fmt.Errorf("%w: %s", models.ErrGalleryNotFound, id)
}

func (s *stubProvider) Refresh() { s.refreshed++ }

type recordedEvents struct {
	mu     sync.Mutex
	events []models.ClientEvent
}

func (r *recordedEvents) Record(e models.ClientEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

type stubSigner struct{}

func (stubSigner) SignedURL(galleryID, file string) (string, error) {
	if galleryID == "private" {
		return "", errors.New("denied")
	}
	return "https://storage.example.com/" + galleryID + "/" + file + "?sig=1", nil
}

func serve(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGalleriesEndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeGallery(t, dir, "gallery1", "a.jpg", "b.mp4")

	svc := services.NewGalleryService(services.NewFileService(dir), overrides.Empty(), 0)
	router := NewRouter(Dependencies{Galleries: svc})

	rec := serve(t, router, http.MethodGet, "/api/galleries", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp models.GalleriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "gallery1", resp.Data[0].ID)
	require.Len(t, resp.Data[0].Items, 2)
	assert.Equal(t, models.MediaVideo, resp.Data[0].Items[0].Type)
	assert.Equal(t, models.MediaImage, resp.Data[0].Items[1].Type)
	assert.Equal(t, "/assets/gallery1/b.mp4", resp.Data[0].Items[0].URL)
}

func TestGalleriesEmptyRootIsEmptyList(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	svc := services.NewGalleryService(services.NewFileService(dir), overrides.Empty(), 0)

	rec := serve(t, NewRouter(Dependencies{Galleries: svc}), http.MethodGet, "/api/galleries", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":[],"count":0}`, rec.Body.String())
}

func TestGalleriesFailure(t *testing.T) {
	tests := []struct {
		name     string
		provider *stubProvider
	}{
		{"error", &stubProvider{err: context.Canceled}},
		{"panic", &stubProvider{panics: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, NewRouter(Dependencies{Galleries: tt.provider}), http.MethodGet, "/api/galleries", "")
			require.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"success":false,"error":"Failed to load galleries","data":[],"count":0}`, rec.Body.String())
		})
	}
}

func TestGalleryByID(t *testing.T) {
	provider := &stubProvider{galleries: []models.GalleryConfig{{ID: "gallery2", Title: "Gallery 2"}}}
	router := NewRouter(Dependencies{Galleries: provider})

	rec := serve(t, router, http.MethodGet, "/api/galleries/gallery2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.GalleryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data)
	assert.Equal(t, "Gallery 2", resp.Data.Title)

	rec = serve(t, router, http.MethodGet, "/api/galleries/gallery9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyticsCollect(t *testing.T) {
	events := &recordedEvents{}
	router := NewRouter(Dependencies{Galleries: &stubProvider{}, Events: events})

	body := `{"events":[{"name":"gallery_event","properties":{"gallery_id":"gallery1"}},{"name":""}]}`
	rec := serve(t, router, http.MethodPost, "/api/analytics", body)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"success":true,"accepted":1}`, rec.Body.String())
	require.Len(t, events.events, 1)
	assert.Equal(t, "gallery1", events.events[0].Properties["gallery_id"])

	rec = serve(t, router, http.MethodPost, "/api/analytics", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndVersion(t *testing.T) {
	router := NewRouter(Dependencies{Galleries: &stubProvider{}})

	for _, path := range []string{"/health", "/api/health"} {
		rec := serve(t, router, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var resp models.HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.WithinDuration(t, time.Now(), resp.Timestamp, time.Minute)
	}

	rec := serve(t, router, http.MethodGet, "/version", "")
	assert.JSONEq(t, `{"version":"dev","gitCommit":"unknown","buildTime":"unknown"}`, rec.Body.String())
}

func TestLocalAssets(t *testing.T) {
	dir := t.TempDir()
	writeGallery(t, dir, "gallery1", "a.jpg")

	router := NewRouter(Dependencies{Galleries: &stubProvider{}, AssetsDir: dir})
	rec := serve(t, router, http.MethodGet, "/assets/gallery1/a.jpg", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "x", rec.Body.String())

	writeGallery(t, dir, filepath.Join("gallery1", ".covers"), "thumb-b.jpg")
	rec = serve(t, router, http.MethodGet, "/assets/gallery1/.covers/thumb-b.jpg", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignedAssetRedirect(t *testing.T) {
	router := NewRouter(Dependencies{Galleries: &stubProvider{}, Signer: stubSigner{}})

	rec := serve(t, router, http.MethodGet, "/assets/gallery1/a.jpg", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://storage.example.com/gallery1/a.jpg?sig=1", rec.Header().Get("Location"))

	rec = serve(t, router, http.MethodGet, "/assets/gallery1/.covers/thumb-b.jpg", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://storage.example.com/gallery1/.covers/thumb-b.jpg?sig=1", rec.Header().Get("Location"))

	assert.Equal(t, http.StatusNotFound, serve(t, router, http.MethodGet, "/assets/gallery1", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(t, router, http.MethodGet, "/assets/gallery1/other/a.jpg", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(t, router, http.MethodGet, "/assets/private/a.jpg", "").Code)
}

func TestIndexPage(t *testing.T) {
	views := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(views, "index.pug"), []byte("p Galleries"), 0644))

	router := NewRouter(Dependencies{Galleries: &stubProvider{}, ViewsDir: views})
	rec := serve(t, router, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Galleries")
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestIndexPageMissingTemplate(t *testing.T) {
	router := NewRouter(Dependencies{Galleries: &stubProvider{}, ViewsDir: t.TempDir()})
	assert.Equal(t, http.StatusInternalServerError, serve(t, router, http.MethodGet, "/", "").Code)
}

func TestPublicFallback(t *testing.T) {
	public := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(public, "robots.txt"), []byte("User-agent: *"), 0644))

	router := NewRouter(Dependencies{Galleries: &stubProvider{}, PublicDir: public})
	rec := serve(t, router, http.MethodGet, "/robots.txt", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User-agent: *", rec.Body.String())
}
