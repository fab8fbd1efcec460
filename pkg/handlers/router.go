package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gallery-showcase/pkg/generator"
	"gallery-showcase/pkg/observability"
)

// URLSigner issues temporary URLs for media held in object storage
type URLSigner interface {
	SignedURL(galleryID, file string) (string, error)
}

// Dependencies wires the router
type Dependencies struct {
	Galleries GalleryProvider
	Covers    CoverManager
	Events    EventRecorder
	// Signer redirects /assets/* to object storage; without it AssetsDir is served
	Signer    URLSigner
	AssetsDir string
	PublicDir string
	ViewsDir  string
	AdminKey  string
	Metrics   *observability.HTTPMetrics
}

// NewRouter builds the HTTP routes
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(observability.TracingMiddleware())
	if deps.Metrics != nil {
		r.Use(observability.MetricsMiddleware(deps.Metrics))
	}

	galleryHandler := NewGalleryHandler(deps.Galleries, deps.ViewsDir)

	r.Get("/health", HealthCheck)
	r.Get("/api/health", HealthCheck)
	r.Get("/version", VersionHandler)

	r.Get("/", galleryHandler.Index)
	r.Route("/api/galleries", func(r chi.Router) {
		r.Get("/", galleryHandler.List)
		r.Get("/{id}", galleryHandler.Get)
	})

	if deps.Events != nil {
		r.Post("/api/analytics", NewAnalyticsHandler(deps.Events).Collect)
	}

	if deps.Signer != nil {
		r.Get("/assets/*", signedAssetRedirect(deps.Signer))
	} else if deps.AssetsDir != "" {
		r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(deps.AssetsDir))))
	}

	if deps.AdminKey != "" {
		admin := NewAdminHandler(deps.Galleries, deps.Covers)
		r.Route("/"+deps.AdminKey, func(r chi.Router) {
			r.Post("/refresh", admin.Refresh)
			if deps.Covers != nil {
				r.Post("/covers", admin.GenerateCovers)
				r.Delete("/covers", admin.ClearCovers)
			}
		})
	}

	if deps.PublicDir != "" {
		r.NotFound(http.FileServer(http.Dir(deps.PublicDir)).ServeHTTP)
	}

	return r
}

// signedAssetRedirect answers /assets/{gallery}/{file} and /assets/{gallery}/.covers/{file}
// with a redirect to a signed URL
func signedAssetRedirect(signer URLSigner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		galleryID, file, ok := strings.Cut(chi.URLParam(r, "*"), "/")
		name := strings.TrimPrefix(file, generator.CoversDir+"/")
		if !ok || galleryID == "" || name == "" || strings.Contains(name, "/") {
			http.NotFound(w, r)
			return
		}

		url, err := signer.SignedURL(galleryID, file)
		if err != nil {
			observability.WithContext(r.Context()).Warnf("Failed to sign %s/%s: %v", galleryID, file, err)
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, url, http.StatusFound)
	}
}
