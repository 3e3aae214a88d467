package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/linkpage/pkg/config"
	"github.com/wadjakorntonsri/linkpage/pkg/logger"
	"github.com/wadjakorntonsri/linkpage/pkg/ports"
)

// Services are the use cases the HTTP surface exposes.
type Services struct {
	Links     ports.LinkService
	Pages     ports.PageService
	Profiles  ports.ProfileService
	Analytics ports.AnalyticsService
}

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, svc Services, log *logger.Logger) http.Handler {
	lh := NewLinkHandler(svc.Links, log)
	ph := NewPageHandler(svc.Pages, svc.Analytics, log)
	pub := NewPublicHandler(svc.Pages, svc.Analytics, log)
	me := NewProfileHandler(svc.Profiles, log)
	sh := NewStyleHandler(log)

	mw := NewMiddleware(cfg, log)
	authHandler := NewAuthHandler(cfg, svc.Profiles, log)

	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	mux.HandleFunc("GET /u/{username}", pub.HTML)
	mux.HandleFunc("GET /u/{username}/{slug}", pub.HTML)
	mux.HandleFunc("GET /api/public/{username}", pub.JSON)
	mux.HandleFunc("GET /api/public/{username}/{slug}", pub.JSON)
	mux.HandleFunc("POST /api/track", pub.Track)
	mux.HandleFunc("GET /auth/google/login", authHandler.Login)
	mux.HandleFunc("GET /auth/google/callback", authHandler.Callback)
	mux.HandleFunc("GET /auth/logout", authHandler.Logout)

	// Protected Routes
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("POST /api/v1/pages", ph.Create)
	protectedMux.HandleFunc("GET /api/v1/pages", ph.List)
	protectedMux.HandleFunc("GET /api/v1/pages/{id}", ph.Get)
	protectedMux.HandleFunc("PATCH /api/v1/pages/{id}", ph.Update)
	protectedMux.HandleFunc("DELETE /api/v1/pages/{id}", ph.Delete)
	protectedMux.HandleFunc("PUT /api/v1/pages/{id}/pixel", ph.SetPixel)
	protectedMux.HandleFunc("DELETE /api/v1/pages/{id}/pixel", ph.ClearPixel)
	protectedMux.HandleFunc("GET /api/v1/pages/{id}/stats", ph.Stats)

	protectedMux.HandleFunc("GET /api/v1/pages/{id}/links", lh.List)
	protectedMux.HandleFunc("POST /api/v1/pages/{id}/links", lh.Create)
	protectedMux.HandleFunc("PUT /api/v1/links/order", lh.Reorder)
	protectedMux.HandleFunc("PATCH /api/v1/links/{id}", lh.Update)
	protectedMux.HandleFunc("DELETE /api/v1/links/{id}", lh.Delete)

	protectedMux.HandleFunc("GET /api/v1/styles", sh.Catalog)
	protectedMux.HandleFunc("POST /api/v1/styles/preview", sh.Preview)

	protectedMux.HandleFunc("GET /api/v1/me", me.Me)
	protectedMux.HandleFunc("PATCH /api/v1/me", me.UpdateMe)

	// protectedMux holds full paths, so the prefix mount dispatches as-is.
	mux.Handle("/api/v1/", mw.AuthMiddleware(protectedMux))

	return mw.Logging(mux)
}
