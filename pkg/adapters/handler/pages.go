package handler

import (
	"net/http"
	"time"

	"github.com/wadjakorntonsri/linkpage/pkg/core/domain"
	"github.com/wadjakorntonsri/linkpage/pkg/logger"
	"github.com/wadjakorntonsri/linkpage/pkg/ports"
)

type PageHandler struct {
	pages     ports.PageService
	analytics ports.AnalyticsService
	log       *logger.Logger
}

func NewPageHandler(pages ports.PageService, analytics ports.AnalyticsService, log *logger.Logger) *PageHandler {
	return &PageHandler{pages: pages, analytics: analytics, log: log}
}

func (h *PageHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID := mustOwner(r)
	var in domain.PageInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.log, err)
		return
	}

	page, err := h.pages.CreatePage(r.Context(), ownerID, in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, page)
}

func (h *PageHandler) List(w http.ResponseWriter, r *http.Request) {
	pages, err := h.pages.ListPages(r.Context(), mustOwner(r))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if pages == nil {
		pages = []domain.LandingPage{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": pages, "total": len(pages)})
}

func (h *PageHandler) Get(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.GetPage(r.Context(), r.PathValue("id"), mustOwner(r))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *PageHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch domain.PagePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, h.log, err)
		return
	}

	page, err := h.pages.UpdatePage(r.Context(), r.PathValue("id"), mustOwner(r), patch)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *PageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.pages.DeletePage(r.Context(), r.PathValue("id"), mustOwner(r)); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PageHandler) SetPixel(w http.ResponseWriter, r *http.Request) {
	var cfg domain.PixelConfig
	if err := decodeJSON(w, r, &cfg); err != nil {
		writeError(w, h.log, err)
		return
	}

	page, err := h.pages.SetPixel(r.Context(), r.PathValue("id"), mustOwner(r), cfg)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *PageHandler) ClearPixel(w http.ResponseWriter, r *http.Request) {
	if err := h.pages.ClearPixel(r.Context(), r.PathValue("id"), mustOwner(r)); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats serves the dashboard numbers. from/to are inclusive YYYY-MM-DD days.
func (h *PageHandler) Stats(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	stats, err := h.analytics.PageStats(r.Context(), r.PathValue("id"), mustOwner(r), rng)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func parseRange(from, to string) (domain.DateRange, error) {
	if from == "" && to == "" {
		return domain.DateRange{}, nil
	}
	if from == "" || to == "" {
		return domain.DateRange{}, domain.NewValidationError("range", "from and to must be given together")
	}
	start, err := time.Parse(time.DateOnly, from)
	if err != nil {
		return domain.DateRange{}, domain.NewValidationError("from", "must be YYYY-MM-DD")
	}
	end, err := time.Parse(time.DateOnly, to)
	if err != nil {
		return domain.DateRange{}, domain.NewValidationError("to", "must be YYYY-MM-DD")
	}
	return domain.DateRange{Start: start, End: end.AddDate(0, 0, 1)}, nil
}

// mustOwner reads the owner set by AuthMiddleware. Routes using it are only
// mounted behind that middleware.
func mustOwner(r *http.Request) string {
	id, _ := OwnerID(r.Context())
	return id
}
