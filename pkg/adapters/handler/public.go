package handler

import (
	"embed"
	"html/template"
	"net"
	"net/http"
	"strings"

	"github.com/wadjakorntonsri/linkpage/pkg/core/domain"
	"github.com/wadjakorntonsri/linkpage/pkg/core/theme"
	"github.com/wadjakorntonsri/linkpage/pkg/logger"
	"github.com/wadjakorntonsri/linkpage/pkg/ports"
)

//go:embed templates/*.html
var templateFS embed.FS

var publicTemplate = template.Must(template.New("public.html").Funcs(template.FuncMap{
	// Style values are validated hex colours or registry constants.
	"css":     func(s theme.Style) template.CSS { return template.CSS(s.CSS()) },
	"fontcss": func(stack string) template.CSS { return template.CSS("font-family: " + stack) },
	"platform": func(key string) theme.Platform {
		p, _ := theme.LookupPlatform(key)
		return p
	},
}).ParseFS(templateFS, "templates/public.html"))

type PublicHandler struct {
	pages     ports.PageService
	analytics ports.AnalyticsService
	log       *logger.Logger
}

func NewPublicHandler(pages ports.PageService, analytics ports.AnalyticsService, log *logger.Logger) *PublicHandler {
	return &PublicHandler{pages: pages, analytics: analytics, log: log}
}

// PublicProfile is the visitor-facing part of a profile. No email.
type PublicProfile struct {
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type PublicPageResponse struct {
	Page    domain.LandingPage `json:"page"`
	Profile PublicProfile      `json:"profile"`
	Links   []domain.LinkEntry `json:"links"`
	StyleResponse
}

func newPublicPageResponse(pub *domain.PublicPage) PublicPageResponse {
	page := pub.Page
	page.OwnerID = ""
	page.Links = nil

	avatar := page.AvatarURL
	if avatar == "" {
		avatar = pub.Profile.AvatarURL
	}
	links := pub.Links
	if links == nil {
		links = []domain.LinkEntry{}
	}

	return PublicPageResponse{
		Page:          page,
		Profile:       PublicProfile{Username: pub.Profile.Username, FullName: pub.Profile.FullName, AvatarURL: avatar},
		Links:         links,
		StyleResponse: resolveStyles(page.Theme, &page.Customization),
	}
}

func (h *PublicHandler) load(r *http.Request) (*domain.PublicPage, error) {
	return h.pages.GetPublicPage(r.Context(), r.PathValue("username"), r.PathValue("slug"))
}

// JSON serves the public page with its resolved styles.
func (h *PublicHandler) JSON(w http.ResponseWriter, r *http.Request) {
	pub, err := h.load(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=60")
	writeJSON(w, http.StatusOK, newPublicPageResponse(pub))
}

// HTML renders the public page.
func (h *PublicHandler) HTML(w http.ResponseWriter, r *http.Request) {
	pub, err := h.load(r)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.log.Error(err, "load public page")
		}
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=60")
	if err := publicTemplate.Execute(w, newPublicPageResponse(pub)); err != nil {
		h.log.Error(err, "render public page")
	}
}

// Track records a visitor event. Skipped events still answer 200 with the
// reason so beacons never retry.
func (h *PublicHandler) Track(w http.ResponseWriter, r *http.Request) {
	var ev domain.TrackEvent
	if err := decodeJSON(w, r, &ev); err != nil {
		writeError(w, h.log, err)
		return
	}
	ev.IP = clientIP(r)
	ev.UserAgent = r.UserAgent()
	if ev.Referrer == "" {
		ev.Referrer = r.Referer()
	}

	res, err := h.analytics.Track(r.Context(), ev)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
