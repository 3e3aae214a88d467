package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/linkpage/pkg/core/domain"
	"github.com/wadjakorntonsri/linkpage/pkg/core/theme"
	"github.com/wadjakorntonsri/linkpage/pkg/core/validate"
	"github.com/wadjakorntonsri/linkpage/pkg/logger"
)

type StyleHandler struct {
	log *logger.Logger
}

func NewStyleHandler(log *logger.Logger) *StyleHandler {
	return &StyleHandler{log: log}
}

// PreviewRequest is the editor's unsaved theme and customization.
type PreviewRequest struct {
	Theme         string                   `json:"theme"`
	Customization domain.PageCustomization `json:"customization"`
}

// StyleResponse is a resolved style set plus the stylesheet it needs.
type StyleResponse struct {
	Styles         theme.Resolved `json:"styles"`
	FontStylesheet string         `json:"font_stylesheet,omitempty"`
}

type catalogTheme struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Color string `json:"theme_color"`
}

type catalogFont struct {
	Key      domain.FontFamily `json:"key"`
	Label    string            `json:"label"`
	Category string            `json:"category"`
}

type catalogPlatform struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Color       string `json:"color"`
	Placeholder string `json:"placeholder"`
}

// Catalog lists the themes, fonts and social platforms the editor offers.
func (h *StyleHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	var themes []catalogTheme
	for _, name := range theme.Names() {
		t := theme.Get(name)
		themes = append(themes, catalogTheme{Name: t.Name, Label: t.Label, Color: t.ThemeColor})
	}
	var fonts []catalogFont
	for _, f := range theme.Fonts() {
		fonts = append(fonts, catalogFont{Key: f.Key, Label: f.Label, Category: f.Category})
	}
	var platforms []catalogPlatform
	for _, p := range theme.Platforms() {
		platforms = append(platforms, catalogPlatform{Key: p.Key, Label: p.Label, Color: p.Color, Placeholder: p.Placeholder})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"themes":    themes,
		"fonts":     fonts,
		"platforms": platforms,
	})
}

// Preview resolves an unsaved customization exactly as the public page would.
func (h *StyleHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := validate.Customization(req.Customization); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, resolveStyles(req.Theme, &req.Customization))
}

func resolveStyles(themeName string, c *domain.PageCustomization) StyleResponse {
	resp := StyleResponse{Styles: theme.Resolve(theme.Get(themeName), c)}
	if c != nil && c.FontFamily != "" {
		if f, ok := theme.LookupFont(c.FontFamily); ok {
			resp.FontStylesheet = f.StylesheetURL()
		}
	}
	return resp
}
