package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/linkpage/pkg/core/domain"
	"github.com/wadjakorntonsri/linkpage/pkg/logger"
	"github.com/wadjakorntonsri/linkpage/pkg/ports"
)

type LinkHandler struct {
	links ports.LinkService
	log   *logger.Logger
}

func NewLinkHandler(links ports.LinkService, log *logger.Logger) *LinkHandler {
	return &LinkHandler{links: links, log: log}
}

// CreateLinkRequest is the body of POST /api/v1/pages/{id}/links.
type CreateLinkRequest struct {
	domain.LinkInput
	Position *int `json:"position,omitempty"`
}

// ReorderRequest is the body of PUT /api/v1/links/order.
type ReorderRequest struct {
	Positions []domain.LinkPosition `json:"positions"`
}

func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	links, err := h.links.ListOwnedLinks(r.Context(), r.PathValue("id"), mustOwner(r))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if links == nil {
		links = []domain.LinkEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": links})
}

// Create appends an entry. Without an explicit position it goes to the end.
func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	pageID, ownerID := r.PathValue("id"), mustOwner(r)

	var req CreateLinkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		existing, err := h.links.ListOwnedLinks(r.Context(), pageID, ownerID)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		position = len(existing)
	}

	link, err := h.links.CreateLink(r.Context(), pageID, ownerID, req.LinkInput, position)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

func (h *LinkHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch domain.LinkPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, h.log, err)
		return
	}

	link, err := h.links.UpdateLink(r.Context(), r.PathValue("id"), mustOwner(r), patch)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.links.DeleteLink(r.Context(), r.PathValue("id"), mustOwner(r)); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LinkHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	if err := h.links.ReorderLinks(r.Context(), req.Positions, mustOwner(r)); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
