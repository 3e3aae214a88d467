package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/linkpage/pkg/core/domain"
	"github.com/wadjakorntonsri/linkpage/pkg/logger"
	"github.com/wadjakorntonsri/linkpage/pkg/ports"
)

type ProfileHandler struct {
	profiles ports.ProfileService
	log      *logger.Logger
}

func NewProfileHandler(profiles ports.ProfileService, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, log: log}
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.GetProfile(r.Context(), mustOwner(r))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var patch domain.ProfilePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, h.log, err)
		return
	}

	profile, err := h.profiles.UpdateProfile(r.Context(), mustOwner(r), patch)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
