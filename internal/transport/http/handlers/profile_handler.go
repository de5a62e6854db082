package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	profilesvc "github.com/ivanmatek/ember/internal/services/profiles"
	"github.com/ivanmatek/ember/internal/transport/http/dto"
	httperrors "github.com/ivanmatek/ember/internal/transport/http/errors"
)

type ProfileHandler struct {
	service *profilesvc.Service
}

func NewProfileHandler(service *profilesvc.Service) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	var req dto.CreateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	profile, err := h.service.Create(r.Context(), profilesvc.CreateInput{
		DisplayName: req.DisplayName,
		Vibe:        req.Vibe,
		Interests:   req.Interests,
		CommStyle:   req.CommStyle,
	})
	if err != nil {
		switch {
		case errors.Is(err, profilesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", err.Error())
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to create profile")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.ProfileFromModel(profile))
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	profile, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, profilesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "profile id is required")
		case errors.Is(err, profilesvc.ErrNotFound):
			writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load profile")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ProfileFromModel(profile))
}
