package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	matchingsvc "github.com/ivanmatek/ember/internal/services/matching"
	sessionssvc "github.com/ivanmatek/ember/internal/services/sessions"
	"github.com/ivanmatek/ember/internal/transport/http/dto"
	httperrors "github.com/ivanmatek/ember/internal/transport/http/errors"
)

type SessionHandler struct {
	service *sessionssvc.Service
}

func NewSessionHandler(service *sessionssvc.Service) *SessionHandler {
	return &SessionHandler{service: service}
}

// Resolve answers "where does this user land": back into an active chat or
// into the matching flow.
func (h *SessionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "SESSION_SERVICE_UNAVAILABLE", "session service is unavailable")
		return
	}

	res, err := h.service.Resolve(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		switch {
		case errors.Is(err, sessionssvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "user id is required")
		case errors.Is(err, sessionssvc.ErrProfileNotFound):
			writeNotFound(w, "PROFILE_NOT_FOUND", "stored user id does not resolve to a profile")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to resolve session")
		}
		return
	}

	response := dto.SessionResponse{State: string(res.State)}
	if res.Match != nil {
		match := dto.MatchFromModel(*res.Match)
		response.Match = &match
	}
	if res.Partner != nil {
		partner := dto.ProfileFromModel(*res.Partner)
		response.Partner = &partner
	}

	httperrors.Write(w, http.StatusOK, response)
}

// Find runs the retrying match search and blocks until a pairing lands, the
// retry budget runs out, or the client goes away.
func (h *SessionHandler) Find(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "SESSION_SERVICE_UNAVAILABLE", "session service is unavailable")
		return
	}

	match, err := h.service.FindMatch(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		if limited, ok := matchingsvc.IsTooManyAttempts(err); ok {
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
				Code:          "TOO_MANY_ATTEMPTS",
				Message:       "match attempts are rate limited",
				RetryAfterSec: limited.RetryAfterSec,
			})
			return
		}
		switch {
		case errors.Is(err, sessionssvc.ErrValidation), errors.Is(err, matchingsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid match search request")
		case errors.Is(err, sessionssvc.ErrSearchExhausted):
			httperrors.Write(w, http.StatusServiceUnavailable, httperrors.APIError{
				Code:    "SEARCH_EXHAUSTED",
				Message: "no match found within the retry budget, try again later",
			})
		default:
			writeInternal(w, "INTERNAL_ERROR", "match search failed")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MatchFromModel(match))
}
