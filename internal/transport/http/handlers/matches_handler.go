package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ivanmatek/ember/internal/domain/model"
	pgrepo "github.com/ivanmatek/ember/internal/repo/postgres"
	matchingsvc "github.com/ivanmatek/ember/internal/services/matching"
	"github.com/ivanmatek/ember/internal/transport/http/dto"
	httperrors "github.com/ivanmatek/ember/internal/transport/http/errors"
)

type MatchGetter interface {
	GetByID(ctx context.Context, id string) (model.Match, error)
}

type MatchesHandler struct {
	arbiter *matchingsvc.Service
	getter  MatchGetter
}

func NewMatchesHandler(arbiter *matchingsvc.Service, getter MatchGetter) *MatchesHandler {
	return &MatchesHandler{arbiter: arbiter, getter: getter}
}

// Attempt runs a single pass of the pairing pipeline. No retries here: the
// session find endpoint owns the retry loop.
func (h *MatchesHandler) Attempt(w http.ResponseWriter, r *http.Request) {
	if h.arbiter == nil {
		writeInternal(w, "MATCHING_SERVICE_UNAVAILABLE", "matching service is unavailable")
		return
	}

	var req dto.AttemptMatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	match, err := h.arbiter.Attempt(r.Context(), req.UserID)
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
		case errors.Is(err, matchingsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid match attempt")
		case errors.Is(err, matchingsvc.ErrNoCandidates):
			writeNotFound(w, "NO_CANDIDATES", "no compatible candidates available")
		case errors.Is(err, matchingsvc.ErrCandidateStale):
			writeConflict(w, "CANDIDATE_TAKEN", "candidate was matched concurrently, retry")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to create match")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.MatchFromModel(match))
}

func (h *MatchesHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.getter == nil {
		writeInternal(w, "MATCH_STORE_UNAVAILABLE", "match store is unavailable")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "match id is required")
		return
	}

	match, err := h.getter.GetByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, pgrepo.ErrMatchNotFound):
			writeNotFound(w, "MATCH_NOT_FOUND", "match not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load match")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MatchFromModel(match))
}
