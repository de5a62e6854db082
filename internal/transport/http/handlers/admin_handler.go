package handlers

import (
	"context"
	"net/http"

	"github.com/ivanmatek/ember/internal/transport/http/dto"
	httperrors "github.com/ivanmatek/ember/internal/transport/http/errors"
)

type SweepRunner interface {
	Sweep(ctx context.Context) (int, error)
}

// AdminHandler exposes the expiry sweep for manual runs; the background job
// covers the steady state.
type AdminHandler struct {
	sweeper SweepRunner
}

func NewAdminHandler(sweeper SweepRunner) *AdminHandler {
	return &AdminHandler{sweeper: sweeper}
}

func (h *AdminHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	if h.sweeper == nil {
		writeInternal(w, "SWEEPER_UNAVAILABLE", "sweeper is unavailable")
		return
	}

	released, err := h.sweeper.Sweep(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "sweep failed")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SweepResponse{Released: released})
}
