package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	messagessvc "github.com/ivanmatek/ember/internal/services/messages"
	"github.com/ivanmatek/ember/internal/transport/http/dto"
	httperrors "github.com/ivanmatek/ember/internal/transport/http/errors"
)

type MessagesHandler struct {
	service *messagessvc.Service
}

func NewMessagesHandler(service *messagessvc.Service) *MessagesHandler {
	return &MessagesHandler{service: service}
}

func (h *MessagesHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MESSAGES_SERVICE_UNAVAILABLE", "messages service is unavailable")
		return
	}

	items, err := h.service.List(
		r.Context(),
		chi.URLParam(r, "id"),
		r.URL.Query().Get("user_id"),
		parseIntOrDefault(r.URL.Query().Get("limit"), 100),
	)
	if err != nil {
		writeMessagesError(w, err, "failed to load messages")
		return
	}

	responseItems := make([]dto.MessageResponse, 0, len(items))
	for _, item := range items {
		responseItems = append(responseItems, dto.MessageFromModel(item))
	}

	httperrors.Write(w, http.StatusOK, dto.MessagesResponse{Items: responseItems})
}

func (h *MessagesHandler) Send(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MESSAGES_SERVICE_UNAVAILABLE", "messages service is unavailable")
		return
	}

	var req dto.SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	msg, err := h.service.Send(r.Context(), chi.URLParam(r, "id"), req.SenderID, req.Content)
	if err != nil {
		writeMessagesError(w, err, "failed to send message")
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.MessageFromModel(msg))
}

func writeMessagesError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, messagessvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid message request")
	case errors.Is(err, messagessvc.ErrMatchNotFound):
		writeNotFound(w, "MATCH_NOT_FOUND", "match not found")
	case errors.Is(err, messagessvc.ErrNotParticipant):
		writeForbidden(w, "NOT_PARTICIPANT", "user is not a participant of the match")
	case errors.Is(err, messagessvc.ErrMatchClosed):
		writeConflict(w, "MATCH_CLOSED", "match is no longer active")
	default:
		writeInternal(w, "INTERNAL_ERROR", fallback)
	}
}
