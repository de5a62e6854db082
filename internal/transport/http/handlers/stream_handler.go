package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ivanmatek/ember/internal/domain/model"
	messagessvc "github.com/ivanmatek/ember/internal/services/messages"
	"github.com/ivanmatek/ember/internal/transport/http/dto"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Subscriber interface {
	Subscribe(matchID string) (<-chan model.Message, func())
}

// StreamHandler upgrades GET /matches/{id}/stream to a websocket and pushes
// new messages for the match as they are accepted.
type StreamHandler struct {
	service *messagessvc.Service
	hub     Subscriber
	logger  *zap.Logger
}

func NewStreamHandler(service *messagessvc.Service, hub Subscriber, logger *zap.Logger) *StreamHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreamHandler{service: service, hub: hub, logger: logger}
}

func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if h.service == nil || h.hub == nil {
		writeInternal(w, "STREAM_UNAVAILABLE", "message stream is unavailable")
		return
	}

	matchID := chi.URLParam(r, "id")
	userID := r.URL.Query().Get("user_id")
	if err := h.service.Authorize(r.Context(), matchID, userID); err != nil {
		writeMessagesError(w, err, "failed to open stream")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err), zap.String("match_id", matchID))
		return
	}
	defer conn.Close()

	stream, cancel := h.hub.Subscribe(matchID)
	defer cancel()

	// Reader goroutine: the client sends nothing meaningful, but reading is
	// what surfaces close frames and keeps pong handling alive.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case msg, ok := <-stream:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(dto.MessageFromModel(msg)); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
