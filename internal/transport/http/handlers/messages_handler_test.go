package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ivanmatek/ember/internal/domain/model"
	pgrepo "github.com/ivanmatek/ember/internal/repo/postgres"
	messagessvc "github.com/ivanmatek/ember/internal/services/messages"
)

type matchStoreStub struct {
	match model.Match
	err   error
}

func (s matchStoreStub) GetByID(context.Context, string) (model.Match, error) {
	if s.err != nil {
		return model.Match{}, s.err
	}
	return s.match, nil
}

type messageStoreStub struct {
	items []model.Message
}

func (s *messageStoreStub) Create(_ context.Context, matchID, senderID, content string) (model.Message, error) {
	msg := model.Message{ID: "msg1", MatchID: matchID, SenderID: senderID, Content: content}
	s.items = append(s.items, msg)
	return msg, nil
}

func (s *messageStoreStub) ListByMatch(context.Context, string, int) ([]model.Message, error) {
	return s.items, nil
}

func liveMatch() model.Match {
	return model.Match{
		ID:        "m1",
		UserAID:   "a",
		UserBID:   "b",
		Active:    true,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
}

func newMessagesRouter(match model.Match, matchErr error) (*chi.Mux, *messageStoreStub) {
	store := &messageStoreStub{}
	svc := messagessvc.NewService(matchStoreStub{match: match, err: matchErr}, store, messagessvc.NewHub())
	h := NewMessagesHandler(svc)

	r := chi.NewRouter()
	r.Get("/matches/{id}/messages", h.List)
	r.Post("/matches/{id}/messages", h.Send)
	return r, store
}

func TestSendMessageReturnsCreated(t *testing.T) {
	r, store := newMessagesRouter(liveMatch(), nil)

	body, err := json.Marshal(map[string]any{"sender_id": "a", "content": "hello"})
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/matches/m1/messages", bytes.NewReader(body)))

	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got %d want %d, body %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if len(store.items) != 1 {
		t.Fatalf("message not persisted: %d", len(store.items))
	}
}

func TestSendMessageForbiddenForOutsider(t *testing.T) {
	r, _ := newMessagesRouter(liveMatch(), nil)

	body := []byte(`{"sender_id":"stranger","content":"hello"}`)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/matches/m1/messages", bytes.NewReader(body)))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusForbidden)
	}
}

func TestSendMessageConflictWhenClosed(t *testing.T) {
	closed := liveMatch()
	closed.Active = false
	r, _ := newMessagesRouter(closed, nil)

	body := []byte(`{"sender_id":"a","content":"hello"}`)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/matches/m1/messages", bytes.NewReader(body)))

	if rr.Code != http.StatusConflict {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusConflict)
	}

	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "MATCH_CLOSED" {
		t.Fatalf("unexpected error code: %q", payload.Code)
	}
}

func TestListMessagesForParticipant(t *testing.T) {
	r, store := newMessagesRouter(liveMatch(), nil)
	store.items = []model.Message{{ID: "msg1", MatchID: "m1", SenderID: "a", Content: "hi"}}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/matches/m1/messages?user_id=b", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d, body %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var payload struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Items) != 1 || payload.Items[0].ID != "msg1" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestListMessagesUnknownMatch(t *testing.T) {
	r, _ := newMessagesRouter(model.Match{}, pgrepo.ErrMatchNotFound)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/matches/missing/messages?user_id=a", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNotFound)
	}
}
