package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ivanmatek/ember/internal/domain/enums"
	"github.com/ivanmatek/ember/internal/domain/model"
	pgrepo "github.com/ivanmatek/ember/internal/repo/postgres"
	profilesvc "github.com/ivanmatek/ember/internal/services/profiles"
)

type profileStoreStub struct {
	profiles map[string]model.Profile
}

func (s profileStoreStub) Create(_ context.Context, displayName string, vibe enums.Vibe, interests []string, style enums.CommStyle) (model.Profile, error) {
	return model.Profile{
		ID:          "p1",
		DisplayName: displayName,
		Vibe:        vibe,
		Interests:   interests,
		CommStyle:   style,
	}, nil
}

func (s profileStoreStub) Get(_ context.Context, id string) (model.Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	return p, nil
}

func TestCreateProfileReturnsCreated(t *testing.T) {
	h := NewProfileHandler(profilesvc.NewService(profileStoreStub{}))

	body, err := json.Marshal(map[string]any{
		"display_name":        "Alex",
		"vibe":                "deep",
		"interests":           []string{"Music", "Travel", "Art"},
		"communication_style": "thoughtful",
	})
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}

	rr := httptest.NewRecorder()
	h.Create(rr, httptest.NewRequest(http.MethodPost, "/profiles", bytes.NewReader(body)))

	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got %d want %d, body %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	var payload struct {
		ID      string `json:"id"`
		Vibe    string `json:"vibe"`
		Matched bool   `json:"matched"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.ID != "p1" || payload.Vibe != "deep" || payload.Matched {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestCreateProfileRejectsInvalidIntake(t *testing.T) {
	h := NewProfileHandler(profilesvc.NewService(profileStoreStub{}))

	body := []byte(`{"display_name":"Alex","vibe":"mysterious","interests":["a","b","c"],"communication_style":"calm"}`)
	rr := httptest.NewRecorder()
	h.Create(rr, httptest.NewRequest(http.MethodPost, "/profiles", bytes.NewReader(body)))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	h := NewProfileHandler(profilesvc.NewService(profileStoreStub{profiles: map[string]model.Profile{}}))

	r := chi.NewRouter()
	r.Get("/profiles/{id}", h.Get)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/profiles/ghost", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNotFound)
	}

	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "PROFILE_NOT_FOUND" {
		t.Fatalf("unexpected error code: %q", payload.Code)
	}
}
