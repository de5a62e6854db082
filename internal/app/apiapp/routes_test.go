package apiapp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newTestRouter() *chi.Mux {
	r := chi.NewRouter()
	ApplyMiddlewares(r, zap.NewNop())
	RegisterRoutes(r, Dependencies{Logger: zap.NewNop()})
	return r
}

func TestHealthzRoute(t *testing.T) {
	r := newTestRouter()

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
	}
}

func TestRoutesDegradeWithoutServices(t *testing.T) {
	r := newTestRouter()

	// Without wired services every functional route must answer with a JSON
	// 5xx instead of panicking.
	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/profiles/"},
		{http.MethodGet, "/profiles/p1"},
		{http.MethodGet, "/session/u1/"},
		{http.MethodPost, "/session/u1/find"},
		{http.MethodPost, "/matches/attempt"},
		{http.MethodGet, "/matches/m1/messages"},
	}

	for _, tc := range cases {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))
		if rr.Code != http.StatusInternalServerError {
			t.Fatalf("%s %s: got %d want %d", tc.method, tc.path, rr.Code, http.StatusInternalServerError)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
			t.Fatalf("%s %s: unexpected content type %q", tc.method, tc.path, ct)
		}
	}
}
