package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vitrinezap/api/internal/platform/addresslookup"
	"github.com/vitrinezap/api/internal/platform/config"
)

func newCEPRouter(t *testing.T, upstream http.HandlerFunc) (http.Handler, func()) {
	t.Helper()
	srv := httptest.NewServer(upstream)
	client, err := addresslookup.NewClient(config.AddressLookupConfig{BaseURL: srv.URL, Timeout: time.Second})
	if err != nil {
		srv.Close()
		t.Fatalf("NewClient: %v", err)
	}
	handlers := NewCEPHandlers(client)
	return NewRouter(WithCEPRoutes(handlers.Routes)), srv.Close
}

func TestCEPLookupReturnsAddress(t *testing.T) {
	router, cleanup := newCEPRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"cep":"01310-100","logradouro":"Avenida Paulista","bairro":"Bela Vista","localidade":"São Paulo"}`))
	})
	defer cleanup()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cep/01310-100", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload map[string]addressPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if payload["address"].Street != "Avenida Paulista" {
		t.Errorf("unexpected address %#v", payload["address"])
	}
}

func TestCEPLookupRejectsMalformedCode(t *testing.T) {
	router, cleanup := newCEPRouter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("upstream should not be called for malformed codes")
	})
	defer cleanup()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cep/123", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCEPLookupUnknownCodeReturns404(t *testing.T) {
	router, cleanup := newCEPRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"erro": true}`))
	})
	defer cleanup()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cep/99999999", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
