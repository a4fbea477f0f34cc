package addresslookup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vitrinezap/api/internal/platform/config"
)

func TestResolveReturnsAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/01310100/json/" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"cep":"01310-100","logradouro":"Avenida Paulista","bairro":"Bela Vista","localidade":"São Paulo"}`))
	}))
	defer srv.Close()

	client, err := NewClient(config.AddressLookupConfig{BaseURL: srv.URL, Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	addr, err := client.Resolve(context.Background(), "01310-100")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if addr.Street != "Avenida Paulista" {
		t.Errorf("unexpected street %q", addr.Street)
	}
	if addr.District != "Bela Vista" {
		t.Errorf("unexpected district %q", addr.District)
	}
	if addr.City != "São Paulo" {
		t.Errorf("unexpected city %q", addr.City)
	}
	if addr.PostalCode != "01310-100" {
		t.Errorf("unexpected postal code %q", addr.PostalCode)
	}
}

func TestResolveRejectsMalformedCEP(t *testing.T) {
	client, err := NewClient(config.AddressLookupConfig{BaseURL: "http://localhost:1", Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err := client.Resolve(context.Background(), "123"); !errors.Is(err, ErrInvalidPostalCode) {
		t.Fatalf("expected ErrInvalidPostalCode, got %v", err)
	}
}

func TestResolveUnknownCEP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"erro": true}`))
	}))
	defer srv.Close()

	client, err := NewClient(config.AddressLookupConfig{BaseURL: srv.URL, Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err := client.Resolve(context.Background(), "99999999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
