package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domain "github.com/vitrinezap/api/internal/domain"
	"github.com/vitrinezap/api/internal/services"
)

type stubUserService struct {
	profile services.UserProfile
	err     error

	lastUpdate services.UpdateProfileCommand
}

func (s *stubUserService) GetProfile(ctx context.Context, userID string) (services.UserProfile, error) {
	return s.profile, s.err
}

func (s *stubUserService) UpdateProfile(ctx context.Context, cmd services.UpdateProfileCommand) (services.UserProfile, error) {
	s.lastUpdate = cmd
	return s.profile, s.err
}

func newMeRouter(service services.UserService) http.Handler {
	handlers := NewMeHandlers(nil, service)
	return NewRouter(WithMeRoutes(handlers.Routes))
}

func TestGetProfileReturnsPayload(t *testing.T) {
	service := &stubUserService{profile: services.UserProfile{
		ID:          "user_1",
		DisplayName: "Ana",
		Phone:       "11999990000",
		Address: &domain.Address{
			PostalCode: "01310-100",
			City:       "São Paulo",
			Street:     "Avenida Paulista",
			Number:     "100",
		},
		Roles:     []string{"user"},
		IsActive:  true,
		CreatedAt: time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC),
	}}
	router := newMeRouter(service)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/me/", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload meResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if payload.Profile.DisplayName != "Ana" {
		t.Errorf("unexpected display name %q", payload.Profile.DisplayName)
	}
	if payload.Profile.Address == nil || payload.Profile.Address.City != "São Paulo" {
		t.Errorf("unexpected address %#v", payload.Profile.Address)
	}
}

func TestUpdateProfileForwardsFields(t *testing.T) {
	service := &stubUserService{}
	router := newMeRouter(service)

	body := `{"display_name":"Maria","address":{"postal_code":"20040-020","city":"Rio de Janeiro","street":"Avenida Rio Branco","number":"1"}}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPatch, "/api/v1/me/", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if service.lastUpdate.DisplayName == nil || *service.lastUpdate.DisplayName != "Maria" {
		t.Errorf("expected display name update, got %#v", service.lastUpdate.DisplayName)
	}
	if service.lastUpdate.Address == nil || service.lastUpdate.Address.City != "Rio de Janeiro" {
		t.Errorf("expected address update, got %#v", service.lastUpdate.Address)
	}
	if service.lastUpdate.Phone != nil {
		t.Errorf("expected untouched phone, got %#v", service.lastUpdate.Phone)
	}
}

func TestUpdateProfileNotFoundMapsTo404(t *testing.T) {
	service := &stubUserService{err: services.ErrUserNotFound}
	router := newMeRouter(service)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPatch, "/api/v1/me/", `{"display_name":"Maria"}`))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestParseUpdateProfileRequest(t *testing.T) {
	if _, err := parseUpdateProfileRequest([]byte(`{}`)); err == nil {
		t.Error("expected error for empty object")
	}
	if _, err := parseUpdateProfileRequest([]byte(`{"display_name":null}`)); err == nil {
		t.Error("expected error for null display_name")
	}
	if _, err := parseUpdateProfileRequest([]byte(`{"roles":["admin"]}`)); err == nil {
		t.Error("expected error for non-editable field")
	}

	req, err := parseUpdateProfileRequest([]byte(`{"phone":null,"address":null}`))
	if err != nil {
		t.Fatalf("parseUpdateProfileRequest: %v", err)
	}
	if !req.hasPhone || req.phone == nil || *req.phone != "" {
		t.Errorf("expected phone cleared, got %#v", req.phone)
	}
	if !req.hasAddress || req.address != nil {
		t.Errorf("expected address cleared, got %#v", req.address)
	}
}
