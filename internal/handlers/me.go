package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vitrinezap/api/internal/platform/auth"
	"github.com/vitrinezap/api/internal/platform/httpx"
	"github.com/vitrinezap/api/internal/repositories"
	"github.com/vitrinezap/api/internal/services"
)

const maxProfileBodySize = 64 * 1024

// MeHandlers exposes authenticated profile endpoints for the current user.
type MeHandlers struct {
	authn *auth.Authenticator
	users services.UserService
}

// NewMeHandlers constructs handlers enforcing Firebase authentication before invoking the user service.
func NewMeHandlers(authn *auth.Authenticator, users services.UserService) *MeHandlers {
	return &MeHandlers{
		authn: authn,
		users: users,
	}
}

// Routes wires the /me endpoints onto the provided router.
func (h *MeHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Get("/", h.getProfile)
	r.Patch("/", h.updateProfile)
}

func (h *MeHandlers) getProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.users == nil {
		httpx.WriteError(ctx, w, httpx.NewError("profile_service_unavailable", "profile service is unavailable", http.StatusServiceUnavailable))
		return
	}

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	profile, err := h.users.GetProfile(ctx, identity.UID)
	if err != nil {
		writeUserProfileError(ctx, w, err)
		return
	}

	payload := meResponse{Profile: buildProfilePayload(profile, identity)}
	writeJSONResponse(w, http.StatusOK, payload)
}

func (h *MeHandlers) updateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.users == nil {
		httpx.WriteError(ctx, w, httpx.NewError("profile_service_unavailable", "profile service is unavailable", http.StatusServiceUnavailable))
		return
	}

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	body, err := readLimitedBody(r, maxProfileBodySize)
	if err != nil {
		switch {
		case errors.Is(err, errBodyTooLarge):
			httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		}
		return
	}

	updateReq, err := parseUpdateProfileRequest(body)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	cmd := services.UpdateProfileCommand{UserID: identity.UID}
	if updateReq.hasDisplayName {
		cmd.DisplayName = updateReq.displayName
	}
	if updateReq.hasPhone {
		cmd.Phone = updateReq.phone
	}
	if updateReq.hasAddress {
		cmd.Address = updateReq.address
	}

	updated, err := h.users.UpdateProfile(ctx, cmd)
	if err != nil {
		writeUserProfileError(ctx, w, err)
		return
	}

	payload := meResponse{Profile: buildProfilePayload(updated, identity)}
	writeJSONResponse(w, http.StatusOK, payload)
}

type meResponse struct {
	Profile meProfilePayload `json:"profile"`
}

type meProfilePayload struct {
	ID          string          `json:"id"`
	DisplayName string          `json:"display_name"`
	Email       string          `json:"email,omitempty"`
	Phone       string          `json:"phone,omitempty"`
	Address     *addressPayload `json:"address,omitempty"`
	Roles       []string        `json:"roles"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   string          `json:"created_at,omitempty"`
	UpdatedAt   string          `json:"updated_at,omitempty"`
}

type updateProfileRequest struct {
	displayName    *string
	phone          *string
	address        *services.Address
	hasDisplayName bool
	hasPhone       bool
	hasAddress     bool
}

func parseUpdateProfileRequest(data []byte) (updateProfileRequest, error) {
	var req updateProfileRequest
	if len(strings.TrimSpace(string(data))) == 0 {
		return req, errEmptyBody
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return req, fmt.Errorf("invalid JSON payload: %w", err)
	}
	if len(raw) == 0 {
		return req, errNoEditableFields
	}

	updateFields := 0
	for key, value := range raw {
		switch key {
		case "display_name":
			if isJSONNull(value) {
				return req, errors.New("display_name must not be null")
			}
			var name string
			if err := json.Unmarshal(value, &name); err != nil {
				return req, errors.New("display_name must be a string")
			}
			req.displayName = &name
			req.hasDisplayName = true
			updateFields++
		case "phone":
			if isJSONNull(value) {
				empty := ""
				req.phone = &empty
			} else {
				var phone string
				if err := json.Unmarshal(value, &phone); err != nil {
					return req, errors.New("phone must be a string")
				}
				req.phone = &phone
			}
			req.hasPhone = true
			updateFields++
		case "address":
			req.hasAddress = true
			updateFields++
			if isJSONNull(value) {
				req.address = nil
				continue
			}
			addr, err := parseAddressPayload(value)
			if err != nil {
				return req, err
			}
			req.address = &addr
		default:
			return req, fmt.Errorf("field %q is not editable", key)
		}
	}

	if updateFields == 0 {
		return req, errNoEditableFields
	}

	return req, nil
}

func buildProfilePayload(profile services.UserProfile, identity *auth.Identity) meProfilePayload {
	roles := slices.Clone(profile.Roles)
	if len(roles) == 0 && identity != nil {
		roles = slices.Clone(identity.Roles)
	}
	if len(roles) == 0 {
		roles = []string{}
	}

	email := ""
	if identity != nil {
		email = strings.TrimSpace(strings.ToLower(identity.Email))
	}

	payload := meProfilePayload{
		ID:          strings.TrimSpace(profile.ID),
		DisplayName: profile.DisplayName,
		Email:       email,
		Phone:       profile.Phone,
		Roles:       roles,
		IsActive:    profile.IsActive,
		CreatedAt:   formatTime(profile.CreatedAt),
		UpdatedAt:   formatTime(profile.UpdatedAt),
	}
	if profile.Address != nil {
		addr := buildAddressPayload(*profile.Address)
		payload.Address = &addr
	}
	return payload
}

func writeUserProfileError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, services.ErrUserInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_profile_field", err.Error(), http.StatusBadRequest))
		return
	case errors.Is(err, services.ErrUserNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("profile_not_found", "profile not found", http.StatusNotFound))
		return
	}

	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			httpx.WriteError(ctx, w, httpx.NewError("profile_not_found", "profile not found", http.StatusNotFound))
			return
		case repoErr.IsUnavailable():
			httpx.WriteError(ctx, w, httpx.NewError("profile_service_unavailable", "profile repository unavailable", http.StatusServiceUnavailable))
			return
		}
	}

	httpx.WriteError(ctx, w, httpx.NewError("profile_error", err.Error(), http.StatusInternalServerError))
}
