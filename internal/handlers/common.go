package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vitrinezap/api/internal/platform/auth"
	"github.com/vitrinezap/api/internal/services"
)

const defaultMaxBodySize = 64 * 1024

var (
	errBodyTooLarge     = errors.New("request body too large")
	errEmptyBody        = errors.New("request body is required")
	errNoEditableFields = errors.New("no editable fields provided")
)

func readLimitedBody(r *http.Request, limit int64) ([]byte, error) {
	if r == nil || r.Body == nil {
		return nil, errEmptyBody
	}
	if limit <= 0 {
		limit = defaultMaxBodySize
	}
	reader := io.LimitReader(r.Body, limit+1)
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errEmptyBody
	}
	if int64(len(data)) > limit {
		return nil, errBodyTooLarge
	}
	return data, nil
}

func isJSONNull(value json.RawMessage) bool {
	return strings.EqualFold(strings.TrimSpace(string(value)), "null")
}

func parseRFC3339(value string) (time.Time, error) {
	layouts := []string{time.RFC3339Nano, time.RFC3339}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", value)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func writeJSONResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func cloneStringPointer(value *string) *string {
	if value == nil {
		return nil
	}
	copy := *value
	return &copy
}

// actorFromIdentity maps the authenticated identity onto the actor handed to
// services. Identities without explicit roles act as plain customers.
func actorFromIdentity(identity *auth.Identity) services.Actor {
	if identity == nil {
		return services.Actor{}
	}
	roles := identity.Roles
	if len(roles) == 0 {
		roles = []string{services.RoleUser}
	}
	return services.Actor{
		ID:    strings.TrimSpace(identity.UID),
		Roles: roles,
	}
}

type addressPayload struct {
	PostalCode string  `json:"postal_code"`
	City       string  `json:"city"`
	Street     string  `json:"street"`
	Number     string  `json:"number,omitempty"`
	District   string  `json:"district,omitempty"`
	Complement *string `json:"complement,omitempty"`
}

func buildAddressPayload(addr services.Address) addressPayload {
	return addressPayload{
		PostalCode: strings.TrimSpace(addr.PostalCode),
		City:       strings.TrimSpace(addr.City),
		Street:     strings.TrimSpace(addr.Street),
		Number:     strings.TrimSpace(addr.Number),
		District:   strings.TrimSpace(addr.District),
		Complement: cloneStringPointer(addr.Complement),
	}
}

func parseAddressPayload(value json.RawMessage) (services.Address, error) {
	var payload addressPayload
	if err := json.Unmarshal(value, &payload); err != nil {
		return services.Address{}, errors.New("address must be an object")
	}
	addr := services.Address{
		PostalCode: strings.TrimSpace(payload.PostalCode),
		City:       strings.TrimSpace(payload.City),
		Street:     strings.TrimSpace(payload.Street),
		Number:     strings.TrimSpace(payload.Number),
		District:   strings.TrimSpace(payload.District),
	}
	if payload.Complement != nil {
		trimmed := strings.TrimSpace(*payload.Complement)
		if trimmed != "" {
			addr.Complement = &trimmed
		}
	}
	return addr, nil
}
