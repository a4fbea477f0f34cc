package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vitrinezap/api/internal/platform/addresslookup"
	"github.com/vitrinezap/api/internal/platform/httpx"
)

// CEPHandlers resolves Brazilian postal codes for the checkout form.
type CEPHandlers struct {
	lookup *addresslookup.Client
}

// NewCEPHandlers constructs the postal code lookup handlers.
func NewCEPHandlers(lookup *addresslookup.Client) *CEPHandlers {
	return &CEPHandlers{lookup: lookup}
}

// Routes wires the /cep endpoints onto the provided router. Lookups are public;
// they carry no customer data.
func (h *CEPHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/{code}", h.resolve)
}

func (h *CEPHandlers) resolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.lookup == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cep_service_unavailable", "postal code lookup is not configured", http.StatusServiceUnavailable))
		return
	}

	code := strings.TrimSpace(chi.URLParam(r, "code"))
	addr, err := h.lookup.Resolve(ctx, code)
	if err != nil {
		switch {
		case errors.Is(err, addresslookup.ErrInvalidPostalCode):
			httpx.WriteError(ctx, w, httpx.NewError("invalid_postal_code", "postal code must have eight digits", http.StatusBadRequest))
		case errors.Is(err, addresslookup.ErrNotFound):
			httpx.WriteError(ctx, w, httpx.NewError("postal_code_not_found", "postal code not found", http.StatusNotFound))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("cep_lookup_failed", "postal code lookup failed", http.StatusBadGateway))
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]addressPayload{"address": buildAddressPayload(*addr)})
}
