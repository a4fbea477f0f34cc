package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vitrinezap/api/internal/platform/auth"
	"github.com/vitrinezap/api/internal/platform/httpx"
	"github.com/vitrinezap/api/internal/repositories"
	"github.com/vitrinezap/api/internal/services"
)

const maxCheckoutBodySize = 32 * 1024

// CheckoutHandlers converts the authenticated user's cart into an order.
type CheckoutHandlers struct {
	authn    *auth.Authenticator
	checkout services.CheckoutService
}

// NewCheckoutHandlers constructs handlers enforcing Firebase authentication before invoking checkout.
func NewCheckoutHandlers(authn *auth.Authenticator, checkout services.CheckoutService) *CheckoutHandlers {
	return &CheckoutHandlers{
		authn:    authn,
		checkout: checkout,
	}
}

// Routes wires the /checkout endpoints onto the provided router.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Post("/", h.convert)
}

func (h *CheckoutHandlers) convert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_service_unavailable", "checkout service is unavailable", http.StatusServiceUnavailable))
		return
	}

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	// The body is optional: an empty request checks out with the stored profile.
	req, err := parseCheckoutRequest(r)
	if err != nil {
		switch {
		case errors.Is(err, errBodyTooLarge):
			httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		}
		return
	}

	// Staff may convert another customer's cart; the acting staff member then
	// becomes the attributed seller on the resulting order.
	actor := actorFromIdentity(identity)
	userID := identity.UID
	if req.CustomerID != "" && req.CustomerID != identity.UID {
		if !actor.IsStaff() {
			httpx.WriteError(ctx, w, httpx.NewError("forbidden", "only staff may check out for another customer", http.StatusForbidden))
			return
		}
		userID = req.CustomerID
	}

	order, err := h.checkout.Convert(ctx, services.CheckoutCommand{
		Actor:    actor,
		UserID:   userID,
		Options:  req.Options,
		Override: req.Override,
	})
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, orderResponse{Order: buildOrderPayload(order)})
}

func (h *CheckoutHandlers) writeCheckoutError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrCheckoutEmptyCart):
		httpx.WriteError(ctx, w, httpx.NewError("empty_cart", "cart has no items to check out", http.StatusUnprocessableEntity))
	case errors.Is(err, services.ErrCheckoutInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCheckoutPersistence):
		httpx.WriteError(ctx, w, httpx.NewError("checkout_persistence_failed", "failed to persist order; cart was kept intact", http.StatusServiceUnavailable))
	case errors.Is(err, services.ErrCheckoutUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("checkout_service_unavailable", "checkout service is unavailable", http.StatusServiceUnavailable))
	default:
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) && repoErr.IsUnavailable() {
			httpx.WriteError(ctx, w, httpx.NewError("checkout_service_unavailable", "checkout service is unavailable", http.StatusServiceUnavailable))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("checkout_error", "failed to check out", http.StatusInternalServerError))
	}
}

type checkoutRequest struct {
	CustomerID string
	Options    services.CheckoutOptions
	Override   services.CheckoutOverride
}

func parseCheckoutRequest(r *http.Request) (checkoutRequest, error) {
	var req checkoutRequest

	body, err := readLimitedBody(r, maxCheckoutBodySize)
	if err != nil {
		if errors.Is(err, errEmptyBody) {
			return req, nil
		}
		return req, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return req, errors.New("invalid JSON payload")
	}

	overrideFields := map[string]**string{
		"name":        &req.Override.Name,
		"phone":       &req.Override.Phone,
		"postal_code": &req.Override.PostalCode,
		"city":        &req.Override.City,
		"street":      &req.Override.Street,
		"number":      &req.Override.Number,
		"district":    &req.Override.District,
		"complement":  &req.Override.Complement,
		"note":        &req.Override.Note,
	}

	for key, value := range raw {
		if isJSONNull(value) {
			continue
		}
		switch key {
		case "customer_id":
			var text string
			if err := json.Unmarshal(value, &text); err != nil {
				return req, errors.New("customer_id must be a string")
			}
			req.CustomerID = strings.TrimSpace(text)
		case "shipping_method":
			var text string
			if err := json.Unmarshal(value, &text); err != nil {
				return req, errors.New("shipping_method must be a string")
			}
			req.Options.ShippingMethod = services.ShippingMethod(strings.TrimSpace(text))
		case "invoice_requested":
			if err := json.Unmarshal(value, &req.Options.InvoiceRequested); err != nil {
				return req, errors.New("invoice_requested must be a boolean")
			}
		case "insurance_requested":
			if err := json.Unmarshal(value, &req.Options.InsuranceRequested); err != nil {
				return req, errors.New("insurance_requested must be a boolean")
			}
		default:
			target, known := overrideFields[key]
			if !known {
				return req, fmt.Errorf("field %q is not editable", key)
			}
			var text string
			if err := json.Unmarshal(value, &text); err != nil {
				return req, fmt.Errorf("%s must be a string", key)
			}
			trimmed := strings.TrimSpace(text)
			*target = &trimmed
		}
	}

	return req, nil
}
