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

const maxCartBodySize = 16 * 1024

// CartHandlers exposes authenticated cart endpoints for the current user.
type CartHandlers struct {
	authn *auth.Authenticator
	carts services.CartService
}

// NewCartHandlers constructs handlers enforcing Firebase authentication before invoking the cart service.
func NewCartHandlers(authn *auth.Authenticator, carts services.CartService) *CartHandlers {
	return &CartHandlers{
		authn: authn,
		carts: carts,
	}
}

// Routes wires the /cart endpoints onto the provided router.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Get("/", h.getCart)
	r.Delete("/", h.clearCart)
	r.Post("/items", h.addItem)
	r.Delete("/items/{productID}", h.removeItem)
}

func (h *CartHandlers) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}

	cart, err := h.carts.GetCart(ctx, identity.UID)
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, cartResponse{Cart: buildCartPayload(cart)})
}

func (h *CartHandlers) addItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxCartBodySize)
	if err != nil {
		switch {
		case errors.Is(err, errBodyTooLarge):
			httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		}
		return
	}

	itemReq, err := parseCartItemRequest(body)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	cart, err := h.carts.AddItem(ctx, services.UpsertCartItemCommand{
		UserID:    identity.UID,
		ProductID: itemReq.productID,
		Quantity:  itemReq.quantity,
	})
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, cartResponse{Cart: buildCartPayload(cart)})
}

func (h *CartHandlers) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}

	productID := strings.TrimSpace(chi.URLParam(r, "productID"))
	if productID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "product id is required", http.StatusBadRequest))
		return
	}

	cart, err := h.carts.RemoveItem(ctx, services.RemoveCartItemCommand{
		UserID:    identity.UID,
		ProductID: productID,
	})
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, cartResponse{Cart: buildCartPayload(cart)})
}

func (h *CartHandlers) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}

	if err := h.carts.ClearCart(ctx, identity.UID); err != nil {
		h.writeCartError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandlers) requireIdentity(ctx context.Context, w http.ResponseWriter) (*auth.Identity, bool) {
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return nil, false
	}
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return nil, false
	}
	return identity, true
}

func (h *CartHandlers) writeCartError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrCartInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCartProductUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("product_unavailable", err.Error(), http.StatusUnprocessableEntity))
	case errors.Is(err, services.ErrCartUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
	default:
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) && repoErr.IsUnavailable() {
			httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("cart_error", "failed to process cart", http.StatusInternalServerError))
	}
}

type cartResponse struct {
	Cart cartPayload `json:"cart"`
}

type cartPayload struct {
	UserID     string            `json:"user_id"`
	ItemsCount int               `json:"items_count"`
	Items      []cartItemPayload `json:"items"`
	UpdatedAt  string            `json:"updated_at,omitempty"`
}

type cartItemPayload struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	AddedAt   string `json:"added_at,omitempty"`
}

func buildCartPayload(cart services.Cart) cartPayload {
	items := make([]cartItemPayload, 0, len(cart.Items))
	for _, item := range cart.Items {
		entry := cartItemPayload{
			ProductID: strings.TrimSpace(item.ProductID),
			Quantity:  item.Quantity,
		}
		if !item.AddedAt.IsZero() {
			entry.AddedAt = formatTime(item.AddedAt)
		}
		items = append(items, entry)
	}

	payload := cartPayload{
		UserID:     strings.TrimSpace(cart.UserID),
		ItemsCount: len(items),
		Items:      items,
	}
	if !cart.UpdatedAt.IsZero() {
		payload.UpdatedAt = formatTime(cart.UpdatedAt)
	}
	return payload
}

type cartItemRequest struct {
	productID string
	quantity  int
}

func parseCartItemRequest(body []byte) (cartItemRequest, error) {
	var req cartItemRequest

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return req, errors.New("invalid JSON payload")
	}

	for key, value := range raw {
		switch key {
		case "product_id":
			if isJSONNull(value) {
				return req, errors.New("product_id must be a string")
			}
			var id string
			if err := json.Unmarshal(value, &id); err != nil {
				return req, errors.New("product_id must be a string")
			}
			req.productID = strings.TrimSpace(id)
		case "quantity":
			if isJSONNull(value) {
				return req, errors.New("quantity must be a number")
			}
			if err := json.Unmarshal(value, &req.quantity); err != nil {
				return req, errors.New("quantity must be a number")
			}
		default:
			return req, fmt.Errorf("field %q is not editable", key)
		}
	}

	if req.productID == "" {
		return req, errors.New("product_id is required")
	}
	if req.quantity <= 0 {
		return req, errors.New("quantity must be positive")
	}
	return req, nil
}
