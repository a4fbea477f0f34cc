package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/vitrinezap/api/internal/domain"
	"github.com/vitrinezap/api/internal/messaging"
	"github.com/vitrinezap/api/internal/platform/auth"
	"github.com/vitrinezap/api/internal/platform/httpx"
	"github.com/vitrinezap/api/internal/repositories"
	"github.com/vitrinezap/api/internal/services"
)

const maxOrderBodySize = 64 * 1024

// OrderHandlers exposes the order management surface. Access control lives in
// the order service; handlers only translate HTTP to commands.
type OrderHandlers struct {
	authn    *auth.Authenticator
	orders   services.OrderService
	whatsapp *messaging.WhatsAppLinkBuilder
}

// NewOrderHandlers constructs handlers enforcing Firebase authentication before invoking the order service.
func NewOrderHandlers(authn *auth.Authenticator, orders services.OrderService, whatsapp *messaging.WhatsAppLinkBuilder) *OrderHandlers {
	return &OrderHandlers{
		authn:    authn,
		orders:   orders,
		whatsapp: whatsapp,
	}
}

// Routes wires the /orders endpoints onto the provided router.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Get("/", h.listOrders)
	r.Route("/{orderID}", func(order chi.Router) {
		order.Get("/", h.getOrder)
		order.Delete("/", h.deleteOrder)
		order.Post("/status", h.transitionStatus)
		order.Post("/confirm-payment", h.confirmPayment)
		order.Post("/deliver", h.markDelivered)
		order.Post("/cancel", h.cancelOrder)
		order.Post("/return", h.returnOrder)
		order.Patch("/items", h.updateItems)
		order.Patch("/discount", h.setDiscount)
		order.Patch("/shipping", h.setShipping)
		order.Patch("/fees", h.setFeeFlags)
		order.Patch("/address", h.updateAddress)
		order.Patch("/note", h.setNote)
		order.Patch("/tracking-code", h.setTrackingCode)
		order.Patch("/invoice-document", h.attachInvoiceDocument)
		order.Get("/whatsapp-link", h.whatsappLink)
	})
}

func (h *OrderHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}

	query := services.OrderQuery{
		Search:          strings.TrimSpace(r.URL.Query().Get("q")),
		IncludeCanceled: parseBoolQuery(r.URL.Query().Get("include_canceled")),
	}
	for _, raw := range r.URL.Query()["status"] {
		for _, part := range strings.Split(raw, ",") {
			status := domain.OrderStatus(strings.TrimSpace(part))
			if status != "" {
				query.Statuses = append(query.Statuses, status)
			}
		}
	}

	projection, err := h.orders.ListOrders(ctx, actorFromIdentity(identity), query)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, buildProjectionPayload(projection))
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(ctx, w, r)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(ctx, actorFromIdentity(identity), orderID)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, orderResponse{Order: buildOrderPayload(order)})
}

func (h *OrderHandlers) transitionStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(ctx, w, r)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxOrderBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}
	target := domain.OrderStatus(strings.TrimSpace(req.Status))
	if target == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "status is required", http.StatusBadRequest))
		return
	}

	order, err := h.orders.TransitionStatus(ctx, services.OrderStatusCommand{
		Actor:        actorFromIdentity(identity),
		OrderID:      orderID,
		TargetStatus: target,
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, orderResponse{Order: buildOrderPayload(order)})
}

func (h *OrderHandlers) confirmPayment(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, h.orders.ConfirmPayment)
}

func (h *OrderHandlers) markDelivered(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, h.orders.MarkDelivered)
}

func (h *OrderHandlers) cancelOrder(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, h.orders.CancelOrder)
}

func (h *OrderHandlers) returnOrder(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, h.orders.ReturnOrder)
}

func (h *OrderHandlers) runAction(w http.ResponseWriter, r *http.Request, action func(context.Context, services.OrderActionCommand) (services.Order, error)) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(ctx, w, r)
	if !ok {
		return
	}

	order, err := action(ctx, services.OrderActionCommand{
		Actor:   actorFromIdentity(identity),
		OrderID: orderID,
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, orderResponse{Order: buildOrderPayload(order)})
}

func (h *OrderHandlers) updateItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(ctx, w, r)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxOrderBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	edits, err := parseOrderItemEdits(body)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	order, err := h.orders.UpdateItems(ctx, services.UpdateOrderItemsCommand{
		Actor:   actorFromIdentity(identity),
		OrderID: orderID,
		Edits:   edits,
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, orderResponse{Order: buildOrderPayload(order)})
}

func (h *OrderHandlers) setDiscount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(ctx, w, r)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxOrderBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req struct {
		Discount *int64 `json:"discount"`
	}
	if err := json.Unmarshal(body, &req); err != nil || req.Discount == nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "discount must be an amount in centavos", http.StatusBadRequest))
		return
	}

	order, err := h.orders.SetDiscount(ctx, services.SetDiscountCommand{
		Actor:    actorFromIdentity(identity),
		OrderID:  orderID,
		Discount: *req.Discount,
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, orderResponse{Order: buildOrderPayload(order)})
}

func (h *OrderHandlers) setShipping(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(ctx, w, r)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxOrderBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req struct {
		Cost   *int64 `json:"cost"`
		Method string `json:"method"`
	}
	if err := json.Unmarshal(body, &req); err != nil || req.Cost == nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "cost must be an amount in centavos", http.StatusBadRequest))
		return
	}

	order, err := h.orders.SetShipping(ctx, services.SetShippingCommand{
		Actor:   actorFromIdentity(identity),
		OrderID: orderID,
		Cost:    *req.Cost,
		Method:  domain.ShippingMethod(strings.TrimSpace(req.Method)),
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, orderResponse{Order: buildOrderPayload(order)})
}

func (h *OrderHandlers) setFeeFlags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(ctx, w, r)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxOrderBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req struct {
		Invoice   *bool `json:"invoice"`
		Insurance *bool `json:"insurance"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}
	if req.Invoice == nil && req.Insurance == nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", errNoEditableFields.Error(), http.StatusBadRequest))
		return
	}

	order, err := h.orders.SetFeeFlags(ctx, services.SetFeeFlagsCommand{
		Actor:     actorFromIdentity(identity),
		OrderID:   orderID,
		Invoice:   req.Invoice,
		Insurance: req.Insurance,
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, orderResponse{Order: buildOrderPayload(order)})
}

func (h *OrderHandlers) updateAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(ctx, w, r)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxOrderBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	addr, err := parseAddressPayload(body)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	order, err := h.orders.UpdateCustomerAddress(ctx, services.UpdateOrderAddressCommand{
		Actor:   actorFromIdentity(identity),
		OrderID: orderID,
		Address: addr,
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, orderResponse{Order: buildOrderPayload(order)})
}

func (h *OrderHandlers) setNote(w http.ResponseWriter, r *http.Request) {
	h.setOptionalText(w, r, "note", func(ctx context.Context, actor services.Actor, orderID, value string) (services.Order, error) {
		return h.orders.SetNote(ctx, services.SetNoteCommand{Actor: actor, OrderID: orderID, Note: value})
	})
}

func (h *OrderHandlers) setTrackingCode(w http.ResponseWriter, r *http.Request) {
	h.setOptionalText(w, r, "code", func(ctx context.Context, actor services.Actor, orderID, value string) (services.Order, error) {
		return h.orders.SetTrackingCode(ctx, services.SetTrackingCodeCommand{Actor: actor, OrderID: orderID, Code: value})
	})
}

// setOptionalText handles the note and tracking-code fields, where JSON null
// or an empty string clears the stored value.
func (h *OrderHandlers) setOptionalText(w http.ResponseWriter, r *http.Request, field string, apply func(context.Context, services.Actor, string, string) (services.Order, error)) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(ctx, w, r)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxOrderBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}
	value, present := raw[field]
	if !present {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", fmt.Sprintf("%s is required", field), http.StatusBadRequest))
		return
	}

	text := ""
	if !isJSONNull(value) {
		if err := json.Unmarshal(value, &text); err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", fmt.Sprintf("%s must be a string or null", field), http.StatusBadRequest))
			return
		}
	}

	order, err := apply(ctx, actorFromIdentity(identity), orderID, text)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, orderResponse{Order: buildOrderPayload(order)})
}

func (h *OrderHandlers) attachInvoiceDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(ctx, w, r)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxOrderBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req struct {
		DocumentRef string `json:"document_ref"`
	}
	if err := json.Unmarshal(body, &req); err != nil || strings.TrimSpace(req.DocumentRef) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "document_ref is required", http.StatusBadRequest))
		return
	}

	order, err := h.orders.AttachInvoiceDocument(ctx, services.AttachInvoiceDocumentCommand{
		Actor:       actorFromIdentity(identity),
		OrderID:     orderID,
		DocumentRef: strings.TrimSpace(req.DocumentRef),
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, orderResponse{Order: buildOrderPayload(order)})
}

func (h *OrderHandlers) deleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(ctx, w, r)
	if !ok {
		return
	}

	if err := h.orders.DeleteOrder(ctx, services.OrderActionCommand{
		Actor:   actorFromIdentity(identity),
		OrderID: orderID,
	}); err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderHandlers) whatsappLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.whatsapp == nil {
		httpx.WriteError(ctx, w, httpx.NewError("whatsapp_unavailable", "whatsapp link generation is not configured", http.StatusServiceUnavailable))
		return
	}
	orderID, ok := orderIDParam(ctx, w, r)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(ctx, actorFromIdentity(identity), orderID)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	// An explicit target opens the chat with that phone; staff use it to
	// message the customer. The default opens the store's own chat.
	var link string
	if to := strings.TrimSpace(r.URL.Query().Get("to")); to != "" {
		link, err = h.whatsapp.OrderLinkTo(order, to)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "target phone is not usable", http.StatusBadRequest))
			return
		}
	} else {
		link, err = h.whatsapp.OrderLink(order)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("whatsapp_error", "failed to build whatsapp link", http.StatusInternalServerError))
			return
		}
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"link": link})
}

func (h *OrderHandlers) requireIdentity(ctx context.Context, w http.ResponseWriter) (*auth.Identity, bool) {
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
		return nil, false
	}
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return nil, false
	}
	return identity, true
}

func orderIDParam(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, bool) {
	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if orderID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "order id is required", http.StatusBadRequest))
		return "", false
	}
	return orderID, true
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	}
}

func writeOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrOrderInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
	case errors.Is(err, services.ErrOrderForbidden):
		httpx.WriteError(ctx, w, httpx.NewError("forbidden", "not allowed to operate on this order", http.StatusForbidden))
	case errors.Is(err, services.ErrOrderInvalidTransition):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_transition", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrOrderConflict):
		httpx.WriteError(ctx, w, httpx.NewError("order_conflict", "order has been modified; refresh and retry", http.StatusConflict))
	default:
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) {
			switch {
			case repoErr.IsNotFound():
				httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
				return
			case repoErr.IsUnavailable():
				httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order repository unavailable", http.StatusServiceUnavailable))
				return
			}
		}
		httpx.WriteError(ctx, w, httpx.NewError("order_error", "failed to process order", http.StatusInternalServerError))
	}
}

func parseOrderItemEdits(body []byte) ([]services.OrderItemEdit, error) {
	var req struct {
		Items []struct {
			ProductID string `json:"product_id"`
			Quantity  *int   `json:"quantity"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, errors.New("invalid JSON payload")
	}
	if len(req.Items) == 0 {
		return nil, errors.New("items must not be empty")
	}

	edits := make([]services.OrderItemEdit, 0, len(req.Items))
	for i, item := range req.Items {
		productID := strings.TrimSpace(item.ProductID)
		if productID == "" {
			return nil, fmt.Errorf("items[%d].product_id is required", i)
		}
		if item.Quantity == nil || *item.Quantity < 0 {
			return nil, fmt.Errorf("items[%d].quantity must be zero or positive", i)
		}
		edits = append(edits, services.OrderItemEdit{ProductID: productID, Quantity: *item.Quantity})
	}
	return edits, nil
}

func parseBoolQuery(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

type orderResponse struct {
	Order orderPayload `json:"order"`
}

type orderListResponse struct {
	Today     []orderPayload `json:"today"`
	Yesterday []orderPayload `json:"yesterday"`
	Older     []orderPayload `json:"older"`
	Total     int            `json:"total"`
}

type orderPayload struct {
	ID                 string               `json:"id"`
	Number             string               `json:"number"`
	Customer           orderCustomerPayload `json:"customer"`
	Items              []orderItemPayload   `json:"items"`
	Discount           int64                `json:"discount"`
	ShippingCost       int64                `json:"shipping_cost"`
	ShippingMethod     string               `json:"shipping_method,omitempty"`
	InvoiceRequested   bool                 `json:"invoice_requested"`
	InsuranceRequested bool                 `json:"insurance_requested"`
	Totals             orderTotalsPayload   `json:"totals"`
	SellerID           *string              `json:"seller_id,omitempty"`
	Status             string               `json:"status"`
	Note               *string              `json:"note,omitempty"`
	TrackingCode       *string              `json:"tracking_code,omitempty"`
	InvoiceDocumentRef *string              `json:"invoice_document_ref,omitempty"`
	History            []statusChangePayload `json:"history"`
	CreatedAt          string               `json:"created_at,omitempty"`
	UpdatedAt          string               `json:"updated_at,omitempty"`
	DeliveredAt        string               `json:"delivered_at,omitempty"`
}

type orderCustomerPayload struct {
	UserID     string  `json:"user_id"`
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	PostalCode string  `json:"postal_code,omitempty"`
	City       string  `json:"city,omitempty"`
	Street     string  `json:"street,omitempty"`
	Number     string  `json:"number,omitempty"`
	District   string  `json:"district,omitempty"`
	Complement *string `json:"complement,omitempty"`
}

type orderItemPayload struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	ImageURL  *string `json:"image_url,omitempty"`
	UnitPrice int64   `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

type orderTotalsPayload struct {
	Subtotal     int64 `json:"subtotal"`
	Discount     int64 `json:"discount"`
	Shipping     int64 `json:"shipping"`
	InvoiceFee   int64 `json:"invoice_fee"`
	InsuranceFee int64 `json:"insurance_fee"`
	Total        int64 `json:"total"`
}

type statusChangePayload struct {
	Status string `json:"status"`
	At     string `json:"at"`
}

func buildProjectionPayload(projection services.OrderProjection) orderListResponse {
	return orderListResponse{
		Today:     buildOrderPayloads(projection.Today),
		Yesterday: buildOrderPayloads(projection.Yesterday),
		Older:     buildOrderPayloads(projection.Older),
		Total:     projection.Total(),
	}
}

func buildOrderPayloads(orders []services.Order) []orderPayload {
	payload := make([]orderPayload, 0, len(orders))
	for _, order := range orders {
		payload = append(payload, buildOrderPayload(order))
	}
	return payload
}

func buildOrderPayload(order services.Order) orderPayload {
	items := make([]orderItemPayload, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemPayload{
			ProductID: item.ProductID,
			Name:      item.Name,
			ImageURL:  cloneStringPointer(item.ImageURL),
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	history := make([]statusChangePayload, 0, len(order.History))
	for _, change := range order.History {
		history = append(history, statusChangePayload{
			Status: string(change.Status),
			At:     formatTime(change.At),
		})
	}

	payload := orderPayload{
		ID:     order.ID,
		Number: order.Number,
		Customer: orderCustomerPayload{
			UserID:     order.Customer.UserID,
			Name:       order.Customer.Name,
			Phone:      order.Customer.Phone,
			PostalCode: order.Customer.PostalCode,
			City:       order.Customer.City,
			Street:     order.Customer.Street,
			Number:     order.Customer.Number,
			District:   order.Customer.District,
			Complement: cloneStringPointer(order.Customer.Complement),
		},
		Items:              items,
		Discount:           order.Discount,
		ShippingCost:       order.ShippingCost,
		ShippingMethod:     string(order.ShippingMethod),
		InvoiceRequested:   order.InvoiceRequested,
		InsuranceRequested: order.InsuranceRequested,
		Totals: orderTotalsPayload{
			Subtotal:     order.Totals.Subtotal,
			Discount:     order.Totals.Discount,
			Shipping:     order.Totals.Shipping,
			InvoiceFee:   order.Totals.InvoiceFee,
			InsuranceFee: order.Totals.InsuranceFee,
			Total:        order.Totals.Total,
		},
		SellerID:           cloneStringPointer(order.SellerID),
		Status:             string(order.Status),
		Note:               cloneStringPointer(order.Note),
		TrackingCode:       cloneStringPointer(order.TrackingCode),
		InvoiceDocumentRef: cloneStringPointer(order.InvoiceDocumentRef),
		History:            history,
		CreatedAt:          formatTime(order.CreatedAt),
		UpdatedAt:          formatTime(order.UpdatedAt),
	}
	if order.DeliveredAt != nil {
		payload.DeliveredAt = formatTime(*order.DeliveredAt)
	}
	return payload
}
