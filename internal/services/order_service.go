package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	domain "github.com/vitrinezap/api/internal/domain"
	"github.com/vitrinezap/api/internal/repositories"
)

var (
	// ErrOrderInvalidInput signals the caller provided invalid data.
	ErrOrderInvalidInput = errors.New("order: invalid input")
	// ErrOrderNotFound indicates the order could not be located.
	ErrOrderNotFound = errors.New("order: not found")
	// ErrOrderInvalidTransition indicates an illegal status change was attempted.
	ErrOrderInvalidTransition = errors.New("order: invalid status transition")
	// ErrOrderForbidden indicates the actor may not operate on this order.
	ErrOrderForbidden = errors.New("order: forbidden")
	// ErrOrderConflict indicates the store rejected the write due to contention.
	ErrOrderConflict = errors.New("order: conflict")
)

// notePolicy strips all markup from customer-facing freeform text before it
// is persisted.
var notePolicy = bluemonday.StrictPolicy()

func sanitizeFreeText(value string) string {
	return strings.TrimSpace(notePolicy.Sanitize(value))
}

// OrderServiceDeps bundles collaborators required to construct the order service.
type OrderServiceDeps struct {
	Orders  repositories.OrderRepository
	Catalog repositories.CatalogRepository
	Clock   func() time.Time
	// Location is the store's timezone used for date bucketing. Defaults to
	// the process local zone.
	Location *time.Location
	Events   OrderEventPublisher
	Logger   func(ctx context.Context, event string, fields map[string]any)
}

type orderService struct {
	orders   repositories.OrderRepository
	catalog  repositories.CatalogRepository
	clock    func() time.Time
	location *time.Location
	events   OrderEventPublisher
	logger   func(context.Context, string, map[string]any)
}

// NewOrderService wires dependencies into a concrete OrderService implementation.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}
	if deps.Catalog == nil {
		return nil, errors.New("order service: catalog repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	location := deps.Location
	if location == nil {
		location = time.Local
	}

	return &orderService{
		orders:  deps.Orders,
		catalog: deps.Catalog,
		clock: func() time.Time {
			return clock().UTC()
		},
		location: location,
		events:   deps.Events,
		logger:   logger,
	}, nil
}

func (s *orderService) GetOrder(ctx context.Context, actor Actor, orderID string) (Order, error) {
	order, err := s.loadAuthorized(ctx, actor, orderID)
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, actor Actor, query OrderQuery) (OrderProjection, error) {
	if !actor.IsStaff() {
		return OrderProjection{}, fmt.Errorf("%w: staff role required", ErrOrderForbidden)
	}

	filter := repositories.OrderListFilter{}
	if !actor.IsAdmin() {
		filter.SellerID = valuePtr(actor.ID)
	}

	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return OrderProjection{}, s.mapRepositoryError(err)
	}

	return ProjectOrders(orders, query, s.clock().In(s.location)), nil
}

func (s *orderService) WatchOrders(ctx context.Context, actor Actor, fn func([]Order)) error {
	if !actor.IsStaff() {
		return fmt.Errorf("%w: staff role required", ErrOrderForbidden)
	}

	filter := repositories.OrderListFilter{}
	if !actor.IsAdmin() {
		filter.SellerID = valuePtr(actor.ID)
	}

	return s.orders.Watch(ctx, filter, fn)
}

func (s *orderService) TransitionStatus(ctx context.Context, cmd OrderStatusCommand) (Order, error) {
	target := domain.OrderStatus(strings.TrimSpace(string(cmd.TargetStatus)))
	if target == "" {
		return Order{}, fmt.Errorf("%w: target status is required", ErrOrderInvalidInput)
	}

	order, err := s.loadAuthorized(ctx, cmd.Actor, cmd.OrderID)
	if err != nil {
		return Order{}, err
	}

	if order.Status == domain.OrderStatusPendingPayment && target == domain.OrderStatusPreparation && !cmd.Actor.IsAdmin() {
		return Order{}, fmt.Errorf("%w: only admins confirm payment", ErrOrderForbidden)
	}

	return s.transition(ctx, order, target, cmd.Actor)
}

func (s *orderService) ConfirmPayment(ctx context.Context, cmd OrderActionCommand) (Order, error) {
	if !cmd.Actor.IsAdmin() {
		return Order{}, fmt.Errorf("%w: only admins confirm payment", ErrOrderForbidden)
	}
	order, err := s.loadAuthorized(ctx, cmd.Actor, cmd.OrderID)
	if err != nil {
		return Order{}, err
	}
	return s.transition(ctx, order, domain.OrderStatusPreparation, cmd.Actor)
}

func (s *orderService) MarkDelivered(ctx context.Context, cmd OrderActionCommand) (Order, error) {
	order, err := s.loadAuthorized(ctx, cmd.Actor, cmd.OrderID)
	if err != nil {
		return Order{}, err
	}
	return s.transition(ctx, order, domain.OrderStatusDelivered, cmd.Actor)
}

func (s *orderService) CancelOrder(ctx context.Context, cmd OrderActionCommand) (Order, error) {
	order, err := s.loadAuthorized(ctx, cmd.Actor, cmd.OrderID)
	if err != nil {
		return Order{}, err
	}
	return s.transition(ctx, order, domain.OrderStatusCanceled, cmd.Actor)
}

func (s *orderService) ReturnOrder(ctx context.Context, cmd OrderActionCommand) (Order, error) {
	order, err := s.loadAuthorized(ctx, cmd.Actor, cmd.OrderID)
	if err != nil {
		return Order{}, err
	}
	return s.transition(ctx, order, domain.OrderStatusReturned, cmd.Actor)
}

func (s *orderService) UpdateItems(ctx context.Context, cmd UpdateOrderItemsCommand) (Order, error) {
	if len(cmd.Edits) == 0 {
		return Order{}, fmt.Errorf("%w: at least one item edit is required", ErrOrderInvalidInput)
	}

	order, err := s.loadEditable(ctx, cmd.Actor, cmd.OrderID)
	if err != nil {
		return Order{}, err
	}

	items := make([]domain.LineItem, len(order.Items))
	copy(items, order.Items)

	for _, edit := range cmd.Edits {
		productID := strings.TrimSpace(edit.ProductID)
		if productID == "" {
			return Order{}, fmt.Errorf("%w: product id is required", ErrOrderInvalidInput)
		}

		idx := -1
		for i, item := range items {
			if item.ProductID == productID {
				idx = i
				break
			}
		}

		switch {
		case edit.Quantity <= 0 && idx >= 0:
			// Removing the last unit deletes the line entirely.
			items = append(items[:idx], items[idx+1:]...)
		case edit.Quantity <= 0:
			return Order{}, fmt.Errorf("%w: product %s is not on the order", ErrOrderInvalidInput, productID)
		case idx >= 0:
			items[idx].Quantity = edit.Quantity
		default:
			product, err := s.catalog.GetProduct(ctx, productID)
			if err != nil {
				return Order{}, s.mapRepositoryError(err)
			}
			items = append(items, domain.LineItem{
				ProductID: product.ID,
				Name:      product.Name,
				ImageURL:  cloneStringPtr(product.ImageURL),
				UnitPrice: product.Price,
				Quantity:  edit.Quantity,
			})
		}
	}

	order.Items = items
	return s.mergeEdit(ctx, order, func(m *repositories.OrderMutation) {
		m.Items = &items
	})
}

func (s *orderService) SetDiscount(ctx context.Context, cmd SetDiscountCommand) (Order, error) {
	if cmd.Discount < 0 {
		return Order{}, fmt.Errorf("%w: discount must not be negative", ErrOrderInvalidInput)
	}

	order, err := s.loadEditable(ctx, cmd.Actor, cmd.OrderID)
	if err != nil {
		return Order{}, err
	}

	order.Discount = cmd.Discount
	return s.mergeEdit(ctx, order, func(m *repositories.OrderMutation) {
		m.Discount = valuePtr(cmd.Discount)
	})
}

func (s *orderService) SetShipping(ctx context.Context, cmd SetShippingCommand) (Order, error) {
	if cmd.Cost < 0 {
		return Order{}, fmt.Errorf("%w: shipping cost must not be negative", ErrOrderInvalidInput)
	}
	if cmd.Method != "" && !validShippingMethod(cmd.Method) {
		return Order{}, fmt.Errorf("%w: unknown shipping method %q", ErrOrderInvalidInput, cmd.Method)
	}

	order, err := s.loadEditable(ctx, cmd.Actor, cmd.OrderID)
	if err != nil {
		return Order{}, err
	}

	order.ShippingCost = cmd.Cost
	if cmd.Method != "" {
		order.ShippingMethod = cmd.Method
	}
	return s.mergeEdit(ctx, order, func(m *repositories.OrderMutation) {
		m.ShippingCost = valuePtr(cmd.Cost)
		if cmd.Method != "" {
			m.ShippingMethod = valuePtr(cmd.Method)
		}
	})
}

func (s *orderService) SetFeeFlags(ctx context.Context, cmd SetFeeFlagsCommand) (Order, error) {
	if cmd.Invoice == nil && cmd.Insurance == nil {
		return Order{}, fmt.Errorf("%w: no fee flag provided", ErrOrderInvalidInput)
	}

	order, err := s.loadEditable(ctx, cmd.Actor, cmd.OrderID)
	if err != nil {
		return Order{}, err
	}

	if cmd.Invoice != nil {
		order.InvoiceRequested = *cmd.Invoice
	}
	if cmd.Insurance != nil {
		order.InsuranceRequested = *cmd.Insurance
	}
	return s.mergeEdit(ctx, order, func(m *repositories.OrderMutation) {
		m.InvoiceRequested = cmd.Invoice
		m.InsuranceRequested = cmd.Insurance
	})
}

func (s *orderService) UpdateCustomerAddress(ctx context.Context, cmd UpdateOrderAddressCommand) (Order, error) {
	order, err := s.loadEditable(ctx, cmd.Actor, cmd.OrderID)
	if err != nil {
		return Order{}, err
	}

	customer := order.Customer
	customer.PostalCode = strings.TrimSpace(cmd.Address.PostalCode)
	customer.City = strings.TrimSpace(cmd.Address.City)
	customer.Street = strings.TrimSpace(cmd.Address.Street)
	customer.Number = strings.TrimSpace(cmd.Address.Number)
	customer.District = strings.TrimSpace(cmd.Address.District)
	customer.Complement = trimmedPtr(cmd.Address.Complement)

	order.Customer = customer
	return s.mergeEdit(ctx, order, func(m *repositories.OrderMutation) {
		m.Customer = &customer
	})
}

func (s *orderService) SetNote(ctx context.Context, cmd SetNoteCommand) (Order, error) {
	order, err := s.loadEditable(ctx, cmd.Actor, cmd.OrderID)
	if err != nil {
		return Order{}, err
	}

	note := optionalString(sanitizeFreeText(cmd.Note))
	order.Note = note
	return s.mergeEdit(ctx, order, func(m *repositories.OrderMutation) {
		m.Note = note
		if note == nil {
			m.Note = valuePtr("")
		}
	})
}

func (s *orderService) SetTrackingCode(ctx context.Context, cmd SetTrackingCodeCommand) (Order, error) {
	code := strings.TrimSpace(cmd.Code)
	if code == "" {
		return Order{}, fmt.Errorf("%w: tracking code is required", ErrOrderInvalidInput)
	}

	order, err := s.loadAuthorized(ctx, cmd.Actor, cmd.OrderID)
	if err != nil {
		return Order{}, err
	}
	if order.Status != domain.OrderStatusInTransit {
		return Order{}, fmt.Errorf("%w: tracking code only applies while in transit, order is %s", ErrOrderInvalidTransition, order.Status)
	}

	order.TrackingCode = &code
	return s.mergeEdit(ctx, order, func(m *repositories.OrderMutation) {
		m.TrackingCode = &code
	})
}

func (s *orderService) AttachInvoiceDocument(ctx context.Context, cmd AttachInvoiceDocumentCommand) (Order, error) {
	ref := strings.TrimSpace(cmd.DocumentRef)
	if ref == "" {
		return Order{}, fmt.Errorf("%w: document reference is required", ErrOrderInvalidInput)
	}

	order, err := s.loadAuthorized(ctx, cmd.Actor, cmd.OrderID)
	if err != nil {
		return Order{}, err
	}

	switch order.Status {
	case domain.OrderStatusPreparation, domain.OrderStatusInTransit, domain.OrderStatusDelivered:
	default:
		return Order{}, fmt.Errorf("%w: invoice documents attach from preparation onward, order is %s", ErrOrderInvalidTransition, order.Status)
	}

	order.InvoiceDocumentRef = &ref
	return s.mergeEdit(ctx, order, func(m *repositories.OrderMutation) {
		m.InvoiceDocumentRef = &ref
	})
}

func (s *orderService) DeleteOrder(ctx context.Context, cmd OrderActionCommand) error {
	if !cmd.Actor.IsAdmin() {
		return fmt.Errorf("%w: only admins delete orders", ErrOrderForbidden)
	}

	order, err := s.loadAuthorized(ctx, cmd.Actor, cmd.OrderID)
	if err != nil {
		return err
	}

	if err := s.orders.Delete(ctx, order.ID); err != nil {
		return s.mapRepositoryError(err)
	}

	s.publishEvent(ctx, OrderEvent{
		Type:       domain.OrderEventDeleted,
		OrderID:    order.ID,
		Number:     order.Number,
		Status:     order.Status,
		SellerID:   order.SellerID,
		OccurredAt: s.clock(),
	})

	return nil
}

// transition applies the status change in memory, recomputes totals, and
// merge-writes only the status field group. History entries are appended via
// an additive union so concurrent transitions never lose each other's rows.
func (s *orderService) transition(ctx context.Context, order Order, target domain.OrderStatus, actor Actor) (Order, error) {
	now := s.clock()

	if err := applyStatusTransition(&order, target, now); err != nil {
		return Order{}, err
	}

	totals, err := ComputeTotals(domain.PricingInputFromOrder(order))
	if err != nil {
		return Order{}, err
	}
	order.Totals = totals

	mutation := repositories.OrderMutation{
		Status:        valuePtr(order.Status),
		AppendHistory: []domain.StatusChange{{Status: target, At: now}},
		Totals:        &totals,
		UpdatedAt:     now,
	}
	if target == domain.OrderStatusDelivered {
		mutation.DeliveredAt = order.DeliveredAt
	}

	if err := s.orders.Merge(ctx, order.ID, mutation); err != nil {
		return Order{}, s.mapRepositoryError(err)
	}

	s.publishEvent(ctx, OrderEvent{
		Type:       domain.OrderEventStatusChanged,
		OrderID:    order.ID,
		Number:     order.Number,
		Status:     order.Status,
		SellerID:   order.SellerID,
		OccurredAt: now,
	})

	return order, nil
}

// mergeEdit recomputes totals for the already-mutated order and merges the
// intent's field group together with the fresh totals.
func (s *orderService) mergeEdit(ctx context.Context, order Order, build func(*repositories.OrderMutation)) (Order, error) {
	now := s.clock()

	totals, err := ComputeTotals(domain.PricingInputFromOrder(order))
	if err != nil {
		return Order{}, err
	}
	order.Totals = totals
	order.UpdatedAt = now

	mutation := repositories.OrderMutation{
		Totals:    &totals,
		UpdatedAt: now,
	}
	build(&mutation)

	if err := s.orders.Merge(ctx, order.ID, mutation); err != nil {
		return Order{}, s.mapRepositoryError(err)
	}

	return order, nil
}

func (s *orderService) loadAuthorized(ctx context.Context, actor Actor, orderID string) (Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	if !actor.IsStaff() {
		return Order{}, fmt.Errorf("%w: staff role required", ErrOrderForbidden)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return Order{}, s.mapRepositoryError(err)
	}

	if !actor.IsAdmin() {
		if order.SellerID == nil || *order.SellerID != actor.ID {
			return Order{}, fmt.Errorf("%w: order is not attributed to this vendor", ErrOrderForbidden)
		}
	}

	return order, nil
}

// loadEditable additionally rejects edits to orders in a terminal state.
func (s *orderService) loadEditable(ctx context.Context, actor Actor, orderID string) (Order, error) {
	order, err := s.loadAuthorized(ctx, actor, orderID)
	if err != nil {
		return Order{}, err
	}
	if order.Status.Terminal() {
		return Order{}, fmt.Errorf("%w: order in status %s can no longer be edited", ErrOrderInvalidTransition, order.Status)
	}
	return order, nil
}

func (s *orderService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrOrderNotFound, err)
		case repoErr.IsConflict():
			return fmt.Errorf("%w: %v", ErrOrderConflict, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("order: repository unavailable: %w", err)
		}
	}

	return err
}

func (s *orderService) publishEvent(ctx context.Context, event OrderEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderEvent(ctx, event); err != nil {
		s.logger(ctx, "order.event.publish.failed", map[string]any{
			"type":   string(event.Type),
			"order":  event.OrderID,
			"status": string(event.Status),
			"error":  err.Error(),
		})
	}
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	ref := *value
	return &ref
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func valuePtr[T any](v T) *T {
	return &v
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	ref := v
	return &ref
}
