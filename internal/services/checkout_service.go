package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/vitrinezap/api/internal/domain"
	"github.com/vitrinezap/api/internal/repositories"
)

const (
	orderIDPrefix      = "ord_"
	orderNumberCounter = "orders"
)

var (
	// ErrCheckoutInvalidInput indicates the caller supplied invalid input parameters.
	ErrCheckoutInvalidInput = errors.New("checkout: invalid input")
	// ErrCheckoutEmptyCart indicates checkout was attempted with no cart items.
	// Nothing is written to the order store in this case.
	ErrCheckoutEmptyCart = errors.New("checkout: cart is empty")
	// ErrCheckoutPersistence indicates the order could not be persisted. The
	// cart is left untouched so the customer can retry.
	ErrCheckoutPersistence = errors.New("checkout: persistence failed")
	// ErrCheckoutUnavailable indicates checkout dependencies are currently unavailable.
	ErrCheckoutUnavailable = errors.New("checkout: unavailable")
)

// AddressResolver fills address fields from a postal code, best effort.
// Implementations return a nil address when the code is unknown.
type AddressResolver interface {
	Resolve(ctx context.Context, postalCode string) (*domain.Address, error)
}

// CheckoutServiceDeps wires the dependencies required by the checkout service.
type CheckoutServiceDeps struct {
	Orders      repositories.OrderRepository
	Carts       repositories.CartRepository
	Users       repositories.UserRepository
	Catalog     repositories.CatalogRepository
	Counters    repositories.CounterRepository
	Lookup      AddressResolver
	Clock       func() time.Time
	IDGenerator func() string
	Events      OrderEventPublisher
	Logger      func(ctx context.Context, event string, fields map[string]any)
	// LegacyPlacedHop makes freshly converted orders advance straight into the
	// legacy placed state, which older storefront clients still expect.
	LegacyPlacedHop bool
}

type checkoutService struct {
	orders       repositories.OrderRepository
	carts        repositories.CartRepository
	users        repositories.UserRepository
	catalog      repositories.CatalogRepository
	counters     repositories.CounterRepository
	lookup       AddressResolver
	now          func() time.Time
	newID        func() string
	events       OrderEventPublisher
	logger       func(context.Context, string, map[string]any)
	legacyPlaced bool
}

// NewCheckoutService constructs a CheckoutService validating required dependencies.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Orders == nil {
		return nil, errors.New("checkout service: order repository is required")
	}
	if deps.Carts == nil {
		return nil, errors.New("checkout service: cart repository is required")
	}
	if deps.Users == nil {
		return nil, errors.New("checkout service: user repository is required")
	}
	if deps.Catalog == nil {
		return nil, errors.New("checkout service: catalog repository is required")
	}
	if deps.Counters == nil {
		return nil, errors.New("checkout service: counter repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return ulid.Make().String()
		}
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &checkoutService{
		orders:   deps.Orders,
		carts:    deps.Carts,
		users:    deps.Users,
		catalog:  deps.Catalog,
		counters: deps.Counters,
		lookup:   deps.Lookup,
		now: func() time.Time {
			return clock().UTC()
		},
		newID:        idGen,
		events:       deps.Events,
		logger:       logger,
		legacyPlaced: deps.LegacyPlacedHop,
	}, nil
}

// Convert turns the user's cart into a freshly priced quote order. The cart is
// only cleared after the order write succeeds; any persistence failure leaves
// it intact for retry.
func (s *checkoutService) Convert(ctx context.Context, cmd CheckoutCommand) (Order, error) {
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return Order{}, fmt.Errorf("%w: user id is required", ErrCheckoutInvalidInput)
	}

	cart, err := s.carts.Get(ctx, userID)
	if err != nil && !isNotFound(err) {
		return Order{}, s.translateRepositoryError(err)
	}
	if len(cart.Items) == 0 {
		return Order{}, ErrCheckoutEmptyCart
	}

	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return Order{}, err
	}

	customer, err := s.resolveCustomer(ctx, userID, profile, cmd.Override)
	if err != nil {
		return Order{}, err
	}

	if m := cmd.Options.ShippingMethod; m != "" && !validShippingMethod(m) {
		return Order{}, fmt.Errorf("%w: unknown shipping method %q", ErrCheckoutInvalidInput, m)
	}

	items, err := s.snapshotItems(ctx, cart.Items)
	if err != nil {
		return Order{}, err
	}
	if len(items) == 0 {
		return Order{}, ErrCheckoutEmptyCart
	}

	now := s.now()

	// A staff member checking out on a customer's behalf becomes the
	// attributed seller. Self-checkout leaves attribution empty.
	var sellerID *string
	if cmd.Actor.IsStaff() && strings.TrimSpace(cmd.Actor.ID) != "" && cmd.Actor.ID != userID {
		sellerID = valuePtr(cmd.Actor.ID)
	}

	order := domain.NewOrder(domain.NewOrderInput{
		ID:                 orderIDPrefix + s.newID(),
		Customer:           customer,
		Items:              items,
		ShippingMethod:     cmd.Options.ShippingMethod,
		InvoiceRequested:   cmd.Options.InvoiceRequested,
		InsuranceRequested: cmd.Options.InsuranceRequested,
		SellerID:           sellerID,
		Note:               noteFromOverride(cmd.Override.Note),
		Now:                now,
	})
	if s.legacyPlaced {
		order.Status = domain.OrderStatusPlaced
		order.History = append(order.History, domain.StatusChange{Status: domain.OrderStatusPlaced, At: now})
	}

	totals, err := ComputeTotals(domain.PricingInputFromOrder(order))
	if err != nil {
		return Order{}, fmt.Errorf("%w: %v", ErrCheckoutInvalidInput, err)
	}
	order.Totals = totals

	number, err := s.generateOrderNumber(ctx, now)
	if err != nil {
		return Order{}, err
	}
	order.Number = number

	if err := s.orders.Insert(ctx, order); err != nil {
		return Order{}, fmt.Errorf("%w: %v", ErrCheckoutPersistence, err)
	}

	if err := s.carts.Clear(ctx, userID); err != nil {
		// The order exists; losing the clear only means the customer sees a
		// stale cart until the next write.
		s.logger(ctx, "checkout.cart.clear.failed", map[string]any{
			"userId": userID,
			"order":  order.ID,
			"error":  err.Error(),
		})
	}

	s.publishEvent(ctx, OrderEvent{
		Type:       domain.OrderEventCreated,
		OrderID:    order.ID,
		Number:     order.Number,
		Status:     order.Status,
		SellerID:   order.SellerID,
		OccurredAt: now,
	})

	return order, nil
}

func (s *checkoutService) loadProfile(ctx context.Context, userID string) (UserProfile, error) {
	profile, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			// First-time customers may check out before a profile document
			// exists; every field then comes from the override or stays blank.
			return UserProfile{ID: userID}, nil
		}
		return UserProfile{}, s.translateRepositoryError(err)
	}
	return profile, nil
}

// resolveCustomer builds the order's customer snapshot. Each field resolves
// independently: explicit override first, then the stored profile, then blank.
func (s *checkoutService) resolveCustomer(ctx context.Context, userID string, profile UserProfile, override CheckoutOverride) (OrderCustomer, error) {
	var stored domain.Address
	if profile.Address != nil {
		stored = *profile.Address
	}

	customer := OrderCustomer{
		UserID:     userID,
		Name:       pickField(override.Name, profile.DisplayName),
		Phone:      pickField(override.Phone, profile.Phone),
		PostalCode: pickField(override.PostalCode, stored.PostalCode),
		City:       pickField(override.City, stored.City),
		Street:     pickField(override.Street, stored.Street),
		Number:     pickField(override.Number, stored.Number),
		District:   pickField(override.District, stored.District),
	}
	if c := trimmedPtr(override.Complement); c != nil {
		customer.Complement = c
	} else {
		customer.Complement = cloneStringPtr(stored.Complement)
	}

	if customer.Name == "" {
		return OrderCustomer{}, fmt.Errorf("%w: customer name is required", ErrCheckoutInvalidInput)
	}

	s.fillFromPostalCode(ctx, &customer)

	return customer, nil
}

// fillFromPostalCode consults the postal lookup for blanks left after the
// override/profile merge. Lookup failures never block checkout.
func (s *checkoutService) fillFromPostalCode(ctx context.Context, customer *OrderCustomer) {
	if s.lookup == nil || customer.PostalCode == "" {
		return
	}
	if customer.City != "" && customer.Street != "" && customer.District != "" {
		return
	}

	resolved, err := s.lookup.Resolve(ctx, customer.PostalCode)
	if err != nil {
		s.logger(ctx, "checkout.address.lookup.failed", map[string]any{
			"postalCode": customer.PostalCode,
			"error":      err.Error(),
		})
		return
	}
	if resolved == nil {
		return
	}

	if customer.City == "" {
		customer.City = resolved.City
	}
	if customer.Street == "" {
		customer.Street = resolved.Street
	}
	if customer.District == "" {
		customer.District = resolved.District
	}
}

func (s *checkoutService) snapshotItems(ctx context.Context, items []CartItem) ([]domain.LineItem, error) {
	lines := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		productID := strings.TrimSpace(item.ProductID)
		if productID == "" {
			continue
		}

		product, err := s.catalog.GetProduct(ctx, productID)
		if err != nil {
			if isNotFound(err) {
				return nil, fmt.Errorf("%w: product %s no longer exists", ErrCheckoutInvalidInput, productID)
			}
			return nil, s.translateRepositoryError(err)
		}

		lines = append(lines, domain.LineItem{
			ProductID: product.ID,
			Name:      product.Name,
			ImageURL:  cloneStringPtr(product.ImageURL),
			UnitPrice: product.Price,
			Quantity:  item.Quantity,
		})
	}
	return lines, nil
}

func (s *checkoutService) generateOrderNumber(ctx context.Context, now time.Time) (string, error) {
	seq, err := s.counters.Next(ctx, orderNumberCounter, 1)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCheckoutPersistence, err)
	}
	return fmt.Sprintf("VZ-%04d-%06d", now.Year(), seq), nil
}

func (s *checkoutService) translateRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsUnavailable():
			return fmt.Errorf("%w: %v", ErrCheckoutUnavailable, err)
		case repoErr.IsConflict():
			return fmt.Errorf("%w: %v", ErrCheckoutPersistence, err)
		}
	}
	return err
}

func (s *checkoutService) publishEvent(ctx context.Context, event OrderEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderEvent(ctx, event); err != nil {
		s.logger(ctx, "order.event.publish.failed", map[string]any{
			"type":  string(event.Type),
			"order": event.OrderID,
			"error": err.Error(),
		})
	}
}

func noteFromOverride(note *string) *string {
	if note == nil {
		return nil
	}
	return optionalString(sanitizeFreeText(*note))
}

func validShippingMethod(method domain.ShippingMethod) bool {
	switch method {
	case domain.ShippingMethodPAC, domain.ShippingMethodSedex, domain.ShippingMethodCourier, domain.ShippingMethodPickup:
		return true
	}
	return false
}

func pickField(override *string, fallback string) string {
	if override != nil {
		if trimmed := strings.TrimSpace(*override); trimmed != "" {
			return trimmed
		}
	}
	return strings.TrimSpace(fallback)
}

func isNotFound(err error) bool {
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}
