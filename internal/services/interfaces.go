package services

import (
	"context"
	"slices"
	"time"

	domain "github.com/vitrinezap/api/internal/domain"
	"github.com/vitrinezap/api/internal/repositories"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Order              = domain.Order
	OrderStatus        = domain.OrderStatus
	OrderTotals        = domain.OrderTotals
	OrderCustomer      = domain.OrderCustomer
	StatusChange       = domain.StatusChange
	LineItem           = domain.LineItem
	ShippingMethod     = domain.ShippingMethod
	Cart               = domain.Cart
	CartItem           = domain.CartItem
	Address            = domain.Address
	UserProfile        = domain.UserProfile
	Product            = domain.Product
	DateBucket         = domain.DateBucket
	OrderEvent         = domain.OrderEvent
	SystemHealthReport = domain.SystemHealthReport
)

// Role names carried in authentication claims.
const (
	// RoleAdmin grants unrestricted access to every order operation.
	RoleAdmin = "admin"
	// RoleVendor grants access scoped to orders attributed to the vendor.
	RoleVendor = "vendor"
	// RoleUser is the default customer role.
	RoleUser = "user"
)

// Actor identifies who is performing an operation. Services receive it
// explicitly on every command; there is no ambient session state.
type Actor struct {
	ID    string
	Roles []string
}

// IsAdmin reports whether the actor carries the admin role.
func (a Actor) IsAdmin() bool {
	return slices.Contains(a.Roles, RoleAdmin)
}

// IsVendor reports whether the actor carries the vendor role.
func (a Actor) IsVendor() bool {
	return slices.Contains(a.Roles, RoleVendor)
}

// IsStaff reports whether the actor may operate on orders at all.
func (a Actor) IsStaff() bool {
	return a.IsAdmin() || a.IsVendor()
}

// OrderEventPublisher publishes order lifecycle events for downstream consumers.
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
}

// OrderService encapsulates every order mutation. Each call follows the same
// discipline: fetch the latest document, apply a single intent, recompute the
// totals, and merge-write only the touched fields.
type OrderService interface {
	GetOrder(ctx context.Context, actor Actor, orderID string) (Order, error)
	ListOrders(ctx context.Context, actor Actor, query OrderQuery) (OrderProjection, error)
	TransitionStatus(ctx context.Context, cmd OrderStatusCommand) (Order, error)
	ConfirmPayment(ctx context.Context, cmd OrderActionCommand) (Order, error)
	MarkDelivered(ctx context.Context, cmd OrderActionCommand) (Order, error)
	CancelOrder(ctx context.Context, cmd OrderActionCommand) (Order, error)
	ReturnOrder(ctx context.Context, cmd OrderActionCommand) (Order, error)
	UpdateItems(ctx context.Context, cmd UpdateOrderItemsCommand) (Order, error)
	SetDiscount(ctx context.Context, cmd SetDiscountCommand) (Order, error)
	SetShipping(ctx context.Context, cmd SetShippingCommand) (Order, error)
	SetFeeFlags(ctx context.Context, cmd SetFeeFlagsCommand) (Order, error)
	UpdateCustomerAddress(ctx context.Context, cmd UpdateOrderAddressCommand) (Order, error)
	SetNote(ctx context.Context, cmd SetNoteCommand) (Order, error)
	SetTrackingCode(ctx context.Context, cmd SetTrackingCodeCommand) (Order, error)
	AttachInvoiceDocument(ctx context.Context, cmd AttachInvoiceDocumentCommand) (Order, error)
	DeleteOrder(ctx context.Context, cmd OrderActionCommand) error
	WatchOrders(ctx context.Context, actor Actor, fn func([]Order)) error
}

// CheckoutService converts a customer's cart into a freshly priced order.
type CheckoutService interface {
	Convert(ctx context.Context, cmd CheckoutCommand) (Order, error)
}

// CartService manages per-user cart state.
type CartService interface {
	GetCart(ctx context.Context, userID string) (Cart, error)
	AddItem(ctx context.Context, cmd UpsertCartItemCommand) (Cart, error)
	RemoveItem(ctx context.Context, cmd RemoveCartItemCommand) (Cart, error)
	ClearCart(ctx context.Context, userID string) error
}

// UserService exposes the customer profile surface used by checkout and handlers.
type UserService interface {
	GetProfile(ctx context.Context, userID string) (UserProfile, error)
	UpdateProfile(ctx context.Context, cmd UpdateProfileCommand) (UserProfile, error)
}

// SystemService aggregates utility endpoints (health checks, counters).
type SystemService interface {
	HealthReport(ctx context.Context) (SystemHealthReport, error)
}

// Command and DTO definitions ------------------------------------------------

// CheckoutCommand carries everything the checkout converter needs. Address
// fields set in Override win over the stored profile field-by-field.
type CheckoutCommand struct {
	Actor    Actor
	UserID   string
	Options  CheckoutOptions
	Override CheckoutOverride
}

// CheckoutOptions selects the commercial toggles applied at conversion time.
// Discount and shipping cost are staff-assigned later and always start at zero.
type CheckoutOptions struct {
	// ShippingMethod defaults to PAC when left empty.
	ShippingMethod     ShippingMethod
	InvoiceRequested   bool
	InsuranceRequested bool
}

// CheckoutOverride holds optional per-field form overrides collected at
// checkout time. Nil fields fall back to the stored profile.
type CheckoutOverride struct {
	Name       *string
	Phone      *string
	PostalCode *string
	City       *string
	Street     *string
	Number     *string
	District   *string
	Complement *string
	Note       *string
}

// OrderStatusCommand requests an arbitrary status transition.
type OrderStatusCommand struct {
	Actor        Actor
	OrderID      string
	TargetStatus OrderStatus
}

// OrderActionCommand covers transitions with a fixed target (cancel, return,
// confirm payment, mark delivered) and admin deletion.
type OrderActionCommand struct {
	Actor   Actor
	OrderID string
}

// OrderItemEdit describes one line change. Quantity zero removes the line.
type OrderItemEdit struct {
	ProductID string
	Quantity  int
}

type UpdateOrderItemsCommand struct {
	Actor   Actor
	OrderID string
	Edits   []OrderItemEdit
}

type SetDiscountCommand struct {
	Actor    Actor
	OrderID  string
	Discount int64
}

type SetShippingCommand struct {
	Actor   Actor
	OrderID string
	Cost    int64
	Method  ShippingMethod
}

type SetFeeFlagsCommand struct {
	Actor     Actor
	OrderID   string
	Invoice   *bool
	Insurance *bool
}

type UpdateOrderAddressCommand struct {
	Actor   Actor
	OrderID string
	Address Address
}

type SetNoteCommand struct {
	Actor   Actor
	OrderID string
	Note    string
}

type SetTrackingCodeCommand struct {
	Actor   Actor
	OrderID string
	Code    string
}

type AttachInvoiceDocumentCommand struct {
	Actor       Actor
	OrderID     string
	DocumentRef string
}

type UpsertCartItemCommand struct {
	UserID    string
	ProductID string
	Quantity  int
}

type RemoveCartItemCommand struct {
	UserID    string
	ProductID string
}

type UpdateProfileCommand struct {
	UserID      string
	DisplayName *string
	Phone       *string
	Address     *Address
}

// OrderQuery narrows and shapes order listings.
type OrderQuery struct {
	// Statuses filters to the given states. Empty means the default view:
	// everything except canceled orders.
	Statuses []OrderStatus
	// IncludeCanceled opts canceled orders back into the default view.
	IncludeCanceled bool
	// Search is matched case- and accent-insensitively against customer name,
	// phone, city, item names, and the order id.
	Search string
}

// OrderProjection groups a listing into calendar-day buckets, newest first
// within each bucket.
type OrderProjection struct {
	Today     []Order
	Yesterday []Order
	Older     []Order
}

// Total returns the number of orders across all buckets.
func (p OrderProjection) Total() int {
	return len(p.Today) + len(p.Yesterday) + len(p.Older)
}

// OrderListFilter re-exports the repository filter for handler wiring.
type OrderListFilter = repositories.OrderListFilter

// Clock abstracts time for deterministic tests.
type Clock = func() time.Time
