package domain

import (
	"time"
)

// OrderStatus enumerates valid lifecycle states for orders. Wire values are kept
// in Portuguese for compatibility with the existing storefront documents.
type OrderStatus string

const (
	// OrderStatusQuote indicates the order is a fresh quote produced by checkout.
	OrderStatusQuote OrderStatus = "orcamento"
	// OrderStatusPlaced indicates the quote was confirmed by the customer. Legacy
	// intermediate state; checkout may skip straight to pending payment.
	OrderStatusPlaced OrderStatus = "realizado"
	// OrderStatusPendingPayment indicates the order awaits manual payment confirmation.
	OrderStatusPendingPayment OrderStatus = "pagamento_pendente"
	// OrderStatusPreparation indicates payment was confirmed and the order is being packed.
	OrderStatusPreparation OrderStatus = "preparacao"
	// OrderStatusInTransit indicates the order has been handed to the carrier.
	OrderStatusInTransit OrderStatus = "transporte"
	// OrderStatusDelivered indicates the order reached the customer. Terminal.
	OrderStatusDelivered OrderStatus = "entregue"
	// OrderStatusCanceled indicates the order was canceled. Terminal.
	OrderStatusCanceled OrderStatus = "cancelado"
	// OrderStatusReturned indicates the order was returned by the customer. Terminal.
	OrderStatusReturned OrderStatus = "devolucao"
)

// ShippingMethod enumerates how an order is delivered to the customer.
type ShippingMethod string

const (
	// ShippingMethodPAC is the economy postal service option.
	ShippingMethodPAC ShippingMethod = "pac"
	// ShippingMethodSedex is the express postal service option.
	ShippingMethodSedex ShippingMethod = "sedex"
	// ShippingMethodCourier is local same-day courier delivery.
	ShippingMethodCourier ShippingMethod = "motoboy"
	// ShippingMethodPickup means the customer collects the order in person.
	ShippingMethodPickup ShippingMethod = "retirada"
)

// StatusChange records one entry of an order's append-only status history.
type StatusChange struct {
	Status OrderStatus
	At     time.Time
}

// LineItem mirrors a catalog product at the time it entered the order.
type LineItem struct {
	ProductID string
	Name      string
	ImageURL  *string
	UnitPrice int64
	Quantity  int
}

// OrderCustomer is the customer snapshot embedded in each order. Edits to the
// customer profile never propagate here.
type OrderCustomer struct {
	UserID     string
	Name       string
	Phone      string
	PostalCode string
	City       string
	Street     string
	Number     string
	District   string
	Complement *string
}

// Order captures the full order document shared across layers.
type Order struct {
	ID                 string
	Number             string
	Customer           OrderCustomer
	Items              []LineItem
	Discount           int64
	ShippingCost       int64
	ShippingMethod     ShippingMethod
	InvoiceRequested   bool
	InsuranceRequested bool
	Totals             OrderTotals
	SellerID           *string
	Status             OrderStatus
	Note               *string
	TrackingCode       *string
	InvoiceDocumentRef *string
	History            []StatusChange
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeliveredAt        *time.Time
}

// NewOrderInput carries the caller-supplied parts of a fresh order. Everything
// else starts from the defaults applied in NewOrder.
type NewOrderInput struct {
	ID                 string
	Customer           OrderCustomer
	Items              []LineItem
	ShippingMethod     ShippingMethod
	InvoiceRequested   bool
	InsuranceRequested bool
	SellerID           *string
	Note               *string
	Now                time.Time
}

// NewOrder mints a quote order with every default populated in one place:
// status orcamento with its history seeded, shipping method falling back to
// PAC, discount and shipping cost zero until staff assign them.
func NewOrder(in NewOrderInput) Order {
	method := in.ShippingMethod
	if method == "" {
		method = ShippingMethodPAC
	}
	return Order{
		ID:                 in.ID,
		Customer:           in.Customer,
		Items:              in.Items,
		ShippingMethod:     method,
		InvoiceRequested:   in.InvoiceRequested,
		InsuranceRequested: in.InsuranceRequested,
		SellerID:           in.SellerID,
		Status:             OrderStatusQuote,
		Note:               in.Note,
		History:            []StatusChange{{Status: OrderStatusQuote, At: in.Now}},
		CreatedAt:          in.Now,
		UpdatedAt:          in.Now,
	}
}

// Terminal reports whether the order can no longer change status.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCanceled, OrderStatusReturned:
		return true
	default:
		return false
	}
}

// CartItem stores a single product reference within a cart. Prices are not
// snapshotted here; checkout reads them from the catalog.
type CartItem struct {
	ProductID string
	Quantity  int
	AddedAt   time.Time
}

// Cart aggregates the mutable shopping cart state for a user.
type Cart struct {
	ID        string
	UserID    string
	Items     []CartItem
	UpdatedAt time.Time
}

// Address represents the postal address shape shared by user profiles and
// checkout overrides.
type Address struct {
	PostalCode string
	City       string
	Street     string
	Number     string
	District   string
	Complement *string
}

// UserProfile captures the canonical projection of a storefront user.
type UserProfile struct {
	ID          string
	DisplayName string
	Phone       string
	Address     *Address
	Roles       []string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Product represents catalog data read at checkout time.
type Product struct {
	ID        string
	Name      string
	Price     int64
	ImageURL  *string
	Active    bool
	UpdatedAt time.Time
}

// DateBucket groups orders by calendar day relative to the store's timezone.
type DateBucket string

const (
	// DateBucketToday holds orders created on the current calendar day.
	DateBucketToday DateBucket = "today"
	// DateBucketYesterday holds orders created on the previous calendar day.
	DateBucketYesterday DateBucket = "yesterday"
	// DateBucketOlder holds everything before yesterday.
	DateBucketOlder DateBucket = "older"
)

// OrderEventType enumerates lifecycle events published to the notification topic.
type OrderEventType string

const (
	// OrderEventCreated is published once when checkout persists a new order.
	OrderEventCreated OrderEventType = "order.created"
	// OrderEventStatusChanged is published on every successful status transition.
	OrderEventStatusChanged OrderEventType = "order.status_changed"
	// OrderEventDeleted is published when an admin removes an order.
	OrderEventDeleted OrderEventType = "order.deleted"
)

// OrderEvent is the payload published for downstream notification consumers.
type OrderEvent struct {
	Type       OrderEventType
	OrderID    string
	Number     string
	Status     OrderStatus
	SellerID   *string
	OccurredAt time.Time
}

const (
	// HealthStatusOK indicates all dependencies are healthy.
	HealthStatusOK = "ok"
	// HealthStatusDegraded indicates at least one dependency is degraded but service remains running.
	HealthStatusDegraded = "degraded"
	// HealthStatusError indicates the service or a critical dependency is unavailable.
	HealthStatusError = "error"
)

// SystemHealthCheck describes the outcome of an individual dependency probe.
type SystemHealthCheck struct {
	Status    string
	Detail    string
	Error     string
	Latency   time.Duration
	CheckedAt time.Time
}

// SystemHealthReport aggregates dependency status for health endpoints.
type SystemHealthReport struct {
	Status      string
	Checks      map[string]SystemHealthCheck
	Version     string
	Environment string
	Uptime      time.Duration
	GeneratedAt time.Time
}
