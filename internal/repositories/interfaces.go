package repositories

import (
	"context"
	"time"

	domain "github.com/vitrinezap/api/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Orders() OrderRepository
	Carts() CartRepository
	Users() UserRepository
	Catalog() CatalogRepository
	Counters() CounterRepository
	Health() HealthRepository
	UnitOfWork
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// UnitOfWork allows grouping repository operations in a transactional boundary when supported.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// OrderRepository persists order documents. Writes after creation go through
// Merge so concurrent editors only touch the fields their intent names; the
// store resolves overlapping writes last-write-wins per field.
type OrderRepository interface {
	Insert(ctx context.Context, order domain.Order) error
	Merge(ctx context.Context, orderID string, mutation OrderMutation) error
	FindByID(ctx context.Context, orderID string) (domain.Order, error)
	Delete(ctx context.Context, orderID string) error
	List(ctx context.Context, filter OrderListFilter) ([]domain.Order, error)
	// Watch streams the full matching order set on every snapshot change until
	// ctx is done. fn must not retain the slice across calls.
	Watch(ctx context.Context, filter OrderListFilter, fn func([]domain.Order)) error
}

// OrderMutation carries the optional field groups a single edit intent may
// touch. Nil pointers leave the stored value untouched. History entries are
// appended via an additive union, never replaced.
type OrderMutation struct {
	Items              *[]domain.LineItem
	Discount           *int64
	ShippingCost       *int64
	ShippingMethod     *domain.ShippingMethod
	InvoiceRequested   *bool
	InsuranceRequested *bool
	Customer           *domain.OrderCustomer
	Status             *domain.OrderStatus
	Note               *string
	TrackingCode       *string
	InvoiceDocumentRef *string
	Totals             *domain.OrderTotals
	DeliveredAt        *time.Time
	AppendHistory      []domain.StatusChange
	UpdatedAt          time.Time
}

// OrderListFilter narrows order listings at the store level. Projection logic
// beyond these fields (text search, date buckets) runs in memory.
type OrderListFilter struct {
	SellerID *string
	Status   []domain.OrderStatus
}

// CartRepository owns per-user cart persistence.
type CartRepository interface {
	Get(ctx context.Context, userID string) (domain.Cart, error)
	Save(ctx context.Context, cart domain.Cart) (domain.Cart, error)
	Clear(ctx context.Context, userID string) error
}

// UserRepository stores customer profiles read at checkout time.
type UserRepository interface {
	FindByID(ctx context.Context, userID string) (domain.UserProfile, error)
	UpdateProfile(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error)
}

// CatalogRepository exposes read-only product data used to snapshot line items.
type CatalogRepository interface {
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
}

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	ActiveOnly bool
}

// CounterRepository provides transaction-safe sequence numbers.
type CounterRepository interface {
	Next(ctx context.Context, counterID string, step int64) (int64, error)
	Configure(ctx context.Context, counterID string, cfg CounterConfig) error
}

// CounterConfig customises increment behaviour and bounds for a counter.
type CounterConfig struct {
	Step         int64
	MaxValue     *int64
	InitialValue *int64
}

// HealthRepository exposes status of downstream dependencies for health checks.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.SystemHealthReport, error)
}
