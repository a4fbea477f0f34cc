package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"

	pfirestore "github.com/vitrinezap/api/internal/platform/firestore"
	"github.com/vitrinezap/api/internal/repositories"
)

// Registry wires all Firestore-backed repositories behind the
// repositories.Registry interface for dependency injection.
type Registry struct {
	provider *pfirestore.Provider
	orders   *OrderRepository
	carts    *CartRepository
	users    *UserRepository
	catalog  *CatalogRepository
	counters *CounterRepository
	health   repositories.HealthRepository
}

// NewRegistry constructs every repository against the shared provider. The
// health repository is optional; when nil the registry's Health accessor
// returns nil and callers must probe dependencies themselves.
func NewRegistry(provider *pfirestore.Provider, health repositories.HealthRepository) (*Registry, error) {
	if provider == nil {
		return nil, errors.New("registry requires firestore provider")
	}

	orders, err := NewOrderRepository(provider)
	if err != nil {
		return nil, err
	}
	carts, err := NewCartRepository(provider)
	if err != nil {
		return nil, err
	}
	users, err := NewUserRepository(provider)
	if err != nil {
		return nil, err
	}
	catalog, err := NewCatalogRepository(provider)
	if err != nil {
		return nil, err
	}
	counters, err := NewCounterRepository(provider)
	if err != nil {
		return nil, err
	}

	return &Registry{
		provider: provider,
		orders:   orders,
		carts:    carts,
		users:    users,
		catalog:  catalog,
		counters: counters,
		health:   health,
	}, nil
}

// Close releases the underlying Firestore client.
func (r *Registry) Close(ctx context.Context) error {
	if r == nil || r.provider == nil {
		return nil
	}
	return r.provider.Close(ctx)
}

func (r *Registry) Orders() repositories.OrderRepository     { return r.orders }
func (r *Registry) Carts() repositories.CartRepository       { return r.carts }
func (r *Registry) Users() repositories.UserRepository       { return r.users }
func (r *Registry) Catalog() repositories.CatalogRepository  { return r.catalog }
func (r *Registry) Counters() repositories.CounterRepository { return r.counters }
func (r *Registry) Health() repositories.HealthRepository    { return r.health }

// RunInTx executes fn inside a Firestore transaction retry loop. Order
// mutations deliberately stay outside transactions; this exists for callers
// that need counter-style read-modify-write safety.
func (r *Registry) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if r == nil || r.provider == nil {
		return errors.New("registry not initialised")
	}
	return r.provider.RunTransaction(ctx, func(ctx context.Context, _ *firestore.Transaction) error {
		return fn(ctx)
	})
}

var _ repositories.Registry = (*Registry)(nil)
