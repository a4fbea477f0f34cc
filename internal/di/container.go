package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vitrinezap/api/internal/platform/config"
	"github.com/vitrinezap/api/internal/platform/observability"
	"github.com/vitrinezap/api/internal/repositories"
	"github.com/vitrinezap/api/internal/services"
)

// Services bundles the service-layer contracts that handlers rely upon. Concrete implementations
// are assembled via dependency injection in NewContainer.
type Services struct {
	Cart     services.CartService
	Checkout services.CheckoutService
	Orders   services.OrderService
	Users    services.UserService
	System   services.SystemService
}

// Container wires repositories, services, and background infrastructure for runtime use.
type Container struct {
	Config       config.Config
	Repositories repositories.Registry
	Services     Services
}

// ContainerOption customises optional collaborators before service construction.
type ContainerOption func(*containerDeps)

type containerDeps struct {
	events  services.OrderEventPublisher
	lookup  services.AddressResolver
	version string
	clock   func() time.Time
}

// WithOrderEvents wires the publisher used for order lifecycle events.
func WithOrderEvents(events services.OrderEventPublisher) ContainerOption {
	return func(deps *containerDeps) {
		deps.events = events
	}
}

// WithAddressResolver wires the postal code resolver used during checkout.
func WithAddressResolver(lookup services.AddressResolver) ContainerOption {
	return func(deps *containerDeps) {
		deps.lookup = lookup
	}
}

// WithVersion records the build version surfaced by health endpoints.
func WithVersion(version string) ContainerOption {
	return func(deps *containerDeps) {
		deps.version = version
	}
}

// WithClock overrides the time source used by every service, primarily for tests.
func WithClock(clock func() time.Time) ContainerOption {
	return func(deps *containerDeps) {
		if clock != nil {
			deps.clock = clock
		}
	}
}

// NewContainer constructs the runtime dependencies. Production wiring provides real
// implementations, while tests can supply in-memory registries.
func NewContainer(ctx context.Context, cfg config.Config, reg repositories.Registry, opts ...ContainerOption) (*Container, error) {
	if reg == nil {
		return nil, errors.New("repositories registry is required")
	}

	deps := containerDeps{clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&deps)
		}
	}

	svc, err := buildServices(cfg, reg, deps)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:       cfg,
		Repositories: reg,
		Services:     svc,
	}, nil
}

// Close releases resources such as repository clients, background workers, or caches.
func (c *Container) Close(ctx context.Context) error {
	if c == nil || c.Repositories == nil {
		return nil
	}
	return c.Repositories.Close(ctx)
}

func buildServices(cfg config.Config, reg repositories.Registry, deps containerDeps) (Services, error) {
	var svc Services

	location, err := cfg.Store.Location()
	if err != nil {
		return Services{}, fmt.Errorf("resolve store timezone: %w", err)
	}

	var events services.OrderEventPublisher
	if cfg.Features.EnableOrderEvents {
		events = deps.events
	}

	userSvc, err := services.NewUserService(services.UserServiceDeps{
		Users: reg.Users(),
		Clock: deps.clock,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build user service: %w", err)
	}
	svc.Users = userSvc

	cartSvc, err := services.NewCartService(services.CartServiceDeps{
		Carts:   reg.Carts(),
		Catalog: reg.Catalog(),
		Clock:   deps.clock,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build cart service: %w", err)
	}
	svc.Cart = cartSvc

	orderSvc, err := services.NewOrderService(services.OrderServiceDeps{
		Orders:   reg.Orders(),
		Catalog:  reg.Catalog(),
		Clock:    deps.clock,
		Location: location,
		Events:   events,
		Logger:   serviceLogger,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build order service: %w", err)
	}
	svc.Orders = orderSvc

	checkoutSvc, err := services.NewCheckoutService(services.CheckoutServiceDeps{
		Orders:   reg.Orders(),
		Carts:    reg.Carts(),
		Users:    reg.Users(),
		Catalog:  reg.Catalog(),
		Counters: reg.Counters(),
		Lookup:   deps.lookup,
		Clock:    deps.clock,
		Events:   events,
		Logger:   serviceLogger,

		LegacyPlacedHop: cfg.Features.EnableLegacyPlaced,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build checkout service: %w", err)
	}
	svc.Checkout = checkoutSvc

	if healthRepo := reg.Health(); healthRepo != nil {
		systemSvc, err := services.NewSystemService(services.SystemServiceDeps{
			Health:      healthRepo,
			Version:     deps.version,
			Environment: cfg.Environment,
			StartedAt:   deps.clock().UTC(),
			Clock:       deps.clock,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build system service: %w", err)
		}
		svc.System = systemSvc
	}

	return svc, nil
}

// serviceLogger bridges service-level structured events onto the request logger.
func serviceLogger(ctx context.Context, event string, fields map[string]any) {
	logger := observability.FromContext(ctx)
	if logger == nil {
		return
	}
	zapFields := make([]zap.Field, 0, len(fields))
	for key, value := range fields {
		zapFields = append(zapFields, zap.Any(key, value))
	}
	logger.Info(event, zapFields...)
}
