package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/vitrinezap/api/internal/domain"
)

func newTestCartService(t *testing.T, carts *stubCartRepository, catalog *stubCatalogRepository) CartService {
	t.Helper()
	if catalog == nil {
		catalog = &stubCatalogRepository{
			getFunc: func(ctx context.Context, productID string) (domain.Product, error) {
				return domain.Product{ID: productID, Name: "Caneca", Price: 3500, Active: true}, nil
			},
		}
	}
	service, err := NewCartService(CartServiceDeps{
		Carts:   carts,
		Catalog: catalog,
		Clock:   func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("unexpected error constructing cart service: %v", err)
	}
	return service
}

func TestCartServiceGetCartReturnsEmptyCartWhenMissing(t *testing.T) {
	carts := &stubCartRepository{
		getFunc: func(ctx context.Context, userID string) (domain.Cart, error) {
			return domain.Cart{}, &repositoryErrorStub{notFound: true}
		},
	}
	service := newTestCartService(t, carts, nil)

	cart, err := service.GetCart(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.UserID != "user_1" {
		t.Fatalf("expected cart scoped to user_1, got %q", cart.UserID)
	}
	if cart.Items == nil || len(cart.Items) != 0 {
		t.Fatalf("expected empty non-nil items, got %v", cart.Items)
	}
}

func TestCartServiceAddItemSetsQuantity(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	var saved domain.Cart
	carts := &stubCartRepository{
		getFunc: func(ctx context.Context, userID string) (domain.Cart, error) {
			return domain.Cart{
				ID:     userID,
				UserID: userID,
				Items: []domain.CartItem{
					{ProductID: "prod_1", Quantity: 1, AddedAt: now.Add(-time.Hour)},
				},
			}, nil
		},
		saveFunc: func(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
			saved = cart
			return cart, nil
		},
	}
	service := newTestCartService(t, carts, nil)

	cart, err := service.AddItem(context.Background(), UpsertCartItemCommand{
		UserID:    "user_1",
		ProductID: "prod_1",
		Quantity:  3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Re-adding replaces the quantity instead of accumulating it.
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity set to 3, got %+v", cart.Items)
	}
	if saved.UserID != "user_1" {
		t.Fatalf("expected save for user_1, got %q", saved.UserID)
	}
	if !saved.UpdatedAt.Equal(now) {
		t.Fatalf("expected UpdatedAt %v, got %v", now, saved.UpdatedAt)
	}
}

func TestCartServiceAddItemAppendsNewLine(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	carts := &stubCartRepository{
		getFunc: func(ctx context.Context, userID string) (domain.Cart, error) {
			return domain.Cart{}, &repositoryErrorStub{notFound: true}
		},
		saveFunc: func(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
			return cart, nil
		},
	}
	service := newTestCartService(t, carts, nil)

	cart, err := service.AddItem(context.Background(), UpsertCartItemCommand{
		UserID:    "user_1",
		ProductID: "prod_2",
		Quantity:  1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected one item, got %d", len(cart.Items))
	}
	if cart.Items[0].ProductID != "prod_2" || !cart.Items[0].AddedAt.Equal(now) {
		t.Fatalf("unexpected item %+v", cart.Items[0])
	}
}

func TestCartServiceAddItemRejectsUnavailableProduct(t *testing.T) {
	carts := &stubCartRepository{}

	missing := &stubCatalogRepository{
		getFunc: func(ctx context.Context, productID string) (domain.Product, error) {
			return domain.Product{}, &repositoryErrorStub{notFound: true}
		},
	}
	service := newTestCartService(t, carts, missing)
	_, err := service.AddItem(context.Background(), UpsertCartItemCommand{UserID: "user_1", ProductID: "prod_x", Quantity: 1})
	if !errors.Is(err, ErrCartProductUnavailable) {
		t.Fatalf("expected ErrCartProductUnavailable for missing product, got %v", err)
	}

	inactive := &stubCatalogRepository{
		getFunc: func(ctx context.Context, productID string) (domain.Product, error) {
			return domain.Product{ID: productID, Name: "Descontinuado", Price: 900, Active: false}, nil
		},
	}
	service = newTestCartService(t, carts, inactive)
	_, err = service.AddItem(context.Background(), UpsertCartItemCommand{UserID: "user_1", ProductID: "prod_x", Quantity: 1})
	if !errors.Is(err, ErrCartProductUnavailable) {
		t.Fatalf("expected ErrCartProductUnavailable for inactive product, got %v", err)
	}
}

func TestCartServiceAddItemValidatesQuantity(t *testing.T) {
	service := newTestCartService(t, &stubCartRepository{}, nil)

	for _, quantity := range []int{0, -1, 1000} {
		_, err := service.AddItem(context.Background(), UpsertCartItemCommand{
			UserID:    "user_1",
			ProductID: "prod_1",
			Quantity:  quantity,
		})
		if !errors.Is(err, ErrCartInvalidInput) {
			t.Errorf("quantity %d: expected ErrCartInvalidInput, got %v", quantity, err)
		}
	}
}

func TestCartServiceRemoveItemFiltersLine(t *testing.T) {
	carts := &stubCartRepository{
		getFunc: func(ctx context.Context, userID string) (domain.Cart, error) {
			return domain.Cart{
				ID:     userID,
				UserID: userID,
				Items: []domain.CartItem{
					{ProductID: "prod_1", Quantity: 2},
					{ProductID: "prod_2", Quantity: 1},
				},
			}, nil
		},
		saveFunc: func(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
			return cart, nil
		},
	}
	service := newTestCartService(t, carts, nil)

	cart, err := service.RemoveItem(context.Background(), RemoveCartItemCommand{UserID: "user_1", ProductID: "prod_1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].ProductID != "prod_2" {
		t.Fatalf("expected only prod_2 left, got %+v", cart.Items)
	}
}

func TestCartServiceClearCartToleratesMissingCart(t *testing.T) {
	carts := &stubCartRepository{
		clearFunc: func(ctx context.Context, userID string) error {
			return &repositoryErrorStub{notFound: true}
		},
	}
	service := newTestCartService(t, carts, nil)

	if err := service.ClearCart(context.Background(), "user_1"); err != nil {
		t.Fatalf("expected missing cart to clear cleanly, got %v", err)
	}
}

func TestCartServiceTranslatesUnavailableStore(t *testing.T) {
	carts := &stubCartRepository{
		getFunc: func(ctx context.Context, userID string) (domain.Cart, error) {
			return domain.Cart{}, &repositoryErrorStub{unavailable: true}
		},
	}
	service := newTestCartService(t, carts, nil)

	_, err := service.GetCart(context.Background(), "user_1")
	if !errors.Is(err, ErrCartUnavailable) {
		t.Fatalf("expected ErrCartUnavailable, got %v", err)
	}
}
