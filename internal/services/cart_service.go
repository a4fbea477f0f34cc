package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/vitrinezap/api/internal/domain"
	"github.com/vitrinezap/api/internal/repositories"
)

const maxCartItemQuantity = 999

var (
	// ErrCartInvalidInput indicates the caller supplied invalid cart data.
	ErrCartInvalidInput = errors.New("cart: invalid input")
	// ErrCartProductUnavailable indicates the referenced product is missing or inactive.
	ErrCartProductUnavailable = errors.New("cart: product unavailable")
	// ErrCartUnavailable indicates the cart store is currently unreachable.
	ErrCartUnavailable = errors.New("cart: unavailable")
)

// CartServiceDeps bundles collaborators for the cart service.
type CartServiceDeps struct {
	Carts   repositories.CartRepository
	Catalog repositories.CatalogRepository
	Clock   func() time.Time
}

type cartService struct {
	carts   repositories.CartRepository
	catalog repositories.CatalogRepository
	clock   func() time.Time
}

// NewCartService constructs a CartService validating required dependencies.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Carts == nil {
		return nil, errors.New("cart service: cart repository is required")
	}
	if deps.Catalog == nil {
		return nil, errors.New("cart service: catalog repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &cartService{
		carts:   deps.Carts,
		catalog: deps.Catalog,
		clock: func() time.Time {
			return clock().UTC()
		},
	}, nil
}

func (s *cartService) GetCart(ctx context.Context, userID string) (Cart, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Cart{}, fmt.Errorf("%w: user id is required", ErrCartInvalidInput)
	}

	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return domain.Cart{ID: userID, UserID: userID, Items: []domain.CartItem{}}, nil
		}
		return Cart{}, s.translateError(err)
	}
	return cart, nil
}

func (s *cartService) AddItem(ctx context.Context, cmd UpsertCartItemCommand) (Cart, error) {
	userID := strings.TrimSpace(cmd.UserID)
	productID := strings.TrimSpace(cmd.ProductID)
	if userID == "" || productID == "" {
		return Cart{}, fmt.Errorf("%w: user id and product id are required", ErrCartInvalidInput)
	}
	if cmd.Quantity <= 0 || cmd.Quantity > maxCartItemQuantity {
		return Cart{}, fmt.Errorf("%w: quantity must be between 1 and %d", ErrCartInvalidInput, maxCartItemQuantity)
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		if isNotFound(err) {
			return Cart{}, fmt.Errorf("%w: product %s", ErrCartProductUnavailable, productID)
		}
		return Cart{}, s.translateError(err)
	}
	if !product.Active {
		return Cart{}, fmt.Errorf("%w: product %s is inactive", ErrCartProductUnavailable, productID)
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return Cart{}, err
	}

	now := s.clock()
	updated := false
	for i, item := range cart.Items {
		if item.ProductID == productID {
			cart.Items[i].Quantity = cmd.Quantity
			updated = true
			break
		}
	}
	if !updated {
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID: productID,
			Quantity:  cmd.Quantity,
			AddedAt:   now,
		})
	}
	cart.UpdatedAt = now

	saved, err := s.carts.Save(ctx, cart)
	if err != nil {
		return Cart{}, s.translateError(err)
	}
	return saved, nil
}

func (s *cartService) RemoveItem(ctx context.Context, cmd RemoveCartItemCommand) (Cart, error) {
	userID := strings.TrimSpace(cmd.UserID)
	productID := strings.TrimSpace(cmd.ProductID)
	if userID == "" || productID == "" {
		return Cart{}, fmt.Errorf("%w: user id and product id are required", ErrCartInvalidInput)
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return Cart{}, err
	}

	items := make([]domain.CartItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}
	cart.Items = items
	cart.UpdatedAt = s.clock()

	saved, err := s.carts.Save(ctx, cart)
	if err != nil {
		return Cart{}, s.translateError(err)
	}
	return saved, nil
}

func (s *cartService) ClearCart(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrCartInvalidInput)
	}
	if err := s.carts.Clear(ctx, userID); err != nil && !isNotFound(err) {
		return s.translateError(err)
	}
	return nil
}

func (s *cartService) translateError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) && repoErr.IsUnavailable() {
		return fmt.Errorf("%w: %v", ErrCartUnavailable, err)
	}
	return err
}
