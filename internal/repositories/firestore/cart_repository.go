package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "github.com/vitrinezap/api/internal/domain"
	pfirestore "github.com/vitrinezap/api/internal/platform/firestore"
	"github.com/vitrinezap/api/internal/repositories"
)

const cartsCollection = "carts"

// CartRepository persists per-user shopping carts. Carts are keyed by the
// owning user's UID so a user has at most one active cart.
type CartRepository struct {
	base *pfirestore.BaseRepository[cartDocument]
}

// NewCartRepository constructs a Firestore-backed cart repository.
func NewCartRepository(provider *pfirestore.Provider) (*CartRepository, error) {
	if provider == nil {
		return nil, errors.New("cart repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[cartDocument](provider, cartsCollection, nil, nil)
	return &CartRepository{base: base}, nil
}

// Get loads the cart owned by userID.
func (r *CartRepository) Get(ctx context.Context, userID string) (domain.Cart, error) {
	if r == nil || r.base == nil {
		return domain.Cart{}, errors.New("cart repository not initialised")
	}

	doc, err := r.base.Get(ctx, strings.TrimSpace(userID))
	if err != nil {
		return domain.Cart{}, err
	}
	return toDomainCart(doc.ID, doc.Data), nil
}

// Save upserts the full cart document.
func (r *CartRepository) Save(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
	if r == nil || r.base == nil {
		return domain.Cart{}, errors.New("cart repository not initialised")
	}
	userID := strings.TrimSpace(cart.UserID)
	if userID == "" {
		return domain.Cart{}, errors.New("cart user id is required")
	}

	doc := fromDomainCart(cart)
	if _, err := r.base.Set(ctx, userID, doc); err != nil {
		return domain.Cart{}, err
	}
	return toDomainCart(userID, doc), nil
}

// Clear removes the cart document entirely.
func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	if r == nil || r.base == nil {
		return errors.New("cart repository not initialised")
	}
	_, err := r.base.Delete(ctx, strings.TrimSpace(userID))
	return err
}

type cartDocument struct {
	UserID    string             `firestore:"userId"`
	Items     []cartItemDocument `firestore:"items"`
	UpdatedAt time.Time          `firestore:"updatedAt"`
}

type cartItemDocument struct {
	ProductID string    `firestore:"productId"`
	Quantity  int       `firestore:"quantity"`
	AddedAt   time.Time `firestore:"addedAt"`
}

func fromDomainCart(cart domain.Cart) cartDocument {
	doc := cartDocument{
		UserID:    strings.TrimSpace(cart.UserID),
		Items:     make([]cartItemDocument, 0, len(cart.Items)),
		UpdatedAt: cart.UpdatedAt.UTC(),
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now().UTC()
	}
	for _, item := range cart.Items {
		productID := strings.TrimSpace(item.ProductID)
		if productID == "" || item.Quantity <= 0 {
			continue
		}
		doc.Items = append(doc.Items, cartItemDocument{
			ProductID: productID,
			Quantity:  item.Quantity,
			AddedAt:   item.AddedAt.UTC(),
		})
	}
	return doc
}

func toDomainCart(id string, doc cartDocument) domain.Cart {
	cart := domain.Cart{
		ID:        id,
		UserID:    doc.UserID,
		Items:     make([]domain.CartItem, 0, len(doc.Items)),
		UpdatedAt: doc.UpdatedAt,
	}
	if cart.UserID == "" {
		cart.UserID = id
	}
	for _, item := range doc.Items {
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			AddedAt:   item.AddedAt,
		})
	}
	return cart
}

var _ repositories.CartRepository = (*CartRepository)(nil)
