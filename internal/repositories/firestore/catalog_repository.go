package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/vitrinezap/api/internal/domain"
	pfirestore "github.com/vitrinezap/api/internal/platform/firestore"
	"github.com/vitrinezap/api/internal/repositories"
)

const productsCollection = "products"

// CatalogRepository exposes read access to the product catalog. Checkout and
// cart validation read from here; catalog writes happen outside this service.
type CatalogRepository struct {
	base *pfirestore.BaseRepository[productDocument]
}

// NewCatalogRepository constructs a Firestore-backed catalog repository.
func NewCatalogRepository(provider *pfirestore.Provider) (*CatalogRepository, error) {
	if provider == nil {
		return nil, errors.New("catalog repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[productDocument](provider, productsCollection, nil, nil)
	return &CatalogRepository{base: base}, nil
}

// GetProduct loads a single product by ID.
func (r *CatalogRepository) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	if r == nil || r.base == nil {
		return domain.Product{}, errors.New("catalog repository not initialised")
	}

	doc, err := r.base.Get(ctx, strings.TrimSpace(productID))
	if err != nil {
		return domain.Product{}, err
	}
	return toDomainProduct(doc.ID, doc.Data), nil
}

// ListProducts fetches catalog entries, optionally restricted to active ones.
func (r *CatalogRepository) ListProducts(ctx context.Context, filter repositories.ProductFilter) ([]domain.Product, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("catalog repository not initialised")
	}

	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		if filter.ActiveOnly {
			query = query.Where("active", "==", true)
		}
		return query.OrderBy("name", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, toDomainProduct(doc.ID, doc.Data))
	}
	return products, nil
}

type productDocument struct {
	Name      string    `firestore:"name"`
	Price     int64     `firestore:"price"`
	ImageURL  *string   `firestore:"imageUrl,omitempty"`
	Active    bool      `firestore:"active"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

func toDomainProduct(id string, doc productDocument) domain.Product {
	return domain.Product{
		ID:        id,
		Name:      strings.TrimSpace(doc.Name),
		Price:     doc.Price,
		ImageURL:  cloneTrimmedPtr(doc.ImageURL),
		Active:    doc.Active,
		UpdatedAt: doc.UpdatedAt,
	}
}

var _ repositories.CatalogRepository = (*CatalogRepository)(nil)
