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

const ordersCollection = "orders"

// OrderRepository persists order documents in Firestore. Mutations after
// creation go through Merge, which only writes the fields the caller set, so
// concurrent editors converge field-by-field instead of clobbering whole
// documents. History appends use an array union and are never rewritten.
type OrderRepository struct {
	base     *pfirestore.BaseRepository[orderDocument]
	provider *pfirestore.Provider
}

// NewOrderRepository constructs a Firestore-backed order repository.
func NewOrderRepository(provider *pfirestore.Provider) (*OrderRepository, error) {
	if provider == nil {
		return nil, errors.New("order repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[orderDocument](provider, ordersCollection, nil, nil)
	return &OrderRepository{base: base, provider: provider}, nil
}

// Insert creates the order document. Inserting an existing ID fails with a
// conflict so checkout never silently overwrites a prior order.
func (r *OrderRepository) Insert(ctx context.Context, order domain.Order) error {
	if r == nil || r.base == nil {
		return errors.New("order repository not initialised")
	}
	if strings.TrimSpace(order.ID) == "" {
		return errors.New("order id is required")
	}

	ref, err := r.base.DocumentRef(ctx, order.ID)
	if err != nil {
		return err
	}
	if _, err := ref.Create(ctx, fromDomainOrder(order)); err != nil {
		return pfirestore.WrapError("orders.insert", err)
	}
	return nil
}

// Merge applies the mutation's populated field groups to the stored document.
// Unset fields stay untouched; overlapping writers resolve last-write-wins per
// field. Empty optional strings clear the stored field entirely.
func (r *OrderRepository) Merge(ctx context.Context, orderID string, mutation repositories.OrderMutation) error {
	if r == nil || r.base == nil {
		return errors.New("order repository not initialised")
	}

	updates := buildOrderUpdates(mutation)
	if len(updates) == 0 {
		return nil
	}

	_, err := r.base.Update(ctx, orderID, updates)
	return err
}

// FindByID loads the order by document ID.
func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	if r == nil || r.base == nil {
		return domain.Order{}, errors.New("order repository not initialised")
	}

	doc, err := r.base.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	return toDomainOrder(doc.ID, doc.Data), nil
}

// Delete removes the order document.
func (r *OrderRepository) Delete(ctx context.Context, orderID string) error {
	if r == nil || r.base == nil {
		return errors.New("order repository not initialised")
	}
	_, err := r.base.Delete(ctx, orderID)
	return err
}

// List fetches orders matching the store-level filter. Ordering and further
// projection happen in memory at the service layer.
func (r *OrderRepository) List(ctx context.Context, filter repositories.OrderListFilter) ([]domain.Order, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("order repository not initialised")
	}

	docs, err := r.base.Query(ctx, orderQueryBuilder(filter))
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, toDomainOrder(doc.ID, doc.Data))
	}
	return orders, nil
}

// Watch streams the full matching order set on every snapshot change until ctx
// is done.
func (r *OrderRepository) Watch(ctx context.Context, filter repositories.OrderListFilter, fn func([]domain.Order)) error {
	if r == nil || r.base == nil {
		return errors.New("order repository not initialised")
	}
	if fn == nil {
		return errors.New("order watch callback is required")
	}

	return r.base.Watch(ctx, orderQueryBuilder(filter), func(docs []pfirestore.Document[orderDocument]) {
		orders := make([]domain.Order, 0, len(docs))
		for _, doc := range docs {
			orders = append(orders, toDomainOrder(doc.ID, doc.Data))
		}
		fn(orders)
	})
}

func orderQueryBuilder(filter repositories.OrderListFilter) pfirestore.QueryBuilder {
	return func(query firestore.Query) firestore.Query {
		if filter.SellerID != nil {
			query = query.Where("sellerId", "==", strings.TrimSpace(*filter.SellerID))
		}
		if len(filter.Status) > 0 {
			statuses := make([]string, 0, len(filter.Status))
			for _, status := range filter.Status {
				statuses = append(statuses, string(status))
			}
			query = query.Where("status", "in", statuses)
		}
		return query
	}
}

func buildOrderUpdates(mutation repositories.OrderMutation) []firestore.Update {
	var updates []firestore.Update

	if mutation.Items != nil {
		updates = append(updates, firestore.Update{Path: "items", Value: fromDomainItems(*mutation.Items)})
	}
	if mutation.Discount != nil {
		updates = append(updates, firestore.Update{Path: "discount", Value: *mutation.Discount})
	}
	if mutation.ShippingCost != nil {
		updates = append(updates, firestore.Update{Path: "shippingCost", Value: *mutation.ShippingCost})
	}
	if mutation.ShippingMethod != nil {
		updates = append(updates, firestore.Update{Path: "shippingMethod", Value: string(*mutation.ShippingMethod)})
	}
	if mutation.InvoiceRequested != nil {
		updates = append(updates, firestore.Update{Path: "invoiceRequested", Value: *mutation.InvoiceRequested})
	}
	if mutation.InsuranceRequested != nil {
		updates = append(updates, firestore.Update{Path: "insuranceRequested", Value: *mutation.InsuranceRequested})
	}
	if mutation.Customer != nil {
		updates = append(updates, firestore.Update{Path: "customer", Value: fromDomainOrderCustomer(*mutation.Customer)})
	}
	if mutation.Status != nil {
		updates = append(updates, firestore.Update{Path: "status", Value: string(*mutation.Status)})
	}
	if value := optionalStringUpdate(mutation.Note); value != nil {
		updates = append(updates, firestore.Update{Path: "note", Value: value})
	}
	if value := optionalStringUpdate(mutation.TrackingCode); value != nil {
		updates = append(updates, firestore.Update{Path: "trackingCode", Value: value})
	}
	if value := optionalStringUpdate(mutation.InvoiceDocumentRef); value != nil {
		updates = append(updates, firestore.Update{Path: "invoiceDocumentRef", Value: value})
	}
	if mutation.Totals != nil {
		updates = append(updates, firestore.Update{Path: "totals", Value: fromDomainTotals(*mutation.Totals)})
	}
	if mutation.DeliveredAt != nil {
		updates = append(updates, firestore.Update{Path: "deliveredAt", Value: mutation.DeliveredAt.UTC()})
	}
	if len(mutation.AppendHistory) > 0 {
		entries := make([]any, 0, len(mutation.AppendHistory))
		for _, change := range mutation.AppendHistory {
			entries = append(entries, statusChangeDocument{
				Status:    string(change.Status),
				Timestamp: change.At.UTC(),
			})
		}
		updates = append(updates, firestore.Update{Path: "history", Value: firestore.ArrayUnion(entries...)})
	}
	if len(updates) == 0 {
		return nil
	}

	updatedAt := mutation.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: updatedAt.UTC()})
	return updates
}

// optionalStringUpdate maps a set-but-empty string to a field delete so
// clearing a note or tracking code removes the attribute from the document.
func optionalStringUpdate(value *string) any {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return firestore.Delete
	}
	return trimmed
}

type orderDocument struct {
	Number             string                  `firestore:"number"`
	Customer           orderCustomerDocument   `firestore:"customer"`
	Items              []lineItemDocument      `firestore:"items"`
	Discount           int64                   `firestore:"discount"`
	ShippingCost       int64                   `firestore:"shippingCost"`
	ShippingMethod     string                  `firestore:"shippingMethod"`
	InvoiceRequested   bool                    `firestore:"invoiceRequested"`
	InsuranceRequested bool                    `firestore:"insuranceRequested"`
	Totals             orderTotalsDocument     `firestore:"totals"`
	SellerID           *string                 `firestore:"sellerId,omitempty"`
	Status             string                  `firestore:"status"`
	Note               *string                 `firestore:"note,omitempty"`
	TrackingCode       *string                 `firestore:"trackingCode,omitempty"`
	InvoiceDocumentRef *string                 `firestore:"invoiceDocumentRef,omitempty"`
	History            []statusChangeDocument  `firestore:"history"`
	CreatedAt          time.Time               `firestore:"createdAt"`
	UpdatedAt          time.Time               `firestore:"updatedAt"`
	DeliveredAt        *time.Time              `firestore:"deliveredAt,omitempty"`
}

type orderCustomerDocument struct {
	UserID     string  `firestore:"userId"`
	Name       string  `firestore:"name"`
	Phone      string  `firestore:"phone"`
	PostalCode string  `firestore:"postalCode"`
	City       string  `firestore:"city"`
	Street     string  `firestore:"street"`
	Number     string  `firestore:"number"`
	District   string  `firestore:"district"`
	Complement *string `firestore:"complement,omitempty"`
}

type lineItemDocument struct {
	ProductID string  `firestore:"productId"`
	Name      string  `firestore:"name"`
	ImageURL  *string `firestore:"imageUrl,omitempty"`
	UnitPrice int64   `firestore:"unitPrice"`
	Quantity  int     `firestore:"quantity"`
}

type orderTotalsDocument struct {
	Subtotal     int64 `firestore:"subtotal"`
	Discount     int64 `firestore:"discount"`
	Shipping     int64 `firestore:"shipping"`
	InvoiceFee   int64 `firestore:"invoiceFee"`
	InsuranceFee int64 `firestore:"insuranceFee"`
	Total        int64 `firestore:"total"`
}

type statusChangeDocument struct {
	Status    string    `firestore:"status"`
	Timestamp time.Time `firestore:"timestamp"`
}

func fromDomainOrder(order domain.Order) orderDocument {
	doc := orderDocument{
		Number:             strings.TrimSpace(order.Number),
		Customer:           fromDomainOrderCustomer(order.Customer),
		Items:              fromDomainItems(order.Items),
		Discount:           order.Discount,
		ShippingCost:       order.ShippingCost,
		ShippingMethod:     string(order.ShippingMethod),
		InvoiceRequested:   order.InvoiceRequested,
		InsuranceRequested: order.InsuranceRequested,
		Totals:             fromDomainTotals(order.Totals),
		SellerID:           cloneTrimmedPtr(order.SellerID),
		Status:             string(order.Status),
		Note:               cloneTrimmedPtr(order.Note),
		TrackingCode:       cloneTrimmedPtr(order.TrackingCode),
		InvoiceDocumentRef: cloneTrimmedPtr(order.InvoiceDocumentRef),
		History:            make([]statusChangeDocument, 0, len(order.History)),
		CreatedAt:          order.CreatedAt.UTC(),
		UpdatedAt:          order.UpdatedAt.UTC(),
	}
	for _, change := range order.History {
		doc.History = append(doc.History, statusChangeDocument{
			Status:    string(change.Status),
			Timestamp: change.At.UTC(),
		})
	}
	if order.DeliveredAt != nil {
		at := order.DeliveredAt.UTC()
		doc.DeliveredAt = &at
	}
	return doc
}

func toDomainOrder(id string, doc orderDocument) domain.Order {
	order := domain.Order{
		ID:                 id,
		Number:             doc.Number,
		Customer:           toDomainOrderCustomer(doc.Customer),
		Items:              toDomainItems(doc.Items),
		Discount:           doc.Discount,
		ShippingCost:       doc.ShippingCost,
		ShippingMethod:     domain.ShippingMethod(doc.ShippingMethod),
		InvoiceRequested:   doc.InvoiceRequested,
		InsuranceRequested: doc.InsuranceRequested,
		Totals:             toDomainTotals(doc.Totals),
		SellerID:           doc.SellerID,
		Status:             domain.OrderStatus(doc.Status),
		Note:               doc.Note,
		TrackingCode:       doc.TrackingCode,
		InvoiceDocumentRef: doc.InvoiceDocumentRef,
		History:            make([]domain.StatusChange, 0, len(doc.History)),
		CreatedAt:          doc.CreatedAt,
		UpdatedAt:          doc.UpdatedAt,
		DeliveredAt:        doc.DeliveredAt,
	}
	for _, change := range doc.History {
		order.History = append(order.History, domain.StatusChange{
			Status: domain.OrderStatus(change.Status),
			At:     change.Timestamp,
		})
	}
	return order
}

func fromDomainOrderCustomer(customer domain.OrderCustomer) orderCustomerDocument {
	return orderCustomerDocument{
		UserID:     strings.TrimSpace(customer.UserID),
		Name:       strings.TrimSpace(customer.Name),
		Phone:      strings.TrimSpace(customer.Phone),
		PostalCode: strings.TrimSpace(customer.PostalCode),
		City:       strings.TrimSpace(customer.City),
		Street:     strings.TrimSpace(customer.Street),
		Number:     strings.TrimSpace(customer.Number),
		District:   strings.TrimSpace(customer.District),
		Complement: cloneTrimmedPtr(customer.Complement),
	}
}

func toDomainOrderCustomer(doc orderCustomerDocument) domain.OrderCustomer {
	return domain.OrderCustomer{
		UserID:     doc.UserID,
		Name:       doc.Name,
		Phone:      doc.Phone,
		PostalCode: doc.PostalCode,
		City:       doc.City,
		Street:     doc.Street,
		Number:     doc.Number,
		District:   doc.District,
		Complement: doc.Complement,
	}
}

func fromDomainItems(items []domain.LineItem) []lineItemDocument {
	docs := make([]lineItemDocument, 0, len(items))
	for _, item := range items {
		docs = append(docs, lineItemDocument{
			ProductID: strings.TrimSpace(item.ProductID),
			Name:      strings.TrimSpace(item.Name),
			ImageURL:  cloneTrimmedPtr(item.ImageURL),
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	return docs
}

func toDomainItems(docs []lineItemDocument) []domain.LineItem {
	items := make([]domain.LineItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, domain.LineItem{
			ProductID: doc.ProductID,
			Name:      doc.Name,
			ImageURL:  doc.ImageURL,
			UnitPrice: doc.UnitPrice,
			Quantity:  doc.Quantity,
		})
	}
	return items
}

func fromDomainTotals(totals domain.OrderTotals) orderTotalsDocument {
	return orderTotalsDocument{
		Subtotal:     totals.Subtotal,
		Discount:     totals.Discount,
		Shipping:     totals.Shipping,
		InvoiceFee:   totals.InvoiceFee,
		InsuranceFee: totals.InsuranceFee,
		Total:        totals.Total,
	}
}

func toDomainTotals(doc orderTotalsDocument) domain.OrderTotals {
	return domain.OrderTotals{
		Subtotal:     doc.Subtotal,
		Discount:     doc.Discount,
		Shipping:     doc.Shipping,
		InvoiceFee:   doc.InvoiceFee,
		InsuranceFee: doc.InsuranceFee,
		Total:        doc.Total,
	}
}

func cloneTrimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

var _ repositories.OrderRepository = (*OrderRepository)(nil)
