package services

import (
	"testing"
	"time"

	domain "github.com/vitrinezap/api/internal/domain"
)

func queryOrder(id string, status domain.OrderStatus, createdAt time.Time) domain.Order {
	return domain.Order{
		ID:        id,
		Number:    "VZ-2026-0001" + id,
		Status:    status,
		CreatedAt: createdAt,
		Customer: domain.OrderCustomer{
			Name:  "José da Silva",
			Phone: "11987654321",
			City:  "São Paulo",
		},
		Items: []domain.LineItem{{ProductID: "prod_1", Name: "Caneca Esmaltada", UnitPrice: 3500, Quantity: 1}},
	}
}

func TestFilterOrdersHidesCanceledByDefault(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	orders := []domain.Order{
		queryOrder("a", domain.OrderStatusQuote, now),
		queryOrder("b", domain.OrderStatusCanceled, now),
		queryOrder("c", domain.OrderStatusDelivered, now),
	}

	filtered := FilterOrders(orders, OrderQuery{})
	if len(filtered) != 2 {
		t.Fatalf("expected canceled hidden, got %d orders", len(filtered))
	}
	for _, order := range filtered {
		if order.Status == domain.OrderStatusCanceled {
			t.Fatalf("canceled order leaked into default view")
		}
	}

	withCanceled := FilterOrders(orders, OrderQuery{IncludeCanceled: true})
	if len(withCanceled) != 3 {
		t.Fatalf("expected all orders with IncludeCanceled, got %d", len(withCanceled))
	}

	// An explicit status filter overrides the default exclusion.
	explicit := FilterOrders(orders, OrderQuery{Statuses: []domain.OrderStatus{domain.OrderStatusCanceled}})
	if len(explicit) != 1 || explicit[0].Status != domain.OrderStatusCanceled {
		t.Fatalf("expected only canceled via explicit filter, got %+v", explicit)
	}
}

func TestFilterOrdersSearchIsAccentAndCaseInsensitive(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	orders := []domain.Order{queryOrder("a", domain.OrderStatusQuote, now)}

	cases := []struct {
		search string
		want   int
	}{
		{"jose", 1},
		{"JOSÉ", 1},
		{"sao paulo", 1},
		{"caneca esmaltada", 1},
		{"CANECA", 1},
		{"11987654321", 1},
		{"camiseta", 0},
	}

	for _, tc := range cases {
		got := FilterOrders(orders, OrderQuery{Search: tc.search})
		if len(got) != tc.want {
			t.Errorf("search %q: expected %d matches, got %d", tc.search, tc.want, len(got))
		}
	}
}

func TestProjectOrdersBucketsByStoreCalendarDay(t *testing.T) {
	// Store runs three hours behind UTC, like São Paulo.
	store := time.FixedZone("-03", -3*60*60)
	now := time.Date(2026, 8, 31, 1, 0, 0, 0, store)

	orders := []domain.Order{
		// 02:30 UTC on the 31st is still 23:30 on the 30th in store time.
		queryOrder("utc-today-store-yesterday", domain.OrderStatusQuote, time.Date(2026, 8, 31, 2, 30, 0, 0, time.UTC)),
		queryOrder("store-today", domain.OrderStatusQuote, time.Date(2026, 8, 31, 3, 30, 0, 0, time.UTC)),
		queryOrder("older", domain.OrderStatusQuote, time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)),
	}

	projection := ProjectOrders(orders, OrderQuery{}, now)

	if len(projection.Today) != 1 || projection.Today[0].ID != "store-today" {
		t.Fatalf("unexpected today bucket: %+v", projection.Today)
	}
	if len(projection.Yesterday) != 1 || projection.Yesterday[0].ID != "utc-today-store-yesterday" {
		t.Fatalf("unexpected yesterday bucket: %+v", projection.Yesterday)
	}
	if len(projection.Older) != 1 || projection.Older[0].ID != "older" {
		t.Fatalf("unexpected older bucket: %+v", projection.Older)
	}
	if projection.Total() != 3 {
		t.Fatalf("expected total 3, got %d", projection.Total())
	}
}

func TestProjectOrdersSortsNewestFirstWithinBuckets(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	orders := []domain.Order{
		queryOrder("early", domain.OrderStatusQuote, now.Add(-6*time.Hour)),
		queryOrder("late", domain.OrderStatusQuote, now.Add(-1*time.Hour)),
		queryOrder("middle", domain.OrderStatusQuote, now.Add(-3*time.Hour)),
	}

	projection := ProjectOrders(orders, OrderQuery{}, now)

	if len(projection.Today) != 3 {
		t.Fatalf("expected 3 orders today, got %d", len(projection.Today))
	}
	got := []string{projection.Today[0].ID, projection.Today[1].ID, projection.Today[2].ID}
	want := []string{"late", "middle", "early"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestBucketOf(t *testing.T) {
	store := time.FixedZone("-03", -3*60*60)
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, store)

	cases := []struct {
		name      string
		createdAt time.Time
		want      DateBucket
	}{
		{"same store day", time.Date(2026, 8, 31, 13, 30, 0, 0, time.UTC), domain.DateBucketToday},
		{"previous store day", time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC), domain.DateBucketYesterday},
		{"utc today but store yesterday", time.Date(2026, 8, 31, 1, 0, 0, 0, time.UTC), domain.DateBucketYesterday},
		{"last week", time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC), domain.DateBucketOlder},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BucketOf(tc.createdAt, now); got != tc.want {
				t.Fatalf("BucketOf(%v) = %s, want %s", tc.createdAt, got, tc.want)
			}
		})
	}
}
