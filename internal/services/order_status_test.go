package services

import (
	"errors"
	"testing"
	"time"

	domain "github.com/vitrinezap/api/internal/domain"
)

func TestStatusTransitionMatrix(t *testing.T) {
	cases := []struct {
		from domain.OrderStatus
		to   domain.OrderStatus
		ok   bool
	}{
		{domain.OrderStatusQuote, domain.OrderStatusPlaced, true},
		{domain.OrderStatusQuote, domain.OrderStatusPendingPayment, true},
		{domain.OrderStatusQuote, domain.OrderStatusCanceled, true},
		{domain.OrderStatusQuote, domain.OrderStatusPreparation, false},
		{domain.OrderStatusQuote, domain.OrderStatusDelivered, false},
		{domain.OrderStatusPlaced, domain.OrderStatusPendingPayment, true},
		{domain.OrderStatusPlaced, domain.OrderStatusQuote, false},
		{domain.OrderStatusPendingPayment, domain.OrderStatusPreparation, true},
		{domain.OrderStatusPendingPayment, domain.OrderStatusInTransit, false},
		{domain.OrderStatusPreparation, domain.OrderStatusInTransit, true},
		{domain.OrderStatusPreparation, domain.OrderStatusDelivered, false},
		{domain.OrderStatusInTransit, domain.OrderStatusDelivered, true},
		{domain.OrderStatusInTransit, domain.OrderStatusPreparation, false},
	}

	for _, tc := range cases {
		if got := canTransition(tc.from, tc.to); got != tc.ok {
			t.Errorf("canTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	terminals := []domain.OrderStatus{
		domain.OrderStatusDelivered,
		domain.OrderStatusCanceled,
		domain.OrderStatusReturned,
	}
	targets := []domain.OrderStatus{
		domain.OrderStatusQuote,
		domain.OrderStatusPlaced,
		domain.OrderStatusPendingPayment,
		domain.OrderStatusPreparation,
		domain.OrderStatusInTransit,
		domain.OrderStatusDelivered,
		domain.OrderStatusCanceled,
		domain.OrderStatusReturned,
	}

	for _, from := range terminals {
		for _, to := range targets {
			if canTransition(from, to) {
				t.Errorf("expected no transition out of %s, but %s is allowed", from, to)
			}
		}
	}
}

func TestCancelAndReturnReachableFromEveryActiveState(t *testing.T) {
	active := []domain.OrderStatus{
		domain.OrderStatusQuote,
		domain.OrderStatusPlaced,
		domain.OrderStatusPendingPayment,
		domain.OrderStatusPreparation,
		domain.OrderStatusInTransit,
	}

	for _, from := range active {
		if !canTransition(from, domain.OrderStatusCanceled) {
			t.Errorf("expected %s to allow cancellation", from)
		}
		if !canTransition(from, domain.OrderStatusReturned) {
			t.Errorf("expected %s to allow return", from)
		}
	}
}

func TestApplyStatusTransitionAppendsHistory(t *testing.T) {
	now := time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC)
	order := domain.Order{
		Status: domain.OrderStatusPreparation,
		History: []domain.StatusChange{
			{Status: domain.OrderStatusQuote, At: now.Add(-48 * time.Hour)},
			{Status: domain.OrderStatusPendingPayment, At: now.Add(-24 * time.Hour)},
			{Status: domain.OrderStatusPreparation, At: now.Add(-2 * time.Hour)},
		},
	}

	if err := applyStatusTransition(&order, domain.OrderStatusInTransit, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if order.Status != domain.OrderStatusInTransit {
		t.Fatalf("expected status transporte, got %s", order.Status)
	}
	if len(order.History) != 4 {
		t.Fatalf("expected 4 history entries, got %d", len(order.History))
	}
	last := order.History[3]
	if last.Status != domain.OrderStatusInTransit || !last.At.Equal(now) {
		t.Fatalf("unexpected last history entry: %+v", last)
	}
	if !order.UpdatedAt.Equal(now) {
		t.Fatalf("expected UpdatedAt %v, got %v", now, order.UpdatedAt)
	}
	if order.DeliveredAt != nil {
		t.Fatalf("expected DeliveredAt unset before delivery")
	}
}

func TestApplyStatusTransitionSetsDeliveredAtOnce(t *testing.T) {
	now := time.Date(2026, 8, 30, 16, 0, 0, 0, time.UTC)

	order := domain.Order{Status: domain.OrderStatusInTransit}
	if err := applyStatusTransition(&order, domain.OrderStatusDelivered, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.DeliveredAt == nil || !order.DeliveredAt.Equal(now) {
		t.Fatalf("expected DeliveredAt %v, got %v", now, order.DeliveredAt)
	}

	// A document that already carries a delivery timestamp keeps it.
	earlier := now.Add(-72 * time.Hour)
	repaired := domain.Order{Status: domain.OrderStatusInTransit, DeliveredAt: &earlier}
	if err := applyStatusTransition(&repaired, domain.OrderStatusDelivered, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repaired.DeliveredAt.Equal(earlier) {
		t.Fatalf("expected DeliveredAt to stay %v, got %v", earlier, repaired.DeliveredAt)
	}
}

func TestApplyStatusTransitionLeavesOrderUntouchedOnIllegalMove(t *testing.T) {
	createdAt := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	order := domain.Order{
		Status:    domain.OrderStatusDelivered,
		History:   []domain.StatusChange{{Status: domain.OrderStatusDelivered, At: createdAt}},
		UpdatedAt: createdAt,
	}

	err := applyStatusTransition(&order, domain.OrderStatusPreparation, createdAt.Add(time.Hour))
	if !errors.Is(err, ErrOrderInvalidTransition) {
		t.Fatalf("expected ErrOrderInvalidTransition, got %v", err)
	}

	if order.Status != domain.OrderStatusDelivered {
		t.Fatalf("expected status unchanged, got %s", order.Status)
	}
	if len(order.History) != 1 {
		t.Fatalf("expected history unchanged, got %d entries", len(order.History))
	}
	if !order.UpdatedAt.Equal(createdAt) {
		t.Fatalf("expected UpdatedAt unchanged, got %v", order.UpdatedAt)
	}
}

func TestApplyStatusTransitionRejectsUnknownCurrentState(t *testing.T) {
	order := domain.Order{Status: domain.OrderStatus("arquivado")}
	err := applyStatusTransition(&order, domain.OrderStatusCanceled, time.Now())
	if !errors.Is(err, ErrOrderInvalidTransition) {
		t.Fatalf("expected ErrOrderInvalidTransition, got %v", err)
	}
}
