package services

import (
	"fmt"
	"slices"
	"time"

	domain "github.com/vitrinezap/api/internal/domain"
)

// orderStateTransitions lists the legal next states per status. The placed
// state is an optional hop kept for documents written by older clients;
// checkout itself never produces it.
var orderStateTransitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderStatusQuote: {
		domain.OrderStatusPlaced,
		domain.OrderStatusPendingPayment,
		domain.OrderStatusCanceled,
		domain.OrderStatusReturned,
	},
	domain.OrderStatusPlaced: {
		domain.OrderStatusPendingPayment,
		domain.OrderStatusCanceled,
		domain.OrderStatusReturned,
	},
	domain.OrderStatusPendingPayment: {
		domain.OrderStatusPreparation,
		domain.OrderStatusCanceled,
		domain.OrderStatusReturned,
	},
	domain.OrderStatusPreparation: {
		domain.OrderStatusInTransit,
		domain.OrderStatusCanceled,
		domain.OrderStatusReturned,
	},
	domain.OrderStatusInTransit: {
		domain.OrderStatusDelivered,
		domain.OrderStatusCanceled,
		domain.OrderStatusReturned,
	},
}

func canTransition(current, target domain.OrderStatus) bool {
	next, ok := orderStateTransitions[current]
	if !ok {
		return false
	}
	return slices.Contains(next, target)
}

// applyStatusTransition mutates the order in memory for a legal transition:
// new status, one appended history entry, and the delivered timestamp set
// exactly once on entering the delivered state. On an illegal transition the
// order is left untouched.
func applyStatusTransition(order *domain.Order, target domain.OrderStatus, now time.Time) error {
	if !canTransition(order.Status, target) {
		return fmt.Errorf("%w: %s to %s", ErrOrderInvalidTransition, order.Status, target)
	}

	order.Status = target
	order.History = append(order.History, domain.StatusChange{Status: target, At: now})
	order.UpdatedAt = now

	if target == domain.OrderStatusDelivered && order.DeliveredAt == nil {
		order.DeliveredAt = &now
	}

	return nil
}
