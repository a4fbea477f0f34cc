package services

import (
	"sort"
	"strings"
	"time"

	domain "github.com/vitrinezap/api/internal/domain"
	"github.com/vitrinezap/api/internal/platform/textutil"
)

func foldForSearch(value string) string {
	return textutil.FoldForSearch(value)
}

// FilterOrders applies the status and free-text portions of the query. The
// default view hides canceled orders unless they are asked for explicitly.
func FilterOrders(orders []Order, query OrderQuery) []Order {
	needle := foldForSearch(query.Search)

	out := make([]Order, 0, len(orders))
	for _, order := range orders {
		if !statusMatches(order, query) {
			continue
		}
		if needle != "" && !orderMatchesSearch(order, needle) {
			continue
		}
		out = append(out, order)
	}
	return out
}

func statusMatches(order Order, query OrderQuery) bool {
	if len(query.Statuses) > 0 {
		for _, status := range query.Statuses {
			if order.Status == status {
				return true
			}
		}
		return false
	}
	if order.Status == domain.OrderStatusCanceled {
		return query.IncludeCanceled
	}
	return true
}

func orderMatchesSearch(order Order, needle string) bool {
	if strings.Contains(foldForSearch(order.ID), needle) {
		return true
	}
	if strings.Contains(foldForSearch(order.Number), needle) {
		return true
	}
	if strings.Contains(foldForSearch(order.Customer.Name), needle) {
		return true
	}
	if strings.Contains(foldForSearch(order.Customer.Phone), needle) {
		return true
	}
	if strings.Contains(foldForSearch(order.Customer.City), needle) {
		return true
	}
	for _, item := range order.Items {
		if strings.Contains(foldForSearch(item.Name), needle) {
			return true
		}
	}
	return false
}

// ProjectOrders filters, orders newest-first, and buckets the listing by
// calendar day. now must already carry the store's timezone; bucket borders
// follow its calendar, not UTC.
func ProjectOrders(orders []Order, query OrderQuery, now time.Time) OrderProjection {
	filtered := FilterOrders(orders, query)

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	loc := now.Location()
	today := dayStart(now)
	yesterday := today.AddDate(0, 0, -1)

	var projection OrderProjection
	for _, order := range filtered {
		created := dayStart(order.CreatedAt.In(loc))
		switch {
		case created.Equal(today):
			projection.Today = append(projection.Today, order)
		case created.Equal(yesterday):
			projection.Yesterday = append(projection.Yesterday, order)
		default:
			projection.Older = append(projection.Older, order)
		}
	}
	return projection
}

// BucketOf reports which bucket a creation time falls into relative to now.
func BucketOf(createdAt, now time.Time) DateBucket {
	loc := now.Location()
	created := dayStart(createdAt.In(loc))
	today := dayStart(now)
	switch {
	case created.Equal(today):
		return domain.DateBucketToday
	case created.Equal(today.AddDate(0, 0, -1)):
		return domain.DateBucketYesterday
	default:
		return domain.DateBucketOlder
	}
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
