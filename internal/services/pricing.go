package services

import (
	"errors"
	"fmt"
	"math"

	"github.com/vitrinezap/api/internal/domain"
)

var (
	// ErrPricingInvalidInput signals pricing input the calculator cannot price,
	// such as a line subtotal that overflows int64.
	ErrPricingInvalidInput = errors.New("pricing: invalid input")
)

const (
	// invoiceFeePercent is charged on the subtotal when the customer requests a fiscal invoice.
	invoiceFeePercent = 6
	// insuranceFeePercent is charged on the subtotal when shipping insurance is requested.
	insuranceFeePercent = 3
)

// ComputeTotals derives the full monetary breakdown for an order. It is pure:
// no I/O, no clock, and the same input always yields the same totals. Negative
// adjustments are clamped to zero instead of rejected so that stale documents
// written by older clients still price deterministically.
func ComputeTotals(input domain.PricingInput) (domain.OrderTotals, error) {
	var subtotal int64
	for _, item := range input.Items {
		quantity := int64(item.Quantity)
		if quantity <= 0 || item.UnitPrice <= 0 {
			continue
		}
		if item.UnitPrice > math.MaxInt64/quantity {
			return domain.OrderTotals{}, fmt.Errorf("%w: line subtotal overflow for product %s", ErrPricingInvalidInput, item.ProductID)
		}
		line := item.UnitPrice * quantity
		if subtotal > math.MaxInt64-line {
			return domain.OrderTotals{}, fmt.Errorf("%w: subtotal overflow", ErrPricingInvalidInput)
		}
		subtotal += line
	}

	discount := clampNonNegative(input.Discount)
	shipping := clampNonNegative(input.Shipping)

	var invoiceFee, insuranceFee int64
	var err error
	if input.InvoiceRequested {
		if invoiceFee, err = percentOf(subtotal, invoiceFeePercent); err != nil {
			return domain.OrderTotals{}, err
		}
	}
	if input.InsuranceRequested {
		if insuranceFee, err = percentOf(subtotal, insuranceFeePercent); err != nil {
			return domain.OrderTotals{}, err
		}
	}

	total := subtotal - discount
	for _, component := range []int64{shipping, invoiceFee, insuranceFee} {
		if total > math.MaxInt64-component {
			return domain.OrderTotals{}, fmt.Errorf("%w: total overflow", ErrPricingInvalidInput)
		}
		total += component
	}
	if total < 0 {
		total = 0
	}

	return domain.OrderTotals{
		Subtotal:     subtotal,
		Discount:     discount,
		Shipping:     shipping,
		InvoiceFee:   invoiceFee,
		InsuranceFee: insuranceFee,
		Total:        total,
	}, nil
}

// percentOf applies an integer percentage to an amount in centavos, rounding
// half-up so fee lines always land on whole cents.
func percentOf(amount int64, percent int64) (int64, error) {
	if amount <= 0 || percent <= 0 {
		return 0, nil
	}
	if amount > (math.MaxInt64-50)/percent {
		return 0, fmt.Errorf("%w: fee overflow", ErrPricingInvalidInput)
	}
	return (amount*percent + 50) / 100, nil
}

func clampNonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
