package domain

// OrderTotals holds rolled-up monetary fields in centavos. Totals are always
// derived by the pricing calculator; stored values are overwritten on every
// mutation.
type OrderTotals struct {
	Subtotal     int64
	Discount     int64
	Shipping     int64
	InvoiceFee   int64
	InsuranceFee int64
	Total        int64
}

// PricingInput captures the order fields the pricing calculator reads. It is a
// value type so callers cannot observe partial computation.
type PricingInput struct {
	Items              []LineItem
	Discount           int64
	Shipping           int64
	InvoiceRequested   bool
	InsuranceRequested bool
}

// PricingInputFromOrder projects the pricing-relevant fields of an order.
func PricingInputFromOrder(order Order) PricingInput {
	return PricingInput{
		Items:              order.Items,
		Discount:           order.Discount,
		Shipping:           order.ShippingCost,
		InvoiceRequested:   order.InvoiceRequested,
		InsuranceRequested: order.InsuranceRequested,
	}
}
