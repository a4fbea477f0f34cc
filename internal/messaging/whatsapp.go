package messaging

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	domain "github.com/vitrinezap/api/internal/domain"
	"github.com/vitrinezap/api/internal/platform/textutil"
)

// WhatsAppLinkBuilder renders wa.me deep links that open a chat with the store
// pre-filled with an order summary. The storefront shares these links instead
// of sending messages through an API.
type WhatsAppLinkBuilder struct {
	number      string
	countryCode string
	storeName   string
}

// NewWhatsAppLinkBuilder validates the store's WhatsApp number. countryCode is
// prefixed when the number does not already carry it.
func NewWhatsAppLinkBuilder(number, countryCode, storeName string) (*WhatsAppLinkBuilder, error) {
	digits := digitsOnly(number)
	if digits == "" {
		return nil, errors.New("whatsapp: store number is required")
	}
	code := digitsOnly(countryCode)
	if code != "" && !strings.HasPrefix(digits, code) {
		digits = code + digits
	}
	return &WhatsAppLinkBuilder{
		number:      digits,
		countryCode: code,
		storeName:   strings.TrimSpace(storeName),
	}, nil
}

// OrderLink builds the deep link for the given order, opening a chat with the
// store.
func (b *WhatsAppLinkBuilder) OrderLink(order domain.Order) (string, error) {
	if b == nil || b.number == "" {
		return "", errors.New("whatsapp: builder not initialised")
	}

	text := b.orderMessage(order, b.storeName)
	return fmt.Sprintf("https://wa.me/%s?text=%s", b.number, url.QueryEscape(text)), nil
}

// OrderLinkTo builds a deep link opening a chat with the given phone instead
// of the store, used by staff to message the customer about their order.
func (b *WhatsAppLinkBuilder) OrderLinkTo(order domain.Order, phone string) (string, error) {
	if b == nil || b.number == "" {
		return "", errors.New("whatsapp: builder not initialised")
	}
	digits := digitsOnly(phone)
	if digits == "" {
		return "", errors.New("whatsapp: target phone is required")
	}
	if b.countryCode != "" && !strings.HasPrefix(digits, b.countryCode) {
		digits = b.countryCode + digits
	}

	text := b.orderMessage(order, strings.TrimSpace(order.Customer.Name))
	return fmt.Sprintf("https://wa.me/%s?text=%s", digits, url.QueryEscape(text)), nil
}

func (b *WhatsAppLinkBuilder) orderMessage(order domain.Order, recipient string) string {
	var sb strings.Builder

	greeting := "Olá"
	if recipient != "" {
		greeting = fmt.Sprintf("Olá, %s", recipient)
	}
	sb.WriteString(greeting)
	if number := strings.TrimSpace(order.Number); number != "" {
		sb.WriteString(fmt.Sprintf("! Pedido %s", number))
	}
	sb.WriteString("\n\n")

	for _, item := range order.Items {
		sb.WriteString(fmt.Sprintf("%dx %s - %s\n", item.Quantity, item.Name, FormatCentavos(item.UnitPrice)))
	}

	if order.Totals.Discount > 0 {
		sb.WriteString(fmt.Sprintf("Desconto: -%s\n", FormatCentavos(order.Totals.Discount)))
	}
	if order.Totals.Shipping > 0 {
		sb.WriteString(fmt.Sprintf("Frete: %s\n", FormatCentavos(order.Totals.Shipping)))
	}
	if order.Totals.InvoiceFee > 0 {
		sb.WriteString(fmt.Sprintf("Nota fiscal: %s\n", FormatCentavos(order.Totals.InvoiceFee)))
	}
	if order.Totals.InsuranceFee > 0 {
		sb.WriteString(fmt.Sprintf("Seguro: %s\n", FormatCentavos(order.Totals.InsuranceFee)))
	}
	sb.WriteString(fmt.Sprintf("Total: %s", FormatCentavos(order.Totals.Total)))

	return sb.String()
}

// FormatCentavos renders an amount in centavos as Brazilian currency text.
func FormatCentavos(amount int64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	reais := amount / 100
	cents := amount % 100

	intPart := groupThousands(reais)
	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("%sR$ %s,%02d", sign, intPart, cents)
}

func groupThousands(value int64) string {
	raw := fmt.Sprintf("%d", value)
	if len(raw) <= 3 {
		return raw
	}
	var parts []string
	for len(raw) > 3 {
		parts = append([]string{raw[len(raw)-3:]}, parts...)
		raw = raw[:len(raw)-3]
	}
	parts = append([]string{raw}, parts...)
	return strings.Join(parts, ".")
}

func digitsOnly(value string) string {
	return textutil.Digits(value)
}
