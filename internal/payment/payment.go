// Package payment implements the payment-link boundary named out of scope
// in spec.md §9 ("the payment and POS injection paths exist in the source
// as partially stubbed code and do not participate in the real-time
// session loop"). It never runs inside the Session State Machine's call
// path — only from the durable job queue's (out-of-scope) worker once an
// order has been committed.
package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentlink"
	"github.com/stripe/stripe-go/v84/price"
)

// Creator mints one-off Stripe Payment Links for committed orders.
type Creator struct {
	apiKey string
}

// NewCreator binds a Stripe secret key. One Creator is shared across
// tenants; Stripe accounts are out of this module's scope (spec.md §9).
func NewCreator(apiKey string) *Creator {
	return &Creator{apiKey: apiKey}
}

// CreatePaymentLink creates an ad-hoc Price for the order total, then a
// Payment Link pointing at it, tagging both with orderID so the (out of
// scope) reconciliation worker can match a completed checkout back to the
// order it was billed for.
func (c *Creator) CreatePaymentLink(ctx context.Context, orderID string, amountCents int64, currency string) (string, error) {
	stripe.Key = c.apiKey

	pr, err := price.New(&stripe.PriceParams{
		Params:     stripe.Params{Context: ctx},
		Currency:   stripe.String(currency),
		UnitAmount: stripe.Int64(amountCents),
		ProductData: &stripe.PriceProductDataParams{
			Name: stripe.String(fmt.Sprintf("Order %s", orderID)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("payment: create price: %w", err)
	}

	link, err := paymentlink.New(&stripe.PaymentLinkParams{
		Params: stripe.Params{Context: ctx},
		LineItems: []*stripe.PaymentLinkLineItemParams{
			{Price: stripe.String(pr.ID), Quantity: stripe.Int64(1)},
		},
		Metadata: map[string]string{"order_id": orderID},
	})
	if err != nil {
		return "", fmt.Errorf("payment: create payment link: %w", err)
	}

	return link.URL, nil
}
