// README: Pure mapping from an order's state to its ledger delta.
package order

import (
	"colis/internal/modules/ledger"
	"colis/internal/modules/merchant"
)

// Impact computes the money an order in its current state moves on the
// merchant's daily balance. Intermediate statuses return a zero delta, as do
// cancelled and returned (the order counts as sent but moves no delivered
// revenue). Pure: reversing a past state means applying Impact(past).Neg().
func Impact(o *Order, m *merchant.Merchant) ledger.Delta {
	switch o.Status {
	case StatusDelivered:
		d := ledger.Delta{
			OrdersDelivered: 1,
			DeliveryFees:    o.DeliveryFee,
		}
		// Supplier-paid deliveries leave revenue at zero: the merchant
		// already kept the article money.
		if o.PaymentStatus == PaymentCash {
			d.RevenueArticles = o.ArticleAmount
		}
		if m.BillsPackaging {
			d.PackagingFees = m.PackagingPrice
		}
		return d
	case StatusFailedDelivery:
		var received int64
		if o.AmountReceived != nil {
			received = *o.AmountReceived
		}
		return ledger.Delta{
			OrdersDelivered: 1,
			RevenueArticles: received,
			DeliveryFees:    o.DeliveryFee,
		}
	default:
		return ledger.Delta{}
	}
}

// SendDelta is the per-order contribution applied once at creation and
// re-balanced (negated then reapplied) on every edit or deletion, independent
// of status.
func SendDelta(o *Order) ledger.Delta {
	return ledger.Delta{OrdersSent: 1, ExpeditionFees: o.ExpeditionFee}
}
