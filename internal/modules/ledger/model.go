// README: Daily merchant balance row and the additive delta applied to it.
package ledger

import "colis/internal/types"

// Balance is the per-(merchant, day) accumulator of order-driven money
// movements. Every field equals the algebraic sum of all deltas ever applied.
type Balance struct {
	MerchantID       types.ID
	ReportDate       types.Day
	OrdersSent       int64
	OrdersDelivered  int64
	RevenueArticles  int64
	DeliveryFees     int64
	ExpeditionFees   int64
	PackagingFees    int64
	RemittanceAmount int64
}

// Delta is one ledger mutation. RemittanceOverride adds straight to
// remittance_amount, bypassing the revenue-minus-fees formula; it is used only
// by manual debt operations.
type Delta struct {
	OrdersSent         int64
	OrdersDelivered    int64
	RevenueArticles    int64
	DeliveryFees       int64
	ExpeditionFees     int64
	PackagingFees      int64
	RemittanceOverride int64
}

// RemittanceContribution is what this delta adds to remittance_amount.
func (d Delta) RemittanceContribution() int64 {
	return d.RevenueArticles - d.DeliveryFees - d.ExpeditionFees - d.PackagingFees + d.RemittanceOverride
}

func (d Delta) Neg() Delta {
	return Delta{
		OrdersSent:         -d.OrdersSent,
		OrdersDelivered:    -d.OrdersDelivered,
		RevenueArticles:    -d.RevenueArticles,
		DeliveryFees:       -d.DeliveryFees,
		ExpeditionFees:     -d.ExpeditionFees,
		PackagingFees:      -d.PackagingFees,
		RemittanceOverride: -d.RemittanceOverride,
	}
}

func (d Delta) IsZero() bool {
	return d == Delta{}
}
