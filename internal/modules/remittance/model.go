// README: Remittance records; net payable to a merchant for one day.
package remittance

import (
	"time"

	"colis/internal/types"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

type Remittance struct {
	ID         types.ID
	MerchantID types.ID
	Date       types.Day
	// Amount is the gross payable copied from the ledger at sync time.
	Amount int64
	// DebtsConsolidated is the merchant's pending-debt total at sync time.
	DebtsConsolidated int64
	Status            Status
	// NetAmountPaid is a snapshot written exactly once, at payment time.
	NetAmountPaid *int64
	PaidBy        *types.ID
	PaymentDate   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Net is what remains payable after outstanding debts.
func (r *Remittance) Net() int64 {
	return r.Amount - r.DebtsConsolidated
}
