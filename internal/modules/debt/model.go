// README: Merchant debt records, auto-derived or manual.
package debt

import (
	"time"

	"colis/internal/types"
)

type Type string

const (
	// TypeDailyBalance marks the single derived debt a negative daily balance
	// produces; the synchronizer owns its lifecycle.
	TypeDailyBalance Type = "daily_balance"
	TypeManual       Type = "manual"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

type Debt struct {
	ID         types.ID
	MerchantID types.ID
	DebtDate   types.Day
	Type       Type
	Amount     int64
	Reason     string
	Status     Status
	CreatedAt  time.Time
	SettledAt  *time.Time
}
