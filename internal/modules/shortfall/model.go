// README: Rider shortfall records; cash collected but not remitted.
package shortfall

import (
	"time"

	"colis/internal/types"
)

type Status string

const (
	StatusPending       Status = "pending"
	StatusPartiallyPaid Status = "partially_paid"
	StatusPaid          Status = "paid"
)

type Shortfall struct {
	ID      types.ID
	RiderID types.ID
	OrderID *types.ID
	// Amount is the outstanding balance; partial settlements overwrite it
	// downward. The original value survives in the cash_transactions trail.
	Amount    int64
	Status    Status
	Comment   string
	CreatedAt time.Time
	SettledAt *time.Time
}
