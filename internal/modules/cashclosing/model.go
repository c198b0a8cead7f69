// README: End-of-day cash closing snapshot; write-once per date.
package cashclosing

import (
	"time"

	"colis/internal/types"
)

type Closing struct {
	ID          types.ID
	ClosingDate types.Day
	// ExpectedCash is computed from the ledger, cash movements, debts, and
	// shortfalls at closing time; never recomputed afterwards.
	ExpectedCash int64
	ActualCash   int64
	Difference   int64
	Comment      string
	ClosedBy     types.ID
	CreatedAt    time.Time
}
