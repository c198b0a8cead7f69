// README: Cash movement records; immutable audit entries, never edited in place.
package cashbook

import (
	"time"

	"colis/internal/types"
)

type TxType string

const (
	TypeExpense              TxType = "expense"
	TypeWithdrawal           TxType = "withdrawal"
	TypeStorageFee           TxType = "storage_fee"
	TypeRiderCashout         TxType = "rider_cashout"
	TypeRemittanceCorrection TxType = "remittance_correction"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type Transaction struct {
	ID          types.ID
	Type        TxType
	Status      Status
	Amount      int64
	Date        types.Day
	RiderID     *types.ID
	OrderID     *types.ID
	ReferenceID *types.ID
	Label       string
	CreatedBy   *types.ID
	CreatedAt   time.Time
}
