// README: Merchant record and packaging billing config.
package merchant

import (
	"time"

	"colis/internal/types"
)

type Merchant struct {
	ID             types.ID
	Name           string
	Phone          string
	BillsPackaging bool
	PackagingPrice int64
	CreatedAt      time.Time
}
