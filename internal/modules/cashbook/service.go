// README: Cashbook service; records manual cash movements.
package cashbook

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"colis/internal/types"
)

var ErrBadRequest = errors.New("bad cash transaction request")

type Service struct {
	db    *pgxpool.Pool
	store *Store
}

func NewService(db *pgxpool.Pool, store *Store) *Service {
	return &Service{db: db, store: store}
}

type CreateCommand struct {
	Type      TxType
	Amount    int64
	Day       types.Day
	RiderID   *types.ID
	OrderID   *types.ID
	Label     string
	CreatedBy *types.ID
}

// creatableTypes maps each operator-recordable movement to its initial status.
// Cash-outs stay pending until the rider hands the money over; reassigning the
// order voids them. Corrections are never created directly, they come out of
// shortfall settlements.
var creatableTypes = map[TxType]Status{
	TypeExpense:      StatusCompleted,
	TypeWithdrawal:   StatusCompleted,
	TypeStorageFee:   StatusCompleted,
	TypeRiderCashout: StatusPending,
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (types.ID, error) {
	status, ok := creatableTypes[cmd.Type]
	if !ok || cmd.Amount <= 0 || cmd.Day == "" {
		return "", ErrBadRequest
	}
	if cmd.Type == TypeRiderCashout && (cmd.RiderID == nil || cmd.OrderID == nil) {
		return "", ErrBadRequest
	}
	t := &Transaction{
		ID:        types.NewID(),
		Type:      cmd.Type,
		Status:    status,
		Amount:    cmd.Amount,
		Date:      cmd.Day,
		RiderID:   cmd.RiderID,
		OrderID:   cmd.OrderID,
		Label:     cmd.Label,
		CreatedBy: cmd.CreatedBy,
	}
	if err := s.store.Insert(ctx, s.db, t); err != nil {
		return "", err
	}
	return t.ID, nil
}
