// README: Shortfall settlement with partial payments; guarded by row locks.
package shortfall

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"colis/internal/modules/cashbook"
	"colis/internal/types"
)

var (
	ErrBadRequest    = errors.New("bad shortfall request")
	ErrAlreadyPaid   = errors.New("shortfall already paid")
	ErrInvalidAmount = errors.New("settlement amount exceeds outstanding shortfall")
)

type Service struct {
	db       *pgxpool.Pool
	store    *Store
	cashbook *cashbook.Store
}

func NewService(db *pgxpool.Pool, store *Store, cashbookStore *cashbook.Store) *Service {
	return &Service{db: db, store: store, cashbook: cashbookStore}
}

type CreateCommand struct {
	RiderID types.ID
	OrderID *types.ID
	Amount  int64
	Comment string
}

type SettleCommand struct {
	ShortfallID types.ID
	AmountPaid  int64
	UserID      types.ID
	Day         types.Day
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (types.ID, error) {
	if cmd.RiderID == "" || cmd.Amount <= 0 {
		return "", ErrBadRequest
	}
	sf := &Shortfall{
		ID:      types.NewID(),
		RiderID: cmd.RiderID,
		OrderID: cmd.OrderID,
		Amount:  cmd.Amount,
		Status:  StatusPending,
		Comment: cmd.Comment,
	}
	if err := s.store.Insert(ctx, s.db, sf); err != nil {
		return "", err
	}
	return sf.ID, nil
}

// Settle applies a payment against the shortfall. The row lock blocks two
// concurrent settlements from both reading the same outstanding amount.
// Paying the exact outstanding amount closes it; overpaying is rejected.
func (s *Service) Settle(ctx context.Context, cmd SettleCommand) error {
	if cmd.AmountPaid <= 0 || cmd.Day == "" {
		return ErrBadRequest
	}
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		sf, err := s.store.GetForUpdate(ctx, tx, cmd.ShortfallID)
		if err != nil {
			return err
		}
		if sf.Status == StatusPaid {
			return ErrAlreadyPaid
		}
		if cmd.AmountPaid > sf.Amount {
			return ErrInvalidAmount
		}

		remaining := sf.Amount - cmd.AmountPaid
		if remaining > 0 {
			sf.Amount = remaining
			sf.Status = StatusPartiallyPaid
		} else {
			sf.Status = StatusPaid
			now := time.Now()
			sf.SettledAt = &now
		}
		if err := s.store.Update(ctx, tx, sf); err != nil {
			return err
		}

		rider := sf.RiderID
		user := cmd.UserID
		ref := sf.ID
		return s.cashbook.Insert(ctx, tx, &cashbook.Transaction{
			ID:          types.NewID(),
			Type:        cashbook.TypeRemittanceCorrection,
			Status:      cashbook.StatusCompleted,
			Amount:      cmd.AmountPaid,
			Date:        cmd.Day,
			RiderID:     &rider,
			OrderID:     sf.OrderID,
			ReferenceID: &ref,
			Label:       "shortfall settlement",
			CreatedBy:   &user,
		})
	})
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Shortfall, error) {
	return s.store.Get(ctx, s.db, id)
}
