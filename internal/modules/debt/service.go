// README: Manual debt operations; each one pushes a remittance override into the ledger.
package debt

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"colis/internal/modules/ledger"
	"colis/internal/types"
)

var (
	ErrBadRequest   = errors.New("bad debt request")
	ErrInvalidState = errors.New("invalid debt state")
)

type Service struct {
	db     *pgxpool.Pool
	store  *Store
	ledger *ledger.Store
}

func NewService(db *pgxpool.Pool, store *Store, ledgerStore *ledger.Store) *Service {
	return &Service{db: db, store: store, ledger: ledgerStore}
}

type CreateCommand struct {
	MerchantID types.ID
	Day        types.Day
	Amount     int64
	Reason     string
}

type EditCommand struct {
	DebtID types.ID
	Amount int64
	Reason string
}

// Create records a manual debt and lowers the merchant's payable total by the
// same amount. It does not go through the daily-balance sync path.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (types.ID, error) {
	if cmd.MerchantID == "" || cmd.Day == "" || cmd.Amount <= 0 {
		return "", ErrBadRequest
	}
	id := types.NewID()
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		d := &Debt{
			ID:         id,
			MerchantID: cmd.MerchantID,
			DebtDate:   cmd.Day,
			Type:       TypeManual,
			Amount:     cmd.Amount,
			Reason:     cmd.Reason,
			Status:     StatusPending,
		}
		if err := s.store.Insert(ctx, tx, d); err != nil {
			return err
		}
		return s.ledger.ApplyDelta(ctx, tx, cmd.MerchantID, cmd.Day, ledger.Delta{RemittanceOverride: -cmd.Amount})
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Edit adjusts a pending manual debt and re-balances the override it pushed.
func (s *Service) Edit(ctx context.Context, cmd EditCommand) error {
	if cmd.Amount <= 0 {
		return ErrBadRequest
	}
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		d, err := s.store.GetForUpdate(ctx, tx, cmd.DebtID)
		if err != nil {
			return err
		}
		if d.Type != TypeManual || d.Status != StatusPending {
			return ErrInvalidState
		}
		if _, err := tx.Exec(ctx, `
			UPDATE debts SET amount = $2, reason = $3 WHERE id = $1`,
			string(d.ID), cmd.Amount, cmd.Reason,
		); err != nil {
			return err
		}
		return s.ledger.ApplyDelta(ctx, tx, d.MerchantID, d.DebtDate, ledger.Delta{RemittanceOverride: d.Amount - cmd.Amount})
	})
}

// Delete removes a pending manual debt and gives its amount back to the
// merchant's payable total.
func (s *Service) Delete(ctx context.Context, id types.ID) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		d, err := s.store.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if d.Type != TypeManual || d.Status != StatusPending {
			return ErrInvalidState
		}
		if err := s.store.Delete(ctx, tx, id); err != nil {
			return err
		}
		return s.ledger.ApplyDelta(ctx, tx, d.MerchantID, d.DebtDate, ledger.Delta{RemittanceOverride: d.Amount})
	})
}

func (s *Service) ListForMerchant(ctx context.Context, merchantID types.ID) ([]Debt, error) {
	return s.store.ListForMerchant(ctx, s.db, merchantID)
}
