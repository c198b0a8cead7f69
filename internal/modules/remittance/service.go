// README: Remittance consolidator; turns positive balances into payables and settles debts on payment.
package remittance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"colis/internal/modules/debt"
	"colis/internal/modules/ledger"
	"colis/internal/types"
)

var (
	ErrAlreadyPaid = errors.New("remittance already paid")
	ErrNotPayable  = errors.New("remittance has nothing payable")
)

type Service struct {
	db     *pgxpool.Pool
	store  *Store
	ledger *ledger.Store
	debts  *debt.Store
}

func NewService(db *pgxpool.Pool, store *Store, ledgerStore *ledger.Store, debtStore *debt.Store) *Service {
	return &Service{db: db, store: store, ledger: ledgerStore, debts: debtStore}
}

// Sync upserts a pending remittance for every merchant with a positive
// balance on the day, consolidating all of that merchant's currently-pending
// debts regardless of the debt's own date.
func (s *Service) Sync(ctx context.Context, day types.Day) ([]Remittance, error) {
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		balances, err := s.ledger.PositiveForDay(ctx, tx, day)
		if err != nil {
			return err
		}
		for _, b := range balances {
			pending, err := s.debts.PendingSum(ctx, tx, b.MerchantID)
			if err != nil {
				return err
			}
			if err := s.store.Upsert(ctx, tx, b.MerchantID, day, b.RemittanceAmount, pending); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.store.ListForDay(ctx, s.db, day)
}

func (s *Service) List(ctx context.Context, day types.Day) ([]Remittance, error) {
	return s.store.ListForDay(ctx, s.db, day)
}

// MarkPaid settles a remittance: the net snapshot is written once and every
// pending debt of the merchant is cleared, not only the consolidated subset.
// A single payment wipes the merchant's debt slate.
func (s *Service) MarkPaid(ctx context.Context, id types.ID, userID types.ID) (int64, error) {
	var net int64
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		r, err := s.store.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if r.Status == StatusPaid {
			return ErrAlreadyPaid
		}
		// hidden from the payout list, but also reachable by ID: a remittance
		// whose debts swallow the gross cannot be paid out
		if r.Net() <= 0 {
			return ErrNotPayable
		}
		net = r.Net()
		now := time.Now()
		if err := s.store.MarkPaid(ctx, tx, r.ID, net, userID, now); err != nil {
			return err
		}
		return s.debts.MarkAllPaid(ctx, tx, r.MerchantID, now)
	})
	if err != nil {
		return 0, err
	}
	return net, nil
}
