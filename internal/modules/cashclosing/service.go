// README: Cash closing service; compares computed expected cash to the counted drawer.
package cashclosing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"colis/internal/modules/cashbook"
	"colis/internal/modules/debt"
	"colis/internal/modules/ledger"
	"colis/internal/modules/shortfall"
	"colis/internal/types"
)

var ErrBadRequest = errors.New("bad cash closing request")

type Service struct {
	db         *pgxpool.Pool
	store      *Store
	ledger     *ledger.Store
	debts      *debt.Store
	shortfalls *shortfall.Store
	cashbook   *cashbook.Store
}

func NewService(
	db *pgxpool.Pool,
	store *Store,
	ledgerStore *ledger.Store,
	debtStore *debt.Store,
	shortfallStore *shortfall.Store,
	cashbookStore *cashbook.Store,
) *Service {
	return &Service{
		db:         db,
		store:      store,
		ledger:     ledgerStore,
		debts:      debtStore,
		shortfalls: shortfallStore,
		cashbook:   cashbookStore,
	}
}

type PerformCommand struct {
	Day        types.Day
	ActualCash int64
	Comment    string
	ClosedBy   types.ID
}

// Perform computes
//
//	expected = CA - (expenses + withdrawals)
//	         - (pending debts + pending shortfalls)
//	         + (debts paid on the day + shortfall payments received on the day)
//
// where CA is the day's delivery + packaging fees plus storage-fee movements,
// then persists the write-once snapshot. Reads only; the ledger, debts and
// shortfalls are never mutated here.
func (s *Service) Perform(ctx context.Context, cmd PerformCommand) (*Closing, error) {
	if cmd.Day == "" || cmd.ClosedBy == "" {
		return nil, ErrBadRequest
	}

	c := &Closing{
		ID:          types.NewID(),
		ClosingDate: cmd.Day,
		ActualCash:  cmd.ActualCash,
		Comment:     cmd.Comment,
		ClosedBy:    cmd.ClosedBy,
	}
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		fees, err := s.ledger.FeesForDay(ctx, tx, cmd.Day)
		if err != nil {
			return err
		}
		storage, err := s.cashbook.SumForDay(ctx, tx, cashbook.TypeStorageFee, cmd.Day)
		if err != nil {
			return err
		}
		expenses, err := s.cashbook.SumForDay(ctx, tx, cashbook.TypeExpense, cmd.Day)
		if err != nil {
			return err
		}
		withdrawals, err := s.cashbook.SumForDay(ctx, tx, cashbook.TypeWithdrawal, cmd.Day)
		if err != nil {
			return err
		}
		pendingDebts, err := s.debts.PendingTotal(ctx, tx)
		if err != nil {
			return err
		}
		pendingShortfalls, err := s.shortfalls.PendingTotal(ctx, tx)
		if err != nil {
			return err
		}
		paidDebts, err := s.debts.PaidTotalOn(ctx, tx, cmd.Day)
		if err != nil {
			return err
		}
		shortfallPayments, err := s.cashbook.SumForDay(ctx, tx, cashbook.TypeRemittanceCorrection, cmd.Day)
		if err != nil {
			return err
		}

		ca := fees + storage
		c.ExpectedCash = ca - (expenses + withdrawals) - (pendingDebts + pendingShortfalls) + (paidDebts + shortfallPayments)
		c.Difference = c.ActualCash - c.ExpectedCash
		return s.store.Insert(ctx, tx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) GetByDate(ctx context.Context, day types.Day) (*Closing, error) {
	return s.store.GetByDate(ctx, s.db, day)
}
