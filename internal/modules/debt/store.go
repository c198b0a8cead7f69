// README: Debt store; holds the delete-then-insert daily sync and manual debt rows.
package debt

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"colis/internal/infra"
	"colis/internal/types"
)

var ErrNotFound = errors.New("debt not found")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// SyncDaily re-derives the daily_balance debt for (merchant, day) from the
// ledger row: drop the old one, re-create it only if the balance is negative.
// Deleting and re-creating converges no matter how many deltas came before.
// Must run inside the same transaction as the ledger write it follows.
func (s *Store) SyncDaily(ctx context.Context, q infra.Querier, merchantID types.ID, day types.Day) error {
	_, err := q.Exec(ctx, `
		DELETE FROM debts
		WHERE merchant_id = $1 AND debt_date = $2::date AND debt_type = 'daily_balance'`,
		string(merchantID), string(day),
	)
	if err != nil {
		return err
	}

	var remittance int64
	row := q.QueryRow(ctx, `
		SELECT remittance_amount FROM daily_merchant_balances
		WHERE merchant_id = $1 AND report_date = $2::date`,
		string(merchantID), string(day),
	)
	if err := row.Scan(&remittance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	if remittance >= 0 {
		return nil
	}

	_, err = q.Exec(ctx, `
		INSERT INTO debts (id, merchant_id, debt_date, debt_type, amount, reason, status, created_at)
		VALUES ($1, $2, $3::date, 'daily_balance', $4, 'negative daily balance', 'pending', NOW())`,
		string(types.NewID()), string(merchantID), string(day), -remittance,
	)
	return err
}

func (s *Store) Insert(ctx context.Context, q infra.Querier, d *Debt) error {
	_, err := q.Exec(ctx, `
		INSERT INTO debts (id, merchant_id, debt_date, debt_type, amount, reason, status, created_at)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7, NOW())`,
		string(d.ID), string(d.MerchantID), string(d.DebtDate), string(d.Type), d.Amount, d.Reason, string(d.Status),
	)
	return err
}

func (s *Store) GetForUpdate(ctx context.Context, q infra.Querier, id types.ID) (*Debt, error) {
	row := q.QueryRow(ctx, `
		SELECT id, merchant_id, debt_date, debt_type, amount, reason, status, created_at, settled_at
		FROM debts
		WHERE id = $1
		FOR UPDATE`, string(id),
	)
	return scanDebt(row)
}

func (s *Store) Delete(ctx context.Context, q infra.Querier, id types.ID) error {
	tag, err := q.Exec(ctx, `DELETE FROM debts WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PendingSum totals every pending debt of a merchant, whatever its date.
func (s *Store) PendingSum(ctx context.Context, q infra.Querier, merchantID types.ID) (int64, error) {
	row := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM debts
		WHERE merchant_id = $1 AND status = 'pending'`,
		string(merchantID),
	)
	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, err
	}
	return sum, nil
}

// MarkAllPaid settles every currently-pending debt of a merchant.
func (s *Store) MarkAllPaid(ctx context.Context, q infra.Querier, merchantID types.ID, at time.Time) error {
	_, err := q.Exec(ctx, `
		UPDATE debts SET status = 'paid', settled_at = $2
		WHERE merchant_id = $1 AND status = 'pending'`,
		string(merchantID), at,
	)
	return err
}

func (s *Store) ListForMerchant(ctx context.Context, q infra.Querier, merchantID types.ID) ([]Debt, error) {
	rows, err := q.Query(ctx, `
		SELECT id, merchant_id, debt_date, debt_type, amount, reason, status, created_at, settled_at
		FROM debts
		WHERE merchant_id = $1
		ORDER BY created_at`, string(merchantID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// Sums used by the cash closing.

func (s *Store) PendingTotal(ctx context.Context, q infra.Querier) (int64, error) {
	row := q.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM debts WHERE status = 'pending'`)
	var sum int64
	err := row.Scan(&sum)
	return sum, err
}

func (s *Store) PaidTotalOn(ctx context.Context, q infra.Querier, day types.Day) (int64, error) {
	row := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM debts
		WHERE status = 'paid' AND settled_at::date = $1::date`,
		string(day),
	)
	var sum int64
	err := row.Scan(&sum)
	return sum, err
}

func scanDebt(row pgx.Row) (*Debt, error) {
	var d Debt
	var date time.Time
	err := row.Scan(&d.ID, &d.MerchantID, &date, &d.Type, &d.Amount, &d.Reason, &d.Status, &d.CreatedAt, &d.SettledAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	d.DebtDate = types.DayOf(date)
	return &d, nil
}
