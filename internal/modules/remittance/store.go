// README: Remittance store; upsert keyed on (merchant, day), paid rows immutable.
package remittance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"colis/internal/infra"
	"colis/internal/types"
)

var ErrNotFound = errors.New("remittance not found")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Upsert refreshes the pending remittance for (merchant, day). The WHERE on
// the conflict update keeps paid rows untouched no matter how often the
// consolidator runs afterwards.
func (s *Store) Upsert(ctx context.Context, q infra.Querier, merchantID types.ID, day types.Day, amount, debtsConsolidated int64) error {
	_, err := q.Exec(ctx, `
		INSERT INTO remittances (id, merchant_id, remittance_date, amount, debts_consolidated, status, created_at, updated_at)
		VALUES ($1, $2, $3::date, $4, $5, 'pending', NOW(), NOW())
		ON CONFLICT (merchant_id, remittance_date) DO UPDATE SET
			amount = EXCLUDED.amount,
			debts_consolidated = EXCLUDED.debts_consolidated,
			updated_at = NOW()
		WHERE remittances.status = 'pending'`,
		string(types.NewID()), string(merchantID), string(day), amount, debtsConsolidated,
	)
	return err
}

func (s *Store) GetForUpdate(ctx context.Context, q infra.Querier, id types.ID) (*Remittance, error) {
	row := q.QueryRow(ctx, `
		SELECT `+columns+`
		FROM remittances
		WHERE id = $1
		FOR UPDATE`, string(id),
	)
	return scan(row)
}

// ListForDay returns paid rows plus pending rows that still have something to
// pay out after debt consolidation.
func (s *Store) ListForDay(ctx context.Context, q infra.Querier, day types.Day) ([]Remittance, error) {
	rows, err := q.Query(ctx, `
		SELECT `+columns+`
		FROM remittances
		WHERE remittance_date = $1::date
		  AND (status = 'paid' OR (status = 'pending' AND amount - debts_consolidated > 0))
		ORDER BY merchant_id`, string(day),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Remittance
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *Store) MarkPaid(ctx context.Context, q infra.Querier, id types.ID, net int64, paidBy types.ID, at time.Time) error {
	_, err := q.Exec(ctx, `
		UPDATE remittances SET
			status = 'paid',
			net_amount_paid = $2,
			paid_by = $3,
			payment_date = $4,
			updated_at = NOW()
		WHERE id = $1`,
		string(id), net, string(paidBy), at,
	)
	return err
}

const columns = `
	id, merchant_id, remittance_date, amount, debts_consolidated,
	status, net_amount_paid, paid_by, payment_date, created_at, updated_at`

func scan(row pgx.Row) (*Remittance, error) {
	var r Remittance
	var date time.Time
	var paidBy *string
	err := row.Scan(
		&r.ID, &r.MerchantID, &date, &r.Amount, &r.DebtsConsolidated,
		&r.Status, &r.NetAmountPaid, &paidBy, &r.PaymentDate, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	r.Date = types.DayOf(date)
	if paidBy != nil {
		p := types.ID(*paidBy)
		r.PaidBy = &p
	}
	return &r, nil
}
