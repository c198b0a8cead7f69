// README: Cash transaction store backed by PostgreSQL.
package cashbook

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"colis/internal/infra"
	"colis/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Insert(ctx context.Context, q infra.Querier, t *Transaction) error {
	_, err := q.Exec(ctx, `
		INSERT INTO cash_transactions (
			id, tx_type, status, amount, tx_date,
			rider_id, order_id, reference_id, label, created_by, created_at
		) VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8, $9, $10, NOW())`,
		string(t.ID), string(t.Type), string(t.Status), t.Amount, string(t.Date),
		idPtr(t.RiderID), idPtr(t.OrderID), idPtr(t.ReferenceID), t.Label, idPtr(t.CreatedBy),
	)
	return err
}

// CancelPendingRiderCashouts voids any pending cash-out tied to an order, used
// when the order is handed to a different rider.
func (s *Store) CancelPendingRiderCashouts(ctx context.Context, q infra.Querier, orderID types.ID) error {
	_, err := q.Exec(ctx, `
		UPDATE cash_transactions SET status = 'cancelled'
		WHERE order_id = $1 AND tx_type = 'rider_cashout' AND status = 'pending'`,
		string(orderID),
	)
	return err
}

// SumForDay totals completed movements of one type on a day.
func (s *Store) SumForDay(ctx context.Context, q infra.Querier, txType TxType, day types.Day) (int64, error) {
	row := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM cash_transactions
		WHERE tx_type = $1 AND status = 'completed' AND tx_date = $2::date`,
		string(txType), string(day),
	)
	var sum int64
	err := row.Scan(&sum)
	return sum, err
}

func idPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
