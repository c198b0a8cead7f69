// README: Balance ledger store; additive upsert keyed on (merchant, day).
package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
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

// ApplyDelta creates the balance row at zero if absent, then adds the delta to
// every field. Applying a delta followed by its negation is a field-exact
// no-op, which is what makes status replays safe.
func (s *Store) ApplyDelta(ctx context.Context, q infra.Querier, merchantID types.ID, day types.Day, d Delta) error {
	if d.IsZero() {
		return nil
	}
	_, err := q.Exec(ctx, `
		INSERT INTO daily_merchant_balances (
			merchant_id, report_date,
			orders_sent, orders_delivered, revenue_articles,
			delivery_fees, expedition_fees, packaging_fees, remittance_amount
		) VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (merchant_id, report_date) DO UPDATE SET
			orders_sent       = daily_merchant_balances.orders_sent       + EXCLUDED.orders_sent,
			orders_delivered  = daily_merchant_balances.orders_delivered  + EXCLUDED.orders_delivered,
			revenue_articles  = daily_merchant_balances.revenue_articles  + EXCLUDED.revenue_articles,
			delivery_fees     = daily_merchant_balances.delivery_fees     + EXCLUDED.delivery_fees,
			expedition_fees   = daily_merchant_balances.expedition_fees   + EXCLUDED.expedition_fees,
			packaging_fees    = daily_merchant_balances.packaging_fees    + EXCLUDED.packaging_fees,
			remittance_amount = daily_merchant_balances.remittance_amount + EXCLUDED.remittance_amount`,
		string(merchantID), string(day),
		d.OrdersSent, d.OrdersDelivered, d.RevenueArticles,
		d.DeliveryFees, d.ExpeditionFees, d.PackagingFees, d.RemittanceContribution(),
	)
	return err
}

// Get returns the balance row, or a zero-valued snapshot when no delta has
// ever landed on that (merchant, day).
func (s *Store) Get(ctx context.Context, q infra.Querier, merchantID types.ID, day types.Day) (*Balance, error) {
	row := q.QueryRow(ctx, `
		SELECT orders_sent, orders_delivered, revenue_articles,
		       delivery_fees, expedition_fees, packaging_fees, remittance_amount
		FROM daily_merchant_balances
		WHERE merchant_id = $1 AND report_date = $2::date`,
		string(merchantID), string(day),
	)
	b := Balance{MerchantID: merchantID, ReportDate: day}
	err := row.Scan(
		&b.OrdersSent, &b.OrdersDelivered, &b.RevenueArticles,
		&b.DeliveryFees, &b.ExpeditionFees, &b.PackagingFees, &b.RemittanceAmount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return &b, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// PositiveForDay lists merchants whose remittance_amount is payable on a day.
func (s *Store) PositiveForDay(ctx context.Context, q infra.Querier, day types.Day) ([]Balance, error) {
	rows, err := q.Query(ctx, `
		SELECT merchant_id, orders_sent, orders_delivered, revenue_articles,
		       delivery_fees, expedition_fees, packaging_fees, remittance_amount
		FROM daily_merchant_balances
		WHERE report_date = $1::date AND remittance_amount > 0
		ORDER BY merchant_id`,
		string(day),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Balance
	for rows.Next() {
		b := Balance{ReportDate: day}
		if err := rows.Scan(
			&b.MerchantID, &b.OrdersSent, &b.OrdersDelivered, &b.RevenueArticles,
			&b.DeliveryFees, &b.ExpeditionFees, &b.PackagingFees, &b.RemittanceAmount,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// FeesForDay sums delivery and packaging fees across all merchants for a day
// (the order-driven part of the day's expected cash).
func (s *Store) FeesForDay(ctx context.Context, q infra.Querier, day types.Day) (int64, error) {
	row := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(delivery_fees + packaging_fees), 0)
		FROM daily_merchant_balances
		WHERE report_date = $1::date`,
		string(day),
	)
	var total int64
	if err := row.Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
