// README: Shortfall store backed by PostgreSQL.
package shortfall

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"colis/internal/infra"
	"colis/internal/types"
)

var ErrNotFound = errors.New("shortfall not found")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Insert(ctx context.Context, q infra.Querier, sf *Shortfall) error {
	var orderID *string
	if sf.OrderID != nil {
		v := string(*sf.OrderID)
		orderID = &v
	}
	_, err := q.Exec(ctx, `
		INSERT INTO rider_shortfalls (id, rider_id, order_id, amount, status, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
		string(sf.ID), string(sf.RiderID), orderID, sf.Amount, string(sf.Status), sf.Comment,
	)
	return err
}

func (s *Store) GetForUpdate(ctx context.Context, q infra.Querier, id types.ID) (*Shortfall, error) {
	row := q.QueryRow(ctx, `
		SELECT id, rider_id, order_id, amount, status, comment, created_at, settled_at
		FROM rider_shortfalls
		WHERE id = $1
		FOR UPDATE`, string(id),
	)
	return scan(row)
}

func (s *Store) Get(ctx context.Context, q infra.Querier, id types.ID) (*Shortfall, error) {
	row := q.QueryRow(ctx, `
		SELECT id, rider_id, order_id, amount, status, comment, created_at, settled_at
		FROM rider_shortfalls
		WHERE id = $1`, string(id),
	)
	return scan(row)
}

func (s *Store) Update(ctx context.Context, q infra.Querier, sf *Shortfall) error {
	_, err := q.Exec(ctx, `
		UPDATE rider_shortfalls SET amount = $2, status = $3, settled_at = $4
		WHERE id = $1`,
		string(sf.ID), sf.Amount, string(sf.Status), sf.SettledAt,
	)
	return err
}

// Sums used by the cash closing.

func (s *Store) PendingTotal(ctx context.Context, q infra.Querier) (int64, error) {
	row := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM rider_shortfalls
		WHERE status IN ('pending', 'partially_paid')`)
	var sum int64
	err := row.Scan(&sum)
	return sum, err
}

func scan(row pgx.Row) (*Shortfall, error) {
	var sf Shortfall
	var orderID *string
	err := row.Scan(&sf.ID, &sf.RiderID, &orderID, &sf.Amount, &sf.Status, &sf.Comment, &sf.CreatedAt, &sf.SettledAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if orderID != nil {
		o := types.ID(*orderID)
		sf.OrderID = &o
	}
	return &sf, nil
}
