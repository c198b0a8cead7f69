// README: Cash closing store; relies on the unique date constraint for write-once.
package cashclosing

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"colis/internal/infra"
	"colis/internal/types"
)

var (
	ErrNotFound      = errors.New("cash closing not found")
	ErrAlreadyClosed = errors.New("date already closed")
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Insert persists the snapshot. Two racing closings for the same date both
// pass any prior existence check; the UNIQUE (closing_date) constraint is the
// arbiter and the loser surfaces as ErrAlreadyClosed.
func (s *Store) Insert(ctx context.Context, q infra.Querier, c *Closing) error {
	_, err := q.Exec(ctx, `
		INSERT INTO cash_closings (id, closing_date, expected_cash, actual_cash, difference, comment, closed_by, created_at)
		VALUES ($1, $2::date, $3, $4, $5, $6, $7, NOW())`,
		string(c.ID), string(c.ClosingDate), c.ExpectedCash, c.ActualCash, c.Difference, c.Comment, string(c.ClosedBy),
	)
	if isUniqueViolation(err) {
		return ErrAlreadyClosed
	}
	return err
}

func (s *Store) GetByDate(ctx context.Context, q infra.Querier, day types.Day) (*Closing, error) {
	row := q.QueryRow(ctx, `
		SELECT id, closing_date, expected_cash, actual_cash, difference, comment, closed_by, created_at
		FROM cash_closings
		WHERE closing_date = $1::date`, string(day),
	)
	var c Closing
	var date time.Time
	err := row.Scan(&c.ID, &date, &c.ExpectedCash, &c.ActualCash, &c.Difference, &c.Comment, &c.ClosedBy, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.ClosingDate = types.DayOf(date)
	return &c, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
