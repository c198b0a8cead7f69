// README: Merchant store backed by PostgreSQL.
package merchant

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"colis/internal/infra"
	"colis/internal/types"
)

var ErrNotFound = errors.New("merchant not found")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, m *Merchant) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO merchants (id, name, phone, bills_packaging, packaging_price, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())`,
		string(m.ID), m.Name, m.Phone, m.BillsPackaging, m.PackagingPrice,
	)
	return err
}

func (s *Store) Get(ctx context.Context, q infra.Querier, id types.ID) (*Merchant, error) {
	row := q.QueryRow(ctx, `
		SELECT id, name, phone, bills_packaging, packaging_price, created_at
		FROM merchants
		WHERE id = $1`, string(id),
	)
	var m Merchant
	err := row.Scan(&m.ID, &m.Name, &m.Phone, &m.BillsPackaging, &m.PackagingPrice, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
