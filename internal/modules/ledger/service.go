// README: Ledger service; read-side balance snapshots.
package ledger

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"colis/internal/types"
)

type Service struct {
	db    *pgxpool.Pool
	store *Store
}

func NewService(db *pgxpool.Pool, store *Store) *Service {
	return &Service{db: db, store: store}
}

func (s *Service) GetDailyBalance(ctx context.Context, merchantID types.ID, day types.Day) (*Balance, error) {
	return s.store.Get(ctx, s.db, merchantID, day)
}
