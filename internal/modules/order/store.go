// README: Order store backed by PostgreSQL; transaction-aware for the transition pipeline.
package order

import (
	"context"
	"errors"
	"time"

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

func (s *Store) Create(ctx context.Context, q infra.Querier, o *Order) error {
	_, err := q.Exec(ctx, `
		INSERT INTO orders (
			id, merchant_id, rider_id, status, payment_status,
			article_amount, delivery_fee, expedition_fee, amount_received,
			report_date, follow_up_at, picked_up_at, returned_at,
			archived, urgent, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10::date, $11, $12, $13,
			$14, $15, $16, $16
		)`,
		string(o.ID), string(o.MerchantID), idPtr(o.RiderID), string(o.Status), string(o.PaymentStatus),
		o.ArticleAmount, o.DeliveryFee, o.ExpeditionFee, o.AmountReceived,
		string(o.ReportDate), o.FollowUpAt, o.PickedUpAt, o.ReturnedAt,
		o.Archived, o.Urgent, o.CreatedAt,
	)
	return err
}

const orderColumns = `
	id, merchant_id, rider_id, status, payment_status,
	article_amount, delivery_fee, expedition_fee, amount_received,
	report_date, follow_up_at, picked_up_at, returned_at,
	archived, urgent, created_at, updated_at`

func (s *Store) Get(ctx context.Context, q infra.Querier, id types.ID) (*Order, error) {
	row := q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, string(id))
	return scanOrder(row)
}

// GetForUpdate locks the order row for the duration of the caller's
// transaction, serializing concurrent transitions on the same order.
func (s *Store) GetForUpdate(ctx context.Context, q infra.Querier, id types.ID) (*Order, error) {
	row := q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, string(id))
	return scanOrder(row)
}

func (s *Store) Update(ctx context.Context, q infra.Querier, o *Order) error {
	_, err := q.Exec(ctx, `
		UPDATE orders SET
			rider_id = $2,
			status = $3,
			payment_status = $4,
			article_amount = $5,
			delivery_fee = $6,
			expedition_fee = $7,
			amount_received = $8,
			follow_up_at = $9,
			picked_up_at = $10,
			returned_at = $11,
			archived = $12,
			urgent = $13,
			updated_at = NOW()
		WHERE id = $1`,
		string(o.ID), idPtr(o.RiderID), string(o.Status), string(o.PaymentStatus),
		o.ArticleAmount, o.DeliveryFee, o.ExpeditionFee, o.AmountReceived,
		o.FollowUpAt, o.PickedUpAt, o.ReturnedAt,
		o.Archived, o.Urgent,
	)
	return err
}

func (s *Store) Delete(ctx context.Context, q infra.Querier, id types.ID) error {
	tag, err := q.Exec(ctx, `DELETE FROM orders WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) AppendEvent(ctx context.Context, q infra.Querier, e *Event) error {
	_, err := q.Exec(ctx, `
		INSERT INTO order_status_events (order_id, from_status, to_status, actor_type, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		string(e.OrderID), string(e.FromStatus), string(e.ToStatus), e.ActorType, idPtr(e.ActorID), e.CreatedAt,
	)
	return err
}

func (s *Store) ListEvents(ctx context.Context, q infra.Querier, orderID types.ID) ([]Event, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, from_status, to_status, actor_type, actor_id, created_at
		FROM order_status_events
		WHERE order_id = $1
		ORDER BY id`, string(orderID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var actorID *string
		if err := rows.Scan(&e.ID, &e.OrderID, &e.FromStatus, &e.ToStatus, &e.ActorType, &actorID, &e.CreatedAt); err != nil {
			return nil, err
		}
		if actorID != nil {
			a := types.ID(*actorID)
			e.ActorID = &a
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var riderID *string
	var reportDate time.Time
	err := row.Scan(
		&o.ID, &o.MerchantID, &riderID, &o.Status, &o.PaymentStatus,
		&o.ArticleAmount, &o.DeliveryFee, &o.ExpeditionFee, &o.AmountReceived,
		&reportDate, &o.FollowUpAt, &o.PickedUpAt, &o.ReturnedAt,
		&o.Archived, &o.Urgent, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if riderID != nil {
		r := types.ID(*riderID)
		o.RiderID = &r
	}
	o.ReportDate = types.DayOf(reportDate)
	return &o, nil
}

func idPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
