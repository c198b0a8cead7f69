// README: Order state machine; every transition re-derives ledger impact in one transaction.
package order

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"colis/internal/modules/cashbook"
	"colis/internal/modules/debt"
	"colis/internal/modules/ledger"
	"colis/internal/modules/merchant"
	"colis/internal/types"
)

var (
	ErrNotFound           = errors.New("order not found")
	ErrBadRequest         = errors.New("bad request")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidState       = errors.New("invalid order state")
	ErrPickupNotConfirmed = errors.New("pickup not confirmed")
	ErrReturnAlreadyOpen  = errors.New("return already pending or completed")
)

// Notifier receives status changes after the transaction commits. Sends never
// happen mid-transaction.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, orderID types.ID, from, to Status)
}

type Service struct {
	db        *pgxpool.Pool
	store     *Store
	merchants *merchant.Store
	ledger    *ledger.Store
	debts     *debt.Store
	cashbook  *cashbook.Store
	notifier  Notifier
}

func NewService(
	db *pgxpool.Pool,
	store *Store,
	merchants *merchant.Store,
	ledgerStore *ledger.Store,
	debtStore *debt.Store,
	cashbookStore *cashbook.Store,
	notifier Notifier,
) *Service {
	return &Service{
		db:        db,
		store:     store,
		merchants: merchants,
		ledger:    ledgerStore,
		debts:     debtStore,
		cashbook:  cashbookStore,
		notifier:  notifier,
	}
}

type CreateCommand struct {
	MerchantID    types.ID
	ArticleAmount int64
	DeliveryFee   int64
	ExpeditionFee int64
	Urgent        bool
	ActorID       *types.ID
}

type EditCommand struct {
	OrderID       types.ID
	ArticleAmount int64
	DeliveryFee   int64
	ExpeditionFee int64
	ActorID       *types.ID
}

type AssignCommand struct {
	OrderID types.ID
	RiderID types.ID
	ActorID *types.ID
}

type ReadyCommand struct {
	OrderID types.ID
	ActorID *types.ID
}

type PickupCommand struct {
	OrderID types.ID
	RiderID types.ID
}

type StartDeliveryCommand struct {
	OrderID types.ID
	RiderID types.ID
}

type UpdateStatusCommand struct {
	OrderID        types.ID
	NewStatus      Status
	PaymentMode    PaymentMode
	AmountReceived *int64
	FollowUpAt     *time.Time
	ActorType      string
	ActorID        *types.ID
}

type DeclareReturnCommand struct {
	OrderID   types.ID
	ActorType string
	ActorID   *types.ID
}

type ReceiveReturnCommand struct {
	OrderID types.ID
	AdminID types.ID
}

type ResetStatusCommand struct {
	OrderID   types.ID
	NewStatus Status
	AdminID   types.ID
}

type DeleteCommand struct {
	OrderID types.ID
	ActorID *types.ID
}

type transitionParams struct {
	paymentMode    PaymentMode
	amountReceived *int64
	followUpAt     *time.Time
}

// Create inserts a pending order and books its send contribution
// (orders_sent + expedition fee) on the merchant's balance for today.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (types.ID, error) {
	if cmd.MerchantID == "" || cmd.ArticleAmount < 0 || cmd.DeliveryFee < 0 || cmd.ExpeditionFee < 0 {
		return "", ErrBadRequest
	}
	id := types.NewID()
	now := time.Now()
	o := &Order{
		ID:            id,
		MerchantID:    cmd.MerchantID,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		ArticleAmount: cmd.ArticleAmount,
		DeliveryFee:   cmd.DeliveryFee,
		ExpeditionFee: cmd.ExpeditionFee,
		ReportDate:    types.DayOf(now),
		Urgent:        cmd.Urgent,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := s.merchants.Get(ctx, tx, cmd.MerchantID); err != nil {
			return err
		}
		if err := s.store.Create(ctx, tx, o); err != nil {
			return err
		}
		if err := s.ledger.ApplyDelta(ctx, tx, o.MerchantID, o.ReportDate, SendDelta(o)); err != nil {
			return err
		}
		if err := s.debts.SyncDaily(ctx, tx, o.MerchantID, o.ReportDate); err != nil {
			return err
		}
		return s.store.AppendEvent(ctx, tx, &Event{
			OrderID:    id,
			FromStatus: StatusNone,
			ToStatus:   StatusPending,
			ActorType:  "merchant",
			ActorID:    cmd.ActorID,
			CreatedAt:  now,
		})
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Edit replaces the order's amounts. The previous send contribution and, for
// impactful statuses, the previous impact are negated before the new values
// are applied, so an edit never double-counts.
func (s *Service) Edit(ctx context.Context, cmd EditCommand) error {
	if cmd.ArticleAmount < 0 || cmd.DeliveryFee < 0 || cmd.ExpeditionFee < 0 {
		return ErrBadRequest
	}
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		o, err := s.store.GetForUpdate(ctx, tx, cmd.OrderID)
		if err != nil {
			return err
		}
		m, err := s.merchants.Get(ctx, tx, o.MerchantID)
		if err != nil {
			return err
		}
		if err := s.ledger.ApplyDelta(ctx, tx, o.MerchantID, o.ReportDate, SendDelta(o).Neg()); err != nil {
			return err
		}
		if IsImpactful(o.Status) {
			if err := s.ledger.ApplyDelta(ctx, tx, o.MerchantID, o.ReportDate, Impact(o, m).Neg()); err != nil {
				return err
			}
		}

		o.ArticleAmount = cmd.ArticleAmount
		o.DeliveryFee = cmd.DeliveryFee
		o.ExpeditionFee = cmd.ExpeditionFee
		if o.Status == StatusDelivered && o.PaymentStatus == PaymentCash {
			amt := o.ArticleAmount
			o.AmountReceived = &amt
		}

		if err := s.ledger.ApplyDelta(ctx, tx, o.MerchantID, o.ReportDate, SendDelta(o)); err != nil {
			return err
		}
		if IsImpactful(o.Status) {
			if err := s.ledger.ApplyDelta(ctx, tx, o.MerchantID, o.ReportDate, Impact(o, m)); err != nil {
				return err
			}
		}
		if err := s.store.Update(ctx, tx, o); err != nil {
			return err
		}
		return s.debts.SyncDaily(ctx, tx, o.MerchantID, o.ReportDate)
	})
}

// Delete removes the order after unwinding everything it booked on the ledger.
func (s *Service) Delete(ctx context.Context, cmd DeleteCommand) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		o, err := s.store.GetForUpdate(ctx, tx, cmd.OrderID)
		if err != nil {
			return err
		}
		m, err := s.merchants.Get(ctx, tx, o.MerchantID)
		if err != nil {
			return err
		}
		if err := s.ledger.ApplyDelta(ctx, tx, o.MerchantID, o.ReportDate, SendDelta(o).Neg()); err != nil {
			return err
		}
		if IsImpactful(o.Status) {
			if err := s.ledger.ApplyDelta(ctx, tx, o.MerchantID, o.ReportDate, Impact(o, m).Neg()); err != nil {
				return err
			}
		}
		if err := s.store.Delete(ctx, tx, o.ID); err != nil {
			return err
		}
		return s.debts.SyncDaily(ctx, tx, o.MerchantID, o.ReportDate)
	})
}

// Assign hands the order to a rider: any non-terminal status goes back to
// in_progress, payment resets to pending, flags clear, and pending cash-outs
// tied to a previous rider are voided. Pickup must be re-confirmed.
func (s *Service) Assign(ctx context.Context, cmd AssignCommand) error {
	if cmd.RiderID == "" {
		return ErrBadRequest
	}
	var from Status
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		o, err := s.store.GetForUpdate(ctx, tx, cmd.OrderID)
		if err != nil {
			return err
		}
		if IsTerminal(o.Status) {
			return ErrInvalidTransition
		}
		from = o.Status
		if err := s.cashbook.CancelPendingRiderCashouts(ctx, tx, o.ID); err != nil {
			return err
		}
		o.RiderID = &cmd.RiderID
		o.Urgent = false
		o.PickedUpAt = nil
		return s.applyTransition(ctx, tx, o, StatusInProgress, transitionParams{}, "admin", cmd.ActorID)
	})
	if err != nil {
		return err
	}
	s.notifyChange(ctx, cmd.OrderID, from, StatusInProgress)
	return nil
}

// MarkReady moves a prepared order to ready_for_pickup.
func (s *Service) MarkReady(ctx context.Context, cmd ReadyCommand) error {
	return s.simpleTransition(ctx, cmd.OrderID, StatusReadyForPickup, "admin", cmd.ActorID)
}

// ConfirmPickup timestamps physical custody. Side effect only: the status does
// not change, but StartDelivery refuses to run without it.
func (s *Service) ConfirmPickup(ctx context.Context, cmd PickupCommand) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		o, err := s.store.GetForUpdate(ctx, tx, cmd.OrderID)
		if err != nil {
			return err
		}
		if o.Status != StatusReadyForPickup {
			return ErrInvalidState
		}
		now := time.Now()
		o.PickedUpAt = &now
		return s.store.Update(ctx, tx, o)
	})
}

// StartDelivery puts the order en route; guarded on pickup confirmation.
func (s *Service) StartDelivery(ctx context.Context, cmd StartDeliveryCommand) error {
	var from Status
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		o, err := s.store.GetForUpdate(ctx, tx, cmd.OrderID)
		if err != nil {
			return err
		}
		if !CanTransition(o.Status, StatusEnRoute) {
			return ErrInvalidTransition
		}
		if o.PickedUpAt == nil {
			return ErrPickupNotConfirmed
		}
		from = o.Status
		rider := cmd.RiderID
		return s.applyTransition(ctx, tx, o, StatusEnRoute, transitionParams{}, "rider", &rider)
	})
	if err != nil {
		return err
	}
	s.notifyChange(ctx, cmd.OrderID, from, StatusEnRoute)
	return nil
}

// UpdateStatus is the general endpoint: from en_route or a relaunch status to
// delivered, failed_delivery, cancelled, or another relaunch status.
func (s *Service) UpdateStatus(ctx context.Context, cmd UpdateStatusCommand) error {
	if !IsStatusUpdateTarget(cmd.NewStatus) {
		return ErrBadRequest
	}
	if cmd.NewStatus == StatusDelivered && cmd.PaymentMode != ModeCash && cmd.PaymentMode != ModePaidToSupplier {
		return ErrBadRequest
	}
	var from Status
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		o, err := s.store.GetForUpdate(ctx, tx, cmd.OrderID)
		if err != nil {
			return err
		}
		if !CanTransition(o.Status, cmd.NewStatus) {
			return ErrInvalidTransition
		}
		// a partial collection can never exceed the article amount
		if cmd.NewStatus == StatusFailedDelivery && cmd.AmountReceived != nil &&
			(*cmd.AmountReceived < 0 || *cmd.AmountReceived > o.ArticleAmount) {
			return ErrBadRequest
		}
		from = o.Status
		p := transitionParams{
			paymentMode:    cmd.PaymentMode,
			amountReceived: cmd.AmountReceived,
			followUpAt:     cmd.FollowUpAt,
		}
		return s.applyTransition(ctx, tx, o, cmd.NewStatus, p, actorTypeOrDefault(cmd.ActorType), cmd.ActorID)
	})
	if err != nil {
		return err
	}
	s.notifyChange(ctx, cmd.OrderID, from, cmd.NewStatus)
	return nil
}

// DeclareReturn opens a return for an undeliverable order.
func (s *Service) DeclareReturn(ctx context.Context, cmd DeclareReturnCommand) error {
	var from Status
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		o, err := s.store.GetForUpdate(ctx, tx, cmd.OrderID)
		if err != nil {
			return err
		}
		if o.Status == StatusReturnDeclared || o.ReturnedAt != nil {
			return ErrReturnAlreadyOpen
		}
		if !CanTransition(o.Status, StatusReturnDeclared) {
			return ErrInvalidTransition
		}
		from = o.Status
		return s.applyTransition(ctx, tx, o, StatusReturnDeclared, transitionParams{}, actorTypeOrDefault(cmd.ActorType), cmd.ActorID)
	})
	if err != nil {
		return err
	}
	s.notifyChange(ctx, cmd.OrderID, from, StatusReturnDeclared)
	return nil
}

// ReceiveReturn is the hub's admin confirmation that the parcel is back.
func (s *Service) ReceiveReturn(ctx context.Context, cmd ReceiveReturnCommand) error {
	var from Status
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		o, err := s.store.GetForUpdate(ctx, tx, cmd.OrderID)
		if err != nil {
			return err
		}
		if !CanTransition(o.Status, StatusReturned) {
			return ErrInvalidTransition
		}
		from = o.Status
		now := time.Now()
		o.ReturnedAt = &now
		admin := cmd.AdminID
		return s.applyTransition(ctx, tx, o, StatusReturned, transitionParams{}, "admin", &admin)
	})
	if err != nil {
		return err
	}
	s.notifyChange(ctx, cmd.OrderID, from, StatusReturned)
	return nil
}

// ResetStatus is the admin replay tool: move the order back to any
// intermediate status, unwinding whatever impact the current status carries.
// Corrections toward impactful statuses go through UpdateStatus afterwards.
func (s *Service) ResetStatus(ctx context.Context, cmd ResetStatusCommand) error {
	if IsImpactful(cmd.NewStatus) || cmd.NewStatus == StatusNone {
		return ErrBadRequest
	}
	var from Status
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		o, err := s.store.GetForUpdate(ctx, tx, cmd.OrderID)
		if err != nil {
			return err
		}
		from = o.Status
		if o.Status != StatusReturnDeclared && cmd.NewStatus != StatusReturnDeclared {
			o.ReturnedAt = nil
		}
		admin := cmd.AdminID
		return s.applyTransition(ctx, tx, o, cmd.NewStatus, transitionParams{}, "admin", &admin)
	})
	if err != nil {
		return err
	}
	s.notifyChange(ctx, cmd.OrderID, from, cmd.NewStatus)
	return nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Order, error) {
	return s.store.Get(ctx, s.db, id)
}

func (s *Service) History(ctx context.Context, id types.ID) ([]Event, error) {
	return s.store.ListEvents(ctx, s.db, id)
}

// applyTransition runs the transition pipeline on an already-locked order: reverse the
// old impact, derive payment fields, apply the new impact, persist, re-sync
// the daily debt, and append history. Caller owns guards and the transaction.
func (s *Service) applyTransition(ctx context.Context, tx pgx.Tx, o *Order, to Status, p transitionParams, actorType string, actorID *types.ID) error {
	m, err := s.merchants.Get(ctx, tx, o.MerchantID)
	if err != nil {
		return err
	}
	from := o.Status

	if IsImpactful(from) {
		if err := s.ledger.ApplyDelta(ctx, tx, o.MerchantID, o.ReportDate, Impact(o, m).Neg()); err != nil {
			return err
		}
	}

	derivePayment(o, to, p)
	o.Status = to
	o.Archived = IsImpactful(to)
	if IsRelaunch(to) {
		o.FollowUpAt = p.followUpAt
	} else {
		o.FollowUpAt = nil
	}

	if IsImpactful(to) {
		if err := s.ledger.ApplyDelta(ctx, tx, o.MerchantID, o.ReportDate, Impact(o, m)); err != nil {
			return err
		}
	}

	if err := s.store.Update(ctx, tx, o); err != nil {
		return err
	}
	if err := s.debts.SyncDaily(ctx, tx, o.MerchantID, o.ReportDate); err != nil {
		return err
	}
	return s.store.AppendEvent(ctx, tx, &Event{
		OrderID:    o.ID,
		FromStatus: from,
		ToStatus:   to,
		ActorType:  actorType,
		ActorID:    actorID,
		CreatedAt:  time.Now(),
	})
}

// derivePayment keeps payment_status and amount_received a pure function of
// the target status; they are never set independently.
func derivePayment(o *Order, to Status, p transitionParams) {
	switch to {
	case StatusDelivered:
		if p.paymentMode == ModePaidToSupplier {
			zero := int64(0)
			o.PaymentStatus = PaymentSupplier
			o.AmountReceived = &zero
		} else {
			amt := o.ArticleAmount
			o.PaymentStatus = PaymentCash
			o.AmountReceived = &amt
		}
	case StatusFailedDelivery:
		var got int64
		if p.amountReceived != nil {
			got = *p.amountReceived
		}
		o.AmountReceived = &got
		if got > 0 {
			o.PaymentStatus = PaymentCash
		} else {
			o.PaymentStatus = PaymentPending
		}
	case StatusCancelled, StatusReturned:
		o.PaymentStatus = PaymentCancelled
		o.AmountReceived = nil
	default:
		o.PaymentStatus = PaymentPending
		o.AmountReceived = nil
	}
}

func (s *Service) simpleTransition(ctx context.Context, orderID types.ID, to Status, actorType string, actorID *types.ID) error {
	var from Status
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		o, err := s.store.GetForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if !CanTransition(o.Status, to) {
			return ErrInvalidTransition
		}
		from = o.Status
		return s.applyTransition(ctx, tx, o, to, transitionParams{}, actorType, actorID)
	})
	if err != nil {
		return err
	}
	s.notifyChange(ctx, orderID, from, to)
	return nil
}

func (s *Service) notifyChange(ctx context.Context, orderID types.ID, from, to Status) {
	if s.notifier != nil && from != to {
		s.notifier.OrderStatusChanged(ctx, orderID, from, to)
	}
}

func actorTypeOrDefault(t string) string {
	if t == "" {
		return "rider"
	}
	return t
}
