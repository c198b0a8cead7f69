// README: Order service tests (transition table, impact math, DB-backed lifecycle).
package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"colis/internal/modules/cashbook"
	"colis/internal/modules/debt"
	"colis/internal/modules/ledger"
	"colis/internal/modules/merchant"
	"colis/internal/testdb"
	"colis/internal/types"
)

// TestCanTransition verifies the state machine transition table without a database.
func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		// happy-path forward transitions
		{StatusInProgress, StatusReadyForPickup, true},
		{StatusReadyForPickup, StatusEnRoute, true},
		{StatusEnRoute, StatusDelivered, true},
		{StatusEnRoute, StatusFailedDelivery, true},
		{StatusEnRoute, StatusCancelled, true},
		// relaunch loops from en_route and back to outcomes
		{StatusEnRoute, StatusNoAnswer, true},
		{StatusEnRoute, StatusPostponed, true},
		{StatusNoAnswer, StatusDelivered, true},
		{StatusNoAnswer, StatusUnreachable, true},
		{StatusToRelaunch, StatusCancelled, true},
		{StatusPostponed, StatusFailedDelivery, true},
		// return flow
		{StatusEnRoute, StatusReturnDeclared, true},
		{StatusFailedDelivery, StatusReturnDeclared, true},
		{StatusCancelled, StatusReturnDeclared, true},
		{StatusUnreachable, StatusReturnDeclared, true},
		{StatusReturnDeclared, StatusReturned, true},
		// invalid: delivered and returned have no outgoing transitions
		{StatusDelivered, StatusReturnDeclared, false},
		{StatusDelivered, StatusEnRoute, false},
		{StatusReturned, StatusReturnDeclared, false},
		{StatusReturned, StatusInProgress, false},
		// invalid: skipping states
		{StatusPending, StatusEnRoute, false},
		{StatusInProgress, StatusEnRoute, false},
		{StatusInProgress, StatusDelivered, false},
		{StatusReadyForPickup, StatusDelivered, false},
		{StatusReturnDeclared, StatusDelivered, false},
	}
	for _, tc := range cases {
		got := CanTransition(tc.from, tc.to)
		if got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestImpactDeliveredCash(t *testing.T) {
	amt := int64(5000)
	o := &Order{Status: StatusDelivered, PaymentStatus: PaymentCash, ArticleAmount: 5000, DeliveryFee: 1000, AmountReceived: &amt}
	m := &merchant.Merchant{ID: "m1"}
	d := Impact(o, m)
	want := ledger.Delta{OrdersDelivered: 1, RevenueArticles: 5000, DeliveryFees: 1000}
	if d != want {
		t.Fatalf("Impact = %+v, want %+v", d, want)
	}
	if got := d.RemittanceContribution(); got != 4000 {
		t.Fatalf("RemittanceContribution = %d, want 4000", got)
	}
}

func TestImpactDeliveredSupplierPaid(t *testing.T) {
	zero := int64(0)
	o := &Order{Status: StatusDelivered, PaymentStatus: PaymentSupplier, ArticleAmount: 5000, DeliveryFee: 1000, AmountReceived: &zero}
	d := Impact(o, &merchant.Merchant{})
	// article money stayed with the merchant: only the fee is owed back
	want := ledger.Delta{OrdersDelivered: 1, DeliveryFees: 1000}
	if d != want {
		t.Fatalf("Impact = %+v, want %+v", d, want)
	}
	if got := d.RemittanceContribution(); got != -1000 {
		t.Fatalf("RemittanceContribution = %d, want -1000", got)
	}
}

func TestImpactDeliveredWithPackaging(t *testing.T) {
	amt := int64(3000)
	o := &Order{Status: StatusDelivered, PaymentStatus: PaymentCash, ArticleAmount: 3000, DeliveryFee: 500, AmountReceived: &amt}
	m := &merchant.Merchant{BillsPackaging: true, PackagingPrice: 200}
	d := Impact(o, m)
	want := ledger.Delta{OrdersDelivered: 1, RevenueArticles: 3000, DeliveryFees: 500, PackagingFees: 200}
	if d != want {
		t.Fatalf("Impact = %+v, want %+v", d, want)
	}
}

func TestImpactFailedDelivery(t *testing.T) {
	got := int64(800)
	o := &Order{Status: StatusFailedDelivery, ArticleAmount: 5000, DeliveryFee: 1000, AmountReceived: &got}
	d := Impact(o, &merchant.Merchant{})
	want := ledger.Delta{OrdersDelivered: 1, RevenueArticles: 800, DeliveryFees: 1000}
	if d != want {
		t.Fatalf("Impact = %+v, want %+v", d, want)
	}
}

func TestImpactIntermediateIsZero(t *testing.T) {
	for _, st := range []Status{StatusPending, StatusInProgress, StatusReadyForPickup, StatusEnRoute, StatusNoAnswer, StatusReturnDeclared, StatusCancelled, StatusReturned} {
		o := &Order{Status: st, ArticleAmount: 5000, DeliveryFee: 1000}
		if d := Impact(o, &merchant.Merchant{BillsPackaging: true, PackagingPrice: 200}); !d.IsZero() {
			t.Errorf("Impact(%s) = %+v, want zero", st, d)
		}
	}
}

func setupTestService(t *testing.T) (*Service, *pgxpool.Pool) {
	t.Helper()
	db := testdb.Setup(t)
	svc := NewService(db, NewStore(db), merchant.NewStore(db), ledger.NewStore(db), debt.NewStore(db), cashbook.NewStore(db), nil)
	return svc, db
}

func mustCreateMerchant(t *testing.T, db *pgxpool.Pool, billsPackaging bool, packagingPrice int64) types.ID {
	t.Helper()
	m := &merchant.Merchant{ID: types.NewID(), Name: "Boutique Awa", Phone: "+221770000000", BillsPackaging: billsPackaging, PackagingPrice: packagingPrice}
	if err := merchant.NewStore(db).Create(context.Background(), m); err != nil {
		t.Fatalf("create merchant: %v", err)
	}
	return m.ID
}

func mustCreateOrder(t *testing.T, svc *Service, merchantID types.ID, article, deliveryFee, expeditionFee int64) types.ID {
	t.Helper()
	id, err := svc.Create(context.Background(), CreateCommand{
		MerchantID:    merchantID,
		ArticleAmount: article,
		DeliveryFee:   deliveryFee,
		ExpeditionFee: expeditionFee,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return id
}

// driveToEnRoute walks an order through assign, ready, pickup, start.
func driveToEnRoute(t *testing.T, svc *Service, orderID types.ID) {
	t.Helper()
	ctx := context.Background()
	if err := svc.Assign(ctx, AssignCommand{OrderID: orderID, RiderID: "r1"}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := svc.MarkReady(ctx, ReadyCommand{OrderID: orderID}); err != nil {
		t.Fatalf("ready: %v", err)
	}
	if err := svc.ConfirmPickup(ctx, PickupCommand{OrderID: orderID, RiderID: "r1"}); err != nil {
		t.Fatalf("pickup: %v", err)
	}
	if err := svc.StartDelivery(ctx, StartDeliveryCommand{OrderID: orderID, RiderID: "r1"}); err != nil {
		t.Fatalf("start: %v", err)
	}
}

func assertBalance(t *testing.T, db *pgxpool.Pool, merchantID types.ID, day types.Day, want ledger.Balance) {
	t.Helper()
	b, err := ledger.NewStore(db).Get(context.Background(), db, merchantID, day)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	want.MerchantID = merchantID
	want.ReportDate = day
	if *b != want {
		t.Fatalf("balance = %+v, want %+v", *b, want)
	}
}

func assertStatus(t *testing.T, svc *Service, orderID types.ID, want Status) {
	t.Helper()
	o, err := svc.Get(context.Background(), orderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if o.Status != want {
		t.Fatalf("expected status %s, got %s", want, o.Status)
	}
}

func TestDeliveredCashBooksImpact(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	merchantID := mustCreateMerchant(t, db, false, 0)

	orderID := mustCreateOrder(t, svc, merchantID, 5000, 1000, 0)
	driveToEnRoute(t, svc, orderID)

	err := svc.UpdateStatus(ctx, UpdateStatusCommand{OrderID: orderID, NewStatus: StatusDelivered, PaymentMode: ModeCash})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	assertStatus(t, svc, orderID, StatusDelivered)

	assertBalance(t, db, merchantID, types.Today(), ledger.Balance{
		OrdersSent:       1,
		OrdersDelivered:  1,
		RevenueArticles:  5000,
		DeliveryFees:     1000,
		RemittanceAmount: 4000,
	})

	o, err := svc.Get(ctx, orderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if o.PaymentStatus != PaymentCash {
		t.Fatalf("payment status = %s, want cash", o.PaymentStatus)
	}
	if o.AmountReceived == nil || *o.AmountReceived != 5000 {
		t.Fatalf("amount received = %v, want 5000", o.AmountReceived)
	}
	if !o.Archived {
		t.Fatal("delivered order should be archived")
	}
}

func TestResetReversesImpact(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	merchantID := mustCreateMerchant(t, db, false, 0)

	orderID := mustCreateOrder(t, svc, merchantID, 5000, 1000, 0)
	driveToEnRoute(t, svc, orderID)
	if err := svc.UpdateStatus(ctx, UpdateStatusCommand{OrderID: orderID, NewStatus: StatusDelivered, PaymentMode: ModeCash}); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	if err := svc.ResetStatus(ctx, ResetStatusCommand{OrderID: orderID, NewStatus: StatusEnRoute, AdminID: "admin1"}); err != nil {
		t.Fatalf("reset: %v", err)
	}
	assertStatus(t, svc, orderID, StatusEnRoute)

	// only the creation-time send contribution remains
	assertBalance(t, db, merchantID, types.Today(), ledger.Balance{OrdersSent: 1})

	o, err := svc.Get(ctx, orderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if o.PaymentStatus != PaymentPending || o.AmountReceived != nil {
		t.Fatalf("payment fields not reset: status=%s received=%v", o.PaymentStatus, o.AmountReceived)
	}
	if o.Archived {
		t.Fatal("reset order should be un-archived")
	}
}

// TestRedeliverAfterReset checks that the final balance depends only on the
// final status, not on how many detours the order took to get there.
func TestRedeliverAfterReset(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	merchantID := mustCreateMerchant(t, db, false, 0)

	orderID := mustCreateOrder(t, svc, merchantID, 5000, 1000, 0)
	driveToEnRoute(t, svc, orderID)

	for i := 0; i < 2; i++ {
		if err := svc.UpdateStatus(ctx, UpdateStatusCommand{OrderID: orderID, NewStatus: StatusDelivered, PaymentMode: ModeCash}); err != nil {
			t.Fatalf("deliver #%d: %v", i+1, err)
		}
		if i == 0 {
			if err := svc.ResetStatus(ctx, ResetStatusCommand{OrderID: orderID, NewStatus: StatusEnRoute, AdminID: "admin1"}); err != nil {
				t.Fatalf("reset: %v", err)
			}
		}
	}

	assertBalance(t, db, merchantID, types.Today(), ledger.Balance{
		OrdersSent:       1,
		OrdersDelivered:  1,
		RevenueArticles:  5000,
		DeliveryFees:     1000,
		RemittanceAmount: 4000,
	})
}

func TestStartDeliveryRequiresPickup(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	merchantID := mustCreateMerchant(t, db, false, 0)

	orderID := mustCreateOrder(t, svc, merchantID, 5000, 1000, 0)
	if err := svc.Assign(ctx, AssignCommand{OrderID: orderID, RiderID: "r1"}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := svc.MarkReady(ctx, ReadyCommand{OrderID: orderID}); err != nil {
		t.Fatalf("ready: %v", err)
	}

	err := svc.StartDelivery(ctx, StartDeliveryCommand{OrderID: orderID, RiderID: "r1"})
	if !errors.Is(err, ErrPickupNotConfirmed) {
		t.Fatalf("expected ErrPickupNotConfirmed, got %v", err)
	}
	assertStatus(t, svc, orderID, StatusReadyForPickup)
}

func TestDeclareReturnTwice(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	merchantID := mustCreateMerchant(t, db, false, 0)

	orderID := mustCreateOrder(t, svc, merchantID, 5000, 1000, 0)
	driveToEnRoute(t, svc, orderID)

	if err := svc.DeclareReturn(ctx, DeclareReturnCommand{OrderID: orderID}); err != nil {
		t.Fatalf("declare return: %v", err)
	}
	err := svc.DeclareReturn(ctx, DeclareReturnCommand{OrderID: orderID})
	if !errors.Is(err, ErrReturnAlreadyOpen) {
		t.Fatalf("expected ErrReturnAlreadyOpen, got %v", err)
	}

	if err := svc.ReceiveReturn(ctx, ReceiveReturnCommand{OrderID: orderID, AdminID: "admin1"}); err != nil {
		t.Fatalf("receive return: %v", err)
	}
	assertStatus(t, svc, orderID, StatusReturned)

	// terminal: nothing moves a returned order
	if err := svc.Assign(ctx, AssignCommand{OrderID: orderID, RiderID: "r2"}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on assign after return, got %v", err)
	}
}

func TestDeliveredWithSupplierPayment(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	merchantID := mustCreateMerchant(t, db, false, 0)

	orderID := mustCreateOrder(t, svc, merchantID, 5000, 1000, 0)
	driveToEnRoute(t, svc, orderID)
	if err := svc.UpdateStatus(ctx, UpdateStatusCommand{OrderID: orderID, NewStatus: StatusDelivered, PaymentMode: ModePaidToSupplier}); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	// no revenue collected; the merchant owes the delivery fee
	assertBalance(t, db, merchantID, types.Today(), ledger.Balance{
		OrdersSent:       1,
		OrdersDelivered:  1,
		DeliveryFees:     1000,
		RemittanceAmount: -1000,
	})
}

func TestDeliveredRequiresPaymentMode(t *testing.T) {
	svc, db := setupTestService(t)
	merchantID := mustCreateMerchant(t, db, false, 0)

	orderID := mustCreateOrder(t, svc, merchantID, 5000, 1000, 0)
	driveToEnRoute(t, svc, orderID)

	err := svc.UpdateStatus(context.Background(), UpdateStatusCommand{OrderID: orderID, NewStatus: StatusDelivered})
	if !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest without payment mode, got %v", err)
	}
}

func TestFailedDeliveryCreatesDebtWhenNegative(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	merchantID := mustCreateMerchant(t, db, false, 0)

	orderID := mustCreateOrder(t, svc, merchantID, 5000, 1000, 0)
	driveToEnRoute(t, svc, orderID)
	if err := svc.UpdateStatus(ctx, UpdateStatusCommand{OrderID: orderID, NewStatus: StatusFailedDelivery}); err != nil {
		t.Fatalf("fail delivery: %v", err)
	}

	// nothing collected, fee still owed: balance -1000 and a mirror debt
	assertBalance(t, db, merchantID, types.Today(), ledger.Balance{
		OrdersSent:       1,
		OrdersDelivered:  1,
		DeliveryFees:     1000,
		RemittanceAmount: -1000,
	})
	debts, err := debt.NewStore(db).ListForMerchant(ctx, db, merchantID)
	if err != nil {
		t.Fatalf("list debts: %v", err)
	}
	if len(debts) != 1 || debts[0].Amount != 1000 || debts[0].Type != debt.TypeDailyBalance || debts[0].Status != debt.StatusPending {
		t.Fatalf("unexpected debts: %+v", debts)
	}

	// reset unwinds the impact and the debt disappears with it
	if err := svc.ResetStatus(ctx, ResetStatusCommand{OrderID: orderID, NewStatus: StatusEnRoute, AdminID: "admin1"}); err != nil {
		t.Fatalf("reset: %v", err)
	}
	debts, err = debt.NewStore(db).ListForMerchant(ctx, db, merchantID)
	if err != nil {
		t.Fatalf("list debts: %v", err)
	}
	if len(debts) != 0 {
		t.Fatalf("expected debt removed after reset, got %+v", debts)
	}
}

func TestEditRebalancesLedger(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	merchantID := mustCreateMerchant(t, db, false, 0)

	orderID := mustCreateOrder(t, svc, merchantID, 5000, 1000, 0)
	driveToEnRoute(t, svc, orderID)
	if err := svc.UpdateStatus(ctx, UpdateStatusCommand{OrderID: orderID, NewStatus: StatusDelivered, PaymentMode: ModeCash}); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	if err := svc.Edit(ctx, EditCommand{OrderID: orderID, ArticleAmount: 6000, DeliveryFee: 1500}); err != nil {
		t.Fatalf("edit: %v", err)
	}

	assertBalance(t, db, merchantID, types.Today(), ledger.Balance{
		OrdersSent:       1,
		OrdersDelivered:  1,
		RevenueArticles:  6000,
		DeliveryFees:     1500,
		RemittanceAmount: 4500,
	})
}

func TestDeleteUnwindsLedger(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	merchantID := mustCreateMerchant(t, db, false, 0)

	orderID := mustCreateOrder(t, svc, merchantID, 5000, 1000, 300)
	driveToEnRoute(t, svc, orderID)
	if err := svc.UpdateStatus(ctx, UpdateStatusCommand{OrderID: orderID, NewStatus: StatusDelivered, PaymentMode: ModeCash}); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	if err := svc.Delete(ctx, DeleteCommand{OrderID: orderID}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	assertBalance(t, db, merchantID, types.Today(), ledger.Balance{})
	if _, err := svc.Get(ctx, orderID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestRelaunchCarriesFollowUp(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	merchantID := mustCreateMerchant(t, db, false, 0)

	orderID := mustCreateOrder(t, svc, merchantID, 5000, 1000, 0)
	driveToEnRoute(t, svc, orderID)

	followUp := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	if err := svc.UpdateStatus(ctx, UpdateStatusCommand{OrderID: orderID, NewStatus: StatusNoAnswer, FollowUpAt: &followUp}); err != nil {
		t.Fatalf("no_answer: %v", err)
	}

	o, err := svc.Get(ctx, orderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if o.FollowUpAt == nil || !o.FollowUpAt.Equal(followUp) {
		t.Fatalf("follow_up_at = %v, want %v", o.FollowUpAt, followUp)
	}
	// relaunch is intermediate: no impact
	assertBalance(t, db, merchantID, types.Today(), ledger.Balance{OrdersSent: 1})

	// moving on clears the follow-up
	if err := svc.UpdateStatus(ctx, UpdateStatusCommand{OrderID: orderID, NewStatus: StatusDelivered, PaymentMode: ModeCash}); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	o, err = svc.Get(ctx, orderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if o.FollowUpAt != nil {
		t.Fatalf("follow_up_at should clear on delivery, got %v", o.FollowUpAt)
	}
}

func TestHistoryRecordsEveryTransition(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	merchantID := mustCreateMerchant(t, db, false, 0)

	orderID := mustCreateOrder(t, svc, merchantID, 5000, 1000, 0)
	driveToEnRoute(t, svc, orderID)
	if err := svc.UpdateStatus(ctx, UpdateStatusCommand{OrderID: orderID, NewStatus: StatusDelivered, PaymentMode: ModeCash}); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	events, err := svc.History(ctx, orderID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	wantFlow := []Status{StatusPending, StatusInProgress, StatusReadyForPickup, StatusEnRoute, StatusDelivered}
	if len(events) != len(wantFlow) {
		t.Fatalf("got %d events, want %d: %+v", len(events), len(wantFlow), events)
	}
	for i, e := range events {
		if e.ToStatus != wantFlow[i] {
			t.Errorf("event %d: to=%s, want %s", i, e.ToStatus, wantFlow[i])
		}
	}
}

func TestResetRejectsImpactfulTarget(t *testing.T) {
	svc, db := setupTestService(t)
	merchantID := mustCreateMerchant(t, db, false, 0)
	orderID := mustCreateOrder(t, svc, merchantID, 5000, 1000, 0)

	err := svc.ResetStatus(context.Background(), ResetStatusCommand{OrderID: orderID, NewStatus: StatusDelivered, AdminID: "admin1"})
	if !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
}

func TestCreateRejectsUnknownMerchant(t *testing.T) {
	svc, _ := setupTestService(t)
	_, err := svc.Create(context.Background(), CreateCommand{MerchantID: types.NewID(), ArticleAmount: 1000, DeliveryFee: 100})
	if !errors.Is(err, merchant.ErrNotFound) {
		t.Fatalf("expected merchant.ErrNotFound, got %v", err)
	}
}

func TestFailedDeliveryRejectsExcessAmount(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	merchantID := mustCreateMerchant(t, db, false, 0)

	orderID := mustCreateOrder(t, svc, merchantID, 5000, 1000, 0)
	driveToEnRoute(t, svc, orderID)

	excess := int64(6000)
	err := svc.UpdateStatus(ctx, UpdateStatusCommand{OrderID: orderID, NewStatus: StatusFailedDelivery, AmountReceived: &excess})
	if !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest for amount above article, got %v", err)
	}
	negative := int64(-1)
	err = svc.UpdateStatus(ctx, UpdateStatusCommand{OrderID: orderID, NewStatus: StatusFailedDelivery, AmountReceived: &negative})
	if !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest for negative amount, got %v", err)
	}

	// collecting exactly the article amount is the upper bound
	full := int64(5000)
	if err := svc.UpdateStatus(ctx, UpdateStatusCommand{OrderID: orderID, NewStatus: StatusFailedDelivery, AmountReceived: &full}); err != nil {
		t.Fatalf("full collection: %v", err)
	}
	assertStatus(t, svc, orderID, StatusFailedDelivery)
}

// TestAssignCancelsPendingCashout: handing the order to a new rider voids the
// previous rider's pending cash-out.
func TestAssignCancelsPendingCashout(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	merchantID := mustCreateMerchant(t, db, false, 0)

	orderID := mustCreateOrder(t, svc, merchantID, 5000, 1000, 0)
	if err := svc.Assign(ctx, AssignCommand{OrderID: orderID, RiderID: "r1"}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	rider := types.ID("r1")
	txID, err := cashbook.NewService(db, cashbook.NewStore(db)).Create(ctx, cashbook.CreateCommand{
		Type: cashbook.TypeRiderCashout, Amount: 500, Day: types.Today(),
		RiderID: &rider, OrderID: &orderID, Label: "advance to rider",
	})
	if err != nil {
		t.Fatalf("create cashout: %v", err)
	}

	if err := svc.Assign(ctx, AssignCommand{OrderID: orderID, RiderID: "r2"}); err != nil {
		t.Fatalf("reassign: %v", err)
	}

	var status string
	if err := db.QueryRow(ctx, `SELECT status FROM cash_transactions WHERE id = $1`, string(txID)).Scan(&status); err != nil {
		t.Fatalf("read cashout: %v", err)
	}
	if status != string(cashbook.StatusCancelled) {
		t.Fatalf("cashout status = %s, want cancelled", status)
	}
}
