// README: Remittance consolidation and payment tests.
package remittance

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"colis/internal/modules/debt"
	"colis/internal/modules/ledger"
	"colis/internal/testdb"
	"colis/internal/types"
)

const day = types.Day("2026-03-10")

func setupTestService(t *testing.T) (*Service, *pgxpool.Pool) {
	t.Helper()
	db := testdb.Setup(t)
	return NewService(db, NewStore(db), ledger.NewStore(db), debt.NewStore(db)), db
}

func mustApplyDelta(t *testing.T, db *pgxpool.Pool, merchantID types.ID, d ledger.Delta) {
	t.Helper()
	if err := ledger.NewStore(db).ApplyDelta(context.Background(), db, merchantID, day, d); err != nil {
		t.Fatalf("apply delta: %v", err)
	}
}

func mustInsertDebt(t *testing.T, db *pgxpool.Pool, merchantID types.ID, amount int64) {
	t.Helper()
	err := debt.NewStore(db).Insert(context.Background(), db, &debt.Debt{
		ID: types.NewID(), MerchantID: merchantID, DebtDate: day,
		Type: debt.TypeManual, Amount: amount, Status: debt.StatusPending,
	})
	if err != nil {
		t.Fatalf("insert debt: %v", err)
	}
}

func findRow(rows []Remittance, merchantID types.ID) *Remittance {
	for i := range rows {
		if rows[i].MerchantID == merchantID {
			return &rows[i]
		}
	}
	return nil
}

// Gross 4000 with 1500 of pending debts nets out to 2500, and the payment
// clears the merchant's whole debt slate.
func TestSyncAndPay(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	merchantID := types.NewID()

	mustApplyDelta(t, db, merchantID, ledger.Delta{RevenueArticles: 5000, DeliveryFees: 1000})
	mustInsertDebt(t, db, merchantID, 1500)

	rows, err := svc.Sync(ctx, day)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	r := findRow(rows, merchantID)
	if r == nil {
		t.Fatalf("merchant missing from sync result: %+v", rows)
	}
	if r.Amount != 4000 || r.DebtsConsolidated != 1500 || r.Net() != 2500 || r.Status != StatusPending {
		t.Fatalf("unexpected remittance: %+v", r)
	}

	net, err := svc.MarkPaid(ctx, r.ID, "admin1")
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if net != 2500 {
		t.Fatalf("net paid = %d, want 2500", net)
	}

	debts, err := debt.NewStore(db).ListForMerchant(ctx, db, merchantID)
	if err != nil {
		t.Fatalf("list debts: %v", err)
	}
	for _, d := range debts {
		if d.Status != debt.StatusPaid {
			t.Fatalf("debt still pending after payment: %+v", d)
		}
	}

	if _, err := svc.MarkPaid(ctx, r.ID, "admin1"); !errors.Is(err, ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}
}

// A paid remittance keeps its snapshot even if the consolidator runs again
// with different numbers.
func TestResyncNeverClobbersPaid(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	merchantID := types.NewID()

	mustApplyDelta(t, db, merchantID, ledger.Delta{RevenueArticles: 4000})
	rows, err := svc.Sync(ctx, day)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	r := findRow(rows, merchantID)
	if r == nil {
		t.Fatal("merchant missing from sync result")
	}
	if _, err := svc.MarkPaid(ctx, r.ID, "admin1"); err != nil {
		t.Fatalf("pay: %v", err)
	}

	// the balance moves after payment; the paid row must not follow it
	mustApplyDelta(t, db, merchantID, ledger.Delta{RevenueArticles: 9000})
	rows, err = svc.Sync(ctx, day)
	if err != nil {
		t.Fatalf("re-sync: %v", err)
	}
	r = findRow(rows, merchantID)
	if r == nil {
		t.Fatal("paid remittance missing from listing")
	}
	if r.Status != StatusPaid || r.Amount != 4000 {
		t.Fatalf("paid row was clobbered: %+v", r)
	}
	if r.NetAmountPaid == nil || *r.NetAmountPaid != 4000 {
		t.Fatalf("net snapshot lost: %+v", r)
	}
}

// Merchants whose debts swallow the whole balance stay out of the payout list.
func TestListHidesFullyConsumedRemittances(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	drowned := types.NewID()
	payable := types.NewID()

	mustApplyDelta(t, db, drowned, ledger.Delta{RevenueArticles: 1000})
	mustInsertDebt(t, db, drowned, 1500)
	mustApplyDelta(t, db, payable, ledger.Delta{RevenueArticles: 3000})

	rows, err := svc.Sync(ctx, day)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if findRow(rows, drowned) != nil {
		t.Fatalf("drowned merchant should be hidden: %+v", rows)
	}
	if findRow(rows, payable) == nil {
		t.Fatalf("payable merchant missing: %+v", rows)
	}
}

// A remittance whose debts exceed its gross is hidden from the list but still
// addressable by ID; paying it must fail instead of writing a negative net and
// wiping the debts.
func TestMarkPaidRejectsDrownedRemittance(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	merchantID := types.NewID()

	mustApplyDelta(t, db, merchantID, ledger.Delta{RevenueArticles: 1000})
	mustInsertDebt(t, db, merchantID, 1500)
	if _, err := svc.Sync(ctx, day); err != nil {
		t.Fatalf("sync: %v", err)
	}

	var id string
	if err := db.QueryRow(ctx, `SELECT id FROM remittances WHERE merchant_id = $1`, string(merchantID)).Scan(&id); err != nil {
		t.Fatalf("find remittance: %v", err)
	}

	if _, err := svc.MarkPaid(ctx, types.ID(id), "admin1"); !errors.Is(err, ErrNotPayable) {
		t.Fatalf("expected ErrNotPayable, got %v", err)
	}

	// the debt slate must be untouched
	debts, err := debt.NewStore(db).ListForMerchant(ctx, db, merchantID)
	if err != nil {
		t.Fatalf("list debts: %v", err)
	}
	if len(debts) != 1 || debts[0].Status != debt.StatusPending {
		t.Fatalf("debts mutated by rejected payment: %+v", debts)
	}
}

// Re-running sync refreshes pending rows in place instead of duplicating them.
func TestSyncIsRepeatable(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	merchantID := types.NewID()

	mustApplyDelta(t, db, merchantID, ledger.Delta{RevenueArticles: 2000})
	if _, err := svc.Sync(ctx, day); err != nil {
		t.Fatalf("sync: %v", err)
	}
	mustApplyDelta(t, db, merchantID, ledger.Delta{RevenueArticles: 1000})
	rows, err := svc.Sync(ctx, day)
	if err != nil {
		t.Fatalf("re-sync: %v", err)
	}

	count := 0
	var last *Remittance
	for i := range rows {
		if rows[i].MerchantID == merchantID {
			count++
			last = &rows[i]
		}
	}
	if count != 1 {
		t.Fatalf("expected one row per merchant, got %d", count)
	}
	if last.Amount != 3000 {
		t.Fatalf("amount = %d, want refreshed 3000", last.Amount)
	}
}
