package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newLiquidationServiceForTest(t *testing.T, now time.Time) (LiquidationService, *liquidationService, *testFixtures) {
	t.Helper()

	db := newTestDB(t)
	liqRepo := repository.NewLiquidationRepository(db)
	customerRepo := repository.NewCustomerRepository(db)

	svc := NewLiquidationService(liqRepo, customerRepo)
	impl := svc.(*liquidationService)
	impl.now = fixedClock(now)

	return svc, impl, &testFixtures{db: db, customer: newTestCustomer(t, db)}
}

type testFixtures struct {
	db       *gorm.DB
	customer *model.Customer
}

func TestLiquidationCreate_PendingWhenDueInFuture(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc, _, fx := newLiquidationServiceForTest(t, now)

	resp, err := svc.Create(context.Background(), CreateLiquidationRequest{
		CustomerID: fx.customer.ID.String(),
		TaxType:    "TVA",
		Amount:     "50000",
		DueDate:    "2026-09-30",
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, resp.Status)
	assert.Equal(t, "50000.00", resp.Amount)
	assert.Equal(t, "2026-08-31", resp.IssueDate, "issue date defaults to today")
	assert.False(t, resp.HasQRCode)
}

func TestLiquidationCreate_OverdueWhenDuePast(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc, _, fx := newLiquidationServiceForTest(t, now)

	resp, err := svc.Create(context.Background(), CreateLiquidationRequest{
		CustomerID: fx.customer.ID.String(),
		TaxType:    "PATENTE",
		Amount:     "125000",
		IssueDate:  "2026-07-01",
		DueDate:    "2026-07-31",
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusOverdue, resp.Status)
}

func TestLiquidationCreate_Rejections(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc, _, fx := newLiquidationServiceForTest(t, now)

	cases := []struct {
		name string
		req  CreateLiquidationRequest
	}{
		{"unknown customer", CreateLiquidationRequest{
			CustomerID: uuid.NewString(), TaxType: "TVA", Amount: "100", DueDate: "2026-09-30",
		}},
		{"negative amount", CreateLiquidationRequest{
			CustomerID: fx.customer.ID.String(), TaxType: "TVA", Amount: "-100", DueDate: "2026-09-30",
		}},
		{"zero amount", CreateLiquidationRequest{
			CustomerID: fx.customer.ID.String(), TaxType: "TVA", Amount: "0", DueDate: "2026-09-30",
		}},
		{"due before issue", CreateLiquidationRequest{
			CustomerID: fx.customer.ID.String(), TaxType: "TVA", Amount: "100",
			IssueDate: "2026-09-30", DueDate: "2026-09-01",
		}},
		{"bad amount string", CreateLiquidationRequest{
			CustomerID: fx.customer.ID.String(), TaxType: "TVA", Amount: "abc", DueDate: "2026-09-30",
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.req)
			var validationErr *ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestLiquidationMarkPaid_Idempotent(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc, _, fx := newLiquidationServiceForTest(t, now)

	liq := newTestLiquidation(t, fx.db, fx.customer, 50000, now.AddDate(0, 0, 10), model.StatusPending)

	first, err := svc.MarkPaid(context.Background(), liq.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, first.Status)

	second, err := svc.MarkPaid(context.Background(), liq.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, second.Status)
}

func TestLiquidationUpdate_RecomputesStatus(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc, _, fx := newLiquidationServiceForTest(t, now)

	liq := newTestLiquidation(t, fx.db, fx.customer, 50000, now.AddDate(0, 0, -5), model.StatusOverdue)

	newDue := "2026-09-30"
	resp, err := svc.Update(context.Background(), liq.ID.String(), UpdateLiquidationRequest{
		DueDate: &newDue,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, resp.Status, "pushing the due date forward clears OVERDUE")
}

func TestLiquidationUpdate_PaidIsSticky(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc, _, fx := newLiquidationServiceForTest(t, now)

	liq := newTestLiquidation(t, fx.db, fx.customer, 50000, now.AddDate(0, 0, -5), model.StatusPaid)

	newAmount := "60000"
	resp, err := svc.Update(context.Background(), liq.ID.String(), UpdateLiquidationRequest{
		Amount: &newAmount,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, resp.Status)
}

func TestLiquidationGet_NotFound(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc, _, _ := newLiquidationServiceForTest(t, now)

	_, err := svc.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLiquidationList_FiltersByStatus(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc, _, fx := newLiquidationServiceForTest(t, now)

	newTestLiquidation(t, fx.db, fx.customer, 1000, now.AddDate(0, 0, 10), model.StatusPending)
	newTestLiquidation(t, fx.db, fx.customer, 2000, now.AddDate(0, 0, -10), model.StatusOverdue)
	newTestLiquidation(t, fx.db, fx.customer, 3000, now.AddDate(0, 0, -20), model.StatusOverdue)

	results, total, err := svc.List(context.Background(), LiquidationFilter{Status: model.StatusOverdue})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, r := range results {
		assert.Equal(t, model.StatusOverdue, r.Status)
	}
}

func TestLiquidationPenaltyPreview(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc, _, fx := newLiquidationServiceForTest(t, now)

	liq := newTestLiquidation(t, fx.db, fx.customer, 50000, now.AddDate(0, 0, -5), model.StatusOverdue)

	preview, err := svc.PenaltyPreview(context.Background(), liq.ID.String(), "0.01")
	require.NoError(t, err)
	assert.Equal(t, "2500.00", preview.Penalty)
	assert.Equal(t, "52500.00", preview.Total)
}
