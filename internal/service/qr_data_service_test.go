package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQRDataServiceForTest(t *testing.T, now time.Time) (QRDataService, *testFixtures) {
	t.Helper()

	db := newTestDB(t)
	liqRepo := repository.NewLiquidationRepository(db)
	txMgr := repository.NewTransactionManager(db)

	svc := NewQRDataService(liqRepo, txMgr)
	svc.(*qrDataService).now = fixedClock(now)

	return svc, &testFixtures{db: db, customer: newTestCustomer(t, db)}
}

// stampQR writes a complete artifact directly, bypassing the orchestrator.
func stampQR(t *testing.T, fx *testFixtures, liq *model.Liquidation, qrType, reference string, generatedAt time.Time) {
	t.Helper()

	liq.QRCodeData = "payload-" + reference
	liq.QRImageBase64 = "aW1hZ2U="
	liq.QRType = qrType
	liq.MerchantChannel = "int.bceao.pi"
	liq.TransactionID = &reference
	liq.QRGeneratedAt = &generatedAt
	if qrType == model.QRTypePenalty {
		penalty := decimal.NewFromInt(2500)
		total := liq.Amount.Add(penalty)
		liq.PenaltyAmount = &penalty
		liq.TotalAmount = &total
	}
	require.NoError(t, fx.db.Save(liq).Error)
}

func TestQRData_WithAndWithoutQR(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc, fx := newQRDataServiceForTest(t, now)

	withQR := newTestLiquidation(t, fx.db, fx.customer, 1000, now.AddDate(0, 0, 10), model.StatusPending)
	newTestLiquidation(t, fx.db, fx.customer, 2000, now.AddDate(0, 0, 10), model.StatusPending)
	stampQR(t, fx, withQR, model.QRTypeStatic, "REF-1", now)

	got, err := svc.ListWithQR(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, withQR.ID.String(), got[0].ID)

	got, err = svc.ListWithoutQR(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestQRData_ListByQRType(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc, fx := newQRDataServiceForTest(t, now)

	static := newTestLiquidation(t, fx.db, fx.customer, 1000, now.AddDate(0, 0, 10), model.StatusPending)
	dynamic := newTestLiquidation(t, fx.db, fx.customer, 2000, now.AddDate(0, 0, 10), model.StatusPending)
	stampQR(t, fx, static, model.QRTypeStatic, "REF-S", now)
	stampQR(t, fx, dynamic, model.QRTypeDynamic, "REF-D", now)

	got, err := svc.ListByQRType(context.Background(), model.QRTypeDynamic)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, dynamic.ID.String(), got[0].ID)

	_, err = svc.ListByQRType(context.Background(), "BOGUS")
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestQRData_TimeWindows(t *testing.T) {
	// A Monday, so the week window starts today.
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc, fx := newQRDataServiceForTest(t, now)

	today := newTestLiquidation(t, fx.db, fx.customer, 1000, now.AddDate(0, 0, 10), model.StatusPending)
	lastWeek := newTestLiquidation(t, fx.db, fx.customer, 2000, now.AddDate(0, 0, 10), model.StatusPending)
	lastMonth := newTestLiquidation(t, fx.db, fx.customer, 3000, now.AddDate(0, 0, 10), model.StatusPending)

	stampQR(t, fx, today, model.QRTypeStatic, "REF-TODAY", now.Add(-2*time.Hour))
	stampQR(t, fx, lastWeek, model.QRTypeStatic, "REF-LASTWEEK", now.AddDate(0, 0, -3))
	stampQR(t, fx, lastMonth, model.QRTypeStatic, "REF-LASTMONTH", now.AddDate(0, -1, -5))

	got, err := svc.ListGeneratedToday(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, today.ID.String(), got[0].ID)

	got, err = svc.ListGeneratedThisWeek(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1, "Monday week window excludes last week's artifact")

	got, err = svc.ListGeneratedThisMonth(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestQRData_TransactionLookups(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc, fx := newQRDataServiceForTest(t, now)

	liq := newTestLiquidation(t, fx.db, fx.customer, 1000, now.AddDate(0, 0, 10), model.StatusPending)
	stampQR(t, fx, liq, model.QRTypeDynamic, "REF-LOOKUP", now)

	found, err := svc.FindByTransactionID(context.Background(), "REF-LOOKUP")
	require.NoError(t, err)
	assert.Equal(t, liq.ID.String(), found.ID)

	_, err = svc.FindByTransactionID(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrNotFound)

	exists, err := svc.TransactionIDExists(context.Background(), "REF-LOOKUP")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.TransactionIDExists(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestQRData_Stats(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc, fx := newQRDataServiceForTest(t, now)

	static := newTestLiquidation(t, fx.db, fx.customer, 1000, now.AddDate(0, 0, 10), model.StatusPending)
	penalty := newTestLiquidation(t, fx.db, fx.customer, 50000, now.AddDate(0, 0, -5), model.StatusOverdue)
	stampQR(t, fx, static, model.QRTypeStatic, "REF-A", now)
	stampQR(t, fx, penalty, model.QRTypePenalty, "REF-B", now)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.TotalWithQR)
	assert.EqualValues(t, 1, stats.CountByType[model.QRTypeStatic])
	assert.EqualValues(t, 1, stats.CountByType[model.QRTypePenalty])
	// 1000 (no total stored -> base) + 52500 (stored total)
	assert.Equal(t, "53500.00", stats.TotalAmount)
	assert.Equal(t, "2500.00", stats.TotalPenalties)
}

func TestQRData_HasValidQRCode(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc, fx := newQRDataServiceForTest(t, now)

	liq := newTestLiquidation(t, fx.db, fx.customer, 1000, now.AddDate(0, 0, 10), model.StatusPending)

	valid, err := svc.HasValidQRCode(context.Background(), liq.ID.String())
	require.NoError(t, err)
	assert.False(t, valid)

	stampQR(t, fx, liq, model.QRTypeStatic, "REF-V", now)

	valid, err = svc.HasValidQRCode(context.Background(), liq.ID.String())
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestQRData_ClearOperations(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc, fx := newQRDataServiceForTest(t, now)

	liq := newTestLiquidation(t, fx.db, fx.customer, 1000, now.AddDate(0, 0, 10), model.StatusPending)
	stampQR(t, fx, liq, model.QRTypePenalty, "REF-CLEAR", now)

	require.NoError(t, svc.ClearQRData(context.Background(), liq.ID.String()))

	stored := reloadLiquidation(t, fx.db, liq)
	assert.False(t, stored.HasQRCode())
	assert.Nil(t, stored.TransactionID)
	assert.Nil(t, stored.PenaltyAmount)
	assert.Nil(t, stored.TotalAmount)

	// Clearing an already-clean record is a no-op success.
	require.NoError(t, svc.ClearQRData(context.Background(), liq.ID.String()))
}

func TestQRData_ClearByCustomerAndOlderThan(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc, fx := newQRDataServiceForTest(t, now)

	recent := newTestLiquidation(t, fx.db, fx.customer, 1000, now.AddDate(0, 0, 10), model.StatusPending)
	old := newTestLiquidation(t, fx.db, fx.customer, 2000, now.AddDate(0, 0, 10), model.StatusPending)
	stampQR(t, fx, recent, model.QRTypeStatic, "REF-RECENT", now)
	stampQR(t, fx, old, model.QRTypeStatic, "REF-OLD", now.AddDate(0, 0, -40))

	cleared, err := svc.ClearQRDataOlderThan(context.Background(), now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, 1, cleared)
	assert.False(t, reloadLiquidation(t, fx.db, old).HasQRCode())
	assert.True(t, reloadLiquidation(t, fx.db, recent).HasQRCode())

	cleared, err = svc.ClearQRDataByCustomer(context.Background(), fx.customer.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, cleared)
	assert.False(t, reloadLiquidation(t, fx.db, recent).HasQRCode())
}

func TestQRData_UpdateTotalAmounts(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc, fx := newQRDataServiceForTest(t, now)

	liq := newTestLiquidation(t, fx.db, fx.customer, 1000, now.AddDate(0, 0, 10), model.StatusPending)
	stampQR(t, fx, liq, model.QRTypeStatic, "REF-TOTAL", now)

	resp, err := svc.UpdateTotalAmount(context.Background(), liq.ID.String())
	require.NoError(t, err)
	require.NotNil(t, resp.TotalAmount)
	assert.Equal(t, "1000.00", *resp.TotalAmount, "no penalty means total equals base")

	updated, err := svc.UpdateAllTotalAmounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, updated)
}
