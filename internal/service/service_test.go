package service

import (
	"fmt"
	"testing"
	"time"

	"backend/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens an isolated in-memory database with the schema migrated.
// Each test gets its own named shared-cache database so pooled connections
// see the same data without leaking between tests.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Customer{},
		&model.Liquidation{},
	))

	return db
}

func newTestCustomer(t *testing.T, db *gorm.DB) *model.Customer {
	t.Helper()

	customer := model.Customer{
		LastName:  "KONE",
		FirstName: "Amadou",
		Address:   "Cocody, Abidjan",
		IFU:       "IFU-" + time.Now().Format("150405.000000000"),
		Phone:     "+2250701020304",
		Email:     "amadou-" + time.Now().Format("150405.000000000") + "@example.ci",
	}
	require.NoError(t, db.Create(&customer).Error)
	return &customer
}

func newTestLiquidation(t *testing.T, db *gorm.DB, customer *model.Customer, amount int64, dueDate time.Time, status string) *model.Liquidation {
	t.Helper()

	liq := model.Liquidation{
		CustomerID: customer.ID,
		TaxType:    "TVA",
		Amount:     decimal.NewFromInt(amount),
		IssueDate:  dueDate.AddDate(0, 0, -30),
		DueDate:    dueDate,
		Status:     status,
	}
	require.NoError(t, db.Create(&liq).Error)
	liq.Customer = customer
	return &liq
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
