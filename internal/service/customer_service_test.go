package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCustomerServiceForTest(t *testing.T) (CustomerService, *testFixtures) {
	t.Helper()

	db := newTestDB(t)
	customerRepo := repository.NewCustomerRepository(db)
	liqRepo := repository.NewLiquidationRepository(db)

	return NewCustomerService(customerRepo, liqRepo), &testFixtures{db: db}
}

func TestCustomerCreate_UniqueConstraints(t *testing.T) {
	svc, _ := newCustomerServiceForTest(t)

	req := CreateCustomerRequest{
		LastName:  "TRAORE",
		FirstName: "Fatou",
		Address:   "Plateau, Abidjan",
		IFU:       "IFU-UNIQ-1",
		Phone:     "+2250705060708",
		Email:     "fatou@example.ci",
	}

	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	var conflictErr *ConflictError

	dup := req
	dup.Email = "other@example.ci"
	_, err = svc.Create(context.Background(), dup)
	assert.ErrorAs(t, err, &conflictErr, "duplicate IFU")

	dup = req
	dup.IFU = "IFU-UNIQ-2"
	_, err = svc.Create(context.Background(), dup)
	assert.ErrorAs(t, err, &conflictErr, "duplicate email")
}

func TestCustomerUpdate_RechecksOnlyChangedIdentifiers(t *testing.T) {
	svc, fx := newCustomerServiceForTest(t)

	created, err := svc.Create(context.Background(), CreateCustomerRequest{
		LastName: "DIABATE", FirstName: "Issa", Address: "Bouaké",
		IFU: "IFU-UPD-1", Phone: "+2250709101112", Email: "issa@example.ci",
	})
	require.NoError(t, err)
	_ = fx

	// Re-submitting the same IFU must not self-conflict.
	sameIFU := "IFU-UPD-1"
	newPhone := "+2250700000000"
	updated, err := svc.Update(context.Background(), created.ID, UpdateCustomerRequest{
		IFU:   &sameIFU,
		Phone: &newPhone,
	})
	require.NoError(t, err)
	assert.Equal(t, newPhone, updated.Phone)
}

func TestCustomerDelete_RefusedWhileLiquidationsExist(t *testing.T) {
	svc, fx := newCustomerServiceForTest(t)

	customer := newTestCustomer(t, fx.db)
	newTestLiquidation(t, fx.db, customer, 1000, time.Now().AddDate(0, 0, 10), model.StatusPending)

	err := svc.Delete(context.Background(), customer.ID.String())
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	require.NoError(t, fx.db.Where("customer_id = ?", customer.ID).Delete(&model.Liquidation{}).Error)
	require.NoError(t, svc.Delete(context.Background(), customer.ID.String()))
}

func TestCustomerList_Search(t *testing.T) {
	svc, _ := newCustomerServiceForTest(t)

	_, err := svc.Create(context.Background(), CreateCustomerRequest{
		LastName: "KOUASSI", FirstName: "Marie", Address: "Yopougon, Abidjan",
		IFU: "IFU-S-1", Phone: "+2250711111111", Email: "marie@example.ci",
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateCustomerRequest{
		LastName: "OUATTARA", FirstName: "Jean", Address: "Treichville, Abidjan",
		IFU: "IFU-S-2", Phone: "+2250722222222", Email: "jean@example.ci",
	})
	require.NoError(t, err)

	results, total, err := svc.List(context.Background(), "KOUASSI", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, results, 1)
	assert.Equal(t, "KOUASSI", results[0].LastName)
}
