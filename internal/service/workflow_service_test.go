package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/linktoken"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkflowServiceForTest(t *testing.T, now time.Time) (WorkflowService, *testFixtures) {
	t.Helper()

	db := newTestDB(t)
	customerRepo := repository.NewCustomerRepository(db)
	liqRepo := repository.NewLiquidationRepository(db)

	svc := NewWorkflowService(customerRepo, liqRepo, &fakeCodec{}, testUemoaConfig())
	svc.(*workflowService).now = fixedClock(now)

	return svc, &testFixtures{db: db, customer: newTestCustomer(t, db)}
}

func TestWorkflowGenerate_BuildsLinkAndQR(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc, _ := newWorkflowServiceForTest(t, now)

	resp, err := svc.Generate(context.Background(), WorkflowGenerateRequest{
		ClientInfo: "42",
		Amount:     "5000",
	})
	require.NoError(t, err)

	assert.Equal(t, "5000.00", resp.Amount)
	assert.Contains(t, resp.QRCodeData, "STATIC|")
	assert.NotEmpty(t, resp.QRImageBase64)

	ctx, err := linktoken.Decode(resp.Link)
	require.NoError(t, err)
	assert.Equal(t, "42", ctx.ClientInfo)
	assert.Equal(t, "5000", ctx.Amount.String())
	assert.True(t, ctx.IssuedAt.Equal(now))
}

func TestWorkflowGenerate_DynamicVariant(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc, _ := newWorkflowServiceForTest(t, now)

	resp, err := svc.Generate(context.Background(), WorkflowGenerateRequest{
		ClientInfo: "client-x",
		Amount:     "750",
		Dynamic:    true,
	})
	require.NoError(t, err)
	assert.Contains(t, resp.QRCodeData, "DYNAMIC|WF-client-x-")
}

func TestWorkflowGenerate_AmountBounds(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc, _ := newWorkflowServiceForTest(t, now)

	var validationErr *ValidationError

	_, err := svc.Generate(context.Background(), WorkflowGenerateRequest{ClientInfo: "a", Amount: "0"})
	assert.ErrorAs(t, err, &validationErr)

	_, err = svc.Generate(context.Background(), WorkflowGenerateRequest{ClientInfo: "a", Amount: "1000000"})
	assert.ErrorAs(t, err, &validationErr)
}

func TestWorkflowGenerate_RejectsDelimiterInClientInfo(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc, _ := newWorkflowServiceForTest(t, now)

	_, err := svc.Generate(context.Background(), WorkflowGenerateRequest{ClientInfo: "a:b", Amount: "100"})
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestWorkflowResolveLink_OpaqueClientInfo(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc, _ := newWorkflowServiceForTest(t, now)

	gen, err := svc.Generate(context.Background(), WorkflowGenerateRequest{ClientInfo: "42", Amount: "5000"})
	require.NoError(t, err)

	resolved, err := svc.ResolveLink(context.Background(), gen.Link)
	require.NoError(t, err)

	assert.Equal(t, "42", resolved.Client.ClientInfo)
	assert.Empty(t, resolved.Client.CustomerName, "non-uuid client info passes through untouched")
	assert.Equal(t, "5000.00", resolved.Transaction.Amount)
	assert.Equal(t, model.StatusPending, resolved.Transaction.Status)
	assert.Equal(t, "UEMOA_QR_PAYMENT", resolved.Transaction.Type)
	assert.Contains(t, resolved.Transaction.PaymentRef, "UEMOA-")
	assert.Equal(t, now.Format(time.RFC3339), resolved.Transaction.Timestamp)
}

func TestWorkflowResolveLink_EnrichesKnownCustomer(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc, fx := newWorkflowServiceForTest(t, now)

	liq := newTestLiquidation(t, fx.db, fx.customer, 5000, now.AddDate(0, 0, 10), model.StatusPending)

	gen, err := svc.Generate(context.Background(), WorkflowGenerateRequest{
		ClientInfo: fx.customer.ID.String(),
		Amount:     "5000",
	})
	require.NoError(t, err)

	resolved, err := svc.ResolveLink(context.Background(), gen.Link)
	require.NoError(t, err)

	assert.Equal(t, fx.customer.FullName(), resolved.Client.CustomerName)
	assert.Equal(t, fx.customer.IFU, resolved.Client.CustomerIFU)
	assert.Equal(t, fx.customer.ID.String(), resolved.Client.ClientInfo,
		"enrichment keeps the embedded client info")
	assert.Equal(t, liq.ID.String(), resolved.Client.LiquidationID)
}

func TestWorkflowResolveLink_UnknownCustomerIsTerminal(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc, _ := newWorkflowServiceForTest(t, now)

	gen, err := svc.Generate(context.Background(), WorkflowGenerateRequest{
		ClientInfo: uuid.NewString(),
		Amount:     "5000",
	})
	require.NoError(t, err)

	_, err = svc.ResolveLink(context.Background(), gen.Link)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWorkflowResolveLink_MalformedToken(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc, _ := newWorkflowServiceForTest(t, now)

	_, err := svc.ResolveLink(context.Background(), "!!garbage!!")
	assert.ErrorIs(t, err, linktoken.ErrMalformedToken)
}
