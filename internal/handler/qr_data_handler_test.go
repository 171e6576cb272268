package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// stubQRDataService overrides only the methods a test exercises; calling
// anything else panics through the embedded nil interface.
type stubQRDataService struct {
	service.QRDataService
}

func (s *stubQRDataService) ListWithQR(ctx context.Context) ([]service.LiquidationResponse, error) {
	return []service.LiquidationResponse{{ID: "liq-1", QRType: "STATIC"}}, nil
}

func (s *stubQRDataService) ListByQRType(ctx context.Context, qrType string) ([]service.LiquidationResponse, error) {
	return nil, &service.ValidationError{Reason: "unknown qr type " + qrType}
}

func newQRDataTestContext(t *testing.T, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

func TestQRDataHandler_ListWithQR_WritesListEnvelope(t *testing.T) {
	c, w := newQRDataTestContext(t, "/api/liquidations/qr-data/with-qr")

	h := NewQRDataHandler(&stubQRDataService{})
	h.ListWithQR(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
	assert.Contains(t, w.Body.String(), "liq-1")
}

func TestQRDataHandler_ListByQRType_MapsValidationError(t *testing.T) {
	c, w := newQRDataTestContext(t, "/api/liquidations/qr-data/type/BOGUS")
	c.Params = gin.Params{{Key: "qrType", Value: "BOGUS"}}

	h := NewQRDataHandler(&stubQRDataService{})
	h.ListByQRType(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), CodeValidation)
}
