package handler

import (
	"net/http"
	"time"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// QRDataHandler exposes the QR metadata query and maintenance surface.
type QRDataHandler struct {
	qrDataService service.QRDataService
}

func NewQRDataHandler(qrDataService service.QRDataService) *QRDataHandler {
	return &QRDataHandler{qrDataService: qrDataService}
}

func (h *QRDataHandler) RegisterRoutes(router *gin.RouterGroup) {
	qrData := router.Group("/api/liquidations/qr-data", middleware.RequireAuth())
	{
		qrData.GET("/with-qr", h.ListWithQR)
		qrData.GET("/without-qr", h.ListWithoutQR)
		qrData.GET("/type/:qrType", h.ListByQRType)
		qrData.GET("/transaction/:transactionId", h.FindByTransactionID)
		qrData.GET("/transaction/:transactionId/exists", h.TransactionIDExists)
		qrData.GET("/customer/:customerId", h.ListWithQRByCustomer)
		qrData.GET("/status/:status", h.ListWithQRByStatus)
		qrData.GET("/tax-type/:taxType", h.ListWithQRByTaxType)
		qrData.GET("/today", h.ListGeneratedToday)
		qrData.GET("/this-week", h.ListGeneratedThisWeek)
		qrData.GET("/this-month", h.ListGeneratedThisMonth)
		qrData.GET("/with-penalties", h.ListWithPenalties)
		qrData.GET("/total-amount-range", h.ListByTotalAmountRange)
		qrData.GET("/penalty-amount-range", h.ListByPenaltyAmountRange)
		qrData.GET("/stats", h.Stats)
		qrData.GET("/stats/count-by-type", h.CountByType)
		qrData.GET("/stats/total-amount", h.TotalAmount)
		qrData.GET("/stats/total-penalties", h.TotalPenalties)
		qrData.GET("/validate/:id", h.HasValidQRCode)
		qrData.PUT("/update-total/:id", h.UpdateTotalAmount)
		qrData.PUT("/update-total", h.UpdateAllTotalAmounts)
		qrData.DELETE("/clear/:id", middleware.RequireRole("admin"), h.ClearQRData)
		qrData.DELETE("/clear/customer/:customerId", middleware.RequireRole("admin"), h.ClearQRDataByCustomer)
		qrData.DELETE("/clear/older-than", middleware.RequireRole("admin"), h.ClearQRDataOlderThan)
	}
}

// ListWithQR lists liquidations carrying a QR artifact
// @Summary      Liquidations with QR
// @Tags         qr-data
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.LiquidationResponse}
// @Router       /api/liquidations/qr-data/with-qr [get]
func (h *QRDataHandler) ListWithQR(c *gin.Context) {
	liquidations, err := h.qrDataService.ListWithQR(c.Request.Context())
	h.respondList(c, liquidations, err)
}

// ListWithoutQR lists liquidations without a QR artifact
// @Summary      Liquidations without QR
// @Tags         qr-data
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.LiquidationResponse}
// @Router       /api/liquidations/qr-data/without-qr [get]
func (h *QRDataHandler) ListWithoutQR(c *gin.Context) {
	liquidations, err := h.qrDataService.ListWithoutQR(c.Request.Context())
	h.respondList(c, liquidations, err)
}

// ListByQRType filters artifacts by QR variant
// @Summary      Liquidations by QR type
// @Tags         qr-data
// @Security     BearerAuth
// @Produce      json
// @Param        qrType  path      string  true  "QR type (STATIC, DYNAMIC, P2P, PENALTY)"
// @Success      200     {object}  response.Response{data=[]service.LiquidationResponse}
// @Failure      400     {object}  response.Response
// @Router       /api/liquidations/qr-data/type/{qrType} [get]
func (h *QRDataHandler) ListByQRType(c *gin.Context) {
	liquidations, err := h.qrDataService.ListByQRType(c.Request.Context(), c.Param("qrType"))
	h.respondList(c, liquidations, err)
}

// FindByTransactionID resolves an artifact by its transaction reference
// @Summary      Liquidation by transaction id
// @Tags         qr-data
// @Security     BearerAuth
// @Produce      json
// @Param        transactionId  path      string  true  "Transaction ID"
// @Success      200            {object}  response.Response{data=service.LiquidationResponse}
// @Failure      404            {object}  response.Response
// @Router       /api/liquidations/qr-data/transaction/{transactionId} [get]
func (h *QRDataHandler) FindByTransactionID(c *gin.Context) {
	liquidation, err := h.qrDataService.FindByTransactionID(c.Request.Context(), c.Param("transactionId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, liquidation))
}

// TransactionIDExists reports whether a transaction reference is taken
// @Summary      Transaction id exists
// @Tags         qr-data
// @Security     BearerAuth
// @Produce      json
// @Param        transactionId  path      string  true  "Transaction ID"
// @Success      200            {object}  response.Response{data=object}
// @Router       /api/liquidations/qr-data/transaction/{transactionId}/exists [get]
func (h *QRDataHandler) TransactionIDExists(c *gin.Context) {
	exists, err := h.qrDataService.TransactionIDExists(c.Request.Context(), c.Param("transactionId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"exists": exists}))
}

// ListWithQRByCustomer lists a customer's artifacts
// @Summary      Customer's liquidations with QR
// @Tags         qr-data
// @Security     BearerAuth
// @Produce      json
// @Param        customerId  path      string  true  "Customer ID"
// @Success      200         {object}  response.Response{data=[]service.LiquidationResponse}
// @Router       /api/liquidations/qr-data/customer/{customerId} [get]
func (h *QRDataHandler) ListWithQRByCustomer(c *gin.Context) {
	liquidations, err := h.qrDataService.ListWithQRByCustomer(c.Request.Context(), c.Param("customerId"))
	h.respondList(c, liquidations, err)
}

// ListWithQRByStatus filters artifacts by liquidation status
// @Summary      Liquidations with QR by status
// @Tags         qr-data
// @Security     BearerAuth
// @Produce      json
// @Param        status  path      string  true  "Status (PENDING, OVERDUE, PAID)"
// @Success      200     {object}  response.Response{data=[]service.LiquidationResponse}
// @Router       /api/liquidations/qr-data/status/{status} [get]
func (h *QRDataHandler) ListWithQRByStatus(c *gin.Context) {
	liquidations, err := h.qrDataService.ListWithQRByStatus(c.Request.Context(), c.Param("status"))
	h.respondList(c, liquidations, err)
}

// ListWithQRByTaxType filters artifacts by tax type
// @Summary      Liquidations with QR by tax type
// @Tags         qr-data
// @Security     BearerAuth
// @Produce      json
// @Param        taxType  path      string  true  "Tax type"
// @Success      200      {object}  response.Response{data=[]service.LiquidationResponse}
// @Router       /api/liquidations/qr-data/tax-type/{taxType} [get]
func (h *QRDataHandler) ListWithQRByTaxType(c *gin.Context) {
	liquidations, err := h.qrDataService.ListWithQRByTaxType(c.Request.Context(), c.Param("taxType"))
	h.respondList(c, liquidations, err)
}

// ListGeneratedToday lists artifacts generated today
// @Summary      QR generated today
// @Tags         qr-data
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.LiquidationResponse}
// @Router       /api/liquidations/qr-data/today [get]
func (h *QRDataHandler) ListGeneratedToday(c *gin.Context) {
	liquidations, err := h.qrDataService.ListGeneratedToday(c.Request.Context())
	h.respondList(c, liquidations, err)
}

// ListGeneratedThisWeek lists artifacts generated Monday through Sunday of the current week
// @Summary      QR generated this week
// @Tags         qr-data
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.LiquidationResponse}
// @Router       /api/liquidations/qr-data/this-week [get]
func (h *QRDataHandler) ListGeneratedThisWeek(c *gin.Context) {
	liquidations, err := h.qrDataService.ListGeneratedThisWeek(c.Request.Context())
	h.respondList(c, liquidations, err)
}

// ListGeneratedThisMonth lists artifacts generated in the current month
// @Summary      QR generated this month
// @Tags         qr-data
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.LiquidationResponse}
// @Router       /api/liquidations/qr-data/this-month [get]
func (h *QRDataHandler) ListGeneratedThisMonth(c *gin.Context) {
	liquidations, err := h.qrDataService.ListGeneratedThisMonth(c.Request.Context())
	h.respondList(c, liquidations, err)
}

// ListWithPenalties lists artifacts carrying a positive penalty
// @Summary      Liquidations with penalties
// @Tags         qr-data
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.LiquidationResponse}
// @Router       /api/liquidations/qr-data/with-penalties [get]
func (h *QRDataHandler) ListWithPenalties(c *gin.Context) {
	liquidations, err := h.qrDataService.ListWithPenalties(c.Request.Context())
	h.respondList(c, liquidations, err)
}

// ListByTotalAmountRange filters artifacts by stored total
// @Summary      Liquidations by total amount range
// @Tags         qr-data
// @Security     BearerAuth
// @Produce      json
// @Param        min  query     string  true  "Minimum total amount"
// @Param        max  query     string  true  "Maximum total amount"
// @Success      200  {object}  response.Response{data=[]service.LiquidationResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/liquidations/qr-data/total-amount-range [get]
func (h *QRDataHandler) ListByTotalAmountRange(c *gin.Context) {
	liquidations, err := h.qrDataService.ListByTotalAmountRange(c.Request.Context(), c.Query("min"), c.Query("max"))
	h.respondList(c, liquidations, err)
}

// ListByPenaltyAmountRange filters artifacts by stored penalty
// @Summary      Liquidations by penalty amount range
// @Tags         qr-data
// @Security     BearerAuth
// @Produce      json
// @Param        min  query     string  true  "Minimum penalty amount"
// @Param        max  query     string  true  "Maximum penalty amount"
// @Success      200  {object}  response.Response{data=[]service.LiquidationResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/liquidations/qr-data/penalty-amount-range [get]
func (h *QRDataHandler) ListByPenaltyAmountRange(c *gin.Context) {
	liquidations, err := h.qrDataService.ListByPenaltyAmountRange(c.Request.Context(), c.Query("min"), c.Query("max"))
	h.respondList(c, liquidations, err)
}

// Stats returns the full QR aggregate block
// @Summary      QR statistics
// @Tags         qr-data
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.QRStatsResponse}
// @Router       /api/liquidations/qr-data/stats [get]
func (h *QRDataHandler) Stats(c *gin.Context) {
	stats, err := h.qrDataService.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// CountByType returns artifact counts per QR variant
// @Summary      Count by QR type
// @Tags         qr-data
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/liquidations/qr-data/stats/count-by-type [get]
func (h *QRDataHandler) CountByType(c *gin.Context) {
	stats, err := h.qrDataService.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats.CountByType))
}

// TotalAmount sums the effective amount over artifacts
// @Summary      Total amount with QR
// @Tags         qr-data
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/liquidations/qr-data/stats/total-amount [get]
func (h *QRDataHandler) TotalAmount(c *gin.Context) {
	total, err := h.qrDataService.TotalAmountWithQR(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"total_amount": total}))
}

// TotalPenalties sums the stored penalties
// @Summary      Total penalties
// @Tags         qr-data
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/liquidations/qr-data/stats/total-penalties [get]
func (h *QRDataHandler) TotalPenalties(c *gin.Context) {
	total, err := h.qrDataService.TotalPenalties(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"total_penalties": total}))
}

// HasValidQRCode checks the completeness of one artifact
// @Summary      Validate stored QR artifact
// @Tags         qr-data
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Liquidation ID"
// @Success      200  {object}  response.Response{data=object}
// @Failure      404  {object}  response.Response
// @Router       /api/liquidations/qr-data/validate/{id} [get]
func (h *QRDataHandler) HasValidQRCode(c *gin.Context) {
	valid, err := h.qrDataService.HasValidQRCode(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"valid": valid}))
}

// UpdateTotalAmount recomputes one stored total
// @Summary      Update total amount
// @Tags         qr-data
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Liquidation ID"
// @Success      200  {object}  response.Response{data=service.LiquidationResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/liquidations/qr-data/update-total/{id} [put]
func (h *QRDataHandler) UpdateTotalAmount(c *gin.Context) {
	liquidation, err := h.qrDataService.UpdateTotalAmount(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, liquidation))
}

// UpdateAllTotalAmounts recomputes every stored total
// @Summary      Update all total amounts
// @Tags         qr-data
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/liquidations/qr-data/update-total [put]
func (h *QRDataHandler) UpdateAllTotalAmounts(c *gin.Context) {
	updated, err := h.qrDataService.UpdateAllTotalAmounts(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"updated": updated}))
}

// ClearQRData wipes one artifact
// @Summary      Clear QR data
// @Tags         qr-data
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Liquidation ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/liquidations/qr-data/clear/{id} [delete]
func (h *QRDataHandler) ClearQRData(c *gin.Context) {
	if err := h.qrDataService.ClearQRData(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"cleared": true}))
}

// ClearQRDataByCustomer wipes every artifact of a customer
// @Summary      Clear QR data by customer
// @Tags         qr-data
// @Security     BearerAuth
// @Produce      json
// @Param        customerId  path      string  true  "Customer ID"
// @Success      200         {object}  response.Response{data=object}
// @Router       /api/liquidations/qr-data/clear/customer/{customerId} [delete]
func (h *QRDataHandler) ClearQRDataByCustomer(c *gin.Context) {
	cleared, err := h.qrDataService.ClearQRDataByCustomer(c.Request.Context(), c.Param("customerId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"cleared": cleared}))
}

// ClearQRDataOlderThan wipes artifacts generated before a cutoff
// @Summary      Clear QR data older than
// @Tags         qr-data
// @Security     BearerAuth
// @Produce      json
// @Param        cutoff  query     string  true  "Cutoff timestamp (RFC 3339)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      400     {object}  response.Response
// @Router       /api/liquidations/qr-data/clear/older-than [delete]
func (h *QRDataHandler) ClearQRDataOlderThan(c *gin.Context) {
	cutoff, err := time.Parse(time.RFC3339, c.Query("cutoff"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, CodeValidation, "invalid cutoff: "+err.Error()))
		return
	}

	cleared, err := h.qrDataService.ClearQRDataOlderThan(c.Request.Context(), cutoff)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"cleared": cleared}))
}

func (h *QRDataHandler) respondList(c *gin.Context, liquidations []service.LiquidationResponse, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"liquidations": liquidations,
		"count":        len(liquidations),
	}))
}
