package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type QRHandler struct {
	qrService service.QRService
}

func NewQRHandler(qrService service.QRService) *QRHandler {
	return &QRHandler{qrService: qrService}
}

func (h *QRHandler) RegisterRoutes(router *gin.RouterGroup) {
	qr := router.Group("/api/liquidations/:id/qr", middleware.RequireAuth())
	{
		qr.POST("/static", h.GenerateStatic)
		qr.POST("/dynamic", h.GenerateDynamic)
		qr.POST("/p2p", h.GenerateP2P)
		qr.POST("/penalty", h.GeneratePenalty)
		qr.GET("", h.GetArtifact)
		qr.GET("/reference", h.TransactionReference)
		qr.GET("/validate", h.Validate)
	}
}

type dynamicQRRequest struct {
	TransactionReference string `json:"transaction_reference"`
}

type p2pQRRequest struct {
	BeneficiaryPhone string `json:"beneficiary_phone" binding:"required"`
}

type penaltyQRRequest struct {
	DailyRate string `json:"daily_rate" binding:"required"`
}

// GenerateStatic creates a STATIC QR artifact
// @Summary      Generate static QR
// @Description  Encodes the base amount into a static payload and stamps the artifact
// @Tags         qr
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Liquidation ID"
// @Success      200  {object}  response.Response{data=service.QRGenerationResponse}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/liquidations/{id}/qr/static [post]
func (h *QRHandler) GenerateStatic(c *gin.Context) {
	artifact, err := h.qrService.GenerateStaticQR(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, artifact))
}

// GenerateDynamic creates a DYNAMIC QR artifact
// @Summary      Generate dynamic QR
// @Description  Encodes the base amount under a transaction reference; a fresh reference is minted when omitted
// @Tags         qr
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string            true   "Liquidation ID"
// @Param        payload  body      dynamicQRRequest  false  "Optional transaction reference"
// @Success      200      {object}  response.Response{data=service.QRGenerationResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/liquidations/{id}/qr/dynamic [post]
func (h *QRHandler) GenerateDynamic(c *gin.Context) {
	var req dynamicQRRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeBindError(c, err)
			return
		}
	}

	artifact, err := h.qrService.GenerateDynamicQR(c.Request.Context(), c.Param("id"), req.TransactionReference)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, artifact))
}

// GenerateP2P creates a P2P QR artifact keyed on a beneficiary phone
// @Summary      Generate P2P QR
// @Tags         qr
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string        true  "Liquidation ID"
// @Param        payload  body      p2pQRRequest  true  "Beneficiary phone"
// @Success      200      {object}  response.Response{data=service.QRGenerationResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/liquidations/{id}/qr/p2p [post]
func (h *QRHandler) GenerateP2P(c *gin.Context) {
	var req p2pQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	artifact, err := h.qrService.GenerateP2PQR(c.Request.Context(), c.Param("id"), req.BeneficiaryPhone)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, artifact))
}

// GeneratePenalty creates a PENALTY QR artifact carrying base + penalty
// @Summary      Generate penalty QR
// @Description  Computes the overdue penalty at the given daily rate and encodes the combined total
// @Tags         qr
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string            true  "Liquidation ID"
// @Param        payload  body      penaltyQRRequest  true  "Daily penalty rate"
// @Success      200      {object}  response.Response{data=service.QRGenerationResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/liquidations/{id}/qr/penalty [post]
func (h *QRHandler) GeneratePenalty(c *gin.Context) {
	var req penaltyQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	artifact, err := h.qrService.GeneratePenaltyQR(c.Request.Context(), c.Param("id"), req.DailyRate)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, artifact))
}

// GetArtifact returns the stored QR artifact
// @Summary      Get QR artifact
// @Tags         qr
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Liquidation ID"
// @Success      200  {object}  response.Response{data=service.QRGenerationResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/liquidations/{id}/qr [get]
func (h *QRHandler) GetArtifact(c *gin.Context) {
	artifact, err := h.qrService.GetArtifact(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, artifact))
}

// TransactionReference returns the stored reference or mints a fresh one
// @Summary      Get transaction reference
// @Tags         qr
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Liquidation ID"
// @Success      200  {object}  response.Response{data=object}
// @Failure      404  {object}  response.Response
// @Router       /api/liquidations/{id}/qr/reference [get]
func (h *QRHandler) TransactionReference(c *gin.Context) {
	reference, err := h.qrService.TransactionReference(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"transaction_reference": reference}))
}

// Validate reports whether the liquidation can carry a QR artifact
// @Summary      Validate liquidation for QR
// @Tags         qr
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Liquidation ID"
// @Success      200  {object}  response.Response{data=service.QRValidationResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/liquidations/{id}/qr/validate [get]
func (h *QRHandler) Validate(c *gin.Context) {
	result, err := h.qrService.ValidateForQR(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
