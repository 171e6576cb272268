package handler

import (
	"net/http"
	"time"

	"backend/internal/config"
	"backend/internal/service"
	"backend/pkg/response"
	"backend/pkg/uemoa"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// UemoaQRHandler exposes the raw payment codec for ad-hoc encodes and
// payload inspection, outside the liquidation lifecycle.
type UemoaQRHandler struct {
	codec uemoa.Codec
	cfg   config.UemoaConfig
}

func NewUemoaQRHandler(codec uemoa.Codec, cfg config.UemoaConfig) *UemoaQRHandler {
	return &UemoaQRHandler{codec: codec, cfg: cfg}
}

func (h *UemoaQRHandler) RegisterRoutes(router *gin.RouterGroup) {
	qr := router.Group("/api/uemoa-qr")
	{
		qr.POST("/generate-static", h.GenerateStatic)
		qr.POST("/generate-dynamic", h.GenerateDynamic)
		qr.POST("/parse", h.Parse)
		qr.GET("/test", h.Test)
		qr.GET("/health", h.Health)
	}
}

type uemoaGenerateRequest struct {
	MerchantName string `json:"merchant_name"`
	MerchantCity string `json:"merchant_city"`
	Alias        string `json:"alias"`
	Amount       string `json:"amount" binding:"required"`
	TransactionID string `json:"transaction_id"`
}

type uemoaParseRequest struct {
	Payload string `json:"payload" binding:"required"`
}

type uemoaQRResponse struct {
	QRCodeData    string `json:"qr_code_data"`
	QRImageBase64 string `json:"qr_image_base64"`
	Type          string `json:"type"`
	GeneratedAt   string `json:"generated_at"`
}

// GenerateStatic encodes an ad-hoc static payload
// @Summary      Generate static UEMOA QR
// @Description  Encodes a static payload from raw merchant data, defaulting to the configured merchant
// @Tags         uemoa-qr
// @Accept       json
// @Produce      json
// @Param        payload  body      uemoaGenerateRequest  true  "Generate Payload"
// @Success      200      {object}  response.Response{data=uemoaQRResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/uemoa-qr/generate-static [post]
func (h *UemoaQRHandler) GenerateStatic(c *gin.Context) {
	h.generate(c, uemoa.TypeStatic)
}

// GenerateDynamic encodes an ad-hoc dynamic payload
// @Summary      Generate dynamic UEMOA QR
// @Description  Encodes a dynamic payload carrying a transaction reference
// @Tags         uemoa-qr
// @Accept       json
// @Produce      json
// @Param        payload  body      uemoaGenerateRequest  true  "Generate Payload"
// @Success      200      {object}  response.Response{data=uemoaQRResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/uemoa-qr/generate-dynamic [post]
func (h *UemoaQRHandler) GenerateDynamic(c *gin.Context) {
	h.generate(c, uemoa.TypeDynamic)
}

func (h *UemoaQRHandler) generate(c *gin.Context, qrType string) {
	var req uemoaGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, CodeValidation, "invalid amount: "+err.Error()))
		return
	}

	data := uemoa.PaymentData{
		Merchant: uemoa.MerchantInfo{
			Name:         valueOr(req.MerchantName, h.cfg.MerchantName),
			City:         valueOr(req.MerchantCity, h.cfg.MerchantCity),
			CountryCode:  h.cfg.CountryCode,
			CategoryCode: h.cfg.MerchantCategoryCode,
			Alias:        valueOr(req.Alias, h.cfg.MerchantAlias),
		},
		Amount:        amount,
		Currency:      h.cfg.Currency,
		TransactionID: req.TransactionID,
		Type:          qrType,
	}

	encode := h.codec.EncodeStatic
	if qrType == uemoa.TypeDynamic {
		if data.TransactionID == "" {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, CodeValidation, "transaction_id is required for dynamic QR"))
			return
		}
		encode = h.codec.EncodeDynamic
	}

	payload, err := encode(data)
	if err != nil {
		writeError(c, &service.CodecError{Op: "encode", Err: err})
		return
	}
	image, err := h.codec.RenderImage(data)
	if err != nil {
		writeError(c, &service.CodecError{Op: "render", Err: err})
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, uemoaQRResponse{
		QRCodeData:    payload,
		QRImageBase64: image,
		Type:          qrType,
		GeneratedAt:   time.Now().Format(time.RFC3339),
	}))
}

// Parse decodes a payload back into payment data
// @Summary      Parse UEMOA QR payload
// @Description  Verifies the CRC and returns the decoded merchant and amount
// @Tags         uemoa-qr
// @Accept       json
// @Produce      json
// @Param        payload  body      uemoaParseRequest  true  "Payload to parse"
// @Success      200      {object}  response.Response{data=object}
// @Failure      400      {object}  response.Response
// @Router       /api/uemoa-qr/parse [post]
func (h *UemoaQRHandler) Parse(c *gin.Context) {
	var req uemoaParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	data, err := h.codec.Decode(req.Payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, CodeValidation, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"merchant_name":  data.Merchant.Name,
		"merchant_city":  data.Merchant.City,
		"country_code":   data.Merchant.CountryCode,
		"alias":          data.Merchant.Alias,
		"amount":         data.Amount.StringFixed(2),
		"currency":       data.Currency,
		"transaction_id": data.TransactionID,
		"type":           data.Type,
	}))
}

// Test encodes a sample payload with the configured merchant
// @Summary      Test UEMOA QR encoding
// @Description  Encodes a 1000 XOF sample payload with the configured merchant defaults
// @Tags         uemoa-qr
// @Produce      json
// @Success      200  {object}  response.Response{data=uemoaQRResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/uemoa-qr/test [get]
func (h *UemoaQRHandler) Test(c *gin.Context) {
	data := uemoa.PaymentData{
		Merchant: uemoa.MerchantInfo{
			Name:         h.cfg.MerchantName,
			City:         h.cfg.MerchantCity,
			CountryCode:  h.cfg.CountryCode,
			CategoryCode: h.cfg.MerchantCategoryCode,
			Alias:        h.cfg.MerchantAlias,
		},
		Amount:   decimal.NewFromInt(1000),
		Currency: h.cfg.Currency,
		Type:     uemoa.TypeStatic,
	}

	payload, err := h.codec.EncodeStatic(data)
	if err != nil {
		writeError(c, &service.CodecError{Op: "encode", Err: err})
		return
	}
	image, err := h.codec.RenderImage(data)
	if err != nil {
		writeError(c, &service.CodecError{Op: "render", Err: err})
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, uemoaQRResponse{
		QRCodeData:    payload,
		QRImageBase64: image,
		Type:          uemoa.TypeStatic,
		GeneratedAt:   time.Now().Format(time.RFC3339),
	}))
}

// Health reports codec availability and the active payment system
// @Summary      UEMOA QR health
// @Tags         uemoa-qr
// @Produce      json
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/uemoa-qr/health [get]
func (h *UemoaQRHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"status":            "UP",
		"payment_system_id": h.cfg.PaymentSystemID,
		"currency":          h.cfg.Currency,
	}))
}

func valueOr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
