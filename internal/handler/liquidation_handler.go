package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type LiquidationHandler struct {
	liquidationService service.LiquidationService
}

func NewLiquidationHandler(liquidationService service.LiquidationService) *LiquidationHandler {
	return &LiquidationHandler{liquidationService: liquidationService}
}

func (h *LiquidationHandler) RegisterRoutes(router *gin.RouterGroup) {
	liquidations := router.Group("/api/liquidations", middleware.RequireAuth())
	{
		liquidations.POST("", h.Create)
		liquidations.GET("", h.List)
		liquidations.GET("/search", h.Search)
		liquidations.GET("/:id", h.Get)
		liquidations.PUT("/:id", h.Update)
		liquidations.PUT("/:id/pay", h.MarkPaid)
		liquidations.GET("/:id/penalty", h.PenaltyPreview)
		liquidations.DELETE("/:id", middleware.RequireRole("admin"), h.Delete)
	}
}

// Create records a new liquidation
// @Summary      Create liquidation
// @Description  Records a new tax/fee obligation for a customer
// @Tags         liquidations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateLiquidationRequest  true  "Create Liquidation Payload"
// @Success      201      {object}  response.Response{data=service.LiquidationResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/liquidations [post]
func (h *LiquidationHandler) Create(c *gin.Context) {
	var req service.CreateLiquidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	liquidation, err := h.liquidationService.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, liquidation))
}

// List returns a filtered, paginated liquidation listing
// @Summary      List liquidations
// @Tags         liquidations
// @Security     BearerAuth
// @Produce      json
// @Param        customer_id  query     string  false  "Filter by customer"
// @Param        status       query     string  false  "Filter by status (PENDING, OVERDUE, PAID)"
// @Param        start_date   query     string  false  "Issue date from (YYYY-MM-DD)"
// @Param        end_date     query     string  false  "Issue date to (YYYY-MM-DD)"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Items per page (default 20)"
// @Success      200          {object}  response.Response{data=object}
// @Failure      400          {object}  response.Response
// @Router       /api/liquidations [get]
func (h *LiquidationHandler) List(c *gin.Context) {
	params := pagination.Parse(c)

	filter := service.LiquidationFilter{
		CustomerID: c.Query("customer_id"),
		Status:     c.Query("status"),
		StartDate:  c.Query("start_date"),
		EndDate:    c.Query("end_date"),
		Page:       params.Page,
		Limit:      params.Limit,
	}

	liquidations, total, err := h.liquidationService.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"liquidations": liquidations,
		"total":        total,
		"page":         params.Page,
		"limit":        params.Limit,
	}))
}

// Search looks up liquidations by free text
// @Summary      Search liquidations
// @Description  Searches on tax type, status, customer name and IFU
// @Tags         liquidations
// @Security     BearerAuth
// @Produce      json
// @Param        q      query     string  true   "Search term"
// @Param        page   query     int     false  "Page number (default 1)"
// @Param        limit  query     int     false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/liquidations/search [get]
func (h *LiquidationHandler) Search(c *gin.Context) {
	params := pagination.Parse(c)

	liquidations, total, err := h.liquidationService.Search(c.Request.Context(), c.Query("q"), params.Page, params.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"liquidations": liquidations,
		"total":        total,
		"page":         params.Page,
		"limit":        params.Limit,
	}))
}

// Get returns one liquidation with its QR metadata
// @Summary      Get liquidation
// @Tags         liquidations
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Liquidation ID"
// @Success      200  {object}  response.Response{data=service.LiquidationResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/liquidations/{id} [get]
func (h *LiquidationHandler) Get(c *gin.Context) {
	liquidation, err := h.liquidationService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, liquidation))
}

// Update applies a partial update and recomputes the status
// @Summary      Update liquidation
// @Tags         liquidations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                            true  "Liquidation ID"
// @Param        payload  body      service.UpdateLiquidationRequest  true  "Update Liquidation Payload"
// @Success      200      {object}  response.Response{data=service.LiquidationResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/liquidations/{id} [put]
func (h *LiquidationHandler) Update(c *gin.Context) {
	var req service.UpdateLiquidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	liquidation, err := h.liquidationService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, liquidation))
}

// MarkPaid settles a liquidation
// @Summary      Mark liquidation paid
// @Description  Transitions the liquidation to PAID; already-paid records succeed unchanged
// @Tags         liquidations
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Liquidation ID"
// @Success      200  {object}  response.Response{data=service.LiquidationResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/liquidations/{id}/pay [put]
func (h *LiquidationHandler) MarkPaid(c *gin.Context) {
	liquidation, err := h.liquidationService.MarkPaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, liquidation))
}

// PenaltyPreview computes the overdue penalty without persisting it
// @Summary      Preview penalty
// @Description  Computes amount * daily_rate * overdue days, rounded to 2 decimals
// @Tags         liquidations
// @Security     BearerAuth
// @Produce      json
// @Param        id          path      string  true  "Liquidation ID"
// @Param        daily_rate  query     string  true  "Daily penalty rate, e.g. 0.01"
// @Success      200         {object}  response.Response{data=service.PenaltyResponse}
// @Failure      400         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Router       /api/liquidations/{id}/penalty [get]
func (h *LiquidationHandler) PenaltyPreview(c *gin.Context) {
	preview, err := h.liquidationService.PenaltyPreview(c.Request.Context(), c.Param("id"), c.Query("daily_rate"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, preview))
}

// Delete removes a liquidation
// @Summary      Delete liquidation
// @Tags         liquidations
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Liquidation ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/liquidations/{id} [delete]
func (h *LiquidationHandler) Delete(c *gin.Context) {
	if err := h.liquidationService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
