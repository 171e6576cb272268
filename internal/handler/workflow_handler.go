package handler

import (
	"net/http"
	"time"

	"backend/internal/service"
	"backend/pkg/linktoken"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// WorkflowHandler exposes the link-token payment workflow. The resolution
// endpoint is public: the link is handed to the scanning device, which has
// no back-office session.
type WorkflowHandler struct {
	workflowService service.WorkflowService
}

func NewWorkflowHandler(workflowService service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{workflowService: workflowService}
}

func (h *WorkflowHandler) RegisterRoutes(router *gin.RouterGroup) {
	workflow := router.Group("/api/uemoa-workflow")
	{
		workflow.POST("/generate", h.Generate)
		workflow.GET("/client-info/:token", h.ResolveLink)
		workflow.GET("/status", h.Status)
		workflow.GET("/health", h.Health)
	}
}

// Generate builds a QR with an embedded workflow link
// @Summary      Generate workflow QR
// @Description  Encodes a payment QR and a resolution link embedding client info, amount and timestamp
// @Tags         workflow
// @Accept       json
// @Produce      json
// @Param        payload  body      service.WorkflowGenerateRequest  true  "Generate Payload"
// @Success      200      {object}  response.Response{data=service.WorkflowGenerateResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/uemoa-workflow/generate [post]
func (h *WorkflowHandler) Generate(c *gin.Context) {
	var req service.WorkflowGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	result, err := h.workflowService.Generate(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ResolveLink rebuilds the payment context from a workflow token
// @Summary      Resolve workflow link
// @Description  Decodes the token and returns client and transaction data
// @Tags         workflow
// @Produce      json
// @Param        token  path      string  true  "Workflow token"
// @Success      200    {object}  response.Response{data=service.WorkflowResolveResponse}
// @Failure      400    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Router       /api/uemoa-workflow/client-info/{token} [get]
func (h *WorkflowHandler) ResolveLink(c *gin.Context) {
	result, err := h.workflowService.ResolveLink(c.Request.Context(), c.Param("token"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Status describes the workflow service and its link layout
// @Summary      Workflow status
// @Tags         workflow
// @Produce      json
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/uemoa-workflow/status [get]
func (h *WorkflowHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"service":          "uemoa-workflow",
		"link_path_prefix": linktoken.PathPrefix,
		"endpoints": gin.H{
			"generate":    "POST /api/uemoa-workflow/generate",
			"client_info": "GET " + linktoken.PathPrefix + "{token}",
		},
	}))
}

// Health reports workflow availability
// @Summary      Workflow health
// @Tags         workflow
// @Produce      json
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/uemoa-workflow/health [get]
func (h *WorkflowHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"status":    "UP",
		"timestamp": time.Now().Format(time.RFC3339),
	}))
}
