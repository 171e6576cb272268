package handler

import (
	"errors"
	"net/http"

	"backend/internal/service"
	"backend/pkg/linktoken"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// Machine-readable reason codes carried in error envelopes.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeConflict       = "CONFLICT"
	CodeCodecFailure   = "CODEC_FAILURE"
	CodeMalformedToken = "MALFORMED_TOKEN"
	CodeInternal       = "INTERNAL"
)

// writeError maps a service-layer error onto an HTTP status and reason code.
func writeError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	var conflictErr *service.ConflictError
	var codecErr *service.CodecError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, CodeValidation, err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, CodeNotFound, err.Error()))
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, CodeConflict, err.Error()))
	case errors.As(err, &codecErr):
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, CodeCodecFailure, err.Error()))
	case errors.Is(err, linktoken.ErrMalformedToken), errors.Is(err, linktoken.ErrInvalidClientInfo):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, CodeMalformedToken, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, CodeInternal, err.Error()))
	}
}

func writeBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, CodeValidation, "invalid request payload: "+err.Error()))
}
