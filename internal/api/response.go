package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"options-visualizer/internal/errors"
)

type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Ok writes a 200 envelope around data.
func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

// Error writes an error envelope with status.
func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, apiResponse{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}

// Fail maps err onto a status. Market-data failures are reported with the
// generic retrieval message rather than the provider's error text.
func Fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errors.ErrInputValidation):
		Error(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, errors.ErrDataNotFound):
		Error(c, http.StatusNotFound, "evaluation not found", nil)
	case errors.Is(err, errors.ErrStrikeNotFound), errors.Is(err, errors.ErrExpiryNotFound):
		Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, errors.ErrStoreNotAvailable):
		Error(c, http.StatusServiceUnavailable, err.Error(), nil)
	case errors.IsDataFailure(err):
		Error(c, http.StatusBadGateway, errors.UnableToRetrieve, nil)
	default:
		Error(c, http.StatusInternalServerError, "internal error", nil)
	}
}
