package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/workhivehq/workhive/pkg/errors"
)

// Response is the uniform envelope every endpoint writes.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorInfo is the client-facing slice of an AppError.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta carries pagination details alongside list payloads.
type Meta struct {
	Page       int `json:"page,omitempty"`
	PerPage    int `json:"per_page,omitempty"`
	Total      int `json:"total,omitempty"`
	TotalPages int `json:"total_pages,omitempty"`
}

// Success writes data under the success envelope.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{Success: true, Data: data})
}

// SuccessWithMessage includes a human-readable message in the envelope. The
// lifecycle endpoints use it to surface cascade counts.
func SuccessWithMessage(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{Success: true, Message: message, Data: data})
}

// SuccessWithMeta attaches pagination metadata to a list payload.
func SuccessWithMeta(c *gin.Context, statusCode int, data interface{}, meta *Meta) {
	c.JSON(statusCode, Response{Success: true, Data: data, Meta: meta})
}

// Error maps err onto the envelope via the AppError taxonomy. Unknown errors
// become a generic 500 so internals never leak to clients.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = apperrors.ErrInternalServer
	}

	appErr := apperrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	c.JSON(status, Response{
		Success: false,
		Error:   &ErrorInfo{Code: appErr.Code, Message: appErr.Message},
	})
}
