package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shareboard/internal/utils/platformerrors"
)

// Envelope is the uniform response body the web client consumes.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// OK writes a 200 envelope carrying data.
func OK(reqCtx *gin.Context, data any) {
	reqCtx.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// OKMessage writes a 200 envelope with a message and optional data.
func OKMessage(reqCtx *gin.Context, message string, data any) {
	reqCtx.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// HandleError maps a typed error onto its HTTP status and writes a failure
// envelope. Untyped errors become 500 with the fallback message.
func HandleError(reqCtx *gin.Context, err error, fallback string) {
	var platformErr *platformerrors.PlatformError
	if errors.As(err, &platformErr) {
		status := platformerrors.ErrorTypeToHTTPStatus(platformErr.GetErrorType())
		message := platformErr.Message
		if message == "" {
			message = fallback
		}
		reqCtx.AbortWithStatusJSON(status, Envelope{Success: false, Message: message})
		return
	}
	reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, Envelope{Success: false, Message: fallback})
}

// HandleValidationError writes a 400 failure envelope at the route layer.
func HandleValidationError(reqCtx *gin.Context, message string) {
	reqCtx.AbortWithStatusJSON(http.StatusBadRequest, Envelope{Success: false, Message: message})
}
