package response

import (
	"net/http"
	"time"

	"vending-machine-api/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDKey is the gin context key holding the request ID.
	RequestIDKey = "request_id"
	// RequestIDHeader is echoed on every response.
	RequestIDHeader = "X-Request-ID"

	codeUnknown = "SYS_000"
)

// ErrorResponse is the error envelope returned for every failed request.
type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// OK sends a 200 response with the payload as the body.
func OK(c *gin.Context, data any) {
	c.Header(RequestIDHeader, RequestID(c))
	c.JSON(http.StatusOK, data)
}

// NoContent sends an empty 204 response.
func NoContent(c *gin.Context) {
	c.Header(RequestIDHeader, RequestID(c))
	c.Status(http.StatusNoContent)
	c.Writer.WriteHeaderNow()
}

// Error sends an error response. An *apperror.AppError anywhere in the chain
// decides the status and code; anything else becomes a 500.
func Error(c *gin.Context, err error) {
	requestID := RequestID(c)
	c.Header(RequestIDHeader, requestID)

	appErr, ok := apperror.As(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			ErrorCode: codeUnknown,
			Message:   "Internal server error",
			RequestID: requestID,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	if appErr.HTTPStatus == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.JSON(appErr.HTTPStatus, ErrorResponse{
		ErrorCode: appErr.Code,
		Message:   appErr.Message,
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Abort sends an error response and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// RequestID retrieves the request ID from context, generating and storing one
// when the request-ID middleware did not run.
func RequestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDKey); exists {
		if s, ok := id.(string); ok && s != "" {
			return s
		}
	}
	id := uuid.New().String()
	c.Set(RequestIDKey, id)
	return id
}
