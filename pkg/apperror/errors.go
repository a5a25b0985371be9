package apperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// Error codes.
const (
	CodeInvalidCredentials     = "AUTH_001"
	CodeUserNotFound           = "AUTH_002"
	CodeInvalidToken           = "AUTH_003"
	CodeInsufficientFunds      = "VND_001"
	CodeInvalidCoin            = "VND_002"
	CodeProductNotFound        = "VND_003"
	CodeExactChangeUnavailable = "VND_004"
	CodeValidation             = "VND_005"
	CodeRateLimitExceeded      = "RATE_001"
	CodeStorageFault           = "SYS_001"
	CodeStorageTimeout         = "SYS_002"
	CodeInternal               = "SYS_003"
)

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New(CodeInvalidCredentials, "Could not validate credentials", http.StatusUnauthorized)
}

func ErrUserNotFound() *AppError {
	return New(CodeUserNotFound, "User not found", http.StatusNotFound)
}

func ErrInvalidToken() *AppError {
	return New(CodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Vending (VND) ----

func ErrInsufficientFunds() *AppError {
	return New(CodeInsufficientFunds, "Insufficient funds", http.StatusPaymentRequired)
}

func ErrInvalidCoin(value any) *AppError {
	return New(CodeInvalidCoin, fmt.Sprintf("Coin %v is not accepted", value), http.StatusBadRequest)
}

func ErrProductNotFound(productID string) *AppError {
	return New(CodeProductNotFound, fmt.Sprintf("Product %s not found", productID), http.StatusNotFound)
}

func ErrExactChangeUnavailable(err error) *AppError {
	return Wrap(CodeExactChangeUnavailable, "Exact change unavailable", http.StatusConflict, err)
}

// ErrIdempotencyKeyReused rejects a key already bound to a different order.
func ErrIdempotencyKeyReused() *AppError {
	return New(CodeValidation, "Idempotency-Key was already used for a different order", http.StatusUnprocessableEntity)
}

// Validation returns a VND_005 validation error.
func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimitExceeded, "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// ErrStorage hides the driver error behind a generic message.
func ErrStorage(err error) *AppError {
	return Wrap(CodeStorageFault, "Internal storage error", http.StatusInternalServerError, err)
}

func ErrStorageTimeout(err error) *AppError {
	return Wrap(CodeStorageTimeout, "Storage temporarily unavailable", http.StatusServiceUnavailable, err)
}

// InternalError wraps an internal error as a SYS_003 error.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}

// FromStorage classifies a repository error as a timeout or a generic storage fault.
func FromStorage(err error) *AppError {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrStorageTimeout(err)
	}
	return ErrStorage(err)
}

// As extracts the *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an *AppError carrying code.
func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}
