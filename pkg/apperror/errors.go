package apperror

import (
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

// ---- Validation (VAL) ----

// Validation returns a VAL_001 error for malformed or missing input.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

// ---- Resources (RES) ----

func ErrNotFound(entity string) *AppError {
	return New("RES_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Authentication & Authorization (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New("AUTH_004", "Operation not permitted for this role", http.StatusForbidden)
}

func ErrAccountSuspended() *AppError {
	return New("AUTH_005", "Account is suspended", http.StatusForbidden)
}

// ---- Order lifecycle (ORD) ----

func ErrInvalidTransition() *AppError {
	return New("ORD_001", "Order is not in a state that allows this transition", http.StatusConflict)
}

// ---- Wallet & requests (WAL) ----

func ErrInsufficientBalance() *AppError {
	return New("WAL_001", "Insufficient point balance", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New("WAL_002", "Invalid amount", http.StatusBadRequest)
}

func ErrRequestAlreadyDecided() *AppError {
	return New("WAL_003", "Request has already been decided", http.StatusConflict)
}

func ErrDuplicateRating() *AppError {
	return New("WAL_004", "Order has already been rated", http.StatusConflict)
}

func ErrWithdrawalBelowMinimum(minimum int64) *AppError {
	return New("WAL_005", fmt.Sprintf("Minimum withdrawal is %d", minimum), http.StatusBadRequest)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}
