package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/staylane/bookings/internal/domain"
	"github.com/staylane/bookings/pkg/logger"
)

// ErrorResponse represents a structured JSON error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// WriteError writes a structured JSON error response
func WriteError(w http.ResponseWriter, statusCode int, message string, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errResp := ErrorResponse{
		Error: message,
		Code:  code,
	}

	if err := json.NewEncoder(w).Encode(errResp); err != nil {
		logger.Error("failed to encode error response", "error", err)
	}
}

// Common error codes
const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeRateLimit           = "RATE_LIMIT_EXCEEDED"
	CodeInternalError       = "INTERNAL_ERROR"
	CodeNoPayoutAccount     = "NO_PAYOUT_ACCOUNT"
	CodeNoPendingSession    = "NO_PENDING_SESSION"
	CodePaymentNotCompleted = "PAYMENT_NOT_COMPLETED"
	CodeGatewayError        = "GATEWAY_ERROR"
)

// Convenience functions for common errors
func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message, CodeInvalidInput)
}

func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message, CodeUnauthorized)
}

func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message, CodeForbidden)
}

func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message, CodeNotFound)
}

func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message, CodeInternalError)
}

func RateLimit(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, message, CodeRateLimit)
}

func BadGateway(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadGateway, message, CodeGatewayError)
}

// WriteJSON writes a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// DomainError maps the domain error taxonomy onto HTTP statuses:
// NotFound 404, Forbidden 403, missing payout account and unpaid session
// 400, missing pending session 404, gateway failures 502, everything
// else 500.
func DomainError(w http.ResponseWriter, err error) {
	var gw *domain.GatewayError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		NotFound(w, "not found")
	case errors.Is(err, domain.ErrForbidden):
		Forbidden(w, "you do not own this listing")
	case errors.Is(err, domain.ErrNoPayoutAccount):
		WriteError(w, http.StatusBadRequest, "listing owner has no payout account", CodeNoPayoutAccount)
	case errors.Is(err, domain.ErrNoPendingSession):
		WriteError(w, http.StatusNotFound, "no pending checkout session", CodeNoPendingSession)
	case errors.Is(err, domain.ErrPaymentNotCompleted):
		WriteError(w, http.StatusBadRequest, "payment not completed", CodePaymentNotCompleted)
	case errors.As(err, &gw):
		BadGateway(w, "payment gateway unavailable")
	default:
		InternalError(w, "server error")
	}
}
