package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a translated error: taxonomy code plus user-safe message
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts raw store errors into the error taxonomy. Constraint
// names, SQL text, and connection details never reach the client.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "An internal error occurred",
		}
	}

	errStrLower := strings.ToLower(err.Error())

	// GORM base errors
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: notFoundMessage(context),
		}
	}

	// Postgres constraint violations

	// Unique constraint (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		if strings.Contains(errStrLower, "email") || strings.Contains(errStrLower, "users") {
			return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "This email is already registered"}
		}
		return ErrorInfo{Code: ConflictDuplicate, Message: "A record with these values already exists"}
	}

	// Foreign key constraint (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		if strings.Contains(errStrLower, "delete") || strings.Contains(errStrLower, "still referenced") {
			return ErrorInfo{Code: ConflictReferenced, Message: "This record is referenced by other data and cannot be deleted"}
		}
		return ErrorInfo{Code: ValidationInvalidInput, Message: "A referenced record does not exist"}
	}

	// Not-null constraint (23502)
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "not-null constraint") {
		return ErrorInfo{Code: ValidationMissingField, Message: "A required field is missing"}
	}

	// Check constraint (23514)
	if strings.Contains(errStrLower, "check constraint") {
		return ErrorInfo{Code: ValidationInvalidInput, Message: "Invalid input"}
	}

	// Connectivity
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "A backing service is unavailable. Please try again later",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: "An internal error occurred. Please try again later",
	}
}

func notFoundMessage(context string) string {
	switch context {
	case "user":
		return "User not found"
	case "product":
		return "Product not found"
	case "cart", "cart item":
		return "Cart item not found"
	case "order":
		return "Order not found"
	default:
		return "The requested resource was not found"
	}
}
