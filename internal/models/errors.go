// Package models contains data structures for the application's domain models.
package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError.
const (
	CodeNotFound             = "NOT_FOUND"
	CodeNoSuchEdge           = "NO_SUCH_EDGE"
	CodeNoSuchVote           = "NO_SUCH_VOTE"
	CodeConflict             = "CONFLICT"
	CodeStorageInconsistency = "STORAGE_INCONSISTENCY"
	CodeValidation           = "VALIDATION_ERROR"
	CodeInternal             = "INTERNAL_ERROR"
)

// Sentinels for errors.Is. Any AppError with the same code matches.
var (
	ErrNotFound             = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrNoSuchEdge           = &AppError{Code: CodeNoSuchEdge, Message: "no such like"}
	ErrNoSuchVote           = &AppError{Code: CodeNoSuchVote, Message: "no such vote"}
	ErrConflict             = &AppError{Code: CodeConflict, Message: "conflict"}
	ErrStorageInconsistency = &AppError{Code: CodeStorageInconsistency, Message: "storage inconsistency"}
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError carrying the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewNoSuchEdgeError(userID, filmID uint) *AppError {
	return &AppError{
		Code:    CodeNoSuchEdge,
		Message: fmt.Sprintf("User with ID %d has not liked film %d", userID, filmID),
	}
}

func NewNoSuchVoteError(userID, reviewID uint, kind VoteKind) *AppError {
	return &AppError{
		Code:    CodeNoSuchVote,
		Message: fmt.Sprintf("User with ID %d has no %s vote on review %d", userID, kind, reviewID),
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

// NewStorageInconsistencyError reports a write that left the store unchanged when it
// should not have. The operation was rolled back and may be retried.
func NewStorageInconsistencyError(message string) *AppError {
	return &AppError{
		Code:    CodeStorageInconsistency,
		Message: message,
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// StatusFor maps an error to the HTTP status the transport layer should use.
func StatusFor(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeNotFound, CodeNoSuchEdge, CodeNoSuchVote:
		return fiber.StatusNotFound
	case CodeConflict:
		return fiber.StatusConflict
	case CodeValidation:
		return fiber.StatusBadRequest
	case CodeStorageInconsistency:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
