package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// AppError is the base interface for all application errors
type AppError interface {
	error
	HTTPStatus() int
	Code() string
}

// NotFoundError represents a resource that was not found
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) HTTPStatus() int {
	return http.StatusNotFound
}

func (e *NotFoundError) Code() string {
	return "NOT_FOUND"
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents invalid input
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) HTTPStatus() int {
	return http.StatusBadRequest
}

func (e *ValidationError) Code() string {
	return "VALIDATION_ERROR"
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// TransferDisabledError represents an import/export attempt against a module
// that is not on the transfer allow-list
type TransferDisabledError struct {
	Module string
}

func (e *TransferDisabledError) Error() string {
	return fmt.Sprintf("import/export is not enabled for module '%s'", e.Module)
}

func (e *TransferDisabledError) HTTPStatus() int {
	return http.StatusForbidden
}

func (e *TransferDisabledError) Code() string {
	return "TRANSFER_DISABLED"
}

// NewTransferDisabledError creates a new TransferDisabledError
func NewTransferDisabledError(module string) *TransferDisabledError {
	return &TransferDisabledError{Module: module}
}

// UpstreamError represents a failed call to the HR backend. Status and Body
// carry the backend's response so callers can surface the raw payload.
type UpstreamError struct {
	Op     string
	Status int
	Body   string
	Cause  error
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("upstream error during %s: status %d: %s", e.Op, e.Status, e.Body)
	}
	return fmt.Sprintf("upstream error during %s: %v", e.Op, e.Cause)
}

// HTTPStatus passes the backend status through so the caller sees the same
// code the backend produced; transport failures map to 502.
func (e *UpstreamError) HTTPStatus() int {
	if e.Status >= 400 {
		return e.Status
	}
	return http.StatusBadGateway
}

func (e *UpstreamError) Code() string {
	return "UPSTREAM_ERROR"
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// NewUpstreamError creates an UpstreamError for a backend response
func NewUpstreamError(op string, status int, body string) *UpstreamError {
	return &UpstreamError{Op: op, Status: status, Body: body}
}

// NewUpstreamTransportError creates an UpstreamError for a transport failure
func NewUpstreamTransportError(op string, cause error) *UpstreamError {
	return &UpstreamError{Op: op, Cause: cause}
}

// InternalError represents unexpected server errors
type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("internal error: %s (caused by: %v)", e.Message, e.Cause)
	}
	return fmt.Sprintf("internal error: %s", e.Message)
}

func (e *InternalError) HTTPStatus() int {
	return http.StatusInternalServerError
}

func (e *InternalError) Code() string {
	return "INTERNAL_ERROR"
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

// NewInternalError creates a new InternalError
func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{Message: message, Cause: cause}
}

// Helper functions for error checking

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validation *ValidationError
	return errors.As(err, &validation)
}

// IsTransferDisabled checks if an error is a TransferDisabledError
func IsTransferDisabled(err error) bool {
	var disabled *TransferDisabledError
	return errors.As(err, &disabled)
}

// IsUpstream checks if an error is an UpstreamError
func IsUpstream(err error) bool {
	var upstream *UpstreamError
	return errors.As(err, &upstream)
}

// GetHTTPStatus returns the HTTP status code for an error
// Returns 500 if the error doesn't implement AppError
func GetHTTPStatus(err error) int {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// GetErrorCode returns the error code for an error
// Returns "UNKNOWN_ERROR" if the error doesn't implement AppError
func GetErrorCode(err error) string {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return "UNKNOWN_ERROR"
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ToResponse converts an error to an ErrorResponse. For upstream errors the
// backend's payload is attached as details so validation mismatches stay
// diagnosable.
func ToResponse(err error) ErrorResponse {
	resp := ErrorResponse{
		Code:    GetErrorCode(err),
		Message: err.Error(),
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) && upstream.Body != "" {
		var payload any
		if json.Unmarshal([]byte(upstream.Body), &payload) == nil {
			resp.Details = payload
		} else {
			resp.Details = upstream.Body
		}
	}
	return resp
}
