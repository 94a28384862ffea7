package common

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
)

// ErrorKind represents the category of use case error.
// Each kind maps to a specific HTTP status code.
type ErrorKind int

const (
	// ErrorKindValidation represents input validation failures (400).
	ErrorKindValidation ErrorKind = iota

	// ErrorKindBusinessRule represents conflicts with current state (409).
	ErrorKindBusinessRule

	// ErrorKindNotFound represents entity not found errors (404).
	ErrorKindNotFound

	// ErrorKindUnauthenticated represents a missing or invalid credential (401).
	ErrorKindUnauthenticated

	// ErrorKindForbidden represents role or permission denials (403).
	ErrorKindForbidden

	// ErrorKindGone represents an entity that existed but is no longer usable (410).
	ErrorKindGone

	// ErrorKindUpstream represents an unreachable collaborator (502).
	ErrorKindUpstream

	// ErrorKindInternal represents unexpected internal errors (500).
	ErrorKindInternal
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindValidation:
		return "VALIDATION"
	case ErrorKindBusinessRule:
		return "BUSINESS_RULE"
	case ErrorKindNotFound:
		return "NOT_FOUND"
	case ErrorKindUnauthenticated:
		return "UNAUTHENTICATED"
	case ErrorKindForbidden:
		return "FORBIDDEN"
	case ErrorKindGone:
		return "GONE"
	case ErrorKindUpstream:
		return "UPSTREAM"
	case ErrorKindInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

// HTTPStatus returns the HTTP status code for this error kind.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case ErrorKindValidation:
		return http.StatusBadRequest
	case ErrorKindBusinessRule:
		return http.StatusConflict
	case ErrorKindNotFound:
		return http.StatusNotFound
	case ErrorKindUnauthenticated:
		return http.StatusUnauthorized
	case ErrorKindForbidden:
		return http.StatusForbidden
	case ErrorKindGone:
		return http.StatusGone
	case ErrorKindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// UseCaseError represents an error from a use case execution.
// Details carries machine-readable hints for clients (for example
// requiresApproval); it must never contain internal error text.
type UseCaseError struct {
	Kind    ErrorKind      `json:"kind"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *UseCaseError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Kind.String(), e.Code, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for this error.
func (e *UseCaseError) HTTPStatus() int {
	return e.Kind.HTTPStatus()
}

// WithDetail adds a detail to the error and returns it for chaining.
func (e *UseCaseError) WithDetail(key string, value any) *UseCaseError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func newError(kind ErrorKind, code, message string, details map[string]any) *UseCaseError {
	return &UseCaseError{Kind: kind, Code: code, Message: message, Details: details}
}

// ValidationError creates a new validation error (400).
func ValidationError(code, message string, details map[string]any) *UseCaseError {
	return newError(ErrorKindValidation, code, message, details)
}

// BusinessRuleError creates a new conflict error (409).
// Use for duplicates and entities in the wrong state.
func BusinessRuleError(code, message string, details map[string]any) *UseCaseError {
	return newError(ErrorKindBusinessRule, code, message, details)
}

// NotFoundError creates a new not found error (404).
func NotFoundError(code, message string, details map[string]any) *UseCaseError {
	return newError(ErrorKindNotFound, code, message, details)
}

// UnauthenticatedError creates a new credential error (401).
func UnauthenticatedError(code, message string) *UseCaseError {
	return newError(ErrorKindUnauthenticated, code, message, nil)
}

// ForbiddenError creates a new authorization error (403).
func ForbiddenError(code, message string, details map[string]any) *UseCaseError {
	return newError(ErrorKindForbidden, code, message, details)
}

// GoneError creates a new expired-entity error (410).
func GoneError(code, message string, details map[string]any) *UseCaseError {
	return newError(ErrorKindGone, code, message, details)
}

// UpstreamError creates a new upstream failure error (502).
func UpstreamError(code, message string) *UseCaseError {
	return newError(ErrorKindUpstream, code, message, nil)
}

// InternalError creates a new internal error (500).
// The message is shown to callers; put the cause in the log, not here.
func InternalError(code, message string) *UseCaseError {
	return newError(ErrorKindInternal, code, message, nil)
}

// StoreError logs a failed repository call and returns an upstream error that
// names the operation but not the cause.
func StoreError(ctx context.Context, operation string, err error) *UseCaseError {
	slog.ErrorContext(ctx, "Store operation failed", "operation", operation, "error", err)
	return UpstreamError(ErrCodeStoreFailure, "Failed to "+operation)
}

// Error codes shared across use cases
const (
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeRequired         = "REQUIRED"
	ErrCodeInvalidValue     = "INVALID_VALUE"
	ErrCodeInvalidEmail     = "INVALID_EMAIL"

	ErrCodeMissingCredential = "MISSING_CREDENTIAL"
	ErrCodeInvalidCredential = "INVALID_CREDENTIAL"
	ErrCodeNotAdmin          = "NOT_ADMIN"
	ErrCodeAccessDenied      = "ACCESS_DENIED"
	ErrCodeRequiresApproval  = "REQUIRES_APPROVAL"

	ErrCodeInvalidTarget            = "INVALID_TARGET"
	ErrCodeAlreadyAdministrator     = "ALREADY_ADMINISTRATOR"
	ErrCodeInvitationAlreadyPending = "INVITATION_ALREADY_PENDING"
	ErrCodeInvitationNotFound       = "INVITATION_NOT_FOUND"
	ErrCodeInvitationExpired        = "INVITATION_EXPIRED"
	ErrCodeEmailMismatch            = "EMAIL_MISMATCH"

	ErrCodeSubAdminNotFound = "SUBADMIN_NOT_FOUND"
	ErrCodeInvalidState     = "INVALID_STATE"

	ErrCodeDuplicateRequest    = "DUPLICATE_REQUEST"
	ErrCodeAlreadyProcessed    = "ALREADY_PROCESSED"
	ErrCodeRequestNotFound     = "REQUEST_NOT_FOUND"
	ErrCodeUnknownResourceType = "UNKNOWN_RESOURCE_TYPE"
	ErrCodeExecutionFailed     = "EXECUTION_FAILED"

	ErrCodeRateLimited = "RATE_LIMITED"

	ErrCodeDuplicateKey  = "DUPLICATE_KEY"
	ErrCodeCommitFailed  = "COMMIT_FAILED"
	ErrCodeStoreFailure  = "STORE_FAILURE"
	ErrCodeUpstream      = "UPSTREAM_FAILURE"
	ErrCodeEntityMissing = "ENTITY_NOT_FOUND"
)
