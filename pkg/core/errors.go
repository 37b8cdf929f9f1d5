package core

import (
	"fmt"
)

// Error is the canonical error for the service.
type Error struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Param     string    `json:"param,omitempty"`
	Code      string    `json:"code,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	// Collaborator carries the underlying error from an external system
	// (storage, voice-agent vendor, prompt model) when one is involved.
	Collaborator any `json:"collaborator_error,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (code: %s)", e.Type, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ErrorType categorizes errors.
type ErrorType string

const (
	ErrInvalidRequest ErrorType = "invalid_request_error"
	ErrAuthentication ErrorType = "authentication_error"
	ErrNotFound       ErrorType = "not_found_error"
	ErrStorage        ErrorType = "storage_error"
	ErrCollaborator   ErrorType = "collaborator_error"
	ErrAPI            ErrorType = "api_error"
)

// NewInvalidRequestError creates an invalid request error.
func NewInvalidRequestError(message string) *Error {
	return &Error{
		Type:    ErrInvalidRequest,
		Message: message,
	}
}

// NewInvalidRequestErrorWithParam creates an invalid request error with a parameter.
func NewInvalidRequestErrorWithParam(message, param string) *Error {
	return &Error{
		Type:    ErrInvalidRequest,
		Message: message,
		Param:   param,
	}
}

// NewAuthenticationError creates an authentication error.
func NewAuthenticationError(message string) *Error {
	return &Error{
		Type:    ErrAuthentication,
		Message: message,
	}
}

// NewNotFoundError creates a not found error.
func NewNotFoundError(message string) *Error {
	return &Error{
		Type:    ErrNotFound,
		Message: message,
	}
}

// NewStorageError wraps a storage failure.
func NewStorageError(op string, underlying error) *Error {
	return &Error{
		Type:         ErrStorage,
		Message:      fmt.Sprintf("%s: %v", op, underlying),
		Collaborator: underlying,
	}
}

// NewCollaboratorError wraps a failure from an external collaborator.
func NewCollaboratorError(collaborator string, underlying error) *Error {
	return &Error{
		Type:         ErrCollaborator,
		Message:      fmt.Sprintf("%s: %v", collaborator, underlying),
		Collaborator: underlying,
	}
}

// NewAPIError creates a generic API error.
func NewAPIError(message string) *Error {
	return &Error{
		Type:    ErrAPI,
		Message: message,
	}
}

// Unwrap returns the underlying error for error wrapping.
func (e *Error) Unwrap() error {
	if ue, ok := e.Collaborator.(error); ok {
		return ue
	}
	return nil
}
