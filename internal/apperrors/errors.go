package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the resource is busy with a competing operation,
// e.g. a second parse attempt while the migration is already parsing.
var ErrConflict = errors.New("resource is locked by a concurrent operation")

// ErrInvalidTransition indicates a lifecycle status change that is not allowed
// from the resource's current status.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrUnauthorized indicates the caller may not act on the resource.
var ErrUnauthorized = errors.New("unauthorized")

// AppError carries an HTTP-ish status code alongside a wrapped infrastructure error.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ParseFailure is returned when an export could not be turned into entities:
// the extraction collaborator failed, timed out, or returned something that is
// not a list of rows. Message preserves the underlying cause verbatim.
type ParseFailure struct {
	MigrationID string
	Message     string
	Err         error
}

// NewParseFailure wraps cause as a ParseFailure for the given migration.
func NewParseFailure(migrationID string, cause error) *ParseFailure {
	msg := "unknown parse failure"
	if cause != nil {
		msg = cause.Error()
	}
	return &ParseFailure{MigrationID: migrationID, Message: msg, Err: cause}
}

func (e *ParseFailure) Error() string {
	return e.Message
}

func (e *ParseFailure) Unwrap() error {
	return e.Err
}

// IsParseFailure reports whether err is, or wraps, a ParseFailure.
func IsParseFailure(err error) bool {
	var pf *ParseFailure
	return errors.As(err, &pf)
}
