// Package errors provides custom error types for the plutus ingestion
// engine. These errors enable programmatic error checking at the
// orchestrator's source boundary: per-row validation failures, per-source
// fetch and write failures, fatal configuration errors, and the
// conflict-as-success duplicate signal.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is and As are aliases for the standard library equivalents so callers
// need only one errors import.
var (
	Is = errors.Is
	As = errors.As
)

// Common sentinel errors for the ingestion engine
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrDuplicate indicates a uniqueness-constraint conflict on write.
	// This is the expected "already ingested" signal, never a failure.
	ErrDuplicate = errors.New("duplicate record")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrAuthFailed indicates that a source rejected our credentials
	ErrAuthFailed = errors.New("authentication failed")

	// ErrSourceUnavailable indicates that a source is temporarily unreachable
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrMissingConfig indicates that required configuration is absent
	ErrMissingConfig = errors.New("missing configuration")
)

// ConfigError represents a fatal per-source configuration error.
// It aborts the source's run before any fetch is attempted.
type ConfigError struct {
	Source  string
	Field   string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	switch {
	case e.Source != "" && e.Field != "":
		return fmt.Sprintf("configuration error for source %s (field %s): %s", e.Source, e.Field, e.Message)
	case e.Source != "":
		return fmt.Sprintf("configuration error for source %s: %s", e.Source, e.Message)
	default:
		return fmt.Sprintf("configuration error: %s", e.Message)
	}
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError
func NewConfigError(source, field, message string) *ConfigError {
	return &ConfigError{Source: source, Field: field, Message: message}
}

// FetchError represents a failure while fetching rows from a source
// adapter. A source that simply has no rows does not produce a
// FetchError; adapters return an empty batch instead.
type FetchError struct {
	Source     string
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch error from %s (status %d): %s", e.Source, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("fetch error from %s: %s", e.Source, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *FetchError) Is(target error) bool {
	if e.StatusCode == 401 || e.StatusCode == 403 {
		return target == ErrAuthFailed
	}
	if e.StatusCode >= 500 {
		return target == ErrSourceUnavailable
	}
	return false
}

// NewFetchError creates a new FetchError
func NewFetchError(source string, statusCode int, message string) *FetchError {
	return &FetchError{Source: source, StatusCode: statusCode, Message: message}
}

// ValidationError represents a recoverable per-row validation failure.
// Rows failing validation are counted and dropped, never aborting the batch.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// WriteError represents a per-record store rejection that is not a
// uniqueness conflict, such as a value-range check violation. It is
// counted separately from duplicate-skips and does not abort the batch.
type WriteError struct {
	Table   string
	Key     string
	Message string
	Err     error
}

// Error implements the error interface
func (e *WriteError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("write to %s rejected for record %s: %s", e.Table, e.Key, e.Message)
	}
	return fmt.Sprintf("write to %s failed: %s", e.Table, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *WriteError) Unwrap() error {
	return e.Err
}

// NewWriteError creates a new WriteError
func NewWriteError(table, key string, err error) *WriteError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &WriteError{Table: table, Key: key, Message: message, Err: err}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "csv", "yaml", etc.
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{Operation: operation, Path: path, Message: message, Err: err}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicate checks if an error is the duplicate-conflict signal
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsAuthFailed checks if an error is an authentication failure
func IsAuthFailed(err error) bool {
	return errors.Is(err, ErrAuthFailed)
}

// IsSourceUnavailable checks if an error indicates source unavailability
func IsSourceUnavailable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable)
}

// IsConfigError checks if an error is a fatal configuration error
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapFetch wraps an error as a FetchError
func WrapFetch(source, endpoint string, err error) error {
	if err == nil {
		return nil
	}
	return &FetchError{Source: source, Endpoint: endpoint, Message: err.Error(), Err: err}
}

// WrapWrite wraps an error as a WriteError
func WrapWrite(table string, err error) error {
	if err == nil {
		return nil
	}
	return NewWriteError(table, "", err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}
