// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrSymbolNotFound    = errors.New("symbol not found")
	ErrNoExpirations     = errors.New("no expiration dates available")
	ErrExpiryNotFound    = errors.New("expiration date not listed")
	ErrStrikeNotFound    = errors.New("strike not listed in option chain")
	ErrDataUnavailable   = errors.New("market data unavailable")
	ErrRateLimited       = errors.New("rate limited")
	ErrConnectionFailed  = errors.New("connection failed")
	ErrTimeout           = errors.New("operation timed out")
	ErrConfigInvalid     = errors.New("invalid configuration")
	ErrDataNotFound      = errors.New("data not found")
	ErrDatabaseError     = errors.New("database error")
	ErrInputValidation   = errors.New("input validation failed")
	ErrStoreNotAvailable = errors.New("history store not configured")
	ErrCircuitOpen       = errors.New("market data temporarily disabled after repeated failures")
)

// UnableToRetrieve is the message shown to users whenever live data cannot be resolved.
const UnableToRetrieve = "Unable to retrieve the price or expiration dates. Check the ticker."

// ProviderError represents a failed call to the market-data provider.
type ProviderError struct {
	Code    string
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider error [%s]: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("provider error [%s]: %s", e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new ProviderError.
func NewProviderError(code, message string, err error) *ProviderError {
	return &ProviderError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// Unwrap lets callers match any validation failure with ErrInputValidation.
func (e *ValidationError) Unwrap() error {
	return ErrInputValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// DataError represents a data-related error.
type DataError struct {
	DataType string
	Symbol   string
	Message  string
	Err      error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s] %s: %s: %v", e.DataType, e.Symbol, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s] %s: %s", e.DataType, e.Symbol, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(dataType, symbol, message string, err error) *DataError {
	return &DataError{
		DataType: dataType,
		Symbol:   symbol,
		Message:  message,
		Err:      err,
	}
}

// IsDataFailure reports whether err came from resolving market data rather than from user input.
func IsDataFailure(err error) bool {
	var de *DataError
	var pe *ProviderError
	return errors.As(err, &de) || errors.As(err, &pe) ||
		errors.Is(err, ErrSymbolNotFound) || errors.Is(err, ErrNoExpirations) ||
		errors.Is(err, ErrDataUnavailable) || errors.Is(err, ErrConnectionFailed) ||
		errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrCircuitOpen)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
