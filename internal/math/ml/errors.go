package ml

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAlgorithm = errors.New("invalid clustering algorithm")
	ErrInvalidK         = errors.New("number of clusters must be positive")
	ErrInvalidEpsilon   = errors.New("convergence epsilon must be positive")
	ErrVectorMismatch   = errors.New("attribute kinds do not match vector dimension")
	ErrAttrKind         = errors.New("unsupported attribute kind")
	ErrNoExamples       = errors.New("no examples")
	ErrNoPrototypes     = errors.New("no prototypes")
	ErrInvalidDimension = errors.New("inconsistent vector dimension")
)

// ConfigurationError is returned for any invalid input to a fit or evaluate call.
// It is fatal and is surfaced before any computation starts.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

// NewConfigurationError creates a new configuration error for the given field.
func NewConfigurationError(field string, err error, reason string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{
		Field:  field,
		Reason: fmt.Sprintf(reason, args...),
		Err:    err,
	}
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid configuration for '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid configuration for '%s': %v (%s)", e.Field, e.Err, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
