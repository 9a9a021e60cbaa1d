package core

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrWaitTimeout marks a GraphicsAPIError raised by a bounded fence or
// acquire wait that expired.
var ErrWaitTimeout = errors.New("gpu wait timed out")

// GraphicsAPIError is an unexpected non-success result from the graphics API.
// It is never recovered from inside the render loop.
type GraphicsAPIError struct {
	Op   string
	Code int32
	Name string
}

func NewGraphicsAPIError(op string, code int32, name string) *GraphicsAPIError {
	return &GraphicsAPIError{Op: op, Code: code, Name: name}
}

// NewWaitTimeoutError returns a GraphicsAPIError that also matches
// errors.Is(err, ErrWaitTimeout).
func NewWaitTimeoutError(op string, code int32, name string) error {
	return errors.Mark(NewGraphicsAPIError(op, code, name), ErrWaitTimeout)
}

func (e *GraphicsAPIError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s failed with result %d", e.Op, e.Code)
	}
	return fmt.Sprintf("%s failed with %s (%d)", e.Op, e.Name, e.Code)
}

// ConfigurationError reports a startup condition the engine cannot run under:
// no suitable device, no depth format, a missing validation layer, bad config.
type ConfigurationError struct {
	Reason string
}

func NewConfigurationError(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// NotFoundError is a failed local lookup (material, glyph, asset, loader).
type NotFoundError struct {
	Kind string
	Name string
}

func NewNotFoundError(kind, name string) *NotFoundError {
	return &NotFoundError{Kind: kind, Name: name}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Kind, e.Name)
}

// IsFatal reports whether err must terminate the render loop.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *GraphicsAPIError
	if errors.As(err, &apiErr) {
		return true
	}
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
