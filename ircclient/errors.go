package ircclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Sentinel errors for the engine.
var (
	// ErrValidation is wrapped by every ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrNotConnected indicates a command was submitted without an active connection.
	ErrNotConnected = errors.New("not connected")

	// ErrUnreachableHost indicates the server host name could not be resolved.
	ErrUnreachableHost = errors.New("host not found")

	// ErrConnectionRefused indicates the server actively refused the connection.
	ErrConnectionRefused = errors.New("connection refused")

	// ErrTimeout indicates the connection was not established in time.
	ErrTimeout = errors.New("connection timed out")

	// ErrMalformedRow indicates a list or name row did not match its pattern.
	ErrMalformedRow = errors.New("malformed row")

	// ErrQueueClosed indicates a command was enqueued after the queue was closed.
	ErrQueueClosed = errors.New("outbound queue closed")
)

// ValidationError reports a missing or invalid field detected before any I/O.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid %s", e.Field)
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ConnectionError represents a connection-related error.
type ConnectionError struct {
	Op   string
	Addr string
	// Kind is one of ErrUnreachableHost, ErrConnectionRefused, ErrTimeout, or nil
	// for failures that fit none of them.
	Kind  error
	Cause error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	msg := fmt.Sprintf("%s %s", e.Op, e.Addr)
	if e.Kind != nil {
		msg += ": " + e.Kind.Error()
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the kind and the underlying cause for errors.Is/As support.
func (e *ConnectionError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// NewConnectionError creates a connection error, classifying the cause.
func NewConnectionError(op, addr string, cause error) error {
	return &ConnectionError{Op: op, Addr: addr, Kind: classifyDialError(cause), Cause: cause}
}

func classifyDialError(err error) error {
	if err == nil {
		return nil
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && !dnsErr.IsTimeout {
		return ErrUnreachableHost
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return ErrConnectionRefused
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return nil
}

// connectFailureText is the status text for a failed connect.
func connectFailureText(err error) string {
	switch {
	case errors.Is(err, ErrUnreachableHost):
		return statusHostNotFound
	case errors.Is(err, ErrConnectionRefused):
		return "CONNECTION REFUSED"
	case errors.Is(err, ErrTimeout):
		return "CONNECTION TIMED OUT"
	default:
		return "CONNECTION FAILED: " + err.Error()
	}
}
