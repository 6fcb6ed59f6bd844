package guard

import (
	"errors"
	"fmt"
)

// ErrorCode is a machine-readable code attached to breaker errors.
type ErrorCode string

const (
	// CodeRejected indicates the bulkhead refused admission.
	CodeRejected ErrorCode = "REJECTED"
	// CodeCircuitBroken indicates the breaker refused the call.
	CodeCircuitBroken ErrorCode = "CIRCUIT_BROKEN"
)

// Sentinel errors for errors.Is checks.
var (
	ErrRejected      = errors.New("guard: concurrency limit reached")
	ErrCircuitBroken = errors.New("guard: circuit broken")
)

// IsRejected reports whether err is a bulkhead rejection.
func IsRejected(err error) bool {
	return errors.Is(err, ErrRejected)
}

// IsCircuitBroken reports whether err is a circuit-broken refusal.
func IsCircuitBroken(err error) bool {
	return errors.Is(err, ErrCircuitBroken)
}

// RejectedError is returned when all bulkhead permits are in use.
// It is distinguishable from every other outcome via ErrRejected.
type RejectedError struct {
	// Breaker is the name of the breaker that rejected the call.
	Breaker string
	// Limit is the configured concurrency limit.
	Limit int
}

// Error returns the string representation of the error.
func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: breaker %q has %d calls in flight", CodeRejected, e.Breaker, e.Limit)
}

// Is reports whether target is ErrRejected.
func (e *RejectedError) Is(target error) bool { return target == ErrRejected }

// Code returns the machine-readable error code.
func (e *RejectedError) Code() ErrorCode { return CodeRejected }

// CircuitError is returned when the Open or Isolated state refuses a call.
// Message carries the per-state text, which defaults to a generated string
// and can be overridden with SetStateMessage.
type CircuitError struct {
	// Breaker is the name of the refusing breaker.
	Breaker string
	// State is the state that refused the call.
	State State
	// Message is the per-state fail-fast text.
	Message string
	// Reason is the manual open reason, if one was recorded.
	Reason string
}

// Error returns the string representation of the error.
func (e *CircuitError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s (reason: %s)", CodeCircuitBroken, e.Message, e.Reason)
	}
	return fmt.Sprintf("%s: %s", CodeCircuitBroken, e.Message)
}

// Is reports whether target is ErrCircuitBroken.
func (e *CircuitError) Is(target error) bool { return target == ErrCircuitBroken }

// Code returns the machine-readable error code.
func (e *CircuitError) Code() ErrorCode { return CodeCircuitBroken }
