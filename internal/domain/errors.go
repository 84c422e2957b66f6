package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for broad classification.
var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidConfig          = errors.New("invalid config")
	ErrInvalidValue           = errors.New("invalid value")
	ErrUnknownStrategy        = errors.New("unknown strategy")
	ErrUnresolvableDependency = errors.New("unresolvable dependency")
	ErrConsistencyViolation   = errors.New("consistency violation")
	ErrGenerationExhausted    = errors.New("generation exhausted")
	ErrExecution              = errors.New("execution error")
)

// ErrorKind is a coarse-grained categorization for errors.
type ErrorKind string

const (
	KindNotFound               ErrorKind = "not_found"
	KindInvalidConfig          ErrorKind = "invalid_config"
	KindInvalidValue           ErrorKind = "invalid_value"
	KindUnknownStrategy        ErrorKind = "unknown_strategy"
	KindUnresolvableDependency ErrorKind = "unresolvable_dependency"
	KindConsistencyViolation   ErrorKind = "consistency_violation"
	KindGenerationExhausted    ErrorKind = "generation_exhausted"
	KindExecution              ErrorKind = "execution"
)

// OpError wraps an underlying error with operation context and a kind.
type OpError struct {
	Op   string
	Kind ErrorKind
	Path string // Optional: file path or variable name the error refers to
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind helps callers classify errors without depending on infra packages.
func IsKind(err error, kind ErrorKind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}

// newOpError wraps msg together with the sentinel matching kind, so both
// IsKind and errors.Is work on the result.
func newOpError(op string, kind ErrorKind, path string, msg string) *OpError {
	return &OpError{
		Op:   op,
		Kind: kind,
		Path: path,
		Err:  fmt.Errorf("%s: %w", msg, sentinelFor(kind)),
	}
}

// NewError is the exported form of newOpError for packages outside domain.
func NewError(op string, kind ErrorKind, path string, format string, args ...any) error {
	return newOpError(op, kind, path, fmt.Sprintf(format, args...))
}

func sentinelFor(kind ErrorKind) error {
	switch kind {
	case KindNotFound:
		return ErrNotFound
	case KindInvalidConfig:
		return ErrInvalidConfig
	case KindInvalidValue:
		return ErrInvalidValue
	case KindUnknownStrategy:
		return ErrUnknownStrategy
	case KindUnresolvableDependency:
		return ErrUnresolvableDependency
	case KindConsistencyViolation:
		return ErrConsistencyViolation
	case KindGenerationExhausted:
		return ErrGenerationExhausted
	default:
		return ErrExecution
	}
}
