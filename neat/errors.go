package neat

import (
	"errors"
	"fmt"
)

// ErrContract marks programmer or configuration errors: the caller broke a
// precondition of the API. These are never expected during a healthy run.
var ErrContract = errors.New("contract violation")

// ErrInvariant marks internal invariant failures detected by defensive checks.
var ErrInvariant = errors.New("internal invariant failure")

// ErrNoCandidate is returned by a structural mutation when its bounded search
// found nothing eligible in the genome. It is not a failure.
var ErrNoCandidate = errors.New("no eligible candidate")

// Contract violations. Each wraps ErrContract.
var (
	ErrInputSize         = fmt.Errorf("%w: input size mismatch", ErrContract)
	ErrUnknownActivation = fmt.Errorf("%w: unknown activation type", ErrContract)
	ErrFrozenGenome      = fmt.Errorf("%w: genome is owned by a population; clone before mutating", ErrContract)
	ErrSlotRange         = fmt.Errorf("%w: slot out of range", ErrContract)
	ErrMissingFitness    = fmt.Errorf("%w: fitness not set", ErrContract)
	ErrConfig            = fmt.Errorf("%w: config error", ErrContract)
)

// InvariantError describes which invariant failed and where.
type InvariantError struct {
	Invariant string
	Detail    string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant %q failed: %s", e.Invariant, e.Detail)
}

// Unwrap lets errors.Is match ErrInvariant.
func (e *InvariantError) Unwrap() error { return ErrInvariant }

func invariantf(invariant, format string, args ...any) error {
	return &InvariantError{Invariant: invariant, Detail: fmt.Sprintf(format, args...)}
}
