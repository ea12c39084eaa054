package sale

import (
	"errors"
	"fmt"
)

var (
	// ErrCatalogUnavailable: a compose flow could not load clients or
	// products; the flow stays unusable rather than running on a partial
	// catalog.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	ErrUnknownProduct    = errors.New("unknown product")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNoSuchLine        = errors.New("no such line")

	ErrMissingClient = errors.New("missing client")
	ErrEmptyOrder    = errors.New("order has no lines")

	// ErrSubmitInFlight: line mutations are rejected while a submission is
	// outstanding so the submitted totals cannot drift mid-flight.
	ErrSubmitInFlight = errors.New("submission in flight")

	// ErrFlowClosed: the compose flow was cancelled or already completed.
	ErrFlowClosed = errors.New("compose flow closed")
)

// SubmissionError wraps a backend rejection of the create-order call. Reason
// is the backend's message verbatim when one was provided.
type SubmissionError struct {
	Reason string
	Err    error
}

func (e *SubmissionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("submission failed: %s", e.Reason)
	}
	return "submission failed"
}

func (e *SubmissionError) Unwrap() error { return e.Err }
