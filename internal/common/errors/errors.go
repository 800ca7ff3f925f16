// Package errors provides the query error taxonomy with wrapping and exit-code mapping
package errors

// Import as perr to avoid shadowing the standard library package

import (
	stderrs "errors"
	"fmt"
)

// Kind classifies a failure so callers can decide between retry, skip and abort
type Kind uint8

const (
	// KindUnknown is for unclassified errors
	KindUnknown Kind = iota

	// KindConfig is for invalid configuration or a request the service rejects as malformed
	KindConfig

	// KindGeocode is for a place that cannot be resolved; fatal to the query
	KindGeocode

	// KindQuotaOrAuth is for quota exhaustion or a rejected key; fatal, never retried
	KindQuotaOrAuth

	// KindTransient is for rate limits, 5xx and timeouts; retried with backoff
	KindTransient

	// KindNoTransitOptions signals the service has no connections from this instant on
	KindNoTransitOptions

	// KindMalformedItinerary drops one itinerary; never aborts the day
	KindMalformedItinerary

	// KindCoverageIncomplete is a warning that the call ceiling was reached
	KindCoverageIncomplete

	// KindNoEligibleItineraries is returned when nothing survives filtering
	KindNoEligibleItineraries

	// KindCanceled is for a caller-initiated stop between iterations
	KindCanceled
)

var kindNames = map[Kind]string{
	KindUnknown:               "unknown",
	KindConfig:                "config",
	KindGeocode:               "geocode",
	KindQuotaOrAuth:           "quota_or_auth",
	KindTransient:             "transient_service",
	KindNoTransitOptions:      "no_transit_options",
	KindMalformedItinerary:    "malformed_itinerary",
	KindCoverageIncomplete:    "coverage_incomplete",
	KindNoEligibleItineraries: "no_eligible_itineraries",
	KindCanceled:              "canceled",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ExitCode maps a kind to the process exit status used by the CLI
func ExitCode(k Kind) int {
	switch k {
	case KindConfig:
		return 2
	case KindGeocode:
		return 3
	case KindQuotaOrAuth:
		return 4
	case KindTransient:
		return 5
	case KindNoEligibleItineraries:
		return 6
	case KindCanceled:
		return 130
	default:
		return 1
	}
}

// Error is the structured error type.
// op names the operation that failed, msg is developer facing, cause is wrapped.
type Error struct {
	kind  Kind
	op    string
	msg   string
	cause error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	s := e.msg
	if e.op != "" {
		s = e.op + ": " + s
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", s, e.cause)
	}
	return s
}

// Unwrap returns the wrapped cause, if any
func (e *Error) Unwrap() error { return e.cause }

// Kind returns the error kind
func (e *Error) Kind() Kind { return e.kind }

// Op returns the failing operation tag
func (e *Error) Op() string { return e.op }

// New creates an error of the given kind
func New(kind Kind, op, msg string) *Error {
	return &Error{kind: kind, op: op, msg: msg}
}

// Newf creates an error with a formatted message
func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{kind: kind, op: op, msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and operation to cause. A nil cause yields nil.
func Wrap(cause error, kind Kind, op, msg string) error {
	if cause == nil {
		return nil
	}
	return &Error{kind: kind, op: op, msg: msg, cause: cause}
}

// KindOf returns the kind of the outermost *Error in the chain, or KindUnknown
func KindOf(err error) Kind {
	var e *Error
	if stderrs.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

