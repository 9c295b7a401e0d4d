/*
errors.go - Centralized error types for the series engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The fitness package wraps these with record-level context.

ERROR CATEGORIES:
  1. Log errors - empty log, unparseable rows, ordering violations
  2. Analysis errors - bad bin widths, too little data for a trend
  3. Remote errors - authentication and provider call failures

USAGE:
    if errors.Is(err, generic.ErrEmptyLog) {
        // nothing to correct
    }

SEE ALSO:
  - ledger.go: Uses the log errors
  - binning.go, projection.go: Use the analysis errors
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmptyLog is returned by RemoveLast when the log is absent or empty.
	ErrEmptyLog = errors.New("empty log")

	// ErrMalformedRow is returned when a stored line cannot be decoded.
	// A read that hits one fails as a whole.
	ErrMalformedRow = errors.New("malformed log row")

	// ErrOutOfOrder is returned when an append would break date ordering.
	ErrOutOfOrder = errors.New("record out of date order")

	// ErrLogExists is returned when bootstrapping a log that already has rows.
	ErrLogExists = errors.New("log already initialized")

	// ErrInvalidBinWidth is returned for bin widths (or bin counts) below 1.
	ErrInvalidBinWidth = errors.New("invalid bin width: must be >= 1")

	// ErrInsufficientData is returned when a trend needs more samples than exist.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrFlatTrend is returned when projecting a date along a zero slope.
	ErrFlatTrend = errors.New("trend is flat")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrNotFound is returned by as-of lookups with no record at or before the date.
	ErrNotFound = errors.New("no record at or before date")

	// ErrAuthentication aborts a bootstrap or sync run before any append.
	ErrAuthentication = errors.New("authentication failed")

	// ErrProviderCall marks a single failed provider request.
	ErrProviderCall = errors.New("provider call failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// MalformedRowError identifies the offending line in a log.
type MalformedRowError struct {
	Log    string
	Line   int // 1-based
	Row    string
	Reason string
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("%s line %d: malformed row %q: %s", e.Log, e.Line, e.Row, e.Reason)
}

func (e *MalformedRowError) Unwrap() error {
	return ErrMalformedRow
}

// OutOfOrderError reports an append whose date does not follow the last record.
type OutOfOrderError struct {
	Log  string
	Last TimePoint
	Next TimePoint
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("%s: record dated %s cannot follow %s", e.Log, e.Next, e.Last)
}

func (e *OutOfOrderError) Unwrap() error {
	return ErrOutOfOrder
}

// AuthError names the provider that refused the credentials.
type AuthError struct {
	Provider string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication failed: %v", e.Provider, e.Err)
}

func (e *AuthError) Unwrap() []error {
	return []error{ErrAuthentication, e.Err}
}

// ProviderError records a failed request to a remote data source.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() []error {
	return []error{ErrProviderCall, e.Err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidBinWidth) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrOutOfOrder)
}

// IsNotFound returns true if the error means there was nothing to return.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrEmptyLog) ||
		errors.Is(err, ErrInsufficientData)
}
