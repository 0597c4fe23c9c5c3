/*
errors.go - Failure taxonomy for all state transitions

PURPOSE:
  Every validation failure an exchange operation can produce lives here.
  All failures are detected before any mutation; no partial state ever
  accompanies an error from this taxonomy.

ERROR CATEGORIES:
  1. State errors      - operation not applicable to current entity state
  2. Authorization     - actor lacks the role or relationship
  3. Identity errors   - stale or wrong identifiers
  4. Cap errors        - the 40-hour rule

USAGE:
  Handlers map these with errors.Is / errors.As:

    var capErr *schedule.CapExceededError
    if errors.As(err, &capErr) { ... capErr.Check.ProjectedHours ... }

SEE ALSO:
  - hours.go: CapCheck embedded in CapExceededError
  - exchange: the package that produces these
*/
package schedule

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidState is returned when an operation does not apply to the
	// entity's current state, e.g. requesting a shift that is not open.
	ErrInvalidState = errors.New("invalid state for operation")

	// ErrNotAuthorized is returned when the actor lacks the required role or
	// relationship (e.g. approving a trade they are not the target of).
	ErrNotAuthorized = errors.New("not authorized")

	// ErrNotFound is returned for a stale or wrong identifier.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyProcessed is returned when a request has already left the
	// pending state. Terminal requests admit no further mutation.
	ErrAlreadyProcessed = errors.New("request already processed")

	// ErrCapExceeded is returned when an operation would violate the
	// 40-hour weekly cap. Usually wrapped in a CapExceededError.
	ErrCapExceeded = errors.New("would exceed weekly hour cap")

	// ErrIncompleteApprovals is returned when a trade finalize is attempted
	// before the target has approved.
	ErrIncompleteApprovals = errors.New("both parties must approve first")

	// ErrDuplicatePending is returned when a staff member already has a
	// pending request for the same shift.
	ErrDuplicatePending = errors.New("duplicate pending request")

	// ErrDuplicateShift is returned when a shift already exists for the
	// (date, shift type) pair.
	ErrDuplicateShift = errors.New("shift already exists for this date and time")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// TradeParty names which side of a trade a cap failure belongs to.
type TradeParty string

const (
	PartyRequester TradeParty = "requester"
	PartyTarget    TradeParty = "target"
)

// CapExceededError carries the full cap computation so callers can explain
// the rejection (current and projected hours).
type CapExceededError struct {
	StaffID StaffID
	Party   TradeParty // empty outside trade flows
	Check   CapCheck
}

func (e *CapExceededError) Error() string {
	if e.Party != "" {
		return fmt.Sprintf("%s would exceed weekly cap: %s current, %s projected",
			e.Party, e.Check.CurrentHours.StringFixed(1), e.Check.ProjectedHours.StringFixed(1))
	}
	return fmt.Sprintf("would exceed weekly cap: %s current, %s projected",
		e.Check.CurrentHours.StringFixed(1), e.Check.ProjectedHours.StringFixed(1))
}

func (e *CapExceededError) Unwrap() error { return ErrCapExceeded }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation reports whether the error is a client-correctable rejection
// (HTTP 400 territory) rather than an authorization or identity failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrCapExceeded) ||
		errors.Is(err, ErrIncompleteApprovals) ||
		errors.Is(err, ErrDuplicatePending) ||
		errors.Is(err, ErrDuplicateShift) ||
		errors.Is(err, ErrAlreadyProcessed)
}

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
