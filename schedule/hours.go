/*
hours.go - The hours-accounting engine

PURPOSE:
  Pure computation over shift records: per-shift hour value, weekly totals,
  per-tile running totals, and the 40-hour cap check. Everything here is a
  function of its inputs; persistence is the caller's concern.

THE SATURDAY OVERNIGHT SPLIT:
  The overnight shift runs 7pm-7am and therefore spans midnight. On a
  Saturday that midnight is also the pay-period boundary, so only the 5
  hours before midnight are charged to the current period. The 7-hour
  remainder is not credited to the following period either - the observed
  accounting is one-sided. Both constants are kept so that crediting the
  remainder later is a one-line change.

THE CAP:
  40 hours per pay period, strictly greater-than: a projected total of
  exactly 40.0 passes. Staff whose job title is exactly "House Manager"
  are exempt and never exceed.

SEE ALSO:
  - period.go: pay-period boundaries
  - errors.go: CapExceededError raised by callers on a failed check
*/
package schedule

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// HOUR VALUES
// =============================================================================

// WeeklyCap is the per-pay-period ceiling for non-exempt staff.
var WeeklyCap = decimal.NewFromFloat(40.0)

var shiftHourTable = map[ShiftType]decimal.Decimal{
	ShiftMorning:   decimal.NewFromFloat(8.0),
	ShiftAfternoon: decimal.NewFromFloat(4.0),
	ShiftOvernight: decimal.NewFromFloat(12.0),
}

// Saturday overnight split: 7pm-midnight counts here, midnight-7am does not.
var (
	SatOvernightThisPeriod = decimal.NewFromFloat(5.0)
	SatOvernightNextPeriod = decimal.NewFromFloat(7.0) // never charged; see header
)

// ShiftHours returns the hour value charged to date's pay period for a shift
// of the given type. Unknown shift types yield zero; callers treat that as a
// data-integrity signal and log it, never as an error.
func ShiftHours(date Date, shiftType ShiftType) decimal.Decimal {
	if date.Weekday() == time.Saturday && shiftType == ShiftOvernight {
		return SatOvernightThisPeriod
	}
	if h, ok := shiftHourTable[shiftType]; ok {
		return h
	}
	return decimal.Zero
}

// =============================================================================
// WEEKLY TOTALS
// =============================================================================

// WeeklyHours sums ShiftHours over every shift in the pay period containing
// anchor that is assigned to staffID. A non-zero exclude drops that shift
// from the total (used while it is mid-trade-away). The result is
// independent of input ordering.
func WeeklyHours(shifts []Shift, staffID StaffID, anchor Date, exclude ShiftID) decimal.Decimal {
	period := PayPeriodFor(anchor)
	total := decimal.Zero
	for _, s := range shifts {
		if !s.AssignedToStaff(staffID) {
			continue
		}
		if exclude != 0 && s.ID == exclude {
			continue
		}
		if !period.Contains(s.Date) {
			continue
		}
		total = total.Add(ShiftHours(s.Date, s.Type))
	}
	return total
}

// =============================================================================
// RUNNING TOTALS - Cumulative hours per calendar tile
// =============================================================================

// TotalsKey addresses one calendar tile: a shift slot held by a staff member.
type TotalsKey struct {
	Date    string
	StaffID StaffID
	Type    ShiftType
}

// RunningTotals walks the 7-day period starting at periodStart in
// chronological order, and within each day in the fixed order
// morning -> afternoon -> overnight, accumulating per-staff sums. The value
// recorded for each tile is the staff member's cumulative total after that
// shift. The fixed ordering is a deliberate tie-break: the "hours so far
// this week" shown on any tile is deterministic regardless of the order
// shifts were created in.
func RunningTotals(shifts []Shift, periodStart Date) map[TotalsKey]decimal.Decimal {
	byDay := make(map[string][]Shift)
	for _, s := range shifts {
		if s.AssignedTo == nil {
			continue
		}
		byDay[s.Date.String()] = append(byDay[s.Date.String()], s)
	}

	totals := make(map[TotalsKey]decimal.Decimal)
	acc := make(map[StaffID]decimal.Decimal)

	period := Period{Start: periodStart, End: periodStart.AddDays(6)}
	for _, day := range period.Days() {
		for _, st := range ShiftTypes {
			for _, s := range byDay[day.String()] {
				if s.Type != st {
					continue
				}
				staffID := *s.AssignedTo
				sum := acc[staffID].Add(ShiftHours(s.Date, s.Type))
				acc[staffID] = sum
				totals[TotalsKey{Date: day.String(), StaffID: staffID, Type: st}] = sum
			}
		}
	}
	return totals
}

// =============================================================================
// CAP CHECK
// =============================================================================

// CapCheck is the result of evaluating a prospective shift against the
// weekly cap.
type CapCheck struct {
	WouldExceed    bool
	CurrentHours   decimal.Decimal
	ProjectedHours decimal.Decimal
	ShiftHours     decimal.Decimal
	IsExempt       bool
}

// CheckCap evaluates whether assigning a shift of the given date/type to
// staff would push their pay-period total past the cap. A non-zero exclude
// drops that shift from the current total first (the shift being traded
// away). Exempt staff never exceed, whatever the total.
func CheckCap(shifts []Shift, staff *Staff, date Date, shiftType ShiftType, exclude ShiftID) CapCheck {
	current := WeeklyHours(shifts, staff.ID, date, exclude)
	hours := ShiftHours(date, shiftType)
	projected := current.Add(hours)

	return CapCheck{
		WouldExceed:    projected.GreaterThan(WeeklyCap) && !staff.IsCapExempt(),
		CurrentHours:   current,
		ProjectedHours: projected,
		ShiftHours:     hours,
		IsExempt:       staff.IsCapExempt(),
	}
}

// =============================================================================
// DISPLAY HELPERS
// =============================================================================

// FormatHours renders a total for display, e.g. "8.0/40.0".
func FormatHours(h decimal.Decimal) string {
	return h.StringFixed(1) + "/" + WeeklyCap.StringFixed(1)
}

// HoursStatus buckets a weekly total for UI styling.
func HoursStatus(h decimal.Decimal) string {
	switch {
	case h.GreaterThanOrEqual(WeeklyCap):
		return "over"
	case h.GreaterThanOrEqual(decimal.NewFromFloat(36.0)):
		return "warn"
	default:
		return "ok"
	}
}
