package schedule

// =============================================================================
// PAY PERIOD - Sunday-to-Saturday 7-day window
// =============================================================================

// Period is an inclusive date range. All hour accounting is scoped to a pay
// period: the 7-day window starting on the Sunday on/before a given date.
type Period struct {
	Start Date
	End   Date
}

// PayPeriodStart returns the Sunday of the week containing date.
func PayPeriodStart(date Date) Date {
	return date.AddDays(-int(date.Weekday()))
}

// PayPeriodFor returns the full Sunday-to-Saturday period containing date.
func PayPeriodFor(date Date) Period {
	start := PayPeriodStart(date)
	return Period{Start: start, End: start.AddDays(6)}
}

// Contains reports whether d falls within the period [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns every day in the period in chronological order.
func (p Period) Days() []Date {
	var days []Date
	for d := p.Start; d.BeforeOrEqual(p.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// Next returns the period immediately following this one.
func (p Period) Next() Period {
	return Period{Start: p.End.AddDays(1), End: p.End.AddDays(7)}
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
