package generic

// =============================================================================
// PERIOD - Inclusive date window for queries
// =============================================================================

// Period bounds a query by calendar date, inclusive at both ends. A sample
// stamped with a time of day belongs to the period if its date does.
//
// Examples:
//   - A single month: Jun 1 - Jun 30
//   - Everything: OpenPeriod() (year 1 through year 2100)
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Bounds used when a query leaves start or stop unset.
var (
	EarliestDate = StartOfYear(1)
	LatestDate   = StartOfYear(2100)
)

// OpenPeriod spans every date the logs can reasonably contain.
func OpenPeriod() Period {
	return Period{Start: EarliestDate, End: LatestDate}
}

// NewPeriod fills zero bounds with the open defaults and rejects inverted windows.
func NewPeriod(start, end TimePoint) (Period, error) {
	p := Period{Start: start, End: end}
	if p.Start.IsZero() {
		p.Start = EarliestDate
	}
	if p.End.IsZero() {
		p.End = LatestDate
	}
	if p.End.Date().Before(p.Start.Date()) {
		return Period{}, ErrInvalidPeriod
	}
	return p, nil
}

// ParsePeriod builds a period from optional YYYY-MM-DD strings.
func ParsePeriod(start, stop string) (Period, error) {
	var s, e TimePoint
	var err error
	if start != "" {
		if s, err = ParseDate(start); err != nil {
			return Period{}, err
		}
	}
	if stop != "" {
		if e, err = ParseDate(stop); err != nil {
			return Period{}, err
		}
	}
	return NewPeriod(s, e)
}

// Contains returns true if the date of t is within [Start, End].
func (p Period) Contains(t TimePoint) bool {
	d := t.Date()
	return d.AfterOrEqual(p.Start.Date()) && d.BeforeOrEqual(p.End.Date())
}

// Days returns all days in the period as a slice of TimePoints.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	current := p.Start.Date()
	end := p.End.Date()
	for current.BeforeOrEqual(end) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
