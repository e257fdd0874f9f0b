package utils

import "time"

const isoDate = "2006-01-02"

// CalculateDayOffset returns the whole number of days from originalStart to
// newStart. Used to shift every dated entity by one constant offset when a
// timeline is copied into a new date range.
func CalculateDayOffset(originalStart, newStart string) (int, error) {
	from, err := time.Parse(isoDate, originalStart)
	if err != nil {
		return 0, err
	}
	to, err := time.Parse(isoDate, newStart)
	if err != nil {
		return 0, err
	}
	return int(to.Sub(from).Hours() / 24), nil
}

// ShiftDate moves an ISO date by the given number of days.
func ShiftDate(date string, days int) (string, error) {
	d, err := time.Parse(isoDate, date)
	if err != nil {
		return "", err
	}
	return d.AddDate(0, 0, days).Format(isoDate), nil
}

// ValidDateRange reports whether start and end parse as ISO dates and end
// does not precede start.
func ValidDateRange(start, end string) bool {
	s, err := time.Parse(isoDate, start)
	if err != nil {
		return false
	}
	e, err := time.Parse(isoDate, end)
	if err != nil {
		return false
	}
	return !e.Before(s)
}
