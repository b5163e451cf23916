package weather

import "time"

// BuildWindows returns one date range per prior year, anchored on the anchor's
// month and day. A Feb 29 anchor maps to Feb 28 in non-leap years; any other day
// missing from the target year falls back to the first of the month. Each window
// spans windowDays calendar days, inclusive.
func BuildWindows(anchor time.Time, yearsBack, windowDays int) []DateRange {
	if yearsBack <= 0 {
		return nil
	}
	if windowDays < 1 {
		windowDays = 1
	}

	month, day := anchor.Month(), anchor.Day()
	windows := make([]DateRange, 0, yearsBack)
	for i := 1; i <= yearsBack; i++ {
		year := anchor.Year() - i

		var start time.Time
		switch {
		case dateExists(year, month, day):
			start = civilDate(year, month, day)
		case month == time.February && day == 29:
			start = civilDate(year, time.February, 28)
		default:
			start = civilDate(year, month, 1)
		}

		windows = append(windows, DateRange{
			Start: start,
			End:   start.AddDate(0, 0, windowDays-1),
		})
	}
	return windows
}

// ParseDate parses a YYYY-MM-DD string into a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// Truncate drops the time-of-day from t, keeping its calendar date in UTC.
func Truncate(t time.Time) time.Time {
	return civilDate(t.Year(), t.Month(), t.Day())
}

func civilDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// dateExists reports whether time.Date would keep the date as given rather than
// normalizing it into the next month.
func dateExists(year int, month time.Month, day int) bool {
	t := civilDate(year, month, day)
	return t.Month() == month && t.Day() == day
}
