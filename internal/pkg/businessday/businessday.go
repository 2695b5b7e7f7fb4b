package businessday

import "time"

// CutoffHour is the local hour at which a new business day begins.
// Collections recorded between midnight and 06:00 still belong to the
// previous day's cash cycle.
const CutoffHour = 6

// For maps a wall-clock timestamp to its business day. Timestamps before
// 06:00 local time fall on the previous calendar date. The returned time
// is the date at midnight in t's location.
func For(t time.Time) time.Time {
	if t.Hour() < CutoffHour {
		t = t.AddDate(0, 0, -1)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Window returns the half-open interval [day 06:00, day+1 06:00) covered
// by the given business day.
func Window(day time.Time) (start, end time.Time) {
	start = time.Date(day.Year(), day.Month(), day.Day(), CutoffHour, 0, 0, 0, day.Location())
	return start, start.Add(24 * time.Hour)
}

// Clock abstracts wall-clock time so services can be tested with a frozen
// time source.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock is a Clock frozen at a single instant, for tests.
type FixedClock struct {
	T time.Time
}

// Now returns the frozen instant.
func (c FixedClock) Now() time.Time {
	return c.T
}
