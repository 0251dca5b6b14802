package timewindow

import "time"

// DefaultCutoffHour is the hour a kitchen's business day rolls over.
// Closing tasks finished after midnight still belong to the previous
// service, so the day starts at 3 AM rather than 00:00.
const DefaultCutoffHour = 3

// StaleAfter is how long a completed item stays completed before the
// lazy client reset clears it.
const StaleAfter = 24 * time.Hour

type Window int

const (
	WindowCurrent Window = iota
	WindowPrevious
	WindowExpired
)

func (w Window) String() string {
	switch w {
	case WindowCurrent:
		return "current"
	case WindowPrevious:
		return "previous"
	case WindowExpired:
		return "expired"
	}
	return "unknown"
}

// ParseWindow maps a query-string value back to a Window.
func ParseWindow(value string) (Window, bool) {
	switch value {
	case "current":
		return WindowCurrent, true
	case "previous":
		return WindowPrevious, true
	case "expired":
		return WindowExpired, true
	}
	return WindowCurrent, false
}

// BusinessDayCutoff returns the instant the current business day began,
// evaluated against now's location. If now is at or past the cutoff hour,
// the cutoff falls on now's calendar date; otherwise on the previous date.
// Around DST transitions the cutoff tracks the local wall clock, so the
// instant may shift by the transition offset. Best effort, never panics.
func BusinessDayCutoff(now time.Time, cutoffHour int) time.Time {
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), cutoffHour, 0, 0, 0, now.Location())
	if now.Hour() < cutoffHour {
		cutoff = cutoff.AddDate(0, 0, -1)
	}
	return cutoff
}

// Classify buckets a record timestamp against the business-day window.
// The cutoff instant itself is WindowCurrent (closed lower bound), the
// preceding 24 hours are WindowPrevious, anything older is WindowExpired.
// A nil timestamp classifies as WindowCurrent so untimed records stay
// visible rather than being swept.
func Classify(ts *time.Time, now time.Time, cutoffHour int) Window {
	if ts == nil {
		return WindowCurrent
	}
	cutoff := BusinessDayCutoff(now, cutoffHour)
	if !ts.Before(cutoff) {
		return WindowCurrent
	}
	if !ts.Before(cutoff.Add(-24 * time.Hour)) {
		return WindowPrevious
	}
	return WindowExpired
}

// StaleCompletion reports whether a completion timestamp is old enough
// for the lazy reset to clear. Records without a completion timestamp
// are never stale.
func StaleCompletion(completedAt *time.Time, now time.Time) bool {
	if completedAt == nil {
		return false
	}
	return now.Sub(*completedAt) >= StaleAfter
}

// BusinessDayDate returns the calendar date (ISO, YYYY-MM-DD) that the
// current business day belongs to. Used as the once-per-day marker value
// for the unconditional checklist reset.
func BusinessDayDate(now time.Time, cutoffHour int) string {
	return BusinessDayCutoff(now, cutoffHour).Format("2006-01-02")
}
