package timewindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02T15:04:05", value)
	if err != nil {
		t.Fatalf("Failed to parse %s: %s", value, err)
	}
	return ts
}

func TestBusinessDayCutoff(t *testing.T) {
	cases := []struct {
		name   string
		now    string
		cutoff string
	}{
		{"MorningAfterCutoff", "2024-03-10T10:00:00", "2024-03-10T03:00:00"},
		{"ExactlyAtCutoff", "2024-03-10T03:00:00", "2024-03-10T03:00:00"},
		{"LateNightBeforeCutoff", "2024-03-10T02:59:59", "2024-03-09T03:00:00"},
		{"Midnight", "2024-03-10T00:00:00", "2024-03-09T03:00:00"},
		{"JustBeforeMidnight", "2024-03-09T23:59:59", "2024-03-09T03:00:00"},
		{"FirstOfMonth", "2024-03-01T01:30:00", "2024-02-29T03:00:00"},
		{"FirstOfYear", "2024-01-01T02:00:00", "2023-12-31T03:00:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := BusinessDayCutoff(mustParse(t, tc.now), DefaultCutoffHour)
			assert.Equal(t, mustParse(t, tc.cutoff), got)
		})
	}
}

func TestBusinessDayCutoffRespectsLocation(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Skipf("Timezone database unavailable: %s", err)
	}
	// 2 AM London on June 1st is before the cutoff, so the business day
	// started at 3 AM the previous day, London wall clock.
	now := time.Date(2024, 6, 1, 2, 0, 0, 0, loc)
	cutoff := BusinessDayCutoff(now, DefaultCutoffHour)
	assert.Equal(t, time.Date(2024, 5, 31, 3, 0, 0, 0, loc), cutoff)
	assert.Equal(t, loc, cutoff.Location())
}

func TestBusinessDayCutoffAcrossDSTTransition(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Skipf("Timezone database unavailable: %s", err)
	}
	// UK spring-forward: 2024-03-31 01:00 GMT jumps to 02:00 BST. The 3 AM
	// wall-clock cutoff still exists on that date; assert we neither panic
	// nor land on a different hour.
	now := time.Date(2024, 3, 31, 4, 0, 0, 0, loc)
	cutoff := BusinessDayCutoff(now, DefaultCutoffHour)
	assert.Equal(t, 3, cutoff.Hour())
	assert.Equal(t, 31, cutoff.Day())
}

func TestClassify(t *testing.T) {
	now := mustParse(t, "2024-03-10T10:00:00")
	cases := []struct {
		name string
		ts   string
		want Window
	}{
		{"AfterCutoff", "2024-03-10T09:00:00", WindowCurrent},
		{"ExactlyAtCutoffIsCurrent", "2024-03-10T03:00:00", WindowCurrent},
		{"InTheFuture", "2024-03-10T11:00:00", WindowCurrent},
		{"JustBeforeCutoff", "2024-03-10T02:59:00", WindowPrevious},
		{"StartOfPreviousWindow", "2024-03-09T03:00:00", WindowPrevious},
		{"JustBeforePreviousWindow", "2024-03-09T02:59:59", WindowExpired},
		{"TwoDaysOld", "2024-03-08T10:00:00", WindowExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := mustParse(t, tc.ts)
			assert.Equal(t, tc.want, Classify(&ts, now, DefaultCutoffHour))
		})
	}
}

func TestClassifyNilTimestampFailsOpen(t *testing.T) {
	now := mustParse(t, "2024-03-10T10:00:00")
	assert.Equal(t, WindowCurrent, Classify(nil, now, DefaultCutoffHour))
}

func TestParseWindow(t *testing.T) {
	for _, want := range []Window{WindowCurrent, WindowPrevious, WindowExpired} {
		got, ok := ParseWindow(want.String())
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := ParseWindow("someday")
	assert.False(t, ok)
}

func TestStaleCompletion(t *testing.T) {
	completed := mustParse(t, "2024-01-01T10:00:00")

	later := mustParse(t, "2024-01-02T11:00:00")
	assert.True(t, StaleCompletion(&completed, later), "25 hours later should be stale")

	sameDay := mustParse(t, "2024-01-01T20:00:00")
	assert.False(t, StaleCompletion(&completed, sameDay), "10 hours later should not be stale")

	boundary := completed.Add(24 * time.Hour)
	assert.True(t, StaleCompletion(&completed, boundary), "exactly 24 hours is stale")

	assert.False(t, StaleCompletion(nil, later), "missing completion time is never stale")
}

func TestBusinessDayDate(t *testing.T) {
	assert.Equal(t, "2024-03-10", BusinessDayDate(mustParse(t, "2024-03-10T10:00:00"), DefaultCutoffHour))
	assert.Equal(t, "2024-03-09", BusinessDayDate(mustParse(t, "2024-03-10T01:00:00"), DefaultCutoffHour))
}
