package businessday

import (
	"testing"
	"time"
)

func TestFor(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "midnight belongs to previous day",
			in:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			want: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "just before cutoff belongs to previous day",
			in:   time.Date(2024, 3, 15, 5, 59, 59, 0, time.UTC),
			want: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "exactly at cutoff starts the new day",
			in:   time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC),
			want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "afternoon is same day",
			in:   time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC),
			want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "late evening is same day",
			in:   time.Date(2024, 3, 15, 23, 59, 0, 0, time.UTC),
			want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "early hours across month boundary",
			in:   time.Date(2024, 4, 1, 2, 0, 0, 0, time.UTC),
			want: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "early hours across year boundary",
			in:   time.Date(2025, 1, 1, 3, 0, 0, 0, time.UTC),
			want: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := For(tt.in)
			if !got.Equal(tt.want) {
				t.Errorf("For(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestForPropertyAroundCutoff(t *testing.T) {
	// For every hour of a day: hour < 6 maps to the previous date,
	// hour >= 6 maps to the same date.
	base := time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)
	for h := 0; h < 24; h++ {
		ts := base.Add(time.Duration(h) * time.Hour)
		got := For(ts)
		want := base
		if h < CutoffHour {
			want = base.AddDate(0, 0, -1)
		}
		if !got.Equal(want) {
			t.Errorf("hour %d: For = %v, want %v", h, got, want)
		}
	}
}

func TestWindow(t *testing.T) {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	start, end := Window(day)

	wantStart := time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, 3, 16, 6, 0, 0, 0, time.UTC)

	if !start.Equal(wantStart) {
		t.Errorf("Window start = %v, want %v", start, wantStart)
	}
	if !end.Equal(wantEnd) {
		t.Errorf("Window end = %v, want %v", end, wantEnd)
	}
}

func TestWindowContainsItsOwnTimestamps(t *testing.T) {
	// Any timestamp inside a business day's window maps back to that day.
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	start, end := Window(day)

	for ts := start; ts.Before(end); ts = ts.Add(time.Hour) {
		if got := For(ts); !got.Equal(day) {
			t.Errorf("For(%v) = %v, want %v", ts, got, day)
		}
	}

	// The window end itself belongs to the next day.
	if got := For(end); !got.Equal(day.AddDate(0, 0, 1)) {
		t.Errorf("For(window end) = %v, want next day", got)
	}
}
