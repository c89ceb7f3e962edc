package aggregate

import (
	"testing"
	"time"

	"github.com/sh44ni/internetkit/internal/models"
)

func rec(ts time.Time, down, up uint64) models.SpeedSample {
	return models.SpeedSample{Timestamp: ts, Down: down, Up: up}
}

// TestNormalize verifies range key normalization and the year fallback.
func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "known key",
			in:   "7days",
			want: Range7Days,
		},
		{
			name: "upper case",
			in:   "MONTH",
			want: RangeMonth,
		},
		{
			name: "whitespace",
			in:   " all ",
			want: RangeAll,
		},
		{
			name: "unknown falls back to year",
			in:   "fortnight",
			want: RangeYear,
		},
		{
			name: "empty falls back to year",
			in:   "",
			want: RangeYear,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

// TestWindow verifies lookback durations per range key.
func TestWindow(t *testing.T) {
	if got := Window(Range7Days); got != 168*time.Hour {
		t.Fatalf("Window(7days) = %s, want 168h", got)
	}
	if got := Window(RangeAll); got != 876000*time.Hour {
		t.Fatalf("Window(all) = %s, want 876000h", got)
	}
	if got := Window("bogus"); got != 8760*time.Hour {
		t.Fatalf("Window(bogus) = %s, want year window", got)
	}
}

// TestSeries_HourBuckets verifies that 7days aggregates per hour and sorts
// buckets ascending.
func TestSeries_HourBuckets(t *testing.T) {
	base := time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC)
	records := []models.SpeedSample{
		rec(base.Add(50*time.Minute), 10, 1),
		rec(base.Add(10*time.Minute), 20, 2),
		rec(base.Add(70*time.Minute), 40, 4), // next hour
	}

	got := Series(records, Range7Days, base)
	if len(got) != 2 {
		t.Fatalf("Series returned %d buckets, want 2", len(got))
	}
	if got[0].Down != 30 || got[0].Up != 3 {
		t.Fatalf("first bucket = %+v, want down=30 up=3", got[0])
	}
	if got[1].Down != 40 {
		t.Fatalf("second bucket = %+v, want down=40", got[1])
	}
	if got[0].TS >= got[1].TS {
		t.Fatalf("buckets not sorted: %v >= %v", got[0].TS, got[1].TS)
	}
	if got[0].TS != float64(base.Unix()) {
		t.Fatalf("first bucket ts = %v, want hour start %v", got[0].TS, base.Unix())
	}
}

// TestSeries_DayAndMonthBuckets verifies truncation for month and year ranges.
func TestSeries_DayAndMonthBuckets(t *testing.T) {
	records := []models.SpeedSample{
		rec(time.Date(2026, 8, 20, 3, 15, 0, 0, time.UTC), 1, 0),
		rec(time.Date(2026, 8, 20, 22, 45, 0, 0, time.UTC), 2, 0),
		rec(time.Date(2026, 8, 21, 1, 0, 0, 0, time.UTC), 4, 0),
	}

	byDay := Series(records, RangeMonth, time.Now())
	if len(byDay) != 2 {
		t.Fatalf("month range: %d buckets, want 2", len(byDay))
	}
	if byDay[0].Down != 3 {
		t.Fatalf("day bucket down = %d, want 3", byDay[0].Down)
	}

	byMonth := Series(records, RangeYear, time.Now())
	if len(byMonth) != 1 {
		t.Fatalf("year range: %d buckets, want 1", len(byMonth))
	}
	if byMonth[0].Down != 7 {
		t.Fatalf("month bucket down = %d, want 7", byMonth[0].Down)
	}
	monthStart := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	if byMonth[0].TS != float64(monthStart.Unix()) {
		t.Fatalf("month bucket ts = %v, want %v", byMonth[0].TS, monthStart.Unix())
	}
}

// TestSeries_Empty verifies the single zero point contract for empty input.
func TestSeries_Empty(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	got := Series(nil, Range7Days, now)
	if len(got) != 1 {
		t.Fatalf("Series(nil) returned %d points, want 1", len(got))
	}
	if got[0].Down != 0 || got[0].Up != 0 || got[0].TS != float64(now.Unix()) {
		t.Fatalf("zero point = %+v, want zeros at now", got[0])
	}
}

// TestTotals verifies sums and per-sample peaks.
func TestTotals(t *testing.T) {
	now := time.Now()
	records := []models.SpeedSample{
		rec(now, 100, 10),
		rec(now, 300, 5),
		rec(now, 200, 50),
	}

	got := Totals(records)
	if got.TotalDown != 600 || got.TotalUp != 65 {
		t.Fatalf("totals = %+v, want down=600 up=65", got)
	}
	if got.PeakDown != 300 || got.PeakUp != 50 {
		t.Fatalf("peaks = %+v, want down=300 up=50", got)
	}

	if zero := Totals(nil); zero != (models.WindowTotals{}) {
		t.Fatalf("Totals(nil) = %+v, want zero value", zero)
	}
}
