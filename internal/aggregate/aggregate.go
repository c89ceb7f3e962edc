// Package aggregate reduces raw per-second samples into chart buckets.
// Each display range has a fixed lookback window and bucket granularity:
// a week of data charts per hour, a month per day, a year per month, and
// all-time per year.
package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/sh44ni/internetkit/internal/models"
)

// Display range keys accepted by the history and summary endpoints.
const (
	Range7Days = "7days"
	RangeMonth = "month"
	RangeYear  = "year"
	RangeAll   = "all"
)

var windows = map[string]time.Duration{
	Range7Days: 168 * time.Hour,
	RangeMonth: 720 * time.Hour,
	RangeYear:  8760 * time.Hour,
	RangeAll:   876000 * time.Hour,
}

// Normalize lower-cases a range key and maps unknown values to RangeYear.
func Normalize(key string) string {
	switch k := strings.ToLower(strings.TrimSpace(key)); k {
	case Range7Days, RangeMonth, RangeYear, RangeAll:
		return k
	default:
		return RangeYear
	}
}

// Window returns the lookback duration for a normalized range key.
func Window(key string) time.Duration {
	if w, ok := windows[key]; ok {
		return w
	}
	return windows[RangeYear]
}

// Series buckets records for the given range key and returns points sorted by
// bucket start. Empty input yields a single zero point stamped now so the
// chart always has something to draw.
func Series(records []models.SpeedSample, key string, now time.Time) []models.SeriesPoint {
	buckets := make(map[int64]*models.SeriesPoint)
	for _, rec := range records {
		start := bucketStart(rec.Timestamp, key)
		ts := start.Unix()
		p, ok := buckets[ts]
		if !ok {
			p = &models.SeriesPoint{TS: float64(ts)}
			buckets[ts] = p
		}
		p.Down += rec.Down
		p.Up += rec.Up
	}

	if len(buckets) == 0 {
		return []models.SeriesPoint{{TS: float64(now.Unix())}}
	}

	out := make([]models.SeriesPoint, 0, len(buckets))
	for _, p := range buckets {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TS < out[j].TS })
	return out
}

// Totals sums records and tracks per-sample peaks for the summary endpoint.
func Totals(records []models.SpeedSample) models.WindowTotals {
	var t models.WindowTotals
	for _, rec := range records {
		t.TotalDown += rec.Down
		t.TotalUp += rec.Up
		if rec.Down > t.PeakDown {
			t.PeakDown = rec.Down
		}
		if rec.Up > t.PeakUp {
			t.PeakUp = rec.Up
		}
	}
	return t
}

// bucketStart truncates ts to the bucket boundary for the range key, in the
// sample's own location so day and month boundaries follow local wall time.
func bucketStart(ts time.Time, key string) time.Time {
	loc := ts.Location()
	switch key {
	case Range7Days:
		return time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), 0, 0, 0, loc)
	case RangeMonth:
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, loc)
	case RangeYear:
		return time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, loc)
	case RangeAll:
		return time.Date(ts.Year(), 1, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), 0, 0, 0, loc)
	}
}
