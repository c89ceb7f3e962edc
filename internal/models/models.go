package models

import "time"

// SpeedSample is one second of network activity. Down and Up are byte deltas
// for the sampling interval; TotalDown and TotalUp are the running daily totals
// at the time the sample was taken. This is the on-disk history record shape.
type SpeedSample struct {
	Timestamp time.Time `json:"timestamp"`
	Down      uint64    `json:"down"`
	Up        uint64    `json:"up"`
	TotalDown uint64    `json:"total_down"`
	TotalUp   uint64    `json:"total_up"`
}

// LiveStats is a snapshot of current throughput and daily totals.
type LiveStats struct {
	DownBps   float64
	UpBps     float64
	TotalDown uint64
	TotalUp   uint64
}

// WindowTotals aggregates a time window: byte sums and per-second peaks.
type WindowTotals struct {
	TotalDown uint64
	TotalUp   uint64
	PeakDown  uint64
	PeakUp    uint64
}

// DailyUsage is the usage.json record. Totals reset when the date rolls over.
type DailyUsage struct {
	Date  string `json:"date"`
	Down  uint64 `json:"down"`
	Up    uint64 `json:"up"`
	Total uint64 `json:"total"`
}

// SeriesPoint is one chart bucket. TS is unix seconds of the bucket start.
type SeriesPoint struct {
	TS   float64 `json:"ts"`
	Down uint64  `json:"down"`
	Up   uint64  `json:"up"`
}

// NetworkInfo describes the currently connected network for the dashboard.
type NetworkInfo struct {
	SSID     string `json:"ssid"`
	Status   string `json:"status"`
	DotColor string `json:"dot_color"`
}

// LiveResponse is the /api/live payload. Daily totals are humanized strings,
// matching what the dashboard renders directly.
type LiveResponse struct {
	DownBps   float64 `json:"down_bps"`
	UpBps     float64 `json:"up_bps"`
	DownHuman string  `json:"down_h"`
	UpHuman   string  `json:"up_h"`
	TotalDown string  `json:"total_down"`
	TotalUp   string  `json:"total_up"`
	TS        int64   `json:"ts"`
}

// HistoryResponse is the /api/history payload.
type HistoryResponse struct {
	Range string        `json:"range"`
	Data  []SeriesPoint `json:"data"`
	Count int           `json:"count"`
}

// SummaryResponse is the /api/summary payload.
type SummaryResponse struct {
	Totals  SummaryTotals  `json:"totals"`
	Current SummaryCurrent `json:"current"`
	Peak    SummaryPeak    `json:"peak"`
}

// SummaryTotals carries window byte sums, raw and humanized.
type SummaryTotals struct {
	Down      uint64 `json:"down"`
	Up        uint64 `json:"up"`
	DownHuman string `json:"down_h"`
	UpHuman   string `json:"up_h"`
}

// SummaryCurrent carries the live speeds at summary time.
type SummaryCurrent struct {
	DownBps   float64 `json:"down_bps"`
	UpBps     float64 `json:"up_bps"`
	DownHuman string  `json:"down_h"`
	UpHuman   string  `json:"up_h"`
}

// SummaryPeak carries humanized per-second peaks for the window.
type SummaryPeak struct {
	Down string `json:"down"`
	Up   string `json:"up"`
}
