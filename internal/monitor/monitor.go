// Package monitor owns the sampling pipeline: it drives the counter sampler,
// maintains the daily usage totals, and feeds the history store on a fixed
// cadence with periodic persistence and retention cleanup.
package monitor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sh44ni/internetkit/internal/aggregate"
	"github.com/sh44ni/internetkit/internal/models"
	"github.com/sh44ni/internetkit/internal/observability"
	"github.com/sh44ni/internetkit/internal/sampler"
	"github.com/sh44ni/internetkit/internal/store"
	"github.com/sh44ni/internetkit/internal/traffic"
)

const (
	historyFile = "history.json"
	usageFile   = "usage.json"
	dateLayout  = "2006-01-02"
)

// Options configures a Monitor.
type Options struct {
	DataDir         string
	MaxRecords      int
	Retention       time.Duration
	SampleInterval  time.Duration
	PersistInterval time.Duration
	CleanupInterval time.Duration
}

// Monitor samples network counters, tracks live speeds and daily totals, and
// persists history. Start launches the background loops; Close stops them and
// performs a final persist.
type Monitor struct {
	sampler *sampler.Sampler
	store   *store.Store
	logger  *zap.Logger
	opts    Options

	usagePath string

	mu        sync.Mutex
	downBps   float64
	upBps     float64
	totalDown uint64
	totalUp   uint64
	usageDate string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Monitor over the given counter source. The data directory is
// created if missing; existing history and today's usage totals are loaded.
func New(source sampler.CounterSource, opts Options, logger *zap.Logger) (*Monitor, error) {
	if err := os.MkdirAll(opts.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", opts.DataDir, err)
	}

	m := &Monitor{
		sampler:   sampler.New(source),
		store:     store.Open(filepath.Join(opts.DataDir, historyFile), opts.MaxRecords, logger),
		logger:    logger,
		opts:      opts,
		usagePath: filepath.Join(opts.DataDir, usageFile),
	}
	m.loadUsage()

	primeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.sampler.Prime(primeCtx); err != nil {
		// counters may come up later (e.g. interface still initializing)
		logger.Warn("sampler prime failed", zap.Error(err))
	}
	return m, nil
}

// Start launches the sample, persist and cleanup loops.
func (m *Monitor) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.wg.Add(3)
	go m.sampleLoop(ctx)
	go m.persistLoop(ctx)
	go m.cleanupLoop(ctx)
}

// Close stops the loops and performs a final persist of history and usage.
func (m *Monitor) Close() error {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	if err := m.persist(); err != nil {
		return err
	}
	return m.saveUsage()
}

// Live returns the current speeds and daily totals.
func (m *Monitor) Live() models.LiveStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.LiveStats{
		DownBps:   m.downBps,
		UpBps:     m.upBps,
		TotalDown: m.totalDown,
		TotalUp:   m.totalUp,
	}
}

// History returns samples from the last window ending at now.
func (m *Monitor) History(window time.Duration) []models.SpeedSample {
	now := time.Now()
	return m.store.Range(now.Add(-window), now)
}

// Totals returns byte sums and per-sample peaks over the window.
func (m *Monitor) Totals(window time.Duration) models.WindowTotals {
	return aggregate.Totals(m.History(window))
}

func (m *Monitor) sampleLoop(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.opts.SampleInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sampleOnce(ctx)
		}
	}
}

func (m *Monitor) sampleOnce(ctx context.Context) {
	down, up, err := m.sampler.Sample(ctx)
	if err != nil {
		traffic.RecordSampleError()
		observability.SamplesTotal.WithLabelValues("error").Inc()
		m.logger.Warn("sample failed", zap.Error(err))
		return
	}
	traffic.RecordSampleSuccess()
	observability.SamplesTotal.WithLabelValues("success").Inc()
	observability.SampleBytesTotal.WithLabelValues("down").Add(float64(down))
	observability.SampleBytesTotal.WithLabelValues("up").Add(float64(up))

	now := time.Now()
	perSecond := m.opts.SampleInterval.Seconds()

	m.mu.Lock()
	if today := now.Format(dateLayout); today != m.usageDate {
		m.usageDate = today
		m.totalDown = 0
		m.totalUp = 0
	}
	m.downBps = float64(down) / perSecond
	m.upBps = float64(up) / perSecond
	m.totalDown += down
	m.totalUp += up
	rec := models.SpeedSample{
		Timestamp: now,
		Down:      down,
		Up:        up,
		TotalDown: m.totalDown,
		TotalUp:   m.totalUp,
	}
	m.mu.Unlock()

	m.store.Append(rec)
}

func (m *Monitor) persistLoop(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.opts.PersistInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.persist(); err != nil {
				m.logger.Error("persist failed", zap.Error(err))
			}
			if err := m.saveUsage(); err != nil {
				m.logger.Error("usage save failed", zap.Error(err))
			}
		}
	}
}

// cleanupLoop enforces retention: once at startup, then on the cleanup
// interval.
func (m *Monitor) cleanupLoop(ctx context.Context) {
	defer m.wg.Done()
	m.cleanupOnce()
	ticker := time.NewTicker(m.opts.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.cleanupOnce()
		}
	}
}

func (m *Monitor) cleanupOnce() {
	cutoff := time.Now().Add(-m.opts.Retention)
	removed := m.store.CleanupOlderThan(cutoff)
	if removed == 0 {
		return
	}
	m.logger.Info("retention cleanup",
		zap.Int("removed", removed),
		zap.Time("cutoff", cutoff))
	if err := m.persist(); err != nil {
		m.logger.Error("post-cleanup persist failed", zap.Error(err))
	}
}

func (m *Monitor) persist() error {
	return m.store.Persist()
}

// loadUsage restores today's totals from usage.json. Totals from a previous
// date are discarded so a restart never carries yesterday's usage forward.
func (m *Monitor) loadUsage() {
	var u models.DailyUsage
	if err := store.ReadJSON(m.usagePath, &u); err != nil {
		m.logger.Warn("usage file unreadable, starting at zero",
			zap.String("path", m.usagePath), zap.Error(err))
	}
	today := time.Now().Format(dateLayout)
	m.usageDate = today
	if u.Date == today {
		m.totalDown = u.Down
		m.totalUp = u.Up
	}
}

func (m *Monitor) saveUsage() error {
	m.mu.Lock()
	u := models.DailyUsage{
		Date:  m.usageDate,
		Down:  m.totalDown,
		Up:    m.totalUp,
		Total: m.totalDown + m.totalUp,
	}
	m.mu.Unlock()
	if err := store.WriteJSON(m.usagePath, u); err != nil {
		return fmt.Errorf("save usage: %w", err)
	}
	return nil
}
