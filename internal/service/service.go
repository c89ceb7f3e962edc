package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sh44ni/internetkit/internal/aggregate"
	"github.com/sh44ni/internetkit/internal/cache"
	"github.com/sh44ni/internetkit/internal/format"
	"github.com/sh44ni/internetkit/internal/models"
	"github.com/sh44ni/internetkit/internal/observability"
)

// StatsSource is the monitor surface the service reads from.
type StatsSource interface {
	Live() models.LiveStats
	History(window time.Duration) []models.SpeedSample
	Totals(window time.Duration) models.WindowTotals
}

// StatsService builds API responses from monitor data. History and summary
// responses are cached with a short TTL because aggregating a year of
// per-second samples on every dashboard poll is wasted work.
type StatsService struct {
	source StatsSource
	cache  cache.Cache
	ttl    time.Duration
}

// NewStatsService creates a StatsService. ttl controls how long aggregated
// responses are cached; 0 disables caching.
func NewStatsService(source StatsSource, c cache.Cache, ttl time.Duration) *StatsService {
	return &StatsService{
		source: source,
		cache:  c,
		ttl:    ttl,
	}
}

// loggerFromContext extracts a zap.Logger from request context if present.
func loggerFromContext(ctx context.Context) *zap.Logger {
	if v := ctx.Value("logger"); v != nil {
		if l, ok := v.(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return nil
}

// Live returns the current speeds and humanized daily totals. Never cached:
// the value changes every sample tick.
func (s *StatsService) Live() models.LiveResponse {
	live := s.source.Live()
	return models.LiveResponse{
		DownBps:   live.DownBps,
		UpBps:     live.UpBps,
		DownHuman: format.Rate(live.DownBps),
		UpHuman:   format.Rate(live.UpBps),
		TotalDown: format.Bytes(float64(live.TotalDown)),
		TotalUp:   format.Bytes(float64(live.TotalUp)),
		TS:        time.Now().Unix(),
	}
}

// History returns the aggregated chart series for a range key, cache-aside.
func (s *StatsService) History(ctx context.Context, rangeKey string) (models.HistoryResponse, error) {
	rk := aggregate.Normalize(rangeKey)
	var resp models.HistoryResponse
	err := s.cached(ctx, "history:"+rk, &resp, func() interface{} {
		series := aggregate.Series(s.source.History(aggregate.Window(rk)), rk, time.Now())
		resp = models.HistoryResponse{
			Range: rk,
			Data:  series,
			Count: len(series),
		}
		return &resp
	})
	if err != nil {
		return models.HistoryResponse{}, fmt.Errorf("history %s: %w", rk, err)
	}
	return resp, nil
}

// Summary returns window totals, current speeds and peaks for a range key,
// cache-aside like History. Current speeds inside a cached summary may be up
// to one TTL old; the dashboard reads live speeds from /api/live anyway.
func (s *StatsService) Summary(ctx context.Context, rangeKey string) (models.SummaryResponse, error) {
	rk := aggregate.Normalize(rangeKey)
	var resp models.SummaryResponse
	err := s.cached(ctx, "summary:"+rk, &resp, func() interface{} {
		totals := s.source.Totals(aggregate.Window(rk))
		live := s.source.Live()
		resp = models.SummaryResponse{
			Totals: models.SummaryTotals{
				Down:      totals.TotalDown,
				Up:        totals.TotalUp,
				DownHuman: format.Bytes(float64(totals.TotalDown)),
				UpHuman:   format.Bytes(float64(totals.TotalUp)),
			},
			Current: models.SummaryCurrent{
				DownBps:   live.DownBps,
				UpBps:     live.UpBps,
				DownHuman: format.Rate(live.DownBps),
				UpHuman:   format.Rate(live.UpBps),
			},
			Peak: models.SummaryPeak{
				Down: format.Rate(float64(totals.PeakDown)),
				Up:   format.Rate(float64(totals.PeakUp)),
			},
		}
		return &resp
	})
	if err != nil {
		return models.SummaryResponse{}, fmt.Errorf("summary %s: %w", rk, err)
	}
	return resp, nil
}

// cached implements the cache-aside pattern over JSON payloads: on hit the
// cached bytes unmarshal into out; on miss build runs, its result is stored,
// and out is already populated by build. Cache failures degrade to building
// every time, never to request failure.
func (s *StatsService) cached(ctx context.Context, key string, out interface{}, build func() interface{}) error {
	logger := loggerFromContext(ctx)
	cacheType := cacheTypeForKey(key)

	if s.cache != nil && s.ttl > 0 {
		payload, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			observability.CacheErrorsTotal.WithLabelValues("get").Inc()
			if logger != nil {
				logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
			}
		} else if ok {
			if err := json.Unmarshal(payload, out); err == nil {
				observability.CacheHitsTotal.WithLabelValues(cacheType).Inc()
				if logger != nil {
					logger.Debug("cache hit", zap.String("key", key))
				}
				return nil
			}
			// stale encoding from an older build; fall through and rebuild
		}
	}

	built := build()

	if s.cache != nil && s.ttl > 0 {
		payload, err := json.Marshal(built)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", key, err)
		}
		if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
			observability.CacheErrorsTotal.WithLabelValues("set").Inc()
			if logger != nil {
				logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return nil
}

func cacheTypeForKey(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return key[:i]
		}
	}
	return key
}
