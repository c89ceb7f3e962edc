package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sh44ni/internetkit/internal/lifecycle"
	"github.com/sh44ni/internetkit/internal/models"
	"github.com/sh44ni/internetkit/internal/service"
	"github.com/sh44ni/internetkit/internal/traffic"
)

// HealthConfig holds the thresholds the health handler evaluates.
type HealthConfig struct {
	OverloadWindow       time.Duration
	OverloadThresholdPct int
	RateLimitRPS         int
	DegradedWindow       time.Duration
	DegradedErrorPct     int
	StartTime            time.Time
	// CachePing, when set, is called to check cache reachability. Used when
	// the backend is memcached.
	CachePing func() error
}

// NetworkResolver provides the current network identity for /api/network.
type NetworkResolver interface {
	Network(ctx context.Context) models.NetworkInfo
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	stats            *service.StatsService
	netinfo          NetworkResolver
	healthConfig     *HealthConfig
	logger           *zap.Logger
	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler.
func NewHandler(stats *service.StatsService, netinfo NetworkResolver, healthConfig *HealthConfig, logger *zap.Logger) *Handler {
	return &Handler{
		stats:        stats,
		netinfo:      netinfo,
		healthConfig: healthConfig,
		logger:       logger,
	}
}

// GetLive handles GET /api/live.
func (h *Handler) GetLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stats.Live())
}

// GetHistory handles GET /api/history?r={range}.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	resp, err := h.stats.History(r.Context(), r.URL.Query().Get("r"))
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetSummary handles GET /api/summary?r={range}.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	resp, err := h.stats.Summary(r.Context(), r.URL.Query().Get("r"))
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetNetwork handles GET /api/network.
func (h *Handler) GetNetwork(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.netinfo.Network(r.Context()))
}

// healthResult holds the computed health status and metadata for logging.
type healthResult struct {
	status     string
	statusCode int
	reason     string
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	result := h.computeHealthStatus()

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason))
	}
	h.healthStatusPrev = result.status
	h.healthStatusMu.Unlock()

	checks := make(map[string]string)
	if result.reason == "sampler_error_rate" {
		checks["sampler"] = "unhealthy"
	} else {
		checks["sampler"] = "healthy"
	}
	if h.healthConfig != nil && h.healthConfig.CachePing != nil {
		if h.healthConfig.CachePing() == nil {
			checks["cache"] = "healthy"
		} else {
			checks["cache"] = "unhealthy"
		}
	}
	resp := map[string]interface{}{
		"status":    result.status,
		"service":   "internetkit",
		"version":   "dev",
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(result.statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// computeHealthStatus evaluates health conditions in priority order:
// shutting-down > overloaded > degraded > healthy.
func (h *Handler) computeHealthStatus() healthResult {
	if lifecycle.IsShuttingDown() {
		return healthResult{"shutting-down", http.StatusServiceUnavailable, "signal"}
	}
	if h.healthConfig == nil {
		return healthResult{"healthy", http.StatusOK, ""}
	}
	// overloaded: rate-limit denials exceed the configured share of capacity
	if h.healthConfig.OverloadWindow > 0 && h.healthConfig.RateLimitRPS > 0 {
		threshold := float64(h.healthConfig.RateLimitRPS) *
			h.healthConfig.OverloadWindow.Seconds() *
			float64(h.healthConfig.OverloadThresholdPct) / 100
		if float64(traffic.DenialCount(h.healthConfig.OverloadWindow)) > threshold {
			return healthResult{"overloaded", http.StatusServiceUnavailable, "overload_threshold"}
		}
	}
	// degraded: counter reads failing too often in the window
	if h.healthConfig.DegradedWindow > 0 && h.healthConfig.DegradedErrorPct > 0 {
		errors, total := traffic.SampleErrorRate(h.healthConfig.DegradedWindow)
		if total > 0 {
			pct := float64(errors) * 100 / float64(total)
			if pct >= float64(h.healthConfig.DegradedErrorPct) {
				return healthResult{"degraded", http.StatusServiceUnavailable, "sampler_error_rate"}
			}
		}
	}
	return healthResult{"healthy", http.StatusOK, ""}
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard error format with code,
// message, and requestId (correlation ID) if available in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	corrID := ""
	if v := r.Context().Value("correlation_id"); v != nil {
		corrID = v.(string)
	}
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": corrID,
		},
	})
}

// writeInternalError writes a 500 response for stats service failures and
// logs the underlying error through the request-scoped logger.
func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, http.StatusInternalServerError, "INTERNAL", "Unable to compute statistics")
	if logger, ok := r.Context().Value("logger").(*zap.Logger); ok && logger != nil {
		logger.Error("stats error", zap.Error(err))
	}
}
