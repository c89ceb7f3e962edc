// Package netinfo resolves a display name for the currently connected
// network. On Windows it asks netsh for the Wi-Fi SSID, elsewhere nmcli;
// wired-only hosts fall back to the hostname. The probes shell out and can
// hang or fail repeatedly, so results are cached and the probe runs behind a
// circuit breaker.
package netinfo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/sh44ni/internetkit/internal/circuitbreaker"
	"github.com/sh44ni/internetkit/internal/models"
	"github.com/sh44ni/internetkit/internal/observability"
)

const connectedDotColor = "#10b981"

// Resolver resolves and caches the current network name.
type Resolver struct {
	mu        sync.Mutex
	cached    string
	fetchedAt time.Time

	ttl     time.Duration
	timeout time.Duration
	breaker *circuitbreaker.CircuitBreaker

	// probe is swappable for tests; defaults to the platform probe.
	probe func(ctx context.Context) (string, error)
}

// NewResolver creates a Resolver. ttl bounds how often the probe runs,
// timeout bounds a single probe, breaker may be nil to disable guarding.
func NewResolver(ttl, timeout time.Duration, breaker *circuitbreaker.CircuitBreaker) *Resolver {
	r := &Resolver{
		ttl:     ttl,
		timeout: timeout,
		breaker: breaker,
	}
	r.probe = r.platformProbe
	return r
}

// Network returns the current network info for the dashboard. Probe failures
// fall back to the hostname, never to an error: the dashboard always shows
// some network identity.
func (r *Resolver) Network(ctx context.Context) models.NetworkInfo {
	return models.NetworkInfo{
		SSID:     r.name(ctx),
		Status:   "connected",
		DotColor: connectedDotColor,
	}
}

func (r *Resolver) name(ctx context.Context) string {
	r.mu.Lock()
	if r.cached != "" && time.Since(r.fetchedAt) < r.ttl {
		name := r.cached
		r.mu.Unlock()
		return name
	}
	r.mu.Unlock()

	probeCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var name string
	run := func() error {
		n, err := r.probe(probeCtx)
		if err != nil {
			return err
		}
		name = n
		return nil
	}

	var err error
	if r.breaker != nil {
		err = r.breaker.Call(run)
	} else {
		err = run()
	}

	switch {
	case errors.Is(err, circuitbreaker.ErrOpen):
		observability.NetworkProbesTotal.WithLabelValues("breaker_open").Inc()
	case err != nil:
		observability.NetworkProbesTotal.WithLabelValues("error").Inc()
	default:
		observability.NetworkProbesTotal.WithLabelValues("success").Inc()
	}

	if err != nil || name == "" {
		name = hostnameFallback()
	}

	r.mu.Lock()
	r.cached = name
	r.fetchedAt = time.Now()
	r.mu.Unlock()
	return name
}

func (r *Resolver) platformProbe(ctx context.Context) (string, error) {
	if runtime.GOOS == "windows" {
		out, err := exec.CommandContext(ctx, "netsh", "wlan", "show", "interfaces").Output()
		if err != nil {
			return "", fmt.Errorf("netsh: %w", err)
		}
		return parseNetsh(string(out)), nil
	}
	out, err := exec.CommandContext(ctx, "nmcli", "-t", "-f", "ACTIVE,SSID", "dev", "wifi").Output()
	if err != nil {
		return "", fmt.Errorf("nmcli: %w", err)
	}
	return parseNmcli(string(out)), nil
}

// parseNetsh extracts the SSID from `netsh wlan show interfaces` output.
// The BSSID line also contains "SSID" and must be skipped.
func parseNetsh(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "SSID") || strings.Contains(line, "BSSID") {
			continue
		}
		if _, val, ok := strings.Cut(line, ":"); ok {
			if ssid := strings.TrimSpace(val); ssid != "" {
				return ssid
			}
		}
	}
	return ""
}

// parseNmcli extracts the active SSID from `nmcli -t -f ACTIVE,SSID dev wifi`
// output (lines like "yes:MyNetwork").
func parseNmcli(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if rest, ok := strings.CutPrefix(line, "yes:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

func hostnameFallback() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "Unknown Network"
	}
	return host
}
