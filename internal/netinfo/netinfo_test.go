package netinfo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sh44ni/internetkit/internal/circuitbreaker"
)

// TestParseNetsh verifies SSID extraction, including skipping the BSSID line.
func TestParseNetsh(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want string
	}{
		{
			name: "ssid present",
			out:  "    Name : Wi-Fi\n    SSID : HomeNet\n    BSSID : aa:bb:cc:dd:ee:ff\n",
			want: "HomeNet",
		},
		{
			name: "bssid before ssid",
			out:  "    BSSID : aa:bb:cc:dd:ee:ff\n    SSID : CoffeeShop\n",
			want: "CoffeeShop",
		},
		{
			name: "no ssid",
			out:  "    State : disconnected\n",
			want: "",
		},
		{
			name: "empty ssid value",
			out:  "    SSID :   \n",
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseNetsh(tc.out); got != tc.want {
				t.Fatalf("parseNetsh = %q, want %q", got, tc.want)
			}
		})
	}
}

// TestParseNmcli verifies active SSID extraction from terse nmcli output.
func TestParseNmcli(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want string
	}{
		{
			name: "active network",
			out:  "no:Neighbor\nyes:HomeNet\nno:Other\n",
			want: "HomeNet",
		},
		{
			name: "no active network",
			out:  "no:Neighbor\nno:Other\n",
			want: "",
		},
		{
			name: "empty output",
			out:  "",
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseNmcli(tc.out); got != tc.want {
				t.Fatalf("parseNmcli = %q, want %q", got, tc.want)
			}
		})
	}
}

// TestResolver_CachesProbeResult verifies the TTL cache suppresses repeated
// probes.
func TestResolver_CachesProbeResult(t *testing.T) {
	calls := 0
	r := NewResolver(time.Minute, time.Second, nil)
	r.probe = func(ctx context.Context) (string, error) {
		calls++
		return "TestNet", nil
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		info := r.Network(ctx)
		if info.SSID != "TestNet" {
			t.Fatalf("SSID = %q, want TestNet", info.SSID)
		}
		if info.Status != "connected" || info.DotColor != connectedDotColor {
			t.Fatalf("info = %+v, want connected with dot color", info)
		}
	}
	if calls != 1 {
		t.Fatalf("probe called %d times, want 1", calls)
	}
}

// TestResolver_FallsBackToHostname verifies probe failure still yields a name.
func TestResolver_FallsBackToHostname(t *testing.T) {
	r := NewResolver(time.Minute, time.Second, nil)
	r.probe = func(ctx context.Context) (string, error) {
		return "", errors.New("tool missing")
	}

	info := r.Network(context.Background())
	if info.SSID == "" {
		t.Fatal("SSID empty, want hostname fallback")
	}
}

// TestResolver_BreakerShortCircuits verifies that after repeated failures the
// breaker opens and the probe stops being invoked.
func TestResolver_BreakerShortCircuits(t *testing.T) {
	calls := 0
	breaker := circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: 2,
		Timeout:          time.Hour,
	})
	// zero TTL so every call attempts a fresh probe
	r := NewResolver(0, time.Second, breaker)
	r.probe = func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("nmcli broken")
	}

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_ = r.Network(ctx)
	}
	if calls != 2 {
		t.Fatalf("probe called %d times, want 2 before breaker opened", calls)
	}
	if breaker.State() != circuitbreaker.StateOpen {
		t.Fatalf("breaker state = %v, want open", breaker.State())
	}
}
