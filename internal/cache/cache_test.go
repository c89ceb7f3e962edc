package cache

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"
)

// TestInMemoryCache_GetSet verifies basic hit/miss behavior.
func TestInMemoryCache_GetSet(t *testing.T) {
	c := NewInMemoryCache()
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "history:year"); ok || err != nil {
		t.Fatalf("Get on empty cache: ok=%v err=%v, want miss", ok, err)
	}

	payload := []byte(`{"range":"year"}`)
	if err := c.Set(ctx, "history:year", payload, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok, err := c.Get(ctx, "history:year")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v, want hit", ok, err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("Get = %q, want %q", got, payload)
	}
}

// TestInMemoryCache_Expiry verifies that expired entries miss.
func TestInMemoryCache_Expiry(t *testing.T) {
	c := NewInMemoryCache()
	ctx := context.Background()

	if err := c.Set(ctx, "summary:7days", []byte("x"), time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, ok, _ := c.Get(ctx, "summary:7days"); ok {
		t.Fatal("Get returned hit for expired entry")
	}
}

// TestInMemoryCache_Concurrent exercises concurrent access under the race
// detector.
func TestInMemoryCache_Concurrent(t *testing.T) {
	c := NewInMemoryCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = c.Set(ctx, "k", []byte("v"), time.Minute)
				_, _, _ = c.Get(ctx, "k")
			}
		}()
	}
	wg.Wait()
}

// TestParseAddrs verifies comma-separated address parsing.
func TestParseAddrs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{
			name: "single",
			in:   "localhost:11211",
			want: 1,
		},
		{
			name: "multiple with spaces",
			in:   "a:11211, b:11211 ,c:11211",
			want: 3,
		},
		{
			name: "empty",
			in:   "",
			want: 0,
		},
		{
			name: "only commas",
			in:   ",,",
			want: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseAddrs(tc.in); len(got) != tc.want {
				t.Fatalf("parseAddrs(%q) = %v, want %d addrs", tc.in, got, tc.want)
			}
		})
	}
}
