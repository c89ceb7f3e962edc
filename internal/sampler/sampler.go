package sampler

import (
	"context"
	"fmt"
	"sync"

	gopsnet "github.com/shirou/gopsutil/v4/net"
)

// CounterSource reports cumulative byte counters for the host, all interfaces
// summed. Implementations must be safe for concurrent use.
type CounterSource interface {
	Counters(ctx context.Context) (recv, sent uint64, err error)
}

// GopsutilSource reads kernel interface counters via gopsutil.
type GopsutilSource struct{}

// Counters returns the host-wide cumulative receive and send byte counters.
func (GopsutilSource) Counters(ctx context.Context) (uint64, uint64, error) {
	stats, err := gopsnet.IOCountersWithContext(ctx, false)
	if err != nil {
		return 0, 0, fmt.Errorf("read interface counters: %w", err)
	}
	if len(stats) == 0 {
		return 0, 0, fmt.Errorf("no interface counters reported")
	}
	// pernic=false aggregates all interfaces into a single entry
	return stats[0].BytesRecv, stats[0].BytesSent, nil
}

// Sampler turns cumulative counters into per-interval deltas. Counter resets
// (interface down/up, counter wrap) produce a zero delta instead of a huge
// bogus one.
type Sampler struct {
	mu       sync.Mutex
	source   CounterSource
	prevRecv uint64
	prevSent uint64
	primed   bool
}

// New creates a Sampler over the given source.
func New(source CounterSource) *Sampler {
	return &Sampler{source: source}
}

// Prime reads the initial counters so the first Sample returns a real delta.
// Without priming, the first Sample reports zero.
func (s *Sampler) Prime(ctx context.Context) error {
	recv, sent, err := s.source.Counters(ctx)
	if err != nil {
		return fmt.Errorf("prime sampler: %w", err)
	}
	s.mu.Lock()
	s.prevRecv = recv
	s.prevSent = sent
	s.primed = true
	s.mu.Unlock()
	return nil
}

// Sample reads the counters and returns the byte deltas since the previous
// call. The first call on an unprimed sampler establishes the baseline and
// returns zeros.
func (s *Sampler) Sample(ctx context.Context) (down, up uint64, err error) {
	recv, sent, err := s.source.Counters(ctx)
	if err != nil {
		return 0, 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.primed {
		if recv >= s.prevRecv {
			down = recv - s.prevRecv
		}
		if sent >= s.prevSent {
			up = sent - s.prevSent
		}
	}
	s.prevRecv = recv
	s.prevSent = sent
	s.primed = true
	return down, up, nil
}
