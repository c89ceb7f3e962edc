package sampler

import (
	"context"
	"errors"
	"testing"
)

type fakeSource struct {
	recv, sent uint64
	err        error
}

func (f *fakeSource) Counters(ctx context.Context) (uint64, uint64, error) {
	return f.recv, f.sent, f.err
}

// TestSampler_Deltas verifies that consecutive samples report byte deltas, not
// cumulative counters.
func TestSampler_Deltas(t *testing.T) {
	src := &fakeSource{recv: 1000, sent: 500}
	s := New(src)
	if err := s.Prime(context.Background()); err != nil {
		t.Fatalf("Prime: %v", err)
	}

	src.recv, src.sent = 1500, 700
	down, up, err := s.Sample(context.Background())
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if down != 500 || up != 200 {
		t.Fatalf("deltas = (%d, %d), want (500, 200)", down, up)
	}

	src.recv, src.sent = 1500, 700
	down, up, err = s.Sample(context.Background())
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if down != 0 || up != 0 {
		t.Fatalf("idle deltas = (%d, %d), want (0, 0)", down, up)
	}
}

// TestSampler_CounterReset verifies that a counter going backwards (reset or
// wrap) yields a zero delta rather than an underflowed value.
func TestSampler_CounterReset(t *testing.T) {
	src := &fakeSource{recv: 1 << 40, sent: 1 << 40}
	s := New(src)
	if err := s.Prime(context.Background()); err != nil {
		t.Fatalf("Prime: %v", err)
	}

	src.recv, src.sent = 100, 50
	down, up, err := s.Sample(context.Background())
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if down != 0 || up != 0 {
		t.Fatalf("deltas after reset = (%d, %d), want (0, 0)", down, up)
	}

	// next sample resumes from the new baseline
	src.recv, src.sent = 150, 80
	down, up, _ = s.Sample(context.Background())
	if down != 50 || up != 30 {
		t.Fatalf("deltas after rebaseline = (%d, %d), want (50, 30)", down, up)
	}
}

// TestSampler_UnprimedFirstSample verifies that the first sample without
// priming establishes a baseline and reports zero.
func TestSampler_UnprimedFirstSample(t *testing.T) {
	src := &fakeSource{recv: 9999, sent: 8888}
	s := New(src)

	down, up, err := s.Sample(context.Background())
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if down != 0 || up != 0 {
		t.Fatalf("unprimed deltas = (%d, %d), want (0, 0)", down, up)
	}

	src.recv, src.sent = 10099, 8988
	down, up, _ = s.Sample(context.Background())
	if down != 100 || up != 100 {
		t.Fatalf("second deltas = (%d, %d), want (100, 100)", down, up)
	}
}

// TestSampler_SourceError verifies that source errors propagate and do not
// disturb the baseline.
func TestSampler_SourceError(t *testing.T) {
	src := &fakeSource{recv: 1000, sent: 1000}
	s := New(src)
	if err := s.Prime(context.Background()); err != nil {
		t.Fatalf("Prime: %v", err)
	}

	src.err = errors.New("counters unavailable")
	if _, _, err := s.Sample(context.Background()); err == nil {
		t.Fatal("Sample returned nil error, want source error")
	}

	src.err = nil
	src.recv, src.sent = 1200, 1100
	down, up, err := s.Sample(context.Background())
	if err != nil {
		t.Fatalf("Sample after recovery: %v", err)
	}
	if down != 200 || up != 100 {
		t.Fatalf("deltas after recovery = (%d, %d), want (200, 100)", down, up)
	}
}
