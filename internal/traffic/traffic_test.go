package traffic

import (
	"testing"
	"time"
)

// TestTracker_ErrorRate verifies error/total counting within the window.
func TestTracker_ErrorRate(t *testing.T) {
	var tr Tracker
	tr.RecordSuccess()
	tr.RecordSuccess()
	tr.RecordSuccess()
	tr.RecordError()

	errors, total := tr.ErrorRate(time.Minute)
	if errors != 1 {
		t.Fatalf("errors = %d, want 1", errors)
	}
	if total != 4 {
		t.Fatalf("total = %d, want 4", total)
	}
}

// TestTracker_DenialsExcludedFromErrorRate verifies that 429s do not count
// toward the sampler error rate.
func TestTracker_DenialsExcludedFromErrorRate(t *testing.T) {
	var tr Tracker
	tr.RecordSuccess()
	tr.RecordDenied()
	tr.RecordDenied()

	errors, total := tr.ErrorRate(time.Minute)
	if errors != 0 || total != 1 {
		t.Fatalf("ErrorRate = (%d, %d), want (0, 1)", errors, total)
	}
	if got := tr.DenialCount(time.Minute); got != 2 {
		t.Fatalf("DenialCount = %d, want 2", got)
	}
}

// TestTracker_WindowExcludesOld verifies that a zero-length window sees no
// outcomes recorded in the past.
func TestTracker_WindowExcludesOld(t *testing.T) {
	var tr Tracker
	tr.RecordError()
	time.Sleep(5 * time.Millisecond)

	errors, total := tr.ErrorRate(time.Millisecond)
	if errors != 0 || total != 0 {
		t.Fatalf("ErrorRate with tiny window = (%d, %d), want (0, 0)", errors, total)
	}
}

// TestTracker_Reset verifies that Reset clears all outcome history.
func TestTracker_Reset(t *testing.T) {
	var tr Tracker
	tr.RecordSuccess()
	tr.RecordError()
	tr.RecordDenied()
	tr.Reset()

	errors, total := tr.ErrorRate(time.Minute)
	if errors != 0 || total != 0 {
		t.Fatalf("ErrorRate after reset = (%d, %d), want (0, 0)", errors, total)
	}
	if got := tr.DenialCount(time.Minute); got != 0 {
		t.Fatalf("DenialCount after reset = %d, want 0", got)
	}
}
