package service

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type countingRecorder struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (r *countingRecorder) RecordView(postID uint, ip, userAgent, referrer string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.err
}

func (r *countingRecorder) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestViewTrackerCancelBeforeDelayRecordsNothing(t *testing.T) {
	recorder := &countingRecorder{}
	tracker := NewViewTracker(recorder).WithDelay(50 * time.Millisecond)

	tracker.Begin("visit-1", 1, "", "", "")
	time.Sleep(10 * time.Millisecond)
	tracker.Cancel("visit-1")

	time.Sleep(100 * time.Millisecond)
	if recorder.callCount() != 0 {
		t.Fatalf("cancelled visit issued %d records, want 0", recorder.callCount())
	}
}

func TestViewTrackerRecordsExactlyOnce(t *testing.T) {
	recorder := &countingRecorder{}
	tracker := NewViewTracker(recorder).WithDelay(10 * time.Millisecond)

	tracker.Begin("visit-1", 1, "198.51.100.7", "agent", "ref")
	// Re-render while the timer is pending must not arm a second record.
	tracker.Begin("visit-1", 1, "198.51.100.7", "agent", "ref")

	waitFor(t, func() bool { return tracker.Recorded("visit-1") })

	// Re-render after the record fired is a no-op too.
	tracker.Begin("visit-1", 1, "198.51.100.7", "agent", "ref")
	time.Sleep(30 * time.Millisecond)

	if recorder.callCount() != 1 {
		t.Fatalf("visit recorded %d times, want exactly 1", recorder.callCount())
	}
}

func TestViewTrackerFailureIsNotRetried(t *testing.T) {
	recorder := &countingRecorder{err: errors.New("store down")}
	tracker := NewViewTracker(recorder).WithDelay(10 * time.Millisecond)

	tracker.Begin("visit-1", 1, "", "", "")
	waitFor(t, func() bool { return recorder.callCount() == 1 })

	if tracker.Recorded("visit-1") {
		t.Fatal("failed record marked as recorded")
	}

	// The visit stays unrecorded but never retries, even across re-renders.
	tracker.Begin("visit-1", 1, "", "", "")
	time.Sleep(30 * time.Millisecond)
	if recorder.callCount() != 1 {
		t.Fatalf("failed visit retried: %d calls", recorder.callCount())
	}
}

func TestViewTrackerNewVisitCountsAgain(t *testing.T) {
	recorder := &countingRecorder{}
	tracker := NewViewTracker(recorder).WithDelay(10 * time.Millisecond)

	tracker.Begin("visit-1", 1, "", "", "")
	waitFor(t, func() bool { return tracker.Recorded("visit-1") })
	tracker.Cancel("visit-1")

	// Navigating back starts a fresh visit; the protocol allows the
	// second count.
	tracker.Begin("visit-2", 1, "", "", "")
	waitFor(t, func() bool { return tracker.Recorded("visit-2") })

	if recorder.callCount() != 2 {
		t.Fatalf("expected 2 records across two visits, got %d", recorder.callCount())
	}
}

func TestViewTrackerEvictsFiredVisits(t *testing.T) {
	recorder := &countingRecorder{}
	tracker := NewViewTracker(recorder).
		WithDelay(10 * time.Millisecond).
		WithRetention(20 * time.Millisecond)

	tracker.Begin("visit-1", 1, "", "", "")
	waitFor(t, func() bool { return tracker.Recorded("visit-1") })

	// The fired visit is forgotten once the retention window passes.
	waitFor(t, func() bool { return !tracker.Recorded("visit-1") })

	// A later page load reusing the same token is a fresh visit and
	// counts again.
	tracker.Begin("visit-1", 1, "", "", "")
	waitFor(t, func() bool { return recorder.callCount() == 2 })
}

func TestViewTrackerShutdownStopsPendingTimers(t *testing.T) {
	recorder := &countingRecorder{}
	tracker := NewViewTracker(recorder).WithDelay(20 * time.Millisecond)

	tracker.Begin("visit-1", 1, "", "", "")
	tracker.Begin("visit-2", 2, "", "", "")
	tracker.Shutdown()

	time.Sleep(60 * time.Millisecond)
	if recorder.callCount() != 0 {
		t.Fatalf("shutdown leaked %d records", recorder.callCount())
	}
}
