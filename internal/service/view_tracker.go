package service

import (
	"log"
	"sync"
	"time"
)

const (
	defaultViewDelay     = 2 * time.Second
	defaultViewRetention = time.Minute
)

// ViewRecorder persists one page view. Implemented by AnalyticsService.
type ViewRecorder interface {
	RecordView(postID uint, ip, userAgent, referrer string) error
}

// ViewTracker turns page visits into at most one recorded view each.
// Beginning a visit arms a deferred record; cancelling before the delay
// elapses drops it, which filters out immediate bounces and most bots.
// Once the record fires, later re-renders of the same visit are no-ops,
// and a failed record is logged and never retried.
//
// The guarantee is per visit only: navigating away and back creates a new
// visit and can count the same reader twice. That is a known limitation
// of the protocol, not something the tracker tries to paper over.
//
// Fired visits are evicted after a retention window, long enough for a
// straggling cancel beacon to land as a no-op but short enough that the
// map does not grow with traffic.
type ViewTracker struct {
	recorder ViewRecorder
	delay    time.Duration
	retain   time.Duration

	mu     sync.Mutex
	visits map[string]*trackedVisit
}

type trackedVisit struct {
	timer    *time.Timer
	fired    bool
	recorded bool
}

// NewViewTracker creates a tracker with the standard 2 second delay.
func NewViewTracker(recorder ViewRecorder) *ViewTracker {
	return &ViewTracker{
		recorder: recorder,
		delay:    defaultViewDelay,
		retain:   defaultViewRetention,
		visits:   make(map[string]*trackedVisit),
	}
}

// WithDelay adjusts the record delay, for tests and special deployments.
func (t *ViewTracker) WithDelay(d time.Duration) *ViewTracker {
	if d > 0 {
		t.delay = d
	}
	return t
}

// WithRetention adjusts how long fired visits are kept before eviction.
func (t *ViewTracker) WithRetention(d time.Duration) *ViewTracker {
	if d > 0 {
		t.retain = d
	}
	return t
}

// Begin arms the deferred view record for one visit. Calling it again for
// the same visit, whether the timer is still pending or has already fired,
// does nothing: the visit records at most once and never retries.
func (t *ViewTracker) Begin(visitID string, postID uint, ip, userAgent, referrer string) {
	if visitID == "" || postID == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.visits[visitID]; exists {
		return
	}

	visit := &trackedVisit{}
	visit.timer = time.AfterFunc(t.delay, func() {
		t.fire(visitID, visit, postID, ip, userAgent, referrer)
	})
	t.visits[visitID] = visit
}

// Cancel tears a visit down. If the record has not fired yet it never will;
// the visit is forgotten either way.
func (t *ViewTracker) Cancel(visitID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	visit, exists := t.visits[visitID]
	if !exists {
		return
	}
	if !visit.fired {
		visit.timer.Stop()
	}
	delete(t.visits, visitID)
}

// Recorded reports whether the visit's view has been persisted.
func (t *ViewTracker) Recorded(visitID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	visit, exists := t.visits[visitID]
	return exists && visit.recorded
}

// Shutdown stops every pending timer without recording anything.
func (t *ViewTracker) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, visit := range t.visits {
		if !visit.fired {
			visit.timer.Stop()
		}
		delete(t.visits, id)
	}
}

func (t *ViewTracker) fire(visitID string, visit *trackedVisit, postID uint, ip, userAgent, referrer string) {
	t.mu.Lock()
	if t.visits[visitID] != visit {
		// Cancelled between the timer firing and this callback running.
		t.mu.Unlock()
		return
	}
	visit.fired = true
	t.mu.Unlock()

	err := t.recorder.RecordView(postID, ip, userAgent, referrer)

	t.mu.Lock()
	if err != nil {
		// Analytics only: report once, keep the page working.
		log.Printf("view record for post %d failed: %v", postID, err)
	} else {
		visit.recorded = true
	}
	t.mu.Unlock()

	time.AfterFunc(t.retain, func() {
		t.evict(visitID, visit)
	})
}

func (t *ViewTracker) evict(visitID string, visit *trackedVisit) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.visits[visitID] == visit {
		delete(t.visits, visitID)
	}
}
