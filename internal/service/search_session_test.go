package service

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached in time")
		}
		time.Sleep(time.Millisecond)
	}
}

// blockingSearcher lets a test decide when each search call resolves.
type blockingSearcher struct {
	mu      sync.Mutex
	pending map[string]chan struct{}
	results map[string][]SearchResult
	errs    map[string]error
	calls   int
}

func newBlockingSearcher() *blockingSearcher {
	return &blockingSearcher{
		pending: make(map[string]chan struct{}),
		results: make(map[string][]SearchResult),
		errs:    make(map[string]error),
	}
}

func (f *blockingSearcher) expect(query string, results []SearchResult, err error) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	f.pending[query] = gate
	f.results[query] = results
	f.errs[query] = err
	return gate
}

func (f *blockingSearcher) Search(query string) ([]SearchResult, error) {
	f.mu.Lock()
	f.calls++
	gate := f.pending[query]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.results[query], f.errs[query]
}

func (f *blockingSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func resultNamed(title string) []SearchResult {
	r := SearchResult{Rank: 1}
	r.Title = title
	return []SearchResult{r}
}

func TestSearchSessionBlankQueryClearsWithoutRequest(t *testing.T) {
	fake := newBlockingSearcher()
	session := NewSearchSession(fake)

	session.Search("   ")

	snap := session.Snapshot()
	if snap.State != SearchStateIdle || len(snap.Results) != 0 || snap.Error != "" {
		t.Fatalf("unexpected snapshot after blank query: %+v", snap)
	}
	if fake.callCount() != 0 {
		t.Fatalf("blank query issued %d requests, want 0", fake.callCount())
	}
}

func TestSearchSessionAppliesResults(t *testing.T) {
	fake := newBlockingSearcher()
	session := NewSearchSession(fake)

	session.Search("тесла")

	snap := session.Snapshot()
	if snap.State != SearchStateResults {
		t.Fatalf("state = %s, want %s", snap.State, SearchStateResults)
	}
	if snap.Query != "тесла" {
		t.Fatalf("query = %q", snap.Query)
	}
}

func TestSearchSessionRecordsError(t *testing.T) {
	fake := newBlockingSearcher()
	gate := fake.expect("пупин", nil, errors.New("store unavailable"))
	close(gate)

	session := NewSearchSession(fake)
	session.Search("пупин")

	snap := session.Snapshot()
	if snap.State != SearchStateErrored {
		t.Fatalf("state = %s, want %s", snap.State, SearchStateErrored)
	}
	if snap.Error != "store unavailable" {
		t.Fatalf("error = %q", snap.Error)
	}
	if len(snap.Results) != 0 {
		t.Fatalf("errored search kept %d results", len(snap.Results))
	}
}

func TestSearchSessionDiscardsStaleResponse(t *testing.T) {
	fake := newBlockingSearcher()
	firstGate := fake.expect("first", resultNamed("застарело"), nil)
	secondGate := fake.expect("second", resultNamed("свеже"), nil)

	session := NewSearchSession(fake)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		session.Search("first")
	}()
	waitFor(t, func() bool { return session.Snapshot().Query == "first" })

	go func() {
		defer wg.Done()
		session.Search("second")
	}()
	waitFor(t, func() bool { return session.Snapshot().Query == "second" })

	// Resolve the newer query first, then let the older one limp home.
	close(secondGate)
	waitFor(t, func() bool { return session.Snapshot().State != SearchStateSearching })
	close(firstGate)
	wg.Wait()

	snap := session.Snapshot()
	if snap.State != SearchStateResults {
		t.Fatalf("state = %s, want %s", snap.State, SearchStateResults)
	}
	if len(snap.Results) != 1 || snap.Results[0].Title != "свеже" {
		t.Fatalf("stale response overwrote newer results: %+v", snap.Results)
	}
}

func TestSearchSessionClearDiscardsInFlight(t *testing.T) {
	fake := newBlockingSearcher()
	gate := fake.expect("spor", resultNamed("спор одговор"), nil)

	session := NewSearchSession(fake)

	done := make(chan struct{})
	go func() {
		session.Search("spor")
		close(done)
	}()

	waitFor(t, func() bool { return session.Snapshot().State == SearchStateSearching })
	session.Clear()
	close(gate)
	<-done

	snap := session.Snapshot()
	if snap.State != SearchStateIdle || len(snap.Results) != 0 {
		t.Fatalf("cleared session picked up an in-flight response: %+v", snap)
	}
}
