package service

import (
	"strings"
	"sync"
)

// Search session states.
const (
	SearchStateIdle      = "idle"
	SearchStateSearching = "searching"
	SearchStateResults   = "results"
	SearchStateErrored   = "errored"
)

// Searcher is the ranked-search dependency of a SearchSession.
type Searcher interface {
	Search(query string) ([]SearchResult, error)
}

// SearchSession holds the search state of one visitor: the current query,
// its results and any error. Every request is tagged with a monotonically
// increasing sequence number and a response is applied only if it is newer
// than the one currently displayed, so a slow stale response can never
// overwrite the results of a later query.
type SearchSession struct {
	searcher Searcher

	mu      sync.Mutex
	seq     uint64
	applied uint64
	state   string
	query   string
	results []SearchResult
	err     string
}

// SearchSnapshot is an immutable copy of the session state.
type SearchSnapshot struct {
	State   string
	Query   string
	Results []SearchResult
	Error   string
}

// NewSearchSession creates an idle session backed by the given searcher.
func NewSearchSession(searcher Searcher) *SearchSession {
	return &SearchSession{searcher: searcher, state: SearchStateIdle}
}

// Search runs one query to completion. Blank queries clear the session
// without issuing a request. Safe for concurrent use; when calls overlap,
// the response belonging to the newest query wins regardless of which
// call finishes last.
func (s *SearchSession) Search(query string) {
	s.mu.Lock()
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		s.resetLocked()
		s.mu.Unlock()
		return
	}

	s.seq++
	seq := s.seq
	s.state = SearchStateSearching
	s.query = trimmed
	s.mu.Unlock()

	results, err := s.searcher.Search(trimmed)

	s.mu.Lock()
	defer s.mu.Unlock()

	// A newer query already resolved; this response is stale.
	if seq <= s.applied {
		return
	}
	s.applied = seq

	if err != nil {
		s.state = SearchStateErrored
		s.results = nil
		s.err = err.Error()
		return
	}

	s.state = SearchStateResults
	s.results = results
	s.err = ""
}

// Clear resets the session to idle, dropping results and errors. Responses
// still in flight at the time of the call are discarded on arrival.
func (s *SearchSession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// Snapshot returns a copy of the current state.
func (s *SearchSession) Snapshot() SearchSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]SearchResult, len(s.results))
	copy(results, s.results)

	return SearchSnapshot{
		State:   s.state,
		Query:   s.query,
		Results: results,
		Error:   s.err,
	}
}

func (s *SearchSession) resetLocked() {
	// Anything in flight becomes stale.
	s.applied = s.seq
	s.state = SearchStateIdle
	s.query = ""
	s.results = nil
	s.err = ""
}
