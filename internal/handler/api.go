package handler

import (
	"sync"
	"time"

	"github.com/letopis/letopis/internal/service"
	"gorm.io/gorm"
)

const (
	sessionSweepInterval = 10 * time.Minute
	sessionIdleTTL       = time.Hour
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db         *gorm.DB
	posts      *service.PostService
	categories *service.CategoryService
	comments   *service.CommentService
	series     *service.SeriesService
	bookmarks  *service.BookmarkService
	newsletter *service.NewsletterService
	analytics  *service.AnalyticsService
	authors    *service.AuthorService
	search     *service.SearchService
	tracker    *service.ViewTracker
	uploadDir  string
	uploadURL  string

	sessionMu      sync.Mutex
	searchSessions map[string]*searchSessionEntry
}

// searchSessionEntry pairs a visitor's session with its last use so idle
// sessions can be swept; visitor ids are client-chosen cookie values and
// must not pin server memory forever.
type searchSessionEntry struct {
	session  *service.SearchSession
	lastSeen time.Time
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, uploadDir, uploadURL string) *API {
	analytics := service.NewAnalyticsService(gdb)

	api := &API{
		db:             gdb,
		posts:          service.NewPostService(gdb),
		categories:     service.NewCategoryService(gdb),
		comments:       service.NewCommentService(gdb),
		series:         service.NewSeriesService(gdb),
		bookmarks:      service.NewBookmarkService(gdb),
		newsletter:     service.NewNewsletterService(gdb),
		analytics:      analytics,
		authors:        service.NewAuthorService(gdb),
		search:         service.NewSearchService(gdb),
		tracker:        service.NewViewTracker(analytics),
		uploadDir:      uploadDir,
		uploadURL:      uploadURL,
		searchSessions: make(map[string]*searchSessionEntry),
	}
	go api.sweepSearchSessions()
	return api
}

// Tracker exposes the view tracker so main can shut it down cleanly.
func (a *API) Tracker() *service.ViewTracker {
	return a.tracker
}

// searchSession returns the per-visitor search session, creating it on
// first use.
func (a *API) searchSession(visitorID string) *service.SearchSession {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()

	entry, ok := a.searchSessions[visitorID]
	if !ok {
		entry = &searchSessionEntry{session: service.NewSearchSession(a.search)}
		a.searchSessions[visitorID] = entry
	}
	entry.lastSeen = time.Now()
	return entry.session
}

func (a *API) sweepSearchSessions() {
	for range time.Tick(sessionSweepInterval) {
		a.evictIdleSessions(time.Now().Add(-sessionIdleTTL))
	}
}

// evictIdleSessions drops sessions not used since the cutoff.
func (a *API) evictIdleSessions(cutoff time.Time) {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()

	for id, entry := range a.searchSessions {
		if entry.lastSeen.Before(cutoff) {
			delete(a.searchSessions, id)
		}
	}
}
