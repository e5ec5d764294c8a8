package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/letopis/letopis/internal/service"
)

// Search runs a query through the visitor's search session and returns the
// resulting snapshot. Overlapping requests from the same visitor resolve in
// favor of the newest query.
func (a *API) Search(c *gin.Context) {
	session := a.searchSession(visitorID(c))
	session.Search(c.Query("q"))
	c.JSON(http.StatusOK, searchSnapshotPayload(session.Snapshot()))
}

// SearchState returns the visitor's current search snapshot without
// issuing a new query.
func (a *API) SearchState(c *gin.Context) {
	session := a.searchSession(visitorID(c))
	c.JSON(http.StatusOK, searchSnapshotPayload(session.Snapshot()))
}

// ClearSearch resets the visitor's search session to idle.
func (a *API) ClearSearch(c *gin.Context) {
	session := a.searchSession(visitorID(c))
	session.Clear()
	c.JSON(http.StatusOK, searchSnapshotPayload(session.Snapshot()))
}

func searchSnapshotPayload(snapshot service.SearchSnapshot) gin.H {
	results := make([]gin.H, 0, len(snapshot.Results))
	for _, result := range snapshot.Results {
		entry := publicPostSummary(result.Post)
		entry["rank"] = result.Rank
		results = append(results, entry)
	}

	payload := gin.H{
		"state":   snapshot.State,
		"query":   snapshot.Query,
		"results": results,
	}
	if snapshot.Error != "" {
		payload["error"] = snapshot.Error
	}
	return payload
}
