package router

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/letopis/letopis/internal/config"
	"github.com/letopis/letopis/internal/handler"
)

// Setup configures the Gin engine with sessions, public routes and the
// session guarded admin API.
func Setup(cfg *config.AppConfig, api *handler.API) *gin.Engine {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	r := gin.Default()

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("letopis_session", store))

	r.Static(cfg.UploadURLPath, cfg.UploadDir)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Open endpoints that write or fan out queries get a per-address
	// rate limit; plain reads do not.
	writeLimit := handler.RateLimit(30, 10)
	searchLimit := handler.RateLimit(120, 30)

	public := r.Group("/api")
	{
		public.GET("/posts", api.ListPublicPosts)
		public.GET("/posts/:slug", api.GetPublicPost)
		public.POST("/posts/:slug/view/cancel", writeLimit, api.CancelPostView)

		public.GET("/categories", api.ListPublicCategories)

		public.GET("/series", api.ListPublicSeries)
		public.GET("/series/:slug", api.GetPublicSeries)

		public.GET("/search", searchLimit, api.Search)
		public.GET("/search/state", api.SearchState)
		public.POST("/search/clear", api.ClearSearch)

		public.POST("/comments", writeLimit, api.SubmitComment)

		public.POST("/newsletter/subscribe", writeLimit, api.SubscribeNewsletter)
		public.POST("/newsletter/unsubscribe", writeLimit, api.UnsubscribeNewsletter)
	}

	admin := r.Group("/admin")
	{
		admin.POST("/login", api.Login)
		admin.GET("/logout", api.Logout)

		auth := admin.Group("/api")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("/posts", api.ListPosts)
			auth.GET("/posts/:id", api.GetPost)
			auth.POST("/posts", api.CreatePost)
			auth.PUT("/posts/:id", api.UpdatePost)
			auth.DELETE("/posts/:id", api.DeletePost)
			auth.POST("/posts/:id/publish", api.PublishPost)
			auth.POST("/posts/:id/schedule", api.SchedulePost)
			auth.POST("/posts/:id/archive", api.ArchivePost)
			auth.GET("/posts/:id/views", api.PostViews)
			auth.POST("/posts/:id/bookmark", api.ToggleBookmark)

			auth.POST("/categories", api.CreateCategory)
			auth.PUT("/categories/:id", api.UpdateCategory)
			auth.DELETE("/categories/:id", api.DeleteCategory)

			auth.GET("/comments/pending", api.ListPendingComments)
			auth.PUT("/comments/:id/status", api.ModerateComment)
			auth.DELETE("/comments/:id", api.DeleteComment)

			auth.POST("/series", api.CreateSeries)
			auth.PUT("/series/:id", api.UpdateSeries)
			auth.DELETE("/series/:id", api.DeleteSeries)
			auth.POST("/series/:id/posts", api.AddSeriesPost)
			auth.DELETE("/series/:id/posts/:postId", api.RemoveSeriesPost)
			auth.PUT("/series/:id/order", api.ReorderSeries)

			auth.GET("/bookmarks", api.ListBookmarks)

			auth.GET("/newsletter/subscribers", api.ListSubscribers)

			auth.GET("/analytics/overview", api.SiteOverview)

			auth.GET("/profile", api.GetProfile)
			auth.PUT("/profile", api.UpdateProfile)

			auth.POST("/upload/image", api.UploadImage)
		}
	}

	return r
}
