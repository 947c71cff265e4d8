package handler

import (
	"quicknotes/middleware"
	"quicknotes/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	Notes    *NotesHandler
	Sessions *SessionHandler
	Health   *HealthHandler

	// Authenticate attaches the request session, see middleware.SessionMiddleware.
	Authenticate   gin.HandlerFunc
	Accessor       services.SessionAccessor
	AllowedOrigins []string
	MaxBodyBytes   int64
}

func SetupRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Accessor == nil {
		cfg.Accessor = services.ContextSessionAccessor{}
	}
	router := gin.New()

	router.Use(middleware.EnhancedRecoveryMiddleware())
	router.Use(middleware.RequestTracingMiddleware())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins...))

	if cfg.Health != nil {
		router.GET("/health", cfg.Health.Health)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	if cfg.MaxBodyBytes > 0 {
		api.Use(middleware.RequestSizeLimiter(cfg.MaxBodyBytes))
	}
	if cfg.Authenticate != nil {
		api.Use(cfg.Authenticate)
	}

	api.GET("/categories", middleware.CacheControlMiddleware("3600"), GetCategories)

	// the notes service rejects anonymous calls itself
	notes := api.Group("/notes")
	notes.Use(middleware.NoStoreMiddleware())
	{
		notes.GET("", cfg.Notes.ListNotes)
		notes.POST("", cfg.Notes.CreateNote)
		notes.GET("/:id", cfg.Notes.GetNote)
		notes.PATCH("/:id", cfg.Notes.UpdateNote)
		notes.PUT("/:id", cfg.Notes.UpdateNote)
		notes.DELETE("/:id", cfg.Notes.DeleteNote)
	}

	if cfg.Sessions != nil {
		session := api.Group("/session")
		session.Use(middleware.AuthMiddleware(cfg.Accessor))
		{
			session.GET("", cfg.Sessions.GetSession)
			session.POST("/logout", cfg.Sessions.Logout)
		}
	}

	return router
}
