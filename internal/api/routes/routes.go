// Package routes defines the HTTP routes of the document gateway.
package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/unifiedui/typed-docdb/internal/api/handlers"
	"github.com/unifiedui/typed-docdb/internal/api/middleware"
)

// BasePath prefixes every API route.
const BasePath = "/api/v1/docdb"

// Config holds the dependencies for setting up routes.
type Config struct {
	HealthHandler    *handlers.HealthHandler
	DocumentsHandler *handlers.DocumentsHandler
	StreamsHandler   *handlers.StreamsHandler
}

// Setup configures all routes on the Gin engine.
func Setup(r *gin.Engine, cfg *Config) {
	v1 := r.Group(BasePath)
	{
		v1.GET("/health", cfg.HealthHandler.Health)
		v1.GET("/ready", cfg.HealthHandler.Ready)
		v1.GET("/live", cfg.HealthHandler.Live)

		collections := v1.Group("/collections/:collection")
		{
			collections.GET("", cfg.DocumentsHandler.ListDocuments)
			collections.POST("", cfg.DocumentsHandler.CreateDocument)
			collections.POST("/query", cfg.DocumentsHandler.QueryDocuments)
			collections.GET("/stream", cfg.StreamsHandler.StreamCollection)
			collections.DELETE("/cache", cfg.DocumentsHandler.PurgeCache)

			docs := collections.Group("/docs/:docId")
			{
				docs.GET("", cfg.DocumentsHandler.GetDocument)
				docs.PUT("", cfg.DocumentsHandler.SetDocument)
				docs.PATCH("", cfg.DocumentsHandler.UpdateDocument)
				docs.DELETE("", cfg.DocumentsHandler.DeleteDocument)
				docs.GET("/stream", cfg.StreamsHandler.StreamDocument)
			}
		}

		v1.POST("/batch", cfg.DocumentsHandler.CommitBatch)
	}

	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// SetupWithMiddleware sets up routes with common middleware.
func SetupWithMiddleware(r *gin.Engine, cfg *Config, cors middleware.CORSConfig, loggingMw *middleware.LoggingMiddleware, errorMw *middleware.ErrorMiddleware) {
	r.Use(middleware.NewCORSMiddleware(cors))
	r.Use(loggingMw.RequestLogger())
	r.Use(loggingMw.Logger())
	r.Use(errorMw.Recovery())

	r.HandleMethodNotAllowed = true
	r.NoRoute(middleware.NotFound())
	r.NoMethod(middleware.MethodNotAllowed())

	Setup(r, cfg)
}
