package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/config"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/handler"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/middleware"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Student   *handler.StudentHandler
	Drive     *handler.DriveHandler
	Report    *handler.ReportHandler
	Analytics *handler.AnalyticsHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Bulk roster uploads are expensive; keep them rate limited per IP.
	importLimiter := middleware.NewRateLimiter(10, time.Minute)

	api := router.Group("/api/v1")
	{
		// Students
		api.GET("/students", handlers.Student.ListStudents)
		api.POST("/students", handlers.Student.CreateStudent)
		api.GET("/students/:id", handlers.Student.GetStudent)
		api.PUT("/students/:id", handlers.Student.UpdateStudent)
		api.DELETE("/students/:id", handlers.Student.DeleteStudent)
		api.POST("/students/:id/vaccinate", handlers.Student.VaccinateStudent)
		api.POST("/students/import", importLimiter.Middleware(), handlers.Student.ImportStudents)

		// Drives
		api.GET("/drives", handlers.Drive.ListDrives)
		api.POST("/drives", handlers.Drive.CreateDrive)
		api.GET("/drives/:id", handlers.Drive.GetDrive)
		api.PUT("/drives/:id", handlers.Drive.UpdateDrive)
		api.DELETE("/drives/:id", handlers.Drive.DeleteDrive)

		// Reports & analytics
		api.GET("/reports", handlers.Report.GetReport)
		api.GET("/analytics", handlers.Analytics.GetAnalytics)
	}

	return router
}
