package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gradgate/gradgate/config"
	"github.com/gradgate/gradgate/controllers"
	"github.com/gradgate/gradgate/ingest"
	"github.com/gradgate/gradgate/middleware"
	"github.com/gradgate/gradgate/records"
	"github.com/gradgate/gradgate/storage"
	"github.com/gradgate/gradgate/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, blobs storage.BlobStore) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	recordStore := records.NewStore(db)
	validator := ingest.NewValidator(ingest.RulesFromConfig(cfg))
	coordinator := ingest.NewCoordinator(blobs, recordStore, validator)

	submissionController := controllers.NewSubmissionController(coordinator, recordStore)
	documentController := controllers.NewDocumentController(blobs)

	api := r.Group("/api/v1")

	submissions := api.Group("/submissions")
	submissions.POST("", middleware.RateLimitMiddleware(), submissionController.CreateSubmission)
	submissions.GET("", submissionController.ListSubmissions)
	submissions.GET("/:id", submissionController.GetSubmission)

	r.GET("/documents/:storageId", documentController.Download)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}
