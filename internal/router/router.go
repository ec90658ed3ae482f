package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pulseflow-board-api/internal/handler"
	"pulseflow-board-api/internal/idempotency"
	"pulseflow-board-api/internal/metrics"
	"pulseflow-board-api/internal/middleware"
	"pulseflow-board-api/internal/repository"
	"pulseflow-board-api/internal/service"
)

// Config holds router configuration
type Config struct {
	DB            *gorm.DB
	Logger        *zap.Logger
	JWTSecret     string
	BasePath      string
	Metrics       *metrics.Metrics
	Deduper       idempotency.Deduper
	AllowedDomain string
}

// Setup sets up the router with all routes
func Setup(cfg Config) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.CORS())
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Prometheus metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check routes
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy", "service": "board-api"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if cfg.DB == nil {
			c.JSON(503, gin.H{"status": "not ready", "service": "board-api"})
			return
		}
		sqlDB, err := cfg.DB.DB()
		if err != nil {
			c.JSON(503, gin.H{"status": "not ready", "service": "board-api"})
			return
		}
		if err := sqlDB.Ping(); err != nil {
			c.JSON(503, gin.H{"status": "not ready", "service": "board-api"})
			return
		}
		c.JSON(200, gin.H{"status": "ready", "service": "board-api"})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Initialize repositories
	boardRepo := repository.NewBoardRepository(cfg.DB)
	shareRepo := repository.NewShareRepository(cfg.DB)
	userRepo := repository.NewUserRepository(cfg.DB)

	// Initialize services
	boardService := service.NewBoardService(boardRepo, cfg.Metrics, cfg.Logger)
	shareService := service.NewShareService(
		shareRepo,
		boardRepo,
		userRepo,
		cfg.AllowedDomain,
		cfg.Metrics,
		cfg.Logger,
	)

	// Initialize handlers
	boardHandler := handler.NewBoardHandler(boardService)
	shareHandler := handler.NewShareHandler(shareService)

	// API routes group
	api := r.Group(cfg.BasePath)

	authMiddleware := middleware.Auth(cfg.JWTSecret)

	// Deduplication only guards the non-idempotent writes.
	idem := func(c *gin.Context) { c.Next() }
	if cfg.Deduper != nil {
		idem = middleware.Idempotency(cfg.Deduper, cfg.Logger)
	}

	// ============================================================
	// Board routes
	// ============================================================
	boards := api.Group("/boards")
	{
		boards.GET("", authMiddleware, boardHandler.ListBoards)
		boards.POST("", authMiddleware, idem, boardHandler.CreateBoard)
		boards.PUT("/:boardId", authMiddleware, boardHandler.UpdateBoard)
		boards.DELETE("/:boardId", authMiddleware, idem, boardHandler.DeleteBoard)
		boards.POST("/:boardId/shares", authMiddleware, idem, shareHandler.ShareBoard)
	}

	// ============================================================
	// User directory routes
	// ============================================================
	users := api.Group("/users")
	{
		users.GET("/lookup", authMiddleware, shareHandler.LookupUser)
	}

	return r
}
