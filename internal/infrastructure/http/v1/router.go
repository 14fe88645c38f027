// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"magnetunits/internal/format"
	"magnetunits/internal/infrastructure/cache"
	"magnetunits/internal/infrastructure/http/v1/handlers"
	"magnetunits/internal/infrastructure/http/v1/middleware"
	"magnetunits/internal/infrastructure/storage/postgres"
	"magnetunits/internal/metadata"
	"magnetunits/internal/units"
	"magnetunits/pkg/logger"
)

// RouterConfig holds router dependencies. Pool and Store are nil when the
// service runs without a database.
type RouterConfig struct {
	Units    *units.System
	Registry *metadata.Registry
	Loader   *format.Loader
	Formats  *cache.FormatCache
	Store    handlers.FormatStore
	Pool     *postgres.Pool
	Logger   *logger.Logger

	// Debug switches gin to debug mode.
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// order matters
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Formats, cfg.Registry)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()
	v1 := router.Group("/api/v1")
	registerFieldRoutes(v1, handlers.NewFieldHandler(base, cfg.Registry))
	registerUnitRoutes(v1, handlers.NewUnitHandler(base, cfg.Units))
	registerFormatRoutes(v1, handlers.NewFormatHandler(base, cfg.Loader, cfg.Formats, cfg.Store))

	return router
}

func registerFieldRoutes(rg *gin.RouterGroup, h *handlers.FieldHandler) {
	rg.GET("/field-types", h.ListTypes)
	rg.GET("/categories", h.ListCategories)

	fields := rg.Group("/fields")
	{
		fields.GET("", h.List)
		fields.GET("/:id", h.Get)
		fields.GET("/:id/label", h.Label)
		fields.POST("/:id/convert", h.Convert)
	}
}

func registerUnitRoutes(rg *gin.RouterGroup, h *handlers.UnitHandler) {
	u := rg.Group("/units")
	{
		u.POST("/convert", h.Convert)
		u.GET("/compatible", h.Compatible)
	}
}

func registerFormatRoutes(rg *gin.RouterGroup, h *handlers.FormatHandler) {
	f := rg.Group("/formats")
	{
		f.GET("", h.List)
		f.POST("", h.Create)
		f.GET("/:name", h.Get)
		f.DELETE("/:name", h.Delete)
		f.GET("/:name/columns/:column", h.Column)
	}
}
