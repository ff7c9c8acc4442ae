package router

import (
	"github.com/boutique/backoffice/internal/infrastructure/logger"
	"github.com/boutique/backoffice/internal/interfaces/http/handler"
	"github.com/boutique/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineConfig carries the HTTP settings the engine is built from
type EngineConfig struct {
	Logger         *zap.Logger
	MaxBodySize    int64
	TrustedProxies []string
	CORS           middleware.CORSConfig
	Swagger        middleware.SwaggerConfig
	Tracing        middleware.TracingConfig
	// Meter records HTTP server metrics; nil disables them
	Meter metric.Meter
}

// Handlers are the endpoint groups mounted on the engine
type Handlers struct {
	System    *handler.SystemHandler
	Inventory *handler.InventoryHandler
	Report    *handler.ReportHandler
}

// NewEngine builds the gin engine with the full middleware chain. Order:
// request id, panic recovery, tracing, metrics, access log, security headers,
// CORS, body limit, tenant scope, span attributes.
func NewEngine(cfg EngineConfig, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.Tracing(cfg.Tracing),
		middleware.HTTPMetrics(cfg.Meter, log),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORSWithConfig(cfg.CORS),
	)
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	tenantCfg := middleware.DefaultTenantConfig()
	tenantCfg.Logger = log
	engine.Use(middleware.Tenant(tenantCfg), middleware.SpanAttributes())

	engine.GET("/health", h.System.Health)
	engine.GET("/swagger/*any", middleware.SwaggerProtection(cfg.Swagger), ginSwagger.WrapHandler(swaggerFiles.Handler))

	r := NewRouter(engine, WithAPIVersion("v1"))

	inventory := NewDomainGroup("inventory", "/inventory")
	inventory.POST("/adjustments", h.Inventory.ApplyAdjustments)
	inventory.GET("/stock/:variation_id/:location_id", h.Inventory.GetStock)

	reports := NewDomainGroup("reports", "/reports")
	reports.GET("/profit-margin", h.Report.GetProfitMargin)
	reports.GET("/stock-valuation", h.Report.GetStockValuation)
	reports.GET("/top-sellers", h.Report.GetTopSellers)
	ledgerExport := reports.Group("ledger-export", "/ledger-export")
	ledgerExport.GET("", h.Report.ExportLedger)
	ledgerExport.POST("/archive", h.Report.ArchiveLedgerExport)

	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.GetSystemInfo)

	r.Register(inventory).Register(reports).Register(system)
	r.Setup()

	return engine, nil
}
