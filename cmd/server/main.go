package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	inventoryapp "github.com/boutique/backoffice/internal/application/inventory"
	reportapp "github.com/boutique/backoffice/internal/application/report"
	"github.com/boutique/backoffice/internal/domain/inventory"
	"github.com/boutique/backoffice/internal/infrastructure/cache"
	"github.com/boutique/backoffice/internal/infrastructure/config"
	"github.com/boutique/backoffice/internal/infrastructure/logger"
	"github.com/boutique/backoffice/internal/infrastructure/persistence"
	"github.com/boutique/backoffice/internal/infrastructure/storage"
	"github.com/boutique/backoffice/internal/infrastructure/strategy"
	"github.com/boutique/backoffice/internal/infrastructure/telemetry"
	"github.com/boutique/backoffice/internal/interfaces/http/handler"
	"github.com/boutique/backoffice/internal/interfaces/http/middleware"
	"github.com/boutique/backoffice/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/boutique/backoffice/docs"
)

//	@title			Boutique Back-Office Inventory API
//	@version		1.0
//	@description	Stock adjustments, ledger export and profitability reports for a multi-location retailer.

//	@contact.name	Back-Office Team

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	TenantID
//	@in							header
//	@name						X-Tenant-ID
//	@description				Tenant UUID scoping every request.

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    cfg.Telemetry.ServiceName,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		logger.Sync(log)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Environment:       cfg.App.Env,
		Insecure:          cfg.Telemetry.Insecure,
	}

	// Logs bridge first so later startup messages reach the collector too
	logsCfg := otelCfg
	logsCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled
	logProvider, err := telemetry.NewLoggerProvider(ctx, logsCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	if logProvider.IsEnabled() {
		minLevel, err := zapcore.ParseLevel(cfg.Telemetry.LogsLevel)
		if err != nil {
			minLevel = zapcore.InfoLevel
		}
		log = logProvider.Bridge(log, minLevel)
	}

	log.Info("Starting inventory back-office",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, otelCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	metricsCfg := otelCfg
	metricsCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled
	meterProvider, err := telemetry.NewMeterProvider(ctx, metricsCfg, cfg.Telemetry.MetricsExportInterval, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilerAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
		ProfileTypes:    cfg.Telemetry.ProfileTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && tracerProvider.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))

	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// SQL migrations target postgres; sqlite deployments build the schema from models
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate schema", zap.Error(err))
		}
		log.Info("Schema migrated from models")
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbSystem := "postgresql"
		if cfg.Database.Driver == config.DriverSQLite {
			dbSystem = "sqlite"
		}
		plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:        dbSystem,
		}, log)
		if err := plugin.Register(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	var dbMetrics *telemetry.DBMetrics
	if meterProvider.IsEnabled() {
		dbMetrics, err = telemetry.NewDBMetrics(meter, telemetry.DBMetricsConfig{
			SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
		}, log)
		if err != nil {
			log.Fatal("Failed to create database metrics", zap.Error(err))
		}
		if err := db.DB.Use(telemetry.NewDBMetricsPlugin(dbMetrics)); err != nil {
			log.Fatal("Failed to register database metrics", zap.Error(err))
		}
		if sqlDB, err := db.DB.DB(); err == nil {
			dbMetrics.StartPoolStatsCollection(ctx, sqlDB)
		}
	}

	// Repositories
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)
	stockRepo := persistence.NewGormStockRecordRepository(db.DB)
	masterDataRepo := persistence.NewGormMasterDataRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Cost basis strategy
	registry, err := strategy.NewRegistryWithDefaults(cfg.Costing.WeightedAverageWindow)
	if err != nil {
		log.Fatal("Failed to build cost strategy registry", zap.Error(err))
	}
	costStrategy, err := registry.GetCostStrategy(cfg.Costing.Method)
	if err != nil {
		log.Fatal("Unknown cost method", zap.String("method", cfg.Costing.Method), zap.Error(err))
	}
	log.Info("Cost basis selected",
		zap.String("method", costStrategy.Name()),
		zap.String("description", costStrategy.Description()),
	)

	overdraftPolicy, err := inventory.ParseOverdraftPolicy(cfg.Inventory.OverdraftPolicy)
	if err != nil {
		log.Fatal("Invalid overdraft policy", zap.Error(err))
	}

	// Application services
	adjustmentService := inventoryapp.NewAdjustmentService(
		masterDataRepo,
		stockRepo,
		txScope,
		inventoryapp.AdjustmentServiceConfig{
			OverdraftPolicy: overdraftPolicy,
			MaxRetries:      cfg.Inventory.MaxRetries,
		},
		log,
	)
	reportService := reportapp.NewReportService(
		ledgerRepo,
		stockRepo,
		masterDataRepo,
		costStrategy,
		reportapp.ReportServiceConfig{
			ScanPageSize:    cfg.Report.ScanPageSize,
			DefaultTopLimit: cfg.Report.DefaultTopLimit,
			MaxTopLimit:     cfg.Report.MaxTopLimit,
		},
		log,
	)

	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()
	adjustmentService.SetIdempotencyStore(idempotencyStore, cfg.Inventory.IdempotencyTTL)

	if cfg.Storage.Enabled {
		objectStorage, err := storage.NewS3ObjectStorage(ctx, &cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to create object storage", zap.Error(err))
		}
		if err := objectStorage.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare export bucket", zap.Error(err))
		}
		reportService.SetExportArchive(objectStorage, cfg.Storage.PresignExpiration)
		log.Info("Ledger export archiving enabled", zap.String("bucket", objectStorage.Bucket()))
	}

	var engineMetrics *telemetry.EngineMetrics
	if meterProvider.IsEnabled() {
		engineMetrics, err = telemetry.NewEngineMetrics(telemetry.EngineMetricsConfig{
			Meter:         meter,
			Logger:        log,
			StockProvider: telemetry.NewGormStockMetricsProvider(db.DB),
		})
		if err != nil {
			log.Fatal("Failed to create engine metrics", zap.Error(err))
		}
		adjustmentService.SetEngineMetrics(engineMetrics)
		reportService.SetEngineMetrics(engineMetrics)
		engineMetrics.StartPeriodicCollection(ctx, telemetry.NewGormTenantProvider(db.DB), cfg.Telemetry.StockCollectInterval)
	}

	// HTTP
	middleware.SetupValidator()

	systemHandler := handler.NewSystemHandler(cfg.App.Name, telemetry.ServiceVersion,
		handler.HealthCheck{Name: "database", Check: func(context.Context) error { return db.Ping() }},
	)
	engine, err := router.NewEngine(router.EngineConfig{
		Logger:         log,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		CORS: middleware.CORSConfig{
			AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
			AllowMethods:     cfg.HTTP.CORSAllowMethods,
			AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
			ExposeHeaders:    middleware.DefaultCORSConfig().ExposeHeaders,
			AllowCredentials: middleware.DefaultCORSConfig().AllowCredentials,
			MaxAge:           middleware.DefaultCORSConfig().MaxAge,
		},
		Swagger: middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		},
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tracerProvider.IsEnabled(),
		},
		Meter: meter,
	}, router.Handlers{
		System:    systemHandler,
		Inventory: handler.NewInventoryHandler(adjustmentService),
		Report:    handler.NewReportHandler(reportService),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if engineMetrics != nil {
		engineMetrics.Stop()
	}
	if dbMetrics != nil {
		dbMetrics.Stop()
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	log.Info("Server exited")
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down log provider", zap.Error(err))
	}
}
