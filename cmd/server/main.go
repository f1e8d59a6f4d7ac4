package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	billingapp "github.com/invoicing/backend/internal/application/billing"
	identityapp "github.com/invoicing/backend/internal/application/identity"
	partnerapp "github.com/invoicing/backend/internal/application/partner"
	taxapp "github.com/invoicing/backend/internal/application/tax"
	"github.com/invoicing/backend/internal/infrastructure/auth"
	"github.com/invoicing/backend/internal/infrastructure/config"
	"github.com/invoicing/backend/internal/infrastructure/logger"
	"github.com/invoicing/backend/internal/infrastructure/persistence"
	"github.com/invoicing/backend/internal/infrastructure/scheduler"
	"github.com/invoicing/backend/internal/interfaces/http/handler"
	"github.com/invoicing/backend/internal/interfaces/http/middleware"
	"github.com/invoicing/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting invoicing backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	historyRepo := persistence.NewGormStatusHistoryRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	branchRepo := persistence.NewGormBranchRepository(db.DB)
	taxRepo := persistence.NewGormTaxRuleRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	configRepo := persistence.NewGormSystemConfigRepository(db.DB)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, log)
	userService := identityapp.NewUserService(userRepo)
	clientService := partnerapp.NewClientService(clientRepo, branchRepo)
	branchService := partnerapp.NewBranchService(branchRepo, clientRepo)
	ruleService := taxapp.NewRuleService(taxRepo)
	invoiceService := billingapp.NewInvoiceService(invoiceRepo, historyRepo, clientRepo, branchRepo, taxRepo, userRepo)
	statusService := billingapp.NewInvoiceStatusService(invoiceRepo, historyRepo, clientRepo, branchRepo, userRepo, configRepo, log)

	// Automated due-date sweep
	var sweeper *scheduler.StatusSweeper
	if cfg.Sweep.Enabled {
		sweeper = scheduler.NewStatusSweeper(cfg.Sweep, statusService, log)
		if err := sweeper.Start(context.Background()); err != nil {
			log.Fatal("Failed to start status sweeper", zap.Error(err))
		}
		log.Info("Status sweeper started", zap.Duration("check_interval", cfg.Sweep.CheckInterval))
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/api/v1/health",
			"/api/v1/auth/login",
		},
		Logger: log,
	}))

	invoiceHandler := handler.NewInvoiceHandler(invoiceService, statusService)
	systemHandler := handler.NewSystemHandler(db, sweeper)

	// Root-level health check for load balancers
	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine)
	r.Register(systemHandler).
		Register(handler.NewAuthHandler(authService, userService)).
		Register(handler.NewUserHandler(userService)).
		Register(handler.NewClientHandler(clientService, branchService)).
		Register(handler.NewBranchHandler(branchService)).
		Register(handler.NewTaxRuleHandler(ruleService)).
		Register(invoiceHandler)
	r.Setup()

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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if sweeper != nil {
		if err := sweeper.Stop(ctx); err != nil {
			log.Error("Error stopping status sweeper", zap.Error(err))
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
