package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	gomongo "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	affiliateapp "github.com/licsync/backend/internal/application/affiliate"
	companyapp "github.com/licsync/backend/internal/application/company"
	importerapp "github.com/licsync/backend/internal/application/importer"
	licenseapp "github.com/licsync/backend/internal/application/license"
	messageapp "github.com/licsync/backend/internal/application/message"
	"github.com/licsync/backend/internal/domain/affiliate"
	"github.com/licsync/backend/internal/domain/company"
	"github.com/licsync/backend/internal/infrastructure/auth"
	"github.com/licsync/backend/internal/infrastructure/config"
	"github.com/licsync/backend/internal/infrastructure/logger"
	"github.com/licsync/backend/internal/infrastructure/persistence/mongo"
	"github.com/licsync/backend/internal/infrastructure/telemetry"
	"github.com/licsync/backend/internal/infrastructure/whatsapp"
	"github.com/licsync/backend/internal/interfaces/http/handler"
	"github.com/licsync/backend/internal/interfaces/http/middleware"
	"github.com/licsync/backend/internal/interfaces/http/router"
)

//	@title			LicSync Backend API
//	@version		1.0
//	@description	License portal / WhatsApp synchronization middleware

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting LicSync Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Initialize tracing
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Connect to MongoDB
	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:            cfg.Mongo.URI,
		Database:       cfg.Mongo.Database,
		ConnectTimeout: cfg.Mongo.ConnectTimeout,
		EnableTracing:  cfg.Telemetry.Enabled,
	})
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	log.Info("MongoDB connected successfully", zap.String("database", cfg.Mongo.Database))

	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		log.Fatal("Failed to ensure indexes", zap.Error(err))
	}

	// Initialize repositories
	companyRepo := mongo.NewMongoCompanyRepository(db)
	historyRepo := mongo.NewMongoHistoryRepository(db)
	licenseRepo := mongo.NewMongoLicenseRepository(db)
	messageRepo := mongo.NewMongoMessageRepository(db)
	customerRepo := mongo.NewMongoAffiliateRepository(db, affiliate.KindCustomer)
	indicadorRepo := mongo.NewMongoAffiliateRepository(db, affiliate.KindIndicador)
	parceiroRepo := mongo.NewMongoAffiliateRepository(db, affiliate.KindParceiro)

	// Company cascade fans writes out to every affiliate collection that
	// embeds company references.
	cascade := companyapp.NewCascade(log, customerRepo, indicadorRepo, parceiroRepo)
	resolver := company.NewResolver(companyRepo)

	// WhatsApp transport
	whatsappClient := whatsapp.NewClient(whatsapp.Config{
		APIURL:        cfg.WhatsApp.APIURL,
		PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
		AccessToken:   cfg.WhatsApp.AccessToken,
		Timeout:       cfg.WhatsApp.Timeout,
	}, log)

	// Initialize application services
	companyService := companyapp.NewService(companyRepo, historyRepo, cascade, log)
	customerService := affiliateapp.NewService(customerRepo, resolver, log)
	indicadorService := affiliateapp.NewService(indicadorRepo, resolver, log)
	parceiroService := affiliateapp.NewService(parceiroRepo, resolver, log)
	licenseService := licenseapp.NewService(licenseRepo, log)
	messageService := messageapp.NewService(messageRepo, whatsappClient, customerRepo, licenseRepo, log)
	importService := importerapp.NewService(customerService, resolver, log)

	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(jwtService, cfg.JWT, log)
	companyHandler := handler.NewCompanyHandler(companyService)
	customerHandler := handler.NewAffiliateHandler(customerService)
	indicadorHandler := handler.NewAffiliateHandler(indicadorService)
	parceiroHandler := handler.NewAffiliateHandler(parceiroService)
	licenseHandler := handler.NewLicenseHandler(licenseService)
	messageHandler := handler.NewMessageHandler(messageService)
	webhookHandler := handler.NewWebhookHandler(messageService, cfg.Webhook.VerifyToken, log)
	importHandler := handler.NewImportHandler(importService)
	systemHandler := handler.NewSystemHandler(&mongoPinger{client: client})

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. Tracing - OpenTelemetry spans
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit (covers CSV uploads)
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Distributed tracing
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		Enabled:     cfg.Telemetry.Enabled,
		ServiceName: cfg.Telemetry.ServiceName,
	}))
	engine.Use(middleware.SpanErrorMarker())

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes.
	// The webhook prefix stays open: the portal authenticates with the
	// verify token, not a bearer token.
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/health",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		SkipPathPrefixes: []string{
			"/api/v1/webhook",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Inject authenticated identity into active spans (after JWT)
	r.Use(middleware.TracingAttributeInjector())

	// Auth routes
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.GET("/me", authHandler.Me)

	// Company routes
	companyRoutes := router.NewDomainGroup("company", "/companies")
	companyRoutes.POST("", companyHandler.Create)
	companyRoutes.GET("", companyHandler.List)
	companyRoutes.GET("/:id", companyHandler.GetByID)
	companyRoutes.PUT("/:id", companyHandler.Update)
	companyRoutes.DELETE("/:id", companyHandler.Delete)
	companyRoutes.POST("/:id/renovations", companyHandler.Renovate)
	companyRoutes.POST("/:id/renovations/expire", companyHandler.ExpireRenovation)
	companyRoutes.GET("/:id/history", companyHandler.History)

	// Affiliate routes, one group per collection. All three share the same
	// reference semantics; only the backing collection differs.
	customerRoutes := affiliateGroup("customers", customerHandler)
	indicadorRoutes := affiliateGroup("indicadores", indicadorHandler)
	parceiroRoutes := affiliateGroup("parceiros", parceiroHandler)

	// License routes
	licenseRoutes := router.NewDomainGroup("license", "/licenses")
	licenseRoutes.POST("", licenseHandler.Create)
	licenseRoutes.GET("", licenseHandler.List)
	licenseRoutes.GET("/:id", licenseHandler.GetByID)
	licenseRoutes.PUT("/:id", licenseHandler.Update)
	licenseRoutes.DELETE("/:id", licenseHandler.Delete)

	// Messaging routes
	messageRoutes := router.NewDomainGroup("message", "/messages")
	messageRoutes.POST("", messageHandler.Send)
	messageRoutes.POST("/broadcast", messageHandler.Broadcast)
	messageRoutes.GET("", messageHandler.List)
	messageRoutes.GET("/:id", messageHandler.GetByID)

	// Webhook routes (portal-facing, verify-token authenticated)
	webhookRoutes := router.NewDomainGroup("webhook", "/webhook")
	webhookRoutes.GET("", webhookHandler.Verify)
	webhookRoutes.POST("/license-created", webhookHandler.LicenseCreated)

	// Import routes
	importRoutes := router.NewDomainGroup("import", "/import")
	importRoutes.POST("/customers", importHandler.ImportCustomers)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	// Register all domain groups
	r.Register(authRoutes).
		Register(companyRoutes).
		Register(customerRoutes).
		Register(indicadorRoutes).
		Register(parceiroRoutes).
		Register(licenseRoutes).
		Register(messageRoutes).
		Register(webhookRoutes).
		Register(importRoutes).
		Register(systemRoutes)

	// Versioned health endpoint, same handler as the root one
	engine.GET("/api/v1/health", systemHandler.Health)

	// Setup routes
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// affiliateGroup wires the standard affiliate route set under the given
// collection prefix.
func affiliateGroup(name string, h *handler.AffiliateHandler) *router.DomainGroup {
	g := router.NewDomainGroup(name, "/"+name)
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/link", h.Link)
	g.POST("/:id/unlink", h.Unlink)
	return g
}

// mongoPinger adapts the driver client to the health check's Pinger.
type mongoPinger struct {
	client *gomongo.Client
}

func (p *mongoPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, readpref.Primary())
}
