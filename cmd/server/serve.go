package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/storage"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

// multipartOverhead leaves room for form boundaries and fields around the
// largest allowed image.
const multipartOverhead = 1 << 20

func runServe() error {
	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// ERROR+ records are also persisted to system_logs.
	var dbLogHandler *logging.DBHandler
	if cfg.Logging.DBSink {
		dbLogHandler = logging.NewDBHandler(db, 5*time.Second)
		slog.SetDefault(slog.New(logging.NewMultiHandler(
			logging.NewStdoutHandler(os.Stdout, cfg.Logging.Level),
			dbLogHandler,
		)))
	}

	cleanupDone := make(chan struct{})
	logging.StartCleanup(db, cfg.Logging.RetentionDays, cleanupDone)

	store, err := storage.NewLocalStore(cfg.Upload.Dir)
	if err != nil {
		return fmt.Errorf("upload directory: %w", err)
	}
	assets := services.NewAssets(store, cfg.Upload.PublicPath)

	// Services
	tokenService := services.NewTokenService(cfg.JWT)
	authService := services.NewAuthService(db, tokenService, assets)
	userService := services.NewUserService(db, assets)
	tourService := services.NewTourService(db, assets)
	panoramaService := services.NewPanoramaService(db, assets, cfg.Upload)
	hotspotService := services.NewHotspotService(db)

	if created, err := authService.EnsureAdmin(cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		slog.Error("admin bootstrap failed", "error", err)
	} else if created {
		slog.Info("default admin created", "email", cfg.Admin.Email)
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	healthHandler := handlers.NewHealthHandler(db)
	tourHandler := handlers.NewTourHandler(tourService)
	panoramaHandler := handlers.NewPanoramaHandler(panoramaService)
	hotspotHandler := handlers.NewHotspotHandler(hotspotService)
	adminHandler := handlers.NewAdminHandler(userService)
	uploadHandler := handlers.NewUploadHandler(store)

	// Sentry error tracking
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			EnableTracing:    true,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
			Environment:      cfg.Server.Environment,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    int(cfg.Upload.MaxFileSize) + multipartOverhead,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.Metrics())
	app.Use(middleware.CORS(cfg.Server))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	routes.Setup(app, cfg, db, authHandler, healthHandler, tourHandler, panoramaHandler, hotspotHandler, adminHandler, uploadHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
		listenErr <- app.Listen(":" + cfg.Server.Port)
	}()

	var serveErr error
	select {
	case <-quit:
		slog.Info("shutting down server...")
	case serveErr = <-listenErr:
		if serveErr != nil {
			slog.Error("server failed to start", "error", serveErr)
		}
	}

	if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	if dbLogHandler != nil {
		dbLogHandler.Stop()
	}
	sentry.Flush(2 * time.Second)
	closeDB(db)

	slog.Info("server stopped")
	return serveErr
}
