package main

import (
	"context"
	"log"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fadilmartias/ats-portal/internal/config"
	"github.com/fadilmartias/ats-portal/internal/domain/fiber/handler"
	applogger "github.com/fadilmartias/ats-portal/internal/logger"
	"github.com/fadilmartias/ats-portal/internal/middleware"
	"github.com/fadilmartias/ats-portal/internal/service"
	"github.com/fadilmartias/ats-portal/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()
	zlog, err := applogger.NewLogger(appConfig.Env)
	if err != nil {
		log.Fatalf("Could not build logger: %v", err)
	}
	defer zlog.Sync()

	sessionConfig := config.LoadSessionConfig()
	store, closeStore, err := session.OpenStore(sessionConfig, appConfig.IsProduction())
	if err != nil {
		zlog.Fatal("open session store failed", zap.Error(err))
	}
	defer closeStore()
	registry := session.NewRegistrySize(store, sessionConfig.CacheSize, zlog)

	backend := service.NewBackend(config.LoadBackendConfig(), zlog)
	portal, err := handler.NewPortalHandler(backend, appConfig, config.LoadUIConfig(), zlog)
	if err != nil {
		zlog.Fatal("parse templates failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName:      appConfig.Name,
		ErrorHandler: portal.ErrorHandler,
		BodyLimit:    8 * 1024 * 1024,
	})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !appConfig.IsProduction(),
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // 1
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.IsProduction()
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
		ContentSecurityPolicy:     "default-src 'self'; style-src 'self' 'unsafe-inline'",
	}))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))
	app.Use(middleware.BrowserSession(middleware.SessionConfig{
		Registry:   registry,
		CookieName: sessionConfig.CookieName,
		Secure:     appConfig.IsProduction(),
		Logger:     zlog,
	}))

	portal.RegisterRoutes(app)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Monitor goroutine count
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				zlog.Debug("active goroutines", zap.Int("count", runtime.NumGoroutine()))
			}
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			zlog.Error("shutdown failed", zap.Error(err))
		}
	}()

	zlog.Info("portal running", zap.String("port", appConfig.Port), zap.String("backend", config.LoadBackendConfig().URL))
	if err := app.Listen(appConfig.Port); err != nil {
		zlog.Fatal("listen failed", zap.Error(err))
	}
}
