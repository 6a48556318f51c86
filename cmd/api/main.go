package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/posprint/internal/application/service"
	"github.com/sangkips/posprint/internal/config"
	"github.com/sangkips/posprint/internal/domain/entity"
	domainRepo "github.com/sangkips/posprint/internal/domain/repository"
	"github.com/sangkips/posprint/internal/infrastructure/database"
	"github.com/sangkips/posprint/internal/infrastructure/lock"
	"github.com/sangkips/posprint/internal/infrastructure/repository"
	"github.com/sangkips/posprint/internal/presentation/http/handler"
	"github.com/sangkips/posprint/internal/presentation/http/middleware"
	"github.com/sangkips/posprint/internal/presentation/http/routes"
	"github.com/sangkips/posprint/pkg/logger"
	"github.com/sangkips/posprint/pkg/utils"
)

const memoryJobLimit = 1000

func main() {
	cfg := config.Load()
	log := logger.Init(cfg.Log.Level)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var closers []func() error

	var jobs domainRepo.PrintJobRepository
	if cfg.Database.Enabled {
		db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		if err := database.AutoMigrate(db); err != nil {
			log.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		if sqlDB, err := db.DB(); err == nil {
			closers = append(closers, sqlDB.Close)
		}
		jobs = repository.NewPrintJobRepository(db)
	} else {
		jobs = repository.NewMemoryPrintJobRepository(memoryJobLimit)
		log.Info("print history kept in memory", "limit", memoryJobLimit)
	}

	header := entity.ReceiptHeader{
		StoreName: cfg.Store.Name,
		Tagline:   cfg.Store.Tagline,
		Subtitle:  cfg.Store.Subtitle,
		Footer:    cfg.Store.Footer,
		Currency:  cfg.Store.Currency,
	}
	logo := loadLogo(cfg.Printer.LogoPath, log)
	renderer := service.NewReceiptRenderer(header).
		WithTextWidth(cfg.Printer.ColumnWidth).
		WithLogo(logo)

	hw, err := newPrinterHardware(&cfg.Printer, log)
	if err != nil {
		log.Error("invalid printer configuration", "error", err)
		os.Exit(1)
	}
	chain, err := service.BuildStrategyChain(cfg.Printer.Strategies, hw.strategies(&cfg.Printer))
	if err != nil {
		log.Error("invalid printer strategy chain", "error", err)
		os.Exit(1)
	}
	dispatcher := service.NewPrintDispatcher(chain, log)

	var deviceLock lock.DeviceLock = lock.NewLocalLock()
	if cfg.Redis.Enabled {
		ttl := lock.CoveringTTL(cfg.Redis.LockTTL, dispatcher.Budget())
		if ttl != cfg.Redis.LockTTL {
			log.Warn("REDIS_LOCK_TTL shorter than the print chain, raising it",
				"configured", cfg.Redis.LockTTL, "chain_budget", dispatcher.Budget(), "ttl", ttl)
		}
		rl := lock.NewRedisLock(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, ttl)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rl.Ping(ctx)
		cancel()
		if err != nil {
			log.Warn("redis unavailable, using in-process device lock", "addr", cfg.Redis.Addr, "error", err)
			_ = rl.Close()
		} else {
			deviceLock = rl
			closers = append(closers, rl.Close)
		}
	}

	printerService := service.NewPrinterService(service.PrinterServiceDeps{
		Normalizer: service.NewReceiptNormalizer(nil),
		Renderer:   renderer,
		Dispatcher: dispatcher,
		Lister:     hw.enumerator,
		Jobs:       jobs,
		Lock:       deviceLock,
		Options: service.RenderOptions{
			ColumnWidth:   cfg.Printer.ColumnWidth,
			CutPaper:      cfg.Printer.CutPaper,
			OpenDrawer:    cfg.Printer.OpenDrawer,
			CodePage:      cfg.Printer.CodePage,
			MaxImageWidth: cfg.Printer.MaxImageWidth,
			Logo:          logo,
		},
		QREnabled:    cfg.Printer.QREnabled,
		DeviceKey:    hw.deviceKey,
		ListCacheTTL: cfg.Printer.ListCacheTTL,
		Logger:       log,
	})

	var jwtManager *utils.JWTManager
	if cfg.JWT.Secret != "" {
		jwtManager = utils.NewJWTManager(cfg.JWT.Secret)
	}

	rateLimiter := middleware.NewClientRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: float64(cfg.RateLimit.Requests) / float64(max(cfg.RateLimit.Duration, 1)),
		BurstSize:         cfg.RateLimit.Requests,
		CleanupInterval:   5 * time.Minute,
		EntryTTL:          10 * time.Minute,
	})
	defer rateLimiter.Stop()

	router := routes.Setup(&routes.Handlers{
		Printer: handler.NewPrinterHandler(printerService),
	}, &routes.Deps{
		JWTManager:  jwtManager,
		RateLimiter: rateLimiter,
		Cfg:         cfg,
		Logger:      log,
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Dialog printing can take as long as a headless browser start.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.App.Port, "strategies", cfg.Printer.Strategies)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Warn("close error", "error", err)
		}
	}
	log.Info("server stopped")
}

func loadLogo(path string, log *slog.Logger) []byte {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("could not read receipt logo", "path", path, "error", err)
		return nil
	}
	return data
}
