package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rebooked/campus-service/internal/cache"
	"github.com/rebooked/campus-service/internal/catalog"
	"github.com/rebooked/campus-service/internal/config"
	"github.com/rebooked/campus-service/internal/handlers"
	"github.com/rebooked/campus-service/internal/repositories"
	"github.com/rebooked/campus-service/internal/repositories/postgres"
	"github.com/rebooked/campus-service/internal/services"
	"github.com/rebooked/campus-service/internal/utils"
	"github.com/rebooked/campus-service/internal/validator"
	"github.com/rebooked/campus-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment)
	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	built, err := loadCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}

	store, closeStore, err := newStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}
	defer publisher.Close()

	serviceManager := services.NewServiceManager(services.ServiceOptions{
		Catalog:     built,
		Store:       store,
		StoreLimit:  cfg.SavedCalculationLimit,
		Publisher:   publisher,
		Validator:   validator.New(),
		NearMissGap: cfg.NearMissGap,
		Logger:      logger,
	})

	var tokenParser handlers.TokenParser
	if cfg.Auth.Enabled {
		tokenParser = handlers.NewCasdoorTokenParser(cfg.Auth)
		logger.Info("Casdoor sign-in enabled", "endpoint", cfg.Auth.Endpoint)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	appLogger := utils.NewSlogLogger(logger)
	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestID(), utils.LoggerMiddleware(appLogger), utils.ContextLogger(appLogger))
	handlers.NewHandlerManager(serviceManager, tokenParser, appLogger).SetupRoutes(router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "store", cfg.StoreBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// loadCatalog reads the base universities and expands them with the programme rule table.
func loadCatalog(ctx context.Context, cfg *config.Config, logger *slog.Logger) (services.Catalog, error) {
	provider, err := catalog.NewProvider(cfg.CatalogPath, logger)
	if err != nil {
		return services.Catalog{}, err
	}
	base, err := provider.Universities(ctx)
	if err != nil {
		return services.Catalog{}, fmt.Errorf("failed to load catalog: %w", err)
	}
	if len(base) == 0 {
		return services.Catalog{}, services.ErrEmptyCatalog
	}

	rules, err := catalog.LoadRuleSet(cfg.ProgramRulesPath)
	if err != nil {
		return services.Catalog{}, err
	}

	built := services.BuildCatalog(base, rules.Rules, rules.Exclusions)
	for _, d := range built.Diagnostics {
		logger.Warn("Catalog diagnostic", "scope", d.Scope, "record_id", d.RecordID, "message", d.Message)
	}
	logger.Info("Catalog built",
		"universities", len(built.Universities),
		"degrees", built.DegreeCount(),
		"generated_programs", built.GeneratedPrograms)
	return built, nil
}

// newStore selects the saved calculation backend.
func newStore(cfg *config.Config, logger *slog.Logger) (repositories.KeyValueStore, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreRedis:
		client, err := pkg.NewRedisClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		ttl := time.Duration(cfg.SavedCalculationTTL) * time.Hour
		store := repositories.NewRedisStore(cache.NewRedisCache(client, logger, "campus:"), ttl)
		return store, closer(client, logger), nil
	case config.StorePostgres:
		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		return postgres.NewKeyValuePostgreSQL(db), closer(sqlDB, logger), nil
	case config.StoreMemory:
		logger.Warn("Using in-memory store, saved calculations are lost on restart")
		return repositories.NewInMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q: expected memory, redis or postgres", cfg.StoreBackend)
	}
}

func closer(c io.Closer, logger *slog.Logger) func() {
	return func() {
		if err := c.Close(); err != nil {
			logger.Warn("Failed to close store connection", "error", err)
		}
	}
}
