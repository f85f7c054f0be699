// Package main is the entry point for the Typed DocDB Gateway.
// @title Typed DocDB Gateway API
// @version 1.0
// @description HTTP and SSE access to a document database through the typed docdb layer
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/unifiedui/typed-docdb

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	_ "github.com/unifiedui/typed-docdb/docs"
	"github.com/unifiedui/typed-docdb/internal/api/handlers"
	"github.com/unifiedui/typed-docdb/internal/api/middleware"
	"github.com/unifiedui/typed-docdb/internal/api/routes"
	"github.com/unifiedui/typed-docdb/internal/config"
	"github.com/unifiedui/typed-docdb/internal/core/cache"
	"github.com/unifiedui/typed-docdb/internal/core/vault"
	"github.com/unifiedui/typed-docdb/internal/infrastructure/cache/noop"
	rediscache "github.com/unifiedui/typed-docdb/internal/infrastructure/cache/redis"
	dotenvvault "github.com/unifiedui/typed-docdb/internal/infrastructure/vault/dotenv"
	"github.com/unifiedui/typed-docdb/internal/pkg/encryption"
	"github.com/unifiedui/typed-docdb/internal/pkg/logging"
	"github.com/unifiedui/typed-docdb/internal/services/documents"
	"github.com/unifiedui/typed-docdb/pkg/docdb"
	"github.com/unifiedui/typed-docdb/pkg/docdb/firestore"
	"github.com/unifiedui/typed-docdb/pkg/docdb/memory"
	"github.com/unifiedui/typed-docdb/pkg/docdb/mongodb"
	"github.com/unifiedui/typed-docdb/pkg/typed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logging is not configured yet.
		fallback := logging.Setup("info", "json")
		fallback.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)
	ctx := context.Background()

	secrets, err := createVault(cfg.Vault)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize vault")
	}
	defer secrets.Close()

	if err := cfg.ResolveSecrets(ctx, secrets); err != nil {
		logger.Fatal().Err(err).Msg("failed to resolve secrets")
	}

	cacheClient, err := createCache(ctx, cfg.Cache)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize cache")
	}
	defer cacheClient.Close()

	db, err := createDocDB(ctx, cfg.DocDB, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("type", cfg.DocDB.Type).Msg("failed to initialize document db")
	}
	defer db.Close(context.Background())

	sealer, err := createSealer(cfg.Cache)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize cache sealer")
	}

	service, err := documents.NewService(&documents.Config{
		Registry:  typed.NewRegistry(db),
		Cache:     cacheClient,
		Sealer:    sealer,
		TTL:       cfg.Cache.TTL,
		KeyPrefix: cfg.Cache.KeyPrefix,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize documents service")
	}

	gin.SetMode(cfg.Server.GinMode)
	router := setupRouter(cfg, cacheClient, db, service, logger)

	srv := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("address", cfg.Server.Address()).Str("docdb", cfg.DocDB.Type).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited")
}

func createVault(cfg config.VaultConfig) (vault.Vault, error) {
	switch vault.Type(cfg.Type) {
	case vault.TypeDotEnv:
		return dotenvvault.NewVault(), nil
	default:
		return nil, fmt.Errorf("unsupported vault type: %s", cfg.Type)
	}
}

func createCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cache.Type(cfg.Type) {
	case cache.TypeRedis:
		return rediscache.NewCache(ctx, rediscache.Config{
			Host:       cfg.Host,
			Port:       cfg.Port,
			Password:   cfg.Password,
			DB:         cfg.DB,
			DefaultTTL: cfg.TTL,
		})
	case cache.TypeNone:
		return noop.NewCache(), nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.Type)
	}
}

// createDocDB opens the backend named by DOCDB_TYPE.
func createDocDB(ctx context.Context, cfg config.DocDBConfig, logger zerolog.Logger) (docdb.Client, error) {
	switch docdb.Type(cfg.Type) {
	case docdb.TypeFirestore:
		return firestore.NewClient(ctx, &firestore.ClientConfig{
			ProjectID:       cfg.ProjectID,
			DatabaseID:      cfg.DatabaseID,
			CredentialsFile: cfg.CredentialsFile,
			Logger:          &logger,
		})
	case docdb.TypeMongoDB:
		return mongodb.NewClient(ctx, &mongodb.ClientConfig{
			URI:          cfg.URI,
			DatabaseName: cfg.Database,
			Logger:       &logger,
		})
	case docdb.TypeMemory:
		logger.Warn().Msg("using in-memory document db, data is lost on restart")
		return memory.NewClient(memory.WithLogger(logger)), nil
	default:
		return nil, fmt.Errorf("unsupported docdb type: %s", cfg.Type)
	}
}

func createSealer(cfg config.CacheConfig) (encryption.Sealer, error) {
	if cfg.EncryptionKey == "" {
		return encryption.Plain{}, nil
	}
	return encryption.NewAESSealer(cfg.EncryptionKey)
}

func setupRouter(cfg *config.Config, cacheClient cache.Cache, db docdb.Client, service documents.Service, logger zerolog.Logger) *gin.Engine {
	router := gin.New()

	routes.SetupWithMiddleware(router, &routes.Config{
		HealthHandler:    handlers.NewHealthHandler(cacheClient, db),
		DocumentsHandler: handlers.NewDocumentsHandler(service),
		StreamsHandler:   handlers.NewStreamsHandler(service, handlers.DefaultHeartbeat),
	},
		middleware.DefaultCORSConfig(cfg.Server.AllowedOrigins...),
		middleware.NewLoggingMiddlewareWithLogger(logger),
		middleware.NewErrorMiddleware(),
	)

	return router
}
