// Command search-server serves the business search API over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sternrassler/bizsearch/pkg/cache"
	"github.com/Sternrassler/bizsearch/pkg/config"
	"github.com/Sternrassler/bizsearch/pkg/logging"
	"github.com/Sternrassler/bizsearch/pkg/provider"
	"github.com/Sternrassler/bizsearch/pkg/quota"
	"github.com/Sternrassler/bizsearch/pkg/region"
	"github.com/Sternrassler/bizsearch/pkg/search"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Logging())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	var redisClient *redis.Client
	var gate quota.Gate
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		logger.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis")
		gate = quota.NewRedisGate(redisClient, cfg.QuotaDefault, logging.NewLogger("quota"))
	} else {
		logger.Warn().Msg("REDIS_ADDR not set, search quotas are disabled")
	}

	providers, err := buildProviders(cfg)
	if err != nil {
		return err
	}

	orchestrator, err := search.New(search.Deps{
		Providers: providers,
		Sets:      region.DefaultSets(),
		Resolver:  region.NewResolver(cfg.GeoDefault()),
		Cache:     cache.NewManager(cfg.CacheOptions()),
		Gate:      gate,
	}, cfg.Search())
	if err != nil {
		return err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &server{
		searcher:       orchestrator,
		redis:          redisClient,
		requestTimeout: cfg.RequestTimeout,
		logger:         logging.NewLogger("http"),
	}
	httpServer := &http.Server{
		Addr:    cfg.Addr(),
		Handler: srv.routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr()).Int("providers", len(providers)).Msg("Search server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received, draining requests")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// buildProviders creates a client for every provider with credentials.
func buildProviders(cfg *config.Config) ([]provider.Client, error) {
	httpCfg := cfg.ProviderHTTP()
	var clients []provider.Client

	if cfg.HasKakao() {
		c, err := provider.NewKakaoClient(provider.KakaoConfig{HTTPConfig: httpCfg, APIKey: cfg.KakaoAPIKey})
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	if cfg.HasNaver() {
		c, err := provider.NewNaverClient(provider.NaverConfig{
			HTTPConfig:   httpCfg,
			ClientID:     cfg.NaverClientID,
			ClientSecret: cfg.NaverClientSecret,
		})
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	if cfg.HasGoogle() {
		c, err := provider.NewGoogleClient(provider.GoogleConfig{
			HTTPConfig: httpCfg,
			APIKey:     cfg.GooglePlacesAPIKey,
			Language:   cfg.GoogleLanguage,
			TokenDelay: cfg.GoogleTokenDelay,
		})
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}

	if len(clients) == 0 {
		return nil, errors.New("no provider configured")
	}
	return clients, nil
}
