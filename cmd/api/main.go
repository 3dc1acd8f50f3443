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

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/rxpricediscovery/backend/internal/adapters/cache"
	"github.com/zatekoja/rxpricediscovery/backend/internal/adapters/mockdata"
	"github.com/zatekoja/rxpricediscovery/backend/internal/adapters/pricing"
	"github.com/zatekoja/rxpricediscovery/backend/internal/adapters/providers/geolocation"
	"github.com/zatekoja/rxpricediscovery/backend/internal/api/handlers"
	"github.com/zatekoja/rxpricediscovery/backend/internal/api/middleware"
	"github.com/zatekoja/rxpricediscovery/backend/internal/api/routes"
	"github.com/zatekoja/rxpricediscovery/backend/internal/application/services"
	"github.com/zatekoja/rxpricediscovery/backend/internal/domain/providers"
	"github.com/zatekoja/rxpricediscovery/backend/internal/infrastructure/clients/pricingapi"
	"github.com/zatekoja/rxpricediscovery/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/rxpricediscovery/backend/internal/infrastructure/observability"
	"github.com/zatekoja/rxpricediscovery/backend/pkg/config"
)

func main() {
	// A missing .env is normal outside local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to read .env: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.App.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Redis backs the response caches; the service runs without it
	var cacheProvider providers.CacheProvider
	if cfg.Cache.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.RedisAddr()).Msg("redis unavailable, caching disabled")
		} else {
			defer redisClient.Close()
			cacheProvider = cache.NewRedisAdapter(redisClient, "rxprice")
			log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("redis cache enabled")
		}
	}

	tokens := pricingapi.NewTokenCache(pricingapi.TokenCacheConfig{
		AuthURL:      cfg.PricingAPI.AuthURL,
		ClientID:     cfg.PricingAPI.ClientID,
		ClientSecret: cfg.PricingAPI.ClientSecret,
		Scope:        cfg.PricingAPI.Scope,
		Metrics:      metrics,
	})

	var pricingProvider providers.PricingProvider = pricingapi.NewClient(pricingapi.ClientConfig{
		BaseURL:       cfg.PricingAPI.BaseURL,
		HQMappingName: cfg.PricingAPI.HQMappingName,
		LanguageCode:  cfg.PricingAPI.LanguageCode,
		Timeout:       cfg.PricingAPI.Timeout,
		RateLimit:     cfg.PricingAPI.RateLimit,
		Metrics:       metrics,
	}, tokens)
	if cacheProvider != nil {
		pricingProvider = pricing.NewCachedPricingAdapter(pricingProvider, cacheProvider, metrics)
	}

	hasCredentials := cfg.PricingAPI.HasCredentials()
	if !hasCredentials {
		log.Warn().Msg("pricing api credentials not set; live lookups will fail")
	}
	flags := services.NewFeatureFlags(cfg.MockData, hasCredentials)
	for feature, strategy := range flags.Strategies() {
		log.Info().Str("feature", feature).Str("strategy", string(strategy)).Msg("data source strategy")
	}

	geo := geolocation.NewZipTableProvider()
	dataset := mockdata.New(geo.CalculateDistance)
	drugService := services.NewDrugPricingService(
		pricingProvider,
		tokens,
		dataset,
		services.NewFallbackOrchestrator(flags, metrics),
		services.NewRequestNormalizer(geo, cfg.Precedence, cfg.RequireLocation),
	)

	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider, middleware.DefaultCacheRoutes, metrics)

		if flags.StrategyFor(config.FeatureDrugInfo) != services.StrategyMockOnly {
			warmer := services.NewCacheWarmingService(pricingProvider, dataset, geo)
			go func() {
				warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
				defer cancel()
				if _, err := warmer.WarmCache(warmCtx); err != nil {
					log.Warn().Err(err).Msg("cache warming interrupted")
				}
			}()
		}
	}

	router := routes.NewRouter(
		handlers.NewDrugHandler(drugService),
		handlers.NewPharmacyHandler(drugService),
		handlers.NewAuthHandler(drugService, cfg.Debug.APIKey),
		cacheMiddleware,
		cfg.Server.AllowedOrigins,
		metrics,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.PricingAPI.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	log.Info().Msg("server stopped")
}
