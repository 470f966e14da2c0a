package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/joho/godotenv"
	"github.com/layer-3/tutorauth/adapters/events"
	"github.com/layer-3/tutorauth/adapters/repository"
	"github.com/layer-3/tutorauth/adapters/verifier"
	"github.com/layer-3/tutorauth/internal/config"
	"github.com/layer-3/tutorauth/internal/logging"
	"github.com/layer-3/tutorauth/internal/metrics"
	"github.com/layer-3/tutorauth/ports"
	"github.com/layer-3/tutorauth/service"
	httptransport "github.com/layer-3/tutorauth/transport/http"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger := logging.Setup(cfg.LogLevel)

	repo, closeRepo, err := openRepository(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open repository")
	}
	defer closeRepo()

	publisher, err := openPublisher(cfg.RedisURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open event publisher")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("close event publisher")
		}
	}()
	eventPub := events.NewWatermillPublisher(publisher)

	reg, m := metrics.NewRegistry()
	guard := service.NewGuard(newVerifiers(cfg.SolanaStrictVerify, logger), logger, service.WithMetrics(m))
	catalog := service.NewCatalogService(guard, repo, logger,
		service.WithPublisher(eventPub),
		service.WithMetrics(m),
	)

	router := httptransport.SetupRouter(httptransport.RouterConfig{
		Guard:        guard,
		Catalog:      catalog,
		Publisher:    eventPub,
		Metrics:      m,
		Gatherer:     reg,
		CookieDomain: cfg.CookieDomain,
		Logger:       logger,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("starting tutorauth")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown server")
	}
}

// openRepository uses PostgreSQL when dsn is set and process memory otherwise
func openRepository(ctx context.Context, dsn string, logger zerolog.Logger) (ports.CatalogRepository, func(), error) {
	if dsn == "" {
		logger.Warn().Msg("DATABASE_URL not set, catalog is kept in memory")
		return repository.NewMemoryRepository(), func() {}, nil
	}

	db, err := repository.OpenPostgres(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("close database")
		}
	}
	return repository.NewPostgresRepository(db), closeDB, nil
}

// openPublisher publishes to a Redis stream when redisURL is set and to an
// in-process channel otherwise
func openPublisher(redisURL string, logger zerolog.Logger) (message.Publisher, error) {
	wmLogger := watermill.NewStdLogger(false, false)

	if redisURL == "" {
		logger.Warn().Msg("REDIS_URL not set, events stay in process")
		return gochannel.NewGoChannel(gochannel.Config{}, wmLogger), nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	return redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redis.NewClient(opts),
		},
		wmLogger,
	)
}

// newVerifiers registers one verifier per scheme. Solana sessions are only
// checked for shape and expiry unless strict is set.
func newVerifiers(strict bool, logger zerolog.Logger) map[string]ports.Verifier {
	if !strict {
		logger.Warn().Msg("solana signatures are not verified; set SOLANA_STRICT_VERIFY=true to check them")
	}
	return verifier.ForSchemes(strict)
}
