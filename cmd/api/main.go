package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/marcelsud/message-relay/config"
	"github.com/marcelsud/message-relay/endpoints"
	"github.com/marcelsud/message-relay/internal/http/chi"
	"github.com/marcelsud/message-relay/internal/logger"
	"github.com/marcelsud/message-relay/media"
	"github.com/marcelsud/message-relay/metrics"
	"github.com/marcelsud/message-relay/relay"
	"github.com/marcelsud/message-relay/webhook"
	"github.com/marcelsud/message-relay/webhook/action"
	"github.com/marcelsud/message-relay/webhook/postgres"
	webhookredis "github.com/marcelsud/message-relay/webhook/redis"
	"github.com/rs/zerolog"
)

const TIMEOUT = 30 * time.Second

/* The application's entry and exit point
 * Wires config, store, actions and the relay queue, then serves HTTP until a
 * signal arrives. Imports flow one way: cmd -> business -> storage.
 */

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	loader := endpoints.NewLoader(action.ContactUpsertName, action.MediaDecryptName, action.RelayForwardName)
	if err := loader.Load(cfg.EndpointsFile); err != nil {
		return fmt.Errorf("loading endpoints: %w", err)
	}
	if cfg.RelayTargetURL == "" && usesAction(loader, action.RelayForwardName) {
		return fmt.Errorf("RELAY_TARGET_URL is required when a webhook uses %s", action.RelayForwardName)
	}

	repo, collector, err := openStore(cfg, loader)
	if err != nil {
		return err
	}
	defer repo.Close(ctx)

	if err := loader.Seed(ctx, repo); err != nil {
		return fmt.Errorf("seeding endpoints: %w", err)
	}
	log.Info().Int("webhooks", len(loader.List())).Str("store", cfg.StoreBackend).Msg("endpoints loaded")

	queue := relay.NewQueue(
		relay.NewHTTPSender(cfg.RelayTargetURL, cfg.RelaySecret, cfg.RelayTimeout),
		relay.Options{
			MaxRetries:   cfg.RelayMaxRetries,
			InitialDelay: cfg.RelayInitialDelay,
			MaxDelay:     cfg.RelayMaxDelay,
			Timeout:      cfg.RelayTimeout,
		},
		log,
	)
	defer queue.Close()

	exporter, err := metrics.NewOTelExporter(collector, queue)
	if err != nil {
		return fmt.Errorf("creating metrics exporter: %w", err)
	}
	defer exporter.Shutdown(context.Background())
	queue.SetObserver(exporter)

	registry := webhook.NewRegistry(action.Builtins(
		repo,
		media.NewDownloader(cfg.MediaDownloadTimeout, cfg.MediaMaxSize),
		media.NewDecrypter(log),
		queue,
		cfg.RelayEventType,
	)...)
	s := webhook.NewService(repo, registry, log)

	r := chi.WebhookHandlers(ctx, s, loader, chi.Options{
		Recorder:       exporter,
		MetricsHandler: exporter.ServeHTTP(),
		Queue:          queue,
		Stats:          exporter,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		Timeout:        cfg.RequestTimeout,
		TextLogs:       cfg.LogFormat == "text",
	})
	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		Addr:         ":" + cfg.Port,
		Handler:      r,
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, log, errShutdown)
	log.Info().Str("port", cfg.Port).Msg("listening")
	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-errShutdown
}

// openStore connects the configured backend. The postgres schema is created by cmd/migrate-postgres.
func openStore(cfg *config.Config, loader *endpoints.Loader) (webhook.Repository, metrics.Collector, error) {
	switch cfg.StoreBackend {
	case "postgres":
		repo, err := postgres.NewRepository(cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		return repo, metrics.NewPostgresCollector(repo.DB), nil
	default:
		repo, err := webhookredis.NewRepository(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		repo.SetIdempotencyTTL(cfg.IdempotencyTTL)
		return repo, metrics.NewRedisCollector(repo.GetClient(), loader), nil
	}
}

func usesAction(loader *endpoints.Loader, name string) bool {
	for _, e := range loader.List() {
		if e.Active && slices.Contains(e.Actions, name) {
			return true
		}
	}
	return false
}

func shutdown(server *http.Server, ctxShutdown context.Context, log zerolog.Logger, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), TIMEOUT)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch err {
	case nil:
		log.Info().Msg("shutting down server")
		errShutdown <- nil
	case context.DeadlineExceeded:
		errShutdown <- fmt.Errorf("forcing closing the server")
	default:
		errShutdown <- fmt.Errorf("forcing closing the server: %w", err)
	}
}
