// cmd/notification-service/main.go
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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"laundry-workers/internal/common/auth"
	"laundry-workers/internal/common/camunda"
	"laundry-workers/internal/common/config"
	"laundry-workers/internal/common/database"
	commonhttp "laundry-workers/internal/common/http"
	"laundry-workers/internal/common/logger"
	"laundry-workers/internal/common/observability"
	"laundry-workers/internal/functions"
	"laundry-workers/internal/notify"
	"laundry-workers/internal/notify/audit"
	"laundry-workers/internal/notify/delivery"
	"laundry-workers/internal/orderevents"
	"laundry-workers/internal/store"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting notification service...", zap.String("environment", cfg.App.Environment))

	obs := observability.New(cfg.Observability.ServiceName, cfg.Observability.JaegerEndpoint, zapLog)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	if err := pg.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
		zapLog.Warn("postgres pool metrics not registered", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Redis (template cache, optional) ---
	var rdb *redis.Client
	if cfg.Database.Redis.Address != "" {
		var rc *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rc, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rc.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Warn("redis unavailable, template cache disabled", zap.Error(err))
		} else {
			defer rc.Close()
			rdb = rc.Client
			zapLog.Info("Redis connected successfully")
		}
	}

	db := store.New(pg.DB)
	templates := store.NewCachedTemplates(db, rdb, time.Duration(cfg.Database.Redis.TemplateCacheTTL)*time.Second, log)

	providers, err := delivery.NewProviders(ctx, cfg.Notifications)
	if err != nil {
		zapLog.Fatal("delivery providers failed", zap.Error(err))
	}

	senderOpts := []notify.Option{notify.WithObservability(obs)}
	if cfg.Database.Elasticsearch.Enabled() {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			zapLog.Fatal("elasticsearch client failed", zap.Error(err))
		}
		if err := es.Ping(ctx); err != nil {
			zapLog.Warn("elasticsearch ping failed, mirroring anyway", zap.Error(err))
		} else if err := es.EnsureIndex(ctx, cfg.Database.Elasticsearch.AuditIndex, audit.Mapping); err != nil {
			zapLog.Warn("audit index not ensured", zap.Error(err))
		}
		senderOpts = append(senderOpts, notify.WithAudit(audit.NewMirror(es.Client, cfg.Database.Elasticsearch.AuditIndex, log)))
	}
	sender := notify.NewSender(providers, db, log, senderOpts...)

	keycloak := auth.NewKeycloakClient(
		cfg.Auth.Keycloak.URL,
		cfg.Auth.Keycloak.Realm,
		cfg.Auth.Keycloak.ClientID,
		cfg.Auth.Keycloak.ClientSecret,
		commonhttp.NewClient(config.GetDuration(cfg.Auth.Keycloak.Timeout)),
	)

	handlers := buildHandlers(cfg, db, templates, sender, keycloak, obs, log)

	// --- Zeebe workers ---
	var zeebeClient *camunda.Client
	if cfg.Camunda.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			zeebeClient, err = camunda.NewClient(cfg.Camunda)
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		n := startWorkers(zeebeClient.Zeebe(), cfg, handlers, zapLog)
		zapLog.Info("workers registered", zap.Int("count", n))
	}

	ready := func(ctx context.Context) error {
		if err := pg.Ping(ctx); err != nil {
			return err
		}
		if zeebeClient != nil {
			return zeebeClient.HealthCheck(ctx)
		}
		return nil
	}

	// --- Order events ---
	if cfg.RabbitMQ.URL != "" {
		conn, ch, err := orderevents.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			zapLog.Fatal("rabbitmq connection failed", zap.Error(err))
		}
		defer conn.Close()
		consumer := orderevents.NewConsumer(ch, cfg.RabbitMQ, handlers.OrderNotification, log)
		go func() {
			if err := consumer.Run(ctx); err != nil {
				zapLog.Error("order event consumer stopped", zap.Error(err))
			}
		}()
	}

	// --- HTTP functions, health and metrics ---
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      functions.NewRouter(functions.Catalog(handlers), keycloak, ready, log),
		ReadTimeout:  config.GetDuration(cfg.HTTP.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.HTTP.WriteTimeout),
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	if zeebeClient != nil {
		if err := zeebeClient.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("Notification service stopped gracefully")
}
