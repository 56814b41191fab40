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

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/allan-almeida1/ecommerce/internal/api"
	"github.com/allan-almeida1/ecommerce/internal/auth"
	"github.com/allan-almeida1/ecommerce/internal/config"
	"github.com/allan-almeida1/ecommerce/internal/repository"
	"github.com/allan-almeida1/ecommerce/internal/service"
	"github.com/allan-almeida1/ecommerce/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "cart service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New("cart-service", cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := context.Background()

	// Tracing
	exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	otel.SetTracerProvider(tp)
	defer tp.Shutdown(ctx)

	// Storage
	repo, err := buildRepository(ctx, cfg, log)
	if err != nil {
		return err
	}

	// Authentication
	verifier, err := buildVerifier(ctx, cfg)
	if err != nil {
		return err
	}

	svc := service.NewCartService(repo)
	handler := api.NewCartHandler(svc, log)
	router := api.NewRouter(handler, verifier, cfg.RequestTimeout, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "cart-service"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("cart service listening",
			zap.String("addr", srv.Addr),
			zap.String("backend", string(cfg.Backend)),
			zap.String("auth_mode", string(cfg.AuthMode)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildRepository(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.CartRepository, error) {
	switch cfg.Backend {
	case config.BackendJSON:
		// Single-writer development backend: state lives in one local file
		// with no cross-process locking.
		return repository.NewJSONRepository(cfg.CartFile, log), nil

	case config.BackendDynamo:
		client, err := repository.NewDynamoDBClient(ctx, cfg.AWSRegion, cfg.AWSEndpoint)
		if err != nil {
			return nil, fmt.Errorf("dynamodb client: %w", err)
		}
		return repository.NewDynamoRepository(client, cfg.TableName, log), nil

	case config.BackendMongo:
		db, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, err
		}
		repo := repository.NewMongoRepository(db, log)
		if err := repo.CreateIndexes(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

func buildVerifier(ctx context.Context, cfg *config.Config) (auth.Verifier, error) {
	switch cfg.AuthMode {
	case config.AuthJWT:
		return auth.NewJWTVerifier(cfg.JWTSecret), nil

	case config.AuthSession:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		return auth.NewSessionVerifier(client), nil
	}
	return nil, fmt.Errorf("unknown auth mode %q", cfg.AuthMode)
}
