package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/internal/evaluator"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/internal/evaluator/cache"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/internal/evaluator/handler"
	evalrpc "github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/internal/evaluator/rpc"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/internal/source"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/grpc"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting evaluator service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			if err := shutdownMetrics(context.Background()); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}()
		slog.Info("metrics server started", "port", cfg.Metrics.Port)
	}

	var scoreCache *cache.ScoreCache
	var redisClient *pkgredis.Client
	if cfg.Evaluator.CacheEnabled {
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, score caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			scoreCache = cache.New(redisClient, cfg.Redis, m)
			slog.Info("score cache enabled",
				"addr", cfg.Redis.Addr,
				"ttl", cfg.Redis.CacheTTL,
			)
		}
	}

	var snapshots *source.SnapshotStore
	var pgClient *postgres.Client
	pgClient, err = postgres.New(cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, snapshot comparisons disabled", "error", err)
	} else {
		defer pgClient.Close()
		snapshots = source.NewSnapshotStore(pgClient, m)
		slog.Info("snapshot store connected", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
	}

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.ComparisonEvents)
	defer producer.Close()
	collector := analytics.NewCollector(producer, 10000, m)
	collector.Start(ctx)
	defer collector.Close()
	slog.Info("analytics collector started", "topic", cfg.Kafka.Topics.ComparisonEvents)

	aggregator := analytics.NewAggregator()
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.ComparisonEvents, analytics.HandleEvent(aggregator))
	go func() {
		if err := consumer.Start(ctx); err != nil {
			slog.Error("analytics consumer error", "error", err)
		}
	}()
	slog.Info("analytics aggregator started")

	eval := evaluator.New(cfg.Evaluator)
	h := handler.New(eval, scoreCache, collector, snapshotSource(snapshots), m, cfg.Tracing.Enabled)
	analyticsH := analytics.NewHandler(aggregator)

	var rpcServer *grpc.Server
	if cfg.RPC.Enabled {
		rpcServer = grpc.NewServer()
		evalrpc.NewService(eval, rpcSnapshotSource(snapshots)).Register(rpcServer)
		go func() {
			if err := rpcServer.Serve(fmt.Sprintf(":%d", cfg.RPC.Port)); err != nil {
				slog.Error("rpc server error", "error", err)
			}
		}()
		defer rpcServer.Stop()
		slog.Info("rpc server started", "port", cfg.RPC.Port)
	}

	checker := health.NewChecker()
	checker.Register("evaluator", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if pgClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := pgClient.DB.PingContext(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("rpc", func(ctx context.Context) health.ComponentHealth {
		if rpcServer == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "disabled"}
		}
		return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d methods", rpcServer.MethodCount())}
	})

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/compare", h.Compare)
	mux.HandleFunc("GET /api/v1/compare/snapshots", h.CompareSnapshots)
	mux.HandleFunc("GET /api/v1/snapshots/variants", h.SnapshotVariants)
	mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("evaluator service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("evaluator service stopped")
}

// snapshotSource converts the concrete store to the handler's interface while
// keeping a typed nil from leaking into a non-nil interface value.
func snapshotSource(store *source.SnapshotStore) handler.SnapshotSource {
	if store == nil {
		return nil
	}
	return store
}

func rpcSnapshotSource(store *source.SnapshotStore) evalrpc.SnapshotSource {
	if store == nil {
		return nil
	}
	return store
}
