// Command worker runs the background process that drains the
// cache-warmup queue: load config, connect Postgres and Redis, wire
// the domain services, run until signalled.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/rolemanager/rbac-engine"
	"github.com/rolemanager/rbac-engine/internal/jobs"
	"github.com/rolemanager/rbac-engine/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadProcessConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		slog.Default().Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			slog.Default().Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Default().Warn("redis ping", slog.Any("error", err))
	}

	engine, err := rolemanager.New(rolemanager.Deps{
		Store:       store.NewPostgres(pool),
		RedisClient: redisClient,
	}, cfg.Engine)
	if err != nil {
		slog.Default().Error("init engine", slog.Any("error", err))
		os.Exit(1)
	}

	handler := jobs.NewHandler(engine.WarmCache, engine.Logger())
	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Handler:   handler,
	})
	if err != nil {
		slog.Default().Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		slog.Default().Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
