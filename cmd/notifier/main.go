package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/jupiterclapton/journal/config"
	"github.com/jupiterclapton/journal/internal/adapters/primary/events"
	"github.com/jupiterclapton/journal/internal/adapters/secondary/eventbroker"
	"github.com/jupiterclapton/journal/internal/adapters/secondary/push"
	"github.com/jupiterclapton/journal/internal/adapters/secondary/repository"
	"github.com/jupiterclapton/journal/internal/core/ports"
	"github.com/jupiterclapton/journal/internal/core/services"
	"github.com/jupiterclapton/journal/pkg/logger"
	"github.com/jupiterclapton/journal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.Env, cfg.LogLevel, cfg.ServiceName+"-notifier")
	slog.Info("🚀 Starting Notifier")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.InitTracer(ctx, cfg.ServiceName+"-notifier", cfg.Env, cfg.OtelEndpoint)
	if err != nil {
		slog.Error("Failed to init tracer", "error", err)
	} else {
		defer func() { _ = tp.Shutdown(context.Background()) }()
	}

	// Les membres servent à afficher le pseudo de l'auteur dans la notification.
	var members ports.MemberRepository
	if cfg.Store == "memory" {
		members = repository.NewMemoryStore().Members()
	} else {
		dbConfig, err := pgxpool.ParseConfig(cfg.DBUrl)
		if err != nil {
			slog.Error("Invalid DB_URL", "error", err)
			os.Exit(1)
		}
		dbConfig.ConnConfig.Tracer = otelpgx.NewTracer()
		pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
		if err != nil {
			slog.Error("Unable to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		members = repository.NewPostgres(pool).Members()
	}

	nc, err := nats.Connect(cfg.NatsUrl, nats.Name(cfg.ServiceName+"-notifier"), nats.MaxReconnects(-1))
	if err != nil {
		slog.Error("Unable to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		slog.Error("JetStream unavailable", "error", err)
		os.Exit(1)
	}
	stream, err := eventbroker.EnsureStream(ctx, js)
	if err != nil {
		slog.Error("Unable to create stream", "error", err)
		os.Exit(1)
	}
	slog.Info("✅ Connected to NATS JetStream")

	pusher := push.NewBreakerPusher(push.LogSender{})
	notifications := services.NewNotificationService(members, pusher)

	cc, err := events.Subscribe(ctx, stream, events.NewEventHandler(notifications))
	if err != nil {
		slog.Error("Failed to subscribe", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	slog.Info("🛑 Shutting down notifier...")
	cc.Stop()
	slog.Info("👋 Notifier exited")
}
