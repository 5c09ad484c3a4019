package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/jupiterclapton/journal/config"
	"github.com/jupiterclapton/journal/internal/adapters/primary/rest"
	"github.com/jupiterclapton/journal/internal/adapters/secondary/metrics"
	"github.com/jupiterclapton/journal/internal/adapters/secondary/security"
	"github.com/jupiterclapton/journal/internal/core/filters"
	"github.com/jupiterclapton/journal/internal/core/services"
	"github.com/jupiterclapton/journal/pkg/logger"
	"github.com/jupiterclapton/journal/pkg/telemetry"
)

func main() {
	// 1. Config & Logger
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.Init(cfg.Env, cfg.LogLevel, cfg.ServiceName)
	slog.Info("🚀 Starting Journal Service", "env", cfg.Env, "store", cfg.Store, "friend_store", cfg.FriendStore)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Télémétrie (Tracing)
	tp, err := telemetry.InitTracer(ctx, cfg.ServiceName, cfg.Env, cfg.OtelEndpoint)
	if err != nil {
		slog.Error("Failed to init tracer", "error", err)
	} else {
		defer func() { _ = tp.Shutdown(context.Background()) }()
	}

	// 3. Infrastructure
	st, err := openStores(ctx, cfg)
	if err != nil {
		slog.Error("Unable to open storage", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	publisher, closePublisher := openPublisher(ctx, cfg)
	defer closePublisher()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	observer := metrics.NewListingMetrics(reg)

	text := filters.CaseInsensitive
	if cfg.KeywordCaseSensitive {
		text = filters.CaseSensitive
	}
	builder := filters.NewBuilder(text)

	// 4. Core
	memberService := services.NewMemberService(st.members, builder, observer)
	friendService := services.NewFriendService(st.members, st.requests, st.friends, st.acceptor, publisher, builder, observer)
	diaryService := services.NewDiaryService(services.DiaryDeps{
		Diaries:    st.diaries,
		Categories: st.categories,
		Members:    st.members,
		Friends:    st.friends,
		Likes:      st.likes,
		Builder:    builder,
		Observer:   observer,
	})
	interactionService := services.NewInteractionService(st.diaries, st.comments, st.likes, st.friends, publisher, builder, observer)

	// 5. Adapters primaires
	if cfg.JWTSecret == "" {
		slog.Warn("⚠️ JWT_SECRET not set, using the development secret")
	}
	tokens, err := security.NewJWTProvider(cfg.SigningSecret(), cfg.JWTIssuer)
	if err != nil {
		slog.Error("Invalid JWT configuration", "error", err)
		os.Exit(1)
	}

	handler := rest.NewHandler(memberService, friendService, diaryService, interactionService, rest.Paging{
		DefaultSize: cfg.DefaultPageSize,
		MaxSize:     cfg.MaxPageSize,
	})
	router := rest.NewRouter(handler, rest.RouterConfig{
		Logger:         log,
		Tokens:         tokens,
		Ready:          st.ready,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		AllowedOrigins: cfg.CORSOrigins,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Health check gRPC pour l'orchestrateur
	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		slog.Error("Failed to listen", "port", cfg.GRPCPort, "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("🌐 HTTP API listening", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		slog.Info("📡 gRPC health listening", "port", cfg.GRPCPort)
		return grpcServer.Serve(lis)
	})

	// Graceful Shutdown
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("🛑 Shutting down server...")
		healthServer.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		grpcServer.GracefulStop()
		return err
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
	slog.Info("👋 Server exited")
}
