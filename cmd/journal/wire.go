package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/jupiterclapton/journal/config"
	"github.com/jupiterclapton/journal/internal/adapters/secondary/cache"
	"github.com/jupiterclapton/journal/internal/adapters/secondary/eventbroker"
	"github.com/jupiterclapton/journal/internal/adapters/secondary/graph"
	"github.com/jupiterclapton/journal/internal/adapters/secondary/repository"
	"github.com/jupiterclapton/journal/internal/core/domain"
	"github.com/jupiterclapton/journal/internal/core/ports"
)

// stores regroupe les adapters de stockage choisis par la config.
type stores struct {
	members    ports.MemberRepository
	diaries    ports.DiaryRepository
	categories ports.CategoryRepository
	requests   ports.FriendRequestRepository
	comments   ports.CommentRepository
	likes      ports.LikeRepository
	friends    ports.FriendStore
	acceptor   ports.FriendshipAcceptor
	ready      interface{ Ping(context.Context) error }
	closers    []func()
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.Store == "memory" {
		mem := repository.NewMemoryStore()
		if err := seedMembers(ctx, mem.Members()); err != nil {
			return nil, err
		}
		slog.Warn("⚠️ Using in-memory store, data is lost on restart")
		return &stores{
			members:    mem.Members(),
			diaries:    mem.Diaries(),
			categories: mem.Categories(),
			requests:   mem.Requests(),
			comments:   mem.Comments(),
			likes:      mem.Likes(),
			friends:    mem.Friends(),
			acceptor:   mem.Acceptor(),
			ready:      mem,
		}, nil
	}

	pool, err := connectPostgres(ctx, cfg.DBUrl)
	if err != nil {
		return nil, err
	}
	pg := repository.NewPostgres(pool)
	if err := pg.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	s := &stores{
		members:    pg.Members(),
		diaries:    pg.Diaries(),
		categories: pg.Categories(),
		requests:   pg.Requests(),
		comments:   pg.Comments(),
		likes:      pg.Likes(),
		friends:    pg.Friends(),
		acceptor:   pg.Acceptor(),
		ready:      pg,
		closers:    []func(){pool.Close},
	}

	if cfg.FriendStore == "neo4j" {
		store, closeFn, err := connectNeo4j(ctx, cfg)
		if err != nil {
			s.Close()
			return nil, err
		}
		// Arêtes et demandes vivent dans deux bases : pas de transaction commune.
		s.friends = store
		s.acceptor = nil
		s.closers = append(s.closers, closeFn)
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisotel.InstrumentTracing(rdb); err != nil {
			slog.Warn("redis tracing disabled", "error", err)
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			// Le cache est facultatif : on démarre quand même.
			slog.Warn("⚠️ Redis unreachable, friend cache will fall back", "error", err)
		} else {
			slog.Info("✅ Connected to Redis")
		}
		friendCache := cache.NewFriendCache(s.friends, rdb, cfg.FriendTTL)
		s.friends = friendCache
		if s.acceptor != nil {
			s.acceptor = friendCache.Acceptor(s.acceptor)
		}
		s.closers = append(s.closers, func() { _ = rdb.Close() })
	}

	return s, nil
}

// connectPostgres attend que la base réponde (docker-compose démarre tout en même temps).
func connectPostgres(ctx context.Context, url string) (*pgxpool.Pool, error) {
	dbConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}
	dbConfig.ConnConfig.Tracer = otelpgx.NewTracer()

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		if err := pool.Ping(ctx); err != nil {
			slog.Warn("waiting for postgres", "error", err)
			return struct{}{}, err
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxElapsedTime(30*time.Second))
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres unreachable: %w", err)
	}

	slog.Info("✅ Connected to PostgreSQL")
	return pool, nil
}

func connectNeo4j(ctx context.Context, cfg *config.Config) (*graph.Neo4jFriendStore, func(), error) {
	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPass, ""))
	if err != nil {
		return nil, nil, fmt.Errorf("neo4j driver: %w", err)
	}
	closeFn := func() { _ = driver.Close(context.Background()) }

	if err := driver.VerifyConnectivity(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("neo4j unreachable: %w", err)
	}

	store := graph.NewNeo4jFriendStore(driver)
	if err := store.EnsureSchema(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("neo4j schema: %w", err)
	}
	slog.Info("✅ Connected to Neo4j")
	return store, closeFn, nil
}

// openPublisher : JetStream si NATS répond, sinon les événements sont seulement loggés.
func openPublisher(ctx context.Context, cfg *config.Config) (ports.EventPublisher, func()) {
	if cfg.Store == "memory" {
		return eventbroker.LogPublisher{}, func() {}
	}

	nc, err := nats.Connect(cfg.NatsUrl, nats.Name(cfg.ServiceName), nats.MaxReconnects(-1))
	if err != nil {
		slog.Warn("⚠️ NATS unreachable, events will only be logged", "error", err)
		return eventbroker.LogPublisher{}, func() {}
	}
	js, err := jetstream.New(nc)
	if err == nil {
		_, err = eventbroker.EnsureStream(ctx, js)
	}
	if err != nil {
		slog.Warn("⚠️ JetStream unavailable, events will only be logged", "error", err)
		nc.Close()
		return eventbroker.LogPublisher{}, func() {}
	}

	slog.Info("✅ Connected to NATS JetStream", "stream", eventbroker.StreamName)
	return eventbroker.NewNatsPublisher(js), func() { _ = nc.Drain() }
}

// seedMembers : le service ne gère pas l'inscription, on fournit des comptes de démo.
func seedMembers(ctx context.Context, members ports.MemberRepository) error {
	now := time.Now().UTC()
	for i, nick := range []string{"alice", "bob", "carol", "dave"} {
		m := &domain.Member{ID: int64(i + 1), Nickname: nick, Email: nick + "@journal.local", CreatedAt: now}
		if err := members.Save(ctx, m); err != nil {
			return fmt.Errorf("seed member %s: %w", nick, err)
		}
	}
	return nil
}
