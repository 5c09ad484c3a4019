package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Pinger est implémenté par les stockages (Postgres, mémoire).
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	Logger         *slog.Logger
	Tokens         TokenValidator
	Ready          Pinger
	Metrics        http.Handler // nil => pas de /metrics
	AllowedOrigins []string
}

func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/ready", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if cfg.Ready != nil {
			if err := cfg.Ready.Ping(ctx); err != nil {
				writeProblem(w, http.StatusServiceUnavailable, "UNAVAILABLE", "storage unreachable")
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Auth(cfg.Tokens))
		r.Use(chimiddleware.Timeout(15 * time.Second))

		r.Get("/members", h.SearchMembers)
		r.Get("/members/{memberID}/friends", h.ListMemberFriends)
		r.Get("/members/{memberID}/diaries", h.ListMemberDiaries)

		r.Route("/friends", func(r chi.Router) {
			r.Get("/", h.ListMyFriends)
			r.Delete("/{memberID}", h.Unfriend)
			r.Get("/requests", h.ListRequests)
			r.Post("/requests", h.SendRequest)
			r.Post("/requests/{requestID}/accept", h.AcceptRequest)
			r.Delete("/requests/{requestID}", h.RejectRequest)
		})

		r.Route("/diaries", func(r chi.Router) {
			r.Get("/", h.ListOwnDiaries)
			r.Post("/", h.CreateDiary)
			r.Get("/{diaryID}", h.GetDiary)
			r.Delete("/{diaryID}", h.DeleteDiary)
			r.Put("/{diaryID}/bookmark", h.SetBookmark)
			r.Get("/{diaryID}/comments", h.ListComments)
			r.Post("/{diaryID}/comments", h.AddComment)
			r.Put("/{diaryID}/likes", h.Like)
			r.Delete("/{diaryID}/likes", h.Unlike)
		})

		r.Get("/feed", h.ListFeed)
		r.Get("/explore", h.ListPublic)

		r.Get("/categories", h.ListCategories)
		r.Post("/categories", h.CreateCategory)
	})

	return otelhttp.NewHandler(r, "journal-http",
		otelhttp.WithFilter(func(req *http.Request) bool {
			return req.URL.Path != "/health" && req.URL.Path != "/metrics"
		}),
	)
}
