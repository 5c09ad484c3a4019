// devtoken signe un token d'accès pour un membre, pour appeler l'API en local.
//
//	go run ./cmd/devtoken -member 1 -ttl 1h
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jupiterclapton/journal/config"
	"github.com/jupiterclapton/journal/internal/adapters/secondary/security"
	"github.com/jupiterclapton/journal/pkg/logger"
)

func main() {
	memberID := flag.Int64("member", 1, "member id (token subject)")
	nickname := flag.String("nickname", "", "optional nickname claim")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.Env, cfg.LogLevel, "devtoken")

	if cfg.Env == "prod" {
		slog.Error("devtoken refuses to run with APP_ENV=prod")
		os.Exit(1)
	}

	tokens, err := security.NewJWTProvider(cfg.SigningSecret(), cfg.JWTIssuer)
	if err != nil {
		slog.Error("Invalid JWT configuration", "error", err)
		os.Exit(1)
	}
	token, err := tokens.Generate(*memberID, *nickname, *ttl)
	if err != nil {
		slog.Error("Failed to sign token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
