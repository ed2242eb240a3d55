package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/wirenest/roomcast/internal/adapters/http"
	"github.com/wirenest/roomcast/internal/adapters/ws"
	"github.com/wirenest/roomcast/internal/app"
	"github.com/wirenest/roomcast/internal/auth"
	"github.com/wirenest/roomcast/internal/config"
	"github.com/wirenest/roomcast/internal/core"
	"github.com/wirenest/roomcast/internal/directory"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	dir, cleanup, err := buildDirectory(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize directory")
	}
	defer cleanup()

	registry := core.NewRegistry()
	handshake := &app.Handshake{
		Verifier:          auth.NewJWTVerifier(cfg.Auth.JWTSecret),
		Directory:         dir,
		Registry:          registry,
		Timeout:           time.Duration(cfg.Auth.HandshakeTimeout) * time.Second,
		RequireMembership: cfg.Auth.RequireMembership,
	}
	ctl := &ws.Controller{
		Handshake:  handshake,
		Router:     app.NewRouter(registry),
		Cfg:        &cfg.WebSocket,
		TokenParam: cfg.Auth.TokenQueryParam,
		Limiter: ws.NewRateLimiter(cfg.WebSocket.MessageRate,
			time.Duration(cfg.WebSocket.RateWindow)*time.Second),
	}

	r := router.SetupRouter(ctx, cfg, ctl, registry)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("roomcast server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

// buildDirectory selects the project-directory backend from config.
func buildDirectory(ctx context.Context, cfg *config.Config) (directory.Directory, func(), error) {
	switch strings.ToLower(cfg.Directory.Backend) {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Directory.Redis.Address,
			Password: cfg.Directory.Redis.Password,
			DB:       cfg.Directory.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		defer pingCancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			return nil, nil, fmt.Errorf("redis connection failed: %w", err)
		}
		log.Info().Str("addr", cfg.Directory.Redis.Address).Msg("using redis directory")
		return directory.NewRedis(client), func() { _ = client.Close() }, nil
	default:
		// Dev mode: every syntactically valid room exists would be too
		// permissive; the memory directory starts empty and is meant to
		// be seeded by tests or a fixture loader.
		log.Warn().Msg("using in-memory directory; rooms must be seeded")
		return directory.NewMemory(), func() {}, nil
	}
}
