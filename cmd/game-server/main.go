package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"gipf-arena/internal/app/games"
	"gipf-arena/internal/auth"
	"gipf-arena/internal/config"
	"gipf-arena/internal/hub"
	"gipf-arena/internal/ledger"
	"gipf-arena/internal/logging"
	"gipf-arena/internal/store"
	httptransport "gipf-arena/internal/transport/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		logging.Init(config.LogConfig{Level: "info"})
		log.Fatal().Err(err).Msg("load config failed")
	}
	logging.Init(cfg.Log)

	repo, err := openRepository(cfg.Server)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer repo.Close()
	if err := repo.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}

	app := newApp(cfg.Server, repo)
	seedAccount(app.games, cfg.Server.SeedAccountName, cfg.Server.SeedAccountToken)
	httptransport.LogRoutes(app.router)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           app.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		app.hub.Close()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info().
		Str("addr", cfg.Server.HTTPAddr).
		Str("store", cfg.Server.StoreDriver).
		Bool("verify_signatures", cfg.Server.VerifySignatures).
		Msg("http listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

type app struct {
	games  *games.Service
	hub    *hub.Hub
	router *chi.Mux
}

func newApp(cfg config.ServerConfig, repo store.Repository) app {
	svc := games.NewService(repo, ledger.New(repo), auth.New(repo))
	h := hub.New(svc, hub.Config{
		PingInterval:     cfg.WSPingInterval,
		RatePerSec:       cfg.WSRatePerSec,
		RateBurst:        cfg.WSRateBurst,
		SendQueue:        cfg.WSSendQueue,
		VerifySignatures: cfg.VerifySignatures,
	})
	r := httptransport.NewRouter(httptransport.Deps{Repo: repo, Games: svc, Hub: h}, cfg)
	return app{games: svc, hub: h, router: r}
}

func openRepository(cfg config.ServerConfig) (store.Repository, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Warn().Msg("using in-memory store; games are lost on restart")
		return store.NewMemory(), nil
	}
	st, err := store.New(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// seedAccount creates the configured account once so games can be linked
// to it by name.
func seedAccount(svc *games.Service, name, token string) {
	if name == "" || token == "" {
		return
	}
	if err := svc.EnsureAccount(context.Background(), name, token); err != nil {
		log.Error().Err(err).Str("name", name).Msg("seed account error")
		return
	}
	log.Info().Str("name", name).Msg("seed account ready")
}
