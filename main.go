// Cascata is a cascading-reel game server: a stateless round engine
// behind an HTTP gateway with player accounts, a wallet, responsible
// gaming limits, and full round recall.
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/mvoronov/cascata/internal/api"
	"github.com/mvoronov/cascata/internal/audit"
	"github.com/mvoronov/cascata/internal/auth"
	"github.com/mvoronov/cascata/internal/config"
	"github.com/mvoronov/cascata/internal/control"
	"github.com/mvoronov/cascata/internal/database"
	"github.com/mvoronov/cascata/internal/featurestate"
	"github.com/mvoronov/cascata/internal/game"
	"github.com/mvoronov/cascata/internal/limits"
	"github.com/mvoronov/cascata/internal/rng"
	"github.com/mvoronov/cascata/internal/rounds"
	"github.com/mvoronov/cascata/internal/wallet"
)

func main() {
	godotenv.Load()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	cfg := config.Load()

	db, err := database.New(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Randomness: a remote seed service when configured, always backed
	// by the local generator.
	local := rng.NewLocal()
	var source rng.Source = local
	if cfg.Seeds.BaseURL != "" {
		remote := rng.NewRemote(&rng.RemoteConfig{
			BaseURL:    cfg.Seeds.BaseURL,
			APIKey:     cfg.Seeds.APIKey,
			APISecret:  cfg.Seeds.APISecret,
			SiteCode:   cfg.Seeds.SiteCode,
			RetryCount: cfg.Seeds.RetryCount,
		})
		source = rng.NewProvider(remote, local, log)
	}

	games, err := config.LoadGames(cfg.Game.GamesDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Game.GamesDir).Msg("failed to load game configs")
	}
	log.Info().Int("games", len(games)).Msg("game configs loaded")

	auditSvc := audit.New(db.DB, log)
	authSvc := auth.New(db.DB, &cfg.Auth, auditSvc)
	walletSvc := wallet.New(db.DB, auditSvc, cfg.Game.DefaultCurrency)
	limitsSvc := limits.New(db.DB, auditSvc, cfg.Game.DefaultCurrency)
	controlSvc := control.New(db.DB, auditSvc)
	engine := game.New(games, source, log)
	features := featurestate.New(db.DB)
	roundStore := rounds.New(db.DB)

	if err := controlSvc.LoadState(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to load control state")
	}

	handler := api.New(authSvc, walletSvc, limitsSvc, controlSvc, engine,
		features, roundStore, auditSvc, local, log)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler.SetupRouter(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Str("port", cfg.Server.Port).Msg("server starting")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed")
	}
}
