package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"crowdfund/internal/adapter/repo"
	"crowdfund/internal/domain"
	"crowdfund/internal/engine"
	"crowdfund/internal/http/handlers"
	httpapi "crowdfund/internal/http/httpapi"
	"crowdfund/internal/infra"
	"crowdfund/internal/infra/geoip"
	"crowdfund/internal/middleware"
	"crowdfund/internal/payments"
	"crowdfund/internal/privacy"
	"crowdfund/internal/store/memory"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// Repositories: Postgres when DATABASE_URL is set, in-memory otherwise.
	var (
		campaigns domain.CampaignRepository
		donations domain.DonationRepository
		indices   domain.IndexRepository
	)
	if cfg.DatabaseURL != "" {
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()

		runner := infra.NewSQLRunner(dbpool, logger)
		if err := repo.Migrate(ctx, runner); err != nil {
			logger.Fatal().Err(err).Msg("failed to apply schema")
		}
		campaigns = repo.NewCampaignRepository(runner)
		donations = repo.NewDonationRepository(runner)
		indices = repo.NewIndexRepository(runner)
		logger.Info().Msg("using postgres store")
	} else {
		store := memory.New()
		campaigns, donations, indices = store, store, store
		logger.Info().Msg("using in-memory store")
	}

	sealer, err := privacy.NewSealer()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize receipt sealer")
	}
	treasury := payments.NewTreasury(logger)

	eng := engine.New(campaigns, donations, indices, treasury, sealer, logger)
	app := handlers.NewApp(eng, logger)

	var lookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip resolver unavailable")
	} else if resolver != nil {
		lookup = resolver.CountryCode
	}

	router := httpapi.NewRouter(app, cfg, lookup)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("API listening")
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
