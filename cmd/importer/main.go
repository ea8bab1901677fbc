package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"nobounce_admin/internal/adapters/objstore"
	"nobounce_admin/internal/adapters/observability"
	redisad "nobounce_admin/internal/adapters/redis"
	"nobounce_admin/internal/app"
	"nobounce_admin/internal/domain"
	"nobounce_admin/internal/shared"
	mysqlrepo "nobounce_admin/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	manifestPath := flag.String("manifest", "courts.yaml", "YAML manifest of courts to import")
	admin := flag.String("admin", "importer", "recorded as admin_created_by")
	workers := flag.Int("workers", cfg.ImportWorkers, "courts imported concurrently")
	flag.Parse()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	entries, err := loadManifest(*manifestPath)
	if err != nil {
		log.Fatal().Err(err).Str("manifest", *manifestPath).Msg("manifest")
	}
	log.Info().
		Str("manifest", *manifestPath).
		Int("courts", len(entries)).
		Int("workers", *workers).
		Msg("importer starting")

	db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	store, err := objstore.New(cfg.StorageURL, cfg.StorageKey, cfg.StorageRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage client")
	}

	// imported courts must show up in the API's cached list
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		cache = rc
	}

	repo := mysqlrepo.New(db)
	courts := app.NewCourtService(repo, app.NewImageService(store, cfg.StorageBucket), cache)
	report := app.NewImporter(courts, app.LoadLocalFile, *workers, *admin).Run(ctx, entries)

	for _, o := range report.Outcomes {
		for _, w := range o.Warnings {
			log.Warn().Int("line", o.Line).Int64("court_id", o.CourtID).Msg(w)
		}
		if o.Err != nil {
			log.Error().Int("line", o.Line).Int64("court_id", o.CourtID).Err(o.Err).Msg("import failed")
		}
	}
	log.Info().Int("courts", len(report.Outcomes)).Int("failed", report.Failed()).Msg("import completed")
	if report.Failed() > 0 {
		os.Exit(1)
	}
}
