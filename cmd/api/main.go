package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	server "nobounce_admin/internal/adapters/http_server"
	"nobounce_admin/internal/adapters/objstore"
	"nobounce_admin/internal/adapters/observability"
	redisad "nobounce_admin/internal/adapters/redis"
	"nobounce_admin/internal/app"
	"nobounce_admin/internal/auth"
	"nobounce_admin/internal/domain"
	"nobounce_admin/internal/shared"
	mysqlrepo "nobounce_admin/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db
	db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()
	log.Info().Msg("database connection ok")

	// auth
	creds, err := auth.LoadFile(cfg.AuthFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.AuthFile).Msg("auth file")
	}
	log.Info().Int("admins", len(creds.Credentials.Usernames)).Msg("credentials loaded")

	// object storage
	store, err := objstore.New(cfg.StorageURL, cfg.StorageKey, cfg.StorageRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage client")
	}

	// cache is optional
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, read cache disabled")
			_ = rc.Close()
		} else {
			defer rc.Close()
			cache = rc
		}
	}

	// deps
	repo := mysqlrepo.New(db)
	images := app.NewImageService(store, cfg.StorageBucket)
	courts := app.NewCourtService(repo, images, cache)
	q := app.NewQueryService(repo, cache, cfg.CacheTTL)

	// http
	srv := server.New(server.DefaultTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Q:              q,
		Courts:         courts,
		Creds:          creds,
		Sessions:       auth.SessionsFromFile(creds),
		MaxUploadBytes: cfg.MaxUploadBytes,
		SecureCookie:   cfg.AppEnv != "dev",
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpSrv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("http server failed")
		os.Exit(1)
	}
}
