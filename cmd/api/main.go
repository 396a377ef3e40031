package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"projecttracker/internal/changefeed"
	"projecttracker/internal/config"
	"projecttracker/internal/database"
	"projecttracker/internal/modules/live"
	"projecttracker/internal/modules/tracker"
	jwtsvc "projecttracker/internal/pkg/jwt"
	"projecttracker/internal/pkg/logger"
	"projecttracker/internal/repository"
	"projecttracker/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, dsn, stopDB, err := database.Open(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("connect database")
	}
	defer stopDB()

	if cfg.ChangeFeed == config.ChangeFeedPostgres && !database.IsPostgres(dsn) {
		log.Fatal("CHANGEFEED=postgres needs a postgres DATABASE_URL")
	}

	// an unreachable store is not fatal: the tracker starts on seed data
	if err := repository.Migrate(db); err != nil {
		log.WithError(err).Error("migrate")
	}

	store := repository.NewStore(db)
	feed, closeFeed, err := buildFeed(ctx, cfg, db, dsn, store, log)
	if err != nil {
		log.WithError(err).Error("change feed unavailable, running without live updates")
		feed, closeFeed = nil, func() {}
	}
	defer closeFeed()

	ctrl := tracker.NewController(store, feed, log)
	if err := ctrl.Start(ctx); err != nil {
		log.WithError(err).Fatal("start tracker")
	}
	defer ctrl.Close()
	log.WithField("state", ctrl.Status().State).Info("tracker started")

	liveHub := live.NewHub(log, cfg.CORSOrigins)
	unwatch := liveHub.Watch(ctrl)
	defer liveHub.Close()
	defer unwatch()

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := server.NewRouter(server.Deps{
		Controller:  ctrl,
		Live:        liveHub,
		JWT:         jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL),
		AdminHash:   cfg.AdminPasswordHash,
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http server")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
}

// buildFeed picks the change-feed source: postgres LISTEN/NOTIFY when available,
// otherwise gorm hooks into an in-process hub, fanned out over redis when configured.
func buildFeed(ctx context.Context, cfg *config.Config, db *gorm.DB, dsn string, store *repository.Store, log *logrus.Logger) (changefeed.Source, func(), error) {
	usePostgres := database.IsPostgres(dsn) && cfg.ChangeFeed != config.ChangeFeedHooks

	if usePostgres {
		if err := changefeed.InstallTriggers(ctx, db); err != nil {
			return nil, nil, err
		}
		log.Info("change feed: postgres notifications")
		return changefeed.NewPGListener(dsn, log), func() {}, nil
	}

	hub := changefeed.NewHub()
	if err := changefeed.RegisterGormHooks(db, hub); err != nil {
		return nil, nil, err
	}
	store.OnCommit(hub.Touch)

	if cfg.RedisURL == "" {
		log.Info("change feed: gorm hooks")
		return hub, func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	bridge := changefeed.NewRedisBridge(client, cfg.InstanceID, log)
	fwd, err := bridge.Forward(ctx, hub)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	log.WithField("instance", cfg.InstanceID).Info("change feed: gorm hooks with redis fan-out")
	return changefeed.Merge(hub, bridge), func() {
		_ = fwd.Close()
		_ = client.Close()
	}, nil
}
