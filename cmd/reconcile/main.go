// Command reconcile loads every collection once, writes any progress values that
// disagree with the roll-up, and exits. Meant for cron after bulk imports.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"projecttracker/internal/config"
	"projecttracker/internal/database"
	"projecttracker/internal/modules/tracker"
	"projecttracker/internal/pkg/logger"
	"projecttracker/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, _, stopDB, err := database.Open(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("connect database")
	}
	defer stopDB()

	ctrl := tracker.NewController(repository.NewStore(db), nil, log, tracker.WithoutSeedFallback())
	if err := ctrl.Start(ctx); err != nil {
		log.WithError(err).Fatal("load store")
	}
	defer ctrl.Close()

	// Start already ran one pass; a second one reports anything it could not write
	if err := ctrl.ReconcileProgress(ctx); err != nil {
		log.WithError(err).Fatal("reconcile progress")
	}
	log.Info("progress reconciled")
}
