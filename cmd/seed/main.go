package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"projecttracker/internal/config"
	"projecttracker/internal/database"
	"projecttracker/internal/pkg/logger"
	"projecttracker/internal/repository"
	"projecttracker/internal/seed"
)

func main() {
	reset := flag.Bool("reset", false, "delete every row before pushing the dataset")
	flag.Parse()

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

	log.Info("running migrations")
	if err := repository.Migrate(db); err != nil {
		log.WithError(err).Fatal("migrate")
	}

	store := repository.NewStore(db)
	if *reset {
		log.Info("cleaning old data")
		if err := store.Truncate(ctx); err != nil {
			log.WithError(err).Fatal("truncate")
		}
	}

	data := seed.Dataset()
	if err := seed.Push(ctx, store, data); err != nil {
		log.WithError(err).Fatal("push seed data")
	}

	log.WithFields(logrus.Fields{
		"clients":         len(data.Clients),
		"suppliers":       len(data.Suppliers),
		"projects":        len(data.Projects),
		"purchase_orders": len(data.PurchaseOrders),
		"external_links":  len(data.ExternalLinks),
		"shipments":       len(data.Shipments),
	}).Info("seed completed")
}
