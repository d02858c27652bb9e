package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"perpstracker/config"
	"perpstracker/internal/perps/collector"
	"perpstracker/internal/perps/history"
	"perpstracker/internal/perps/scheduler"
	"perpstracker/logger"
	"perpstracker/pkg/coingecko"
	"perpstracker/pkg/retry"
	"perpstracker/pkg/storage/postgres"

	"go.uber.org/zap"
)

func main() {
	// viper config
	cfg := config.Load()

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	apiKey, err := config.ResolveAPIKey(cfg.CoinGecko, cfg.Log.Environment)
	if err != nil {
		log.Fatal("missing api key", zap.Error(err))
	}

	client := coingecko.NewClient(
		cfg.CoinGecko.BaseURL,
		apiKey,
		cfg.CoinGecko.Timeout,
		retry.NewPolicy(cfg.CoinGecko.Retry.MaxAttempts, cfg.CoinGecko.Retry.Wait),
	)
	writer := history.NewWriter(cfg.Data.Root, cfg.Data.MaxFileSizeBytes())

	var db *postgres.Client
	if cfg.Postgres.Enabled {
		db, err = postgres.InitializeAndMigrate(cfg.Postgres, cfg.Log.Environment, true)
		if err != nil {
			log.Fatal("failed to connect to DB", zap.Error(err))
		}
		defer db.Close()
	}

	tracker := collector.New(cfg, client, writer, db, log)

	// Run once and exit unless a cron spec is configured.
	if cfg.Schedule.Cron == "" {
		if err := tracker.Run(context.Background()); err != nil {
			log.Fatal("run failed", zap.Error(err))
		}
		return
	}

	sched := scheduler.New(tracker, log)
	if err := sched.Start(cfg.Schedule.Cron); err != nil {
		log.Fatal("scheduler failed", zap.Error(err))
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	sched.Stop()
	log.Info("shutdown complete")
}
