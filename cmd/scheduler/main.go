package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/segyhp/loan-engine/internal/config"
	"github.com/segyhp/loan-engine/internal/db"
	"github.com/segyhp/loan-engine/internal/logger"
	"github.com/segyhp/loan-engine/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	slogger := logger.New(cfg.Server.Env)
	slogger.Info("starting maintenance scheduler")

	conn, err := db.Connect(cfg)
	if err != nil {
		slogger.Error("connecting to database", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	store := repository.NewStore(conn)

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		slogger.Error("loading scheduler timezone", "error", err)
		os.Exit(1)
	}

	c := cron.New(cron.WithLocation(loc))
	setupCronJobs(c, cfg, store, slogger)

	c.Start()
	slogger.Info("scheduler started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slogger.Info("shutting down scheduler")
	<-c.Stop().Done()
	slogger.Info("scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, store repository.Store, slogger *slog.Logger) {
	// A worker that dies mid-operation leaves an IN_PROGRESS lock row behind,
	// blocking its key indefinitely. Sweep rows older than the configured
	// threshold into FAILED.
	if _, err := c.AddFunc("*/10 * * * *", func() {
		sweepStaleLocks(store, cfg.GetLockStaleAfter(), slogger)
	}); err != nil {
		slogger.Error("scheduling stale lock sweep", "error", err)
	}

	// Daily overdue report at midnight.
	if _, err := c.AddFunc("0 0 * * *", func() {
		reportOverdueInstallments(store, slogger)
	}); err != nil {
		slogger.Error("scheduling overdue report", "error", err)
	}
}

func sweepStaleLocks(store repository.Store, staleAfter time.Duration, slogger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().UTC().Add(-staleAfter)
	repos := store.Repos()

	appLocks, err := repos.AppLocks.FailStale(ctx, cutoff)
	if err != nil {
		slogger.Error("sweeping stale application locks", "error", err)
	}

	payLocks, err := repos.PayLocks.FailStale(ctx, cutoff)
	if err != nil {
		slogger.Error("sweeping stale payment locks", "error", err)
	}

	if appLocks > 0 || payLocks > 0 {
		slogger.Warn("marked stale locks as failed",
			"application_locks", appLocks,
			"payment_locks", payLocks,
			"cutoff", cutoff)
	}
}

func reportOverdueInstallments(store repository.Store, slogger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := store.Repos().Installments.CountOverdueUnpaid(ctx, time.Now().UTC())
	if err != nil {
		slogger.Error("counting overdue installments", "error", err)
		return
	}

	slogger.Info("overdue installment report", "unpaid_overdue", count)
}
