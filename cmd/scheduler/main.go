package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/pickme/voting/internal/adapters/notifier"
	"github.com/pickme/voting/internal/adapters/repository/postgres"
	"github.com/pickme/voting/internal/config"
	"github.com/pickme/voting/internal/core/ports"
	"github.com/pickme/voting/internal/core/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := sql.Open("postgres", cfg.Postgres.ConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	sessionRepo := postgres.NewSessionRepository(db)
	candidateRepo := postgres.NewCandidateRepository(db)
	voteRepo := postgres.NewVoteRepository(db)
	resultRepo := postgres.NewResultRepository(db)
	orgRepo := postgres.NewOrganizationRepository(db)
	notifRepo := postgres.NewNotificationRepository(db)

	var email ports.EmailSender
	if cfg.SMTP.Enabled() {
		email = notifier.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From)
	} else {
		email = notifier.NewNoopSender(logger)
	}

	scheduler := services.NewSchedulerService(
		sessionRepo, candidateRepo, voteRepo, resultRepo, orgRepo, notifRepo,
		email, cfg.Scheduler.SessionBudget, logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("scheduler started", "interval", cfg.Scheduler.Interval.String())

	// First sweep runs immediately so a restart never waits a full interval
	// to pick up overdue sessions.
	run(ctx, scheduler, logger)

	ticker := time.NewTicker(cfg.Scheduler.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("scheduler stopping")
			return
		case <-ticker.C:
			run(ctx, scheduler, logger)
		}
	}
}

func run(ctx context.Context, scheduler ports.SchedulerService, logger *slog.Logger) {
	if err := scheduler.Sweep(ctx); err != nil {
		logger.Error("sweep failed", "error", err)
	}
}
