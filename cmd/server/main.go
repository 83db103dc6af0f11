package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"github.com/pickme/voting/internal/adapters/handler/http"
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

	sessionService := services.NewSessionService(sessionRepo, candidateRepo, voteRepo, resultRepo, orgRepo, notifRepo, email, logger)
	candidateService := services.NewCandidateService(sessionRepo, candidateRepo)
	voteService := services.NewVoteService(sessionRepo, candidateRepo, voteRepo)
	resultService := services.NewResultService(sessionRepo, candidateRepo, voteRepo, resultRepo, orgRepo, logger)
	analyticsService := services.NewAnalyticsService(sessionRepo, candidateRepo, voteRepo, orgRepo)
	notificationService := services.NewNotificationService(notifRepo)

	handler := http.NewHandler(
		cfg.JWT.Secret,
		http.NewSessionHandler(sessionService),
		http.NewCandidateHandler(candidateService),
		http.NewVoteHandler(voteService),
		http.NewResultHandler(resultService, analyticsService),
		http.NewNotificationHandler(notificationService),
	)

	server := &stdhttp.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	logger.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}
