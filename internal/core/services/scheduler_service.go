package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pickme/voting/internal/core/domain"
	"github.com/pickme/voting/internal/core/ports"
)

// DefaultSessionBudget bounds how long the sweep spends on one session so a
// slow notification path cannot stall the rest of the pass.
const DefaultSessionBudget = 30 * time.Second

type schedulerService struct {
	sessions  ports.SessionRepository
	lifecycle *lifecycle
	budget    time.Duration
	logger    *slog.Logger

	// sweepMu is the single-slot guard against overlapping sweeps. A tick
	// that cannot take the lock is skipped, not queued.
	sweepMu sync.Mutex
}

func NewSchedulerService(
	sessionRepo ports.SessionRepository,
	candidateRepo ports.CandidateRepository,
	voteRepo ports.VoteRepository,
	resultRepo ports.ResultRepository,
	orgRepo ports.OrganizationRepository,
	notifRepo ports.NotificationRepository,
	email ports.EmailSender,
	sessionBudget time.Duration,
	logger *slog.Logger,
) ports.SchedulerService {
	if sessionBudget <= 0 {
		sessionBudget = DefaultSessionBudget
	}
	fanout := &memberFanout{orgs: orgRepo, notifications: notifRepo, email: email, logger: logger}
	return &schedulerService{
		sessions: sessionRepo,
		lifecycle: &lifecycle{
			sessions:   sessionRepo,
			candidates: candidateRepo,
			votes:      voteRepo,
			results:    resultRepo,
			fanout:     fanout,
			logger:     logger,
		},
		budget: sessionBudget,
		logger: logger,
	}
}

func (s *schedulerService) Sweep(ctx context.Context) error {
	if !s.sweepMu.TryLock() {
		s.logger.Info("sweep already running, skipping this tick")
		return nil
	}
	defer s.sweepMu.Unlock()

	now := time.Now().UTC()
	s.logger.Info("sweep started", "now", now)

	s.activateDue(ctx, now)
	s.closeDue(ctx, now)

	s.logger.Info("sweep finished")
	return nil
}

func (s *schedulerService) activateDue(ctx context.Context, now time.Time) {
	due, err := s.sessions.FindDue(ctx, domain.SessionPending, now)
	if err != nil {
		s.logger.Error("failed to find sessions due to start", "error", err)
		return
	}
	if len(due) > 0 {
		s.logger.Info("activating due sessions", "count", len(due))
	}

	for _, session := range due {
		sctx, cancel := context.WithTimeout(ctx, s.budget)
		changed, err := s.lifecycle.activate(sctx, session)
		cancel()
		// One bad session never aborts the rest of the sweep.
		if err != nil {
			s.logger.Error("failed to activate session", "session_id", session.ID, "error", err)
			continue
		}
		if !changed {
			s.logger.Info("session already activated elsewhere", "session_id", session.ID)
		}
	}
}

func (s *schedulerService) closeDue(ctx context.Context, now time.Time) {
	due, err := s.sessions.FindDue(ctx, domain.SessionActive, now)
	if err != nil {
		s.logger.Error("failed to find sessions due to close", "error", err)
		return
	}
	if len(due) > 0 {
		s.logger.Info("closing due sessions", "count", len(due))
	}

	for _, session := range due {
		sctx, cancel := context.WithTimeout(ctx, s.budget)
		changed, err := s.lifecycle.close(sctx, session)
		cancel()
		if err != nil {
			s.logger.Error("failed to close session", "session_id", session.ID, "error", err)
			continue
		}
		if !changed {
			s.logger.Info("session already closed elsewhere", "session_id", session.ID)
		}
	}
}
