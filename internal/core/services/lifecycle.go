package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pickme/voting/internal/core/domain"
	"github.com/pickme/voting/internal/core/ports"
)

// lifecycle performs the activate and close transitions. The scheduler sweep
// and the manual admin start/stop endpoints share it so a session behaves the
// same no matter which path moved it.
type lifecycle struct {
	sessions   ports.SessionRepository
	candidates ports.CandidateRepository
	votes      ports.VoteRepository
	results    ports.ResultRepository
	fanout     *memberFanout
	logger     *slog.Logger
}

// activate moves a pending session to active and notifies members. It
// reports false when the session was no longer pending, meaning another
// caller already activated it.
func (l *lifecycle) activate(ctx context.Context, session *domain.VotingSession) (bool, error) {
	changed, err := l.sessions.TransitionStatus(ctx, session.ID, domain.SessionPending, domain.SessionActive)
	if err != nil {
		return false, fmt.Errorf("failed to activate session %s: %w", session.ID, err)
	}
	if !changed {
		return false, nil
	}

	session.Status = domain.SessionActive
	l.logger.Info("voting session started", "session_id", session.ID, "title", session.Title)
	l.fanout.sessionStarted(ctx, session)
	return true, nil
}

// close moves an active session to closed, generates and persists the final
// result from the ballot ledger and notifies members with the winners. The
// transition is the durable side effect; fan-out failures never roll it back.
func (l *lifecycle) close(ctx context.Context, session *domain.VotingSession) (bool, error) {
	changed, err := l.sessions.TransitionStatus(ctx, session.ID, domain.SessionActive, domain.SessionClosed)
	if err != nil {
		return false, fmt.Errorf("failed to close session %s: %w", session.ID, err)
	}
	if !changed {
		return false, nil
	}

	session.Status = domain.SessionClosed
	l.logger.Info("voting session closed", "session_id", session.ID, "title", session.Title)

	result, err := l.generateResult(ctx, session.ID)
	if err != nil {
		return true, err
	}

	l.fanout.sessionClosed(ctx, session, result.Winners)
	return true, nil
}

func (l *lifecycle) generateResult(ctx context.Context, sessionID uuid.UUID) (*domain.Result, error) {
	tallied, err := computeSessionTally(ctx, l.votes, l.candidates, sessionID)
	if err != nil {
		return nil, err
	}

	result := &domain.Result{
		ID:          uuid.New(),
		SessionID:   sessionID,
		Breakdown:   tallied.Breakdown,
		Winners:     tallied.Winners,
		GeneratedAt: time.Now().UTC(),
	}
	if err := l.results.Save(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to persist result for session %s: %w", sessionID, err)
	}
	return result, nil
}
