package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/pickme/voting/internal/core/domain"
)

type ResultRepository interface {
	// Save persists the closure-time result. A result already existing for
	// the session is not an error; the first write wins.
	Save(ctx context.Context, result *domain.Result) error
	GetBySession(ctx context.Context, sessionID uuid.UUID) (*domain.Result, error)
}

type ResultService interface {
	ResultForSession(ctx context.Context, sessionID uuid.UUID) (*domain.Result, error)
	AllResults(ctx context.Context, userID uuid.UUID, orgID *uuid.UUID) ([]domain.ResultSummary, error)

	// VerifyResult recomputes the tally from the ballot ledger and compares
	// it with the persisted result. Divergence is domain.ErrResultMismatch.
	VerifyResult(ctx context.Context, sessionID uuid.UUID) error
}

type AnalyticsService interface {
	Analyze(ctx context.Context, sessionID uuid.UUID) (*domain.SessionAnalytics, error)
}
