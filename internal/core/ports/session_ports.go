package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pickme/voting/internal/core/domain"
)

type SessionRepository interface {
	Save(ctx context.Context, session *domain.VotingSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.VotingSession, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.VotingSession, error)
	ListByOrganizationAndStatus(ctx context.Context, orgID uuid.UUID, status domain.SessionStatus) ([]*domain.VotingSession, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.VotingSession, error)
	Update(ctx context.Context, session *domain.VotingSession) error
	Delete(ctx context.Context, id uuid.UUID) error

	// FindDue returns sessions in the given status whose boundary timestamp
	// (start for pending, end for active) is at or before now.
	FindDue(ctx context.Context, status domain.SessionStatus, now time.Time) ([]*domain.VotingSession, error)

	// TransitionStatus conditionally moves a session from one status to the
	// next. It reports false when the session was no longer in the expected
	// prior status, which is how concurrent sweeps avoid double-processing.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.SessionStatus) (bool, error)
}

type CreateSessionInput struct {
	OrganizationID uuid.UUID
	CreatedBy      uuid.UUID
	Title          string
	StartAt        time.Time
	EndAt          time.Time
}

type UpdateSessionInput struct {
	Title   *string
	StartAt *time.Time
	EndAt   *time.Time
}

type SessionService interface {
	Create(ctx context.Context, input CreateSessionInput) (*domain.VotingSession, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.VotingSession, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.VotingSession, error)
	ListActive(ctx context.Context, requesterID, orgID uuid.UUID) ([]*domain.VotingSession, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.VotingSession, error)
	Update(ctx context.Context, requesterID, orgID, sessionID uuid.UUID, input UpdateSessionInput) (*domain.VotingSession, error)
	Delete(ctx context.Context, requesterID, orgID, sessionID uuid.UUID) error

	// Start and Stop are the manual admin counterparts of the scheduler
	// sweep; they perform the same conditional transition and fan-out.
	Start(ctx context.Context, requesterID, orgID, sessionID uuid.UUID) (*domain.VotingSession, error)
	Stop(ctx context.Context, requesterID, orgID, sessionID uuid.UUID) (*domain.VotingSession, error)

	RemindNonVoters(ctx context.Context, sessionID uuid.UUID) (int, error)
}
