package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/pickme/voting/internal/core/domain"
)

// OrganizationRepository is the narrow read surface the voting core needs
// from the identity/membership collaborator.
type OrganizationRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error)
	Members(ctx context.Context, orgID uuid.UUID) ([]*domain.User, error)
	IsAdmin(ctx context.Context, userID, orgID uuid.UUID) (bool, error)
	OrganizationIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type SchedulerService interface {
	// Sweep runs one lifecycle pass: due pending sessions go active, due
	// active sessions close with results and fan-out. A sweep that finds
	// another sweep still running returns immediately.
	Sweep(ctx context.Context) error
}
