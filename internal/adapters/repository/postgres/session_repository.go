package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pickme/voting/internal/core/domain"
	"github.com/pickme/voting/internal/core/ports"
)

type sessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) ports.SessionRepository {
	return &sessionRepository{
		db: db,
	}
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.VotingSession) error {
	query := `
		INSERT INTO voting_sessions (id, organization_id, created_by, title, start_at, end_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		session.ID, session.OrganizationID, session.CreatedBy,
		session.Title, session.StartAt, session.EndAt, session.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert voting session: %w", err)
	}
	return nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.VotingSession, error) {
	query := `
		SELECT id, organization_id, created_by, title, start_at, end_at, status, created_at, updated_at
		FROM voting_sessions
		WHERE id = $1
	`

	var session domain.VotingSession
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID, &session.OrganizationID, &session.CreatedBy, &session.Title,
		&session.StartAt, &session.EndAt, &session.Status, &session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get voting session: %w", err)
	}

	return &session, nil
}

func (r *sessionRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.VotingSession, error) {
	query := `
		SELECT id, organization_id, created_by, title, start_at, end_at, status, created_at, updated_at
		FROM voting_sessions
		WHERE organization_id = $1
		ORDER BY start_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list voting sessions: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

func (r *sessionRepository) ListByOrganizationAndStatus(ctx context.Context, orgID uuid.UUID, status domain.SessionStatus) ([]*domain.VotingSession, error) {
	query := `
		SELECT id, organization_id, created_by, title, start_at, end_at, status, created_at, updated_at
		FROM voting_sessions
		WHERE organization_id = $1 AND status = $2
		ORDER BY end_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, orgID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list voting sessions by status: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

func (r *sessionRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.VotingSession, error) {
	query := `
		SELECT s.id, s.organization_id, s.created_by, s.title, s.start_at, s.end_at, s.status, s.created_at, s.updated_at
		FROM voting_sessions s
		JOIN organization_members m ON m.organization_id = s.organization_id
		WHERE m.user_id = $1
		ORDER BY s.start_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list voting sessions for user: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

func (r *sessionRepository) Update(ctx context.Context, session *domain.VotingSession) error {
	query := `
		UPDATE voting_sessions
		SET title = $2, start_at = $3, end_at = $4, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, session.ID, session.Title, session.StartAt, session.EndAt)
	if err != nil {
		return fmt.Errorf("failed to update voting session: %w", err)
	}
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM voting_sessions WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete voting session: %w", err)
	}
	return nil
}

func (r *sessionRepository) FindDue(ctx context.Context, status domain.SessionStatus, now time.Time) ([]*domain.VotingSession, error) {
	boundary := "start_at"
	if status == domain.SessionActive {
		boundary = "end_at"
	}

	query := fmt.Sprintf(`
		SELECT id, organization_id, created_by, title, start_at, end_at, status, created_at, updated_at
		FROM voting_sessions
		WHERE status = $1 AND %s <= $2
		ORDER BY %s
	`, boundary, boundary)

	rows, err := r.db.QueryContext(ctx, query, status, now)
	if err != nil {
		return nil, fmt.Errorf("failed to find due voting sessions: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

// TransitionStatus is a conditional update filtered on the prior status, so
// two concurrent sweeps can never both claim the same transition.
func (r *sessionRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.SessionStatus) (bool, error) {
	query := `
		UPDATE voting_sessions
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to transition voting session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func scanSessions(rows *sql.Rows) ([]*domain.VotingSession, error) {
	var sessions []*domain.VotingSession
	for rows.Next() {
		var session domain.VotingSession
		if err := rows.Scan(
			&session.ID, &session.OrganizationID, &session.CreatedBy, &session.Title,
			&session.StartAt, &session.EndAt, &session.Status, &session.CreatedAt, &session.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan voting session: %w", err)
		}
		sessions = append(sessions, &session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating voting sessions: %w", err)
	}
	return sessions, nil
}
