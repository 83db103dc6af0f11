package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pickme/voting/internal/core/domain"
	"github.com/pickme/voting/internal/core/ports"
)

type candidateRepository struct {
	db *sql.DB
}

func NewCandidateRepository(db *sql.DB) ports.CandidateRepository {
	return &candidateRepository{
		db: db,
	}
}

func (r *candidateRepository) SavePosition(ctx context.Context, position *domain.Position) error {
	query := `
		INSERT INTO positions (id, session_id, name)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.ExecContext(ctx, query, position.ID, position.SessionID, position.Name)
	if err != nil {
		return fmt.Errorf("failed to insert position: %w", err)
	}
	return nil
}

func (r *candidateRepository) ListPositions(ctx context.Context, sessionID uuid.UUID) ([]domain.Position, error) {
	query := `
		SELECT id, session_id, name, created_at
		FROM positions
		WHERE session_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	defer rows.Close()

	var positions []domain.Position
	for rows.Next() {
		var p domain.Position
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}
	return positions, nil
}

func (r *candidateRepository) Save(ctx context.Context, candidate *domain.Candidate) error {
	query := `
		INSERT INTO candidates (id, session_id, position_id, name, photo_url)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		candidate.ID, candidate.SessionID, candidate.PositionID, candidate.Name, candidate.PhotoURL,
	)
	if err != nil {
		return fmt.Errorf("failed to insert candidate: %w", err)
	}
	return nil
}

func (r *candidateRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Candidate, error) {
	query := `
		SELECT id, session_id, position_id, name, photo_url, vote_count, created_at
		FROM candidates
		WHERE id = $1
	`
	var c domain.Candidate
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.SessionID, &c.PositionID, &c.Name, &c.PhotoURL, &c.VoteCount, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCandidateNotFound
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return &c, nil
}

func (r *candidateRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.Candidate, error) {
	// Creation order is the tie-break order for winner selection, so the
	// ordering here is part of the contract, not cosmetics.
	query := `
		SELECT id, session_id, position_id, name, photo_url, vote_count, created_at
		FROM candidates
		WHERE session_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []domain.Candidate
	for rows.Next() {
		var c domain.Candidate
		if err := rows.Scan(&c.ID, &c.SessionID, &c.PositionID, &c.Name, &c.PhotoURL, &c.VoteCount, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidates: %w", err)
	}
	return candidates, nil
}

func (r *candidateRepository) Update(ctx context.Context, candidate *domain.Candidate) error {
	query := `
		UPDATE candidates
		SET name = $2, position_id = $3, photo_url = $4
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, candidate.ID, candidate.Name, candidate.PositionID, candidate.PhotoURL)
	if err != nil {
		return fmt.Errorf("failed to update candidate: %w", err)
	}
	return nil
}

// RebuildVoteCounts replays the ballot ledger into the denormalized counters.
// Counters are a read optimization; this is the repair path when they drift.
func (r *candidateRepository) RebuildVoteCounts(ctx context.Context, sessionID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `UPDATE candidates SET vote_count = 0 WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to reset vote counts: %w", err)
	}

	query := `
		UPDATE candidates c
		SET vote_count = counted.n
		FROM (
			SELECT candidate_id, COUNT(*) AS n
			FROM ballots
			WHERE session_id = $1
			GROUP BY candidate_id
		) counted
		WHERE c.id = counted.candidate_id
	`
	_, err = tx.ExecContext(ctx, query, sessionID)
	if err != nil {
		return fmt.Errorf("failed to rebuild vote counts for session %s: %w", sessionID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
