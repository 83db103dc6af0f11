package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pickme/voting/internal/core/domain"
	"github.com/pickme/voting/internal/core/ports"
)

// uniqueViolation is the postgres error code behind the
// (voter, session, position) ballot constraint.
const uniqueViolation = "23505"

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

// CastBallot runs the ballot insert, the candidate counter increment and the
// recorded-voters upsert as one transaction. The counter update is a relative
// increment, never a read-modify-write across round trips.
func (r *voteRepository) CastBallot(ctx context.Context, ballot *domain.Ballot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryBallot := `
		INSERT INTO ballots (id, voter_id, session_id, candidate_id, position_id, cast_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.ExecContext(ctx, queryBallot,
		ballot.ID, ballot.VoterID, ballot.SessionID, ballot.CandidateID, ballot.PositionID, ballot.CastAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateVote
		}
		return fmt.Errorf("failed to insert ballot: %w", err)
	}

	queryCount := `UPDATE candidates SET vote_count = vote_count + 1 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, queryCount, ballot.CandidateID); err != nil {
		return fmt.Errorf("failed to increment vote count: %w", err)
	}

	queryVoter := `
		INSERT INTO session_voters (session_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (session_id, user_id) DO NOTHING
	`
	if _, err := tx.ExecContext(ctx, queryVoter, ballot.SessionID, ballot.VoterID); err != nil {
		return fmt.Errorf("failed to record voter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *voteRepository) HasVoted(ctx context.Context, voterID, sessionID, positionID uuid.UUID) (bool, error) {
	query := `SELECT 1 FROM ballots WHERE voter_id = $1 AND session_id = $2 AND position_id = $3 LIMIT 1`
	var exists int
	err := r.db.QueryRowContext(ctx, query, voterID, sessionID, positionID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check existing ballot: %w", err)
	}
	return true, nil
}

func (r *voteRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.Ballot, error) {
	query := `
		SELECT id, voter_id, session_id, candidate_id, position_id, cast_at
		FROM ballots
		WHERE session_id = $1
		ORDER BY cast_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ballots: %w", err)
	}
	defer rows.Close()

	return scanBallots(rows)
}

func (r *voteRepository) ListByVoter(ctx context.Context, sessionID, voterID uuid.UUID) ([]domain.Ballot, error) {
	query := `
		SELECT id, voter_id, session_id, candidate_id, position_id, cast_at
		FROM ballots
		WHERE session_id = $1 AND voter_id = $2
		ORDER BY cast_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID, voterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list voter ballots: %w", err)
	}
	defer rows.Close()

	return scanBallots(rows)
}

func (r *voteRepository) CountBySession(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM ballots WHERE session_id = $1`
	var count int64
	if err := r.db.QueryRowContext(ctx, query, sessionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count ballots: %w", err)
	}
	return count, nil
}

func (r *voteRepository) ListNonVoters(ctx context.Context, sessionID uuid.UUID) ([]*domain.User, error) {
	query := `
		SELECT u.id, u.email, u.name, u.created_at
		FROM users u
		JOIN organization_members m ON m.user_id = u.id
		JOIN voting_sessions s ON s.organization_id = m.organization_id
		WHERE s.id = $1
		AND NOT EXISTS (
			SELECT 1 FROM ballots b WHERE b.session_id = s.id AND b.voter_id = u.id
		)
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list non-voters: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating non-voters: %w", err)
	}
	return users, nil
}

func scanBallots(rows *sql.Rows) ([]domain.Ballot, error) {
	var ballots []domain.Ballot
	for rows.Next() {
		var b domain.Ballot
		if err := rows.Scan(&b.ID, &b.VoterID, &b.SessionID, &b.CandidateID, &b.PositionID, &b.CastAt); err != nil {
			return nil, fmt.Errorf("failed to scan ballot: %w", err)
		}
		ballots = append(ballots, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ballots: %w", err)
	}
	return ballots, nil
}
