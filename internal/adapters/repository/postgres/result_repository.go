package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pickme/voting/internal/core/domain"
	"github.com/pickme/voting/internal/core/ports"
)

type resultRepository struct {
	db *sql.DB
}

func NewResultRepository(db *sql.DB) ports.ResultRepository {
	return &resultRepository{
		db: db,
	}
}

// Save writes the closure-time result. Results are generated once per
// session; a concurrent second writer loses silently (first write wins).
func (r *resultRepository) Save(ctx context.Context, result *domain.Result) error {
	breakdown, err := json.Marshal(result.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to marshal result breakdown: %w", err)
	}
	winners, err := json.Marshal(result.Winners)
	if err != nil {
		return fmt.Errorf("failed to marshal winners: %w", err)
	}

	query := `
		INSERT INTO results (id, session_id, results, winners, generated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id) DO NOTHING
	`
	_, err = r.db.ExecContext(ctx, query, result.ID, result.SessionID, breakdown, winners, result.GeneratedAt)
	if err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}
	return nil
}

func (r *resultRepository) GetBySession(ctx context.Context, sessionID uuid.UUID) (*domain.Result, error) {
	query := `
		SELECT id, session_id, results, winners, generated_at
		FROM results
		WHERE session_id = $1
	`

	var result domain.Result
	var breakdown, winners []byte
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&result.ID, &result.SessionID, &breakdown, &winners, &result.GeneratedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	if err := json.Unmarshal(breakdown, &result.Breakdown); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result breakdown: %w", err)
	}
	if err := json.Unmarshal(winners, &result.Winners); err != nil {
		return nil, fmt.Errorf("failed to unmarshal winners: %w", err)
	}

	return &result, nil
}
