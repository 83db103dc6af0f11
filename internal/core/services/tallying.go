package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pickme/voting/internal/core/ports"
	"github.com/pickme/voting/internal/core/tally"
)

// computeSessionTally recomputes a session's tally from the ballot ledger.
// The denormalized candidate counters are deliberately not consulted here;
// the ledger is the only source of truth for results.
func computeSessionTally(ctx context.Context, votes ports.VoteRepository, candidates ports.CandidateRepository, sessionID uuid.UUID) (tally.Tallied, error) {
	ballots, err := votes.ListBySession(ctx, sessionID)
	if err != nil {
		return tally.Tallied{}, fmt.Errorf("failed to list ballots: %w", err)
	}

	cands, err := candidates.ListBySession(ctx, sessionID)
	if err != nil {
		return tally.Tallied{}, fmt.Errorf("failed to list candidates: %w", err)
	}

	positions, err := candidates.ListPositions(ctx, sessionID)
	if err != nil {
		return tally.Tallied{}, fmt.Errorf("failed to list positions: %w", err)
	}

	return tally.Compute(ballots, cands, positions), nil
}
