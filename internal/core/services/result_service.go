package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pickme/voting/internal/core/domain"
	"github.com/pickme/voting/internal/core/ports"
)

type resultService struct {
	sessionRepo   ports.SessionRepository
	candidateRepo ports.CandidateRepository
	voteRepo      ports.VoteRepository
	resultRepo    ports.ResultRepository
	orgRepo       ports.OrganizationRepository
	logger        *slog.Logger
}

func NewResultService(
	sessionRepo ports.SessionRepository,
	candidateRepo ports.CandidateRepository,
	voteRepo ports.VoteRepository,
	resultRepo ports.ResultRepository,
	orgRepo ports.OrganizationRepository,
	logger *slog.Logger,
) ports.ResultService {
	return &resultService{
		sessionRepo:   sessionRepo,
		candidateRepo: candidateRepo,
		voteRepo:      voteRepo,
		resultRepo:    resultRepo,
		orgRepo:       orgRepo,
		logger:        logger,
	}
}

func (s *resultService) ResultForSession(ctx context.Context, sessionID uuid.UUID) (*domain.Result, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionClosed {
		return nil, domain.ErrResultsNotReady
	}

	result, err := s.resultRepo.GetBySession(ctx, sessionID)
	if errors.Is(err, domain.ErrResultNotFound) {
		// Sessions closed before a result was written (or repaired data) get
		// one recomputed from the ledger and persisted on first read.
		return s.regenerate(ctx, sessionID)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *resultService) AllResults(ctx context.Context, userID uuid.UUID, orgID *uuid.UUID) ([]domain.ResultSummary, error) {
	var orgIDs []uuid.UUID
	if orgID != nil {
		orgIDs = []uuid.UUID{*orgID}
	} else {
		ids, err := s.orgRepo.OrganizationIDsForUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		orgIDs = ids
	}

	var sessions []*domain.VotingSession
	for _, id := range orgIDs {
		closed, err := s.sessionRepo.ListByOrganizationAndStatus(ctx, id, domain.SessionClosed)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, closed...)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].EndAt.After(sessions[j].EndAt)
	})

	summaries := make([]domain.ResultSummary, 0, len(sessions))
	for _, session := range sessions {
		result, err := s.ResultForSession(ctx, session.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load result for session %s: %w", session.ID, err)
		}

		winners := make(map[string]string, len(result.Winners))
		for position, winner := range result.Winners {
			if winner != nil {
				winners[position] = winner.Name
			}
		}
		summaries = append(summaries, domain.ResultSummary{
			SessionID: session.ID,
			Title:     session.Title,
			StartAt:   session.StartAt,
			EndAt:     session.EndAt,
			Winners:   winners,
		})
	}

	return summaries, nil
}

// VerifyResult recomputes the tally from the ballot ledger and compares it
// byte-for-byte with the persisted snapshot. The ledger is append-only, so
// any divergence means data corruption.
func (s *resultService) VerifyResult(ctx context.Context, sessionID uuid.UUID) error {
	persisted, err := s.resultRepo.GetBySession(ctx, sessionID)
	if err != nil {
		return err
	}

	tallied, err := computeSessionTally(ctx, s.voteRepo, s.candidateRepo, sessionID)
	if err != nil {
		return err
	}

	got, err := json.Marshal(struct {
		Breakdown map[string][]domain.CandidateStanding `json:"results"`
		Winners   map[string]*domain.Winner             `json:"winners"`
	}{tallied.Breakdown, tallied.Winners})
	if err != nil {
		return err
	}
	want, err := json.Marshal(struct {
		Breakdown map[string][]domain.CandidateStanding `json:"results"`
		Winners   map[string]*domain.Winner             `json:"winners"`
	}{persisted.Breakdown, persisted.Winners})
	if err != nil {
		return err
	}

	if !bytes.Equal(got, want) {
		s.logger.Error("persisted result diverges from ballot ledger", "session_id", sessionID)
		return domain.ErrResultMismatch
	}
	return nil
}

func (s *resultService) regenerate(ctx context.Context, sessionID uuid.UUID) (*domain.Result, error) {
	tallied, err := computeSessionTally(ctx, s.voteRepo, s.candidateRepo, sessionID)
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
	if err := s.resultRepo.Save(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}
