package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pickme/voting/internal/core/domain"
	"github.com/pickme/voting/internal/core/ports"
)

type candidateService struct {
	sessionRepo   ports.SessionRepository
	candidateRepo ports.CandidateRepository
}

func NewCandidateService(sessionRepo ports.SessionRepository, candidateRepo ports.CandidateRepository) ports.CandidateService {
	return &candidateService{
		sessionRepo:   sessionRepo,
		candidateRepo: candidateRepo,
	}
}

func (s *candidateService) AddPosition(ctx context.Context, input ports.AddPositionInput) (*domain.Position, error) {
	if input.Name == "" {
		return nil, errors.New("position name is required")
	}

	session, err := s.sessionRepo.GetByID(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionPending {
		return nil, domain.ErrSessionActive
	}

	position := &domain.Position{
		ID:        uuid.New(),
		SessionID: input.SessionID,
		Name:      input.Name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.candidateRepo.SavePosition(ctx, position); err != nil {
		return nil, err
	}
	return position, nil
}

func (s *candidateService) AddCandidate(ctx context.Context, input ports.AddCandidateInput) (*domain.Candidate, error) {
	if input.Name == "" {
		return nil, errors.New("candidate name is required")
	}

	session, err := s.sessionRepo.GetByID(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	// Active and closed sessions never gain candidates.
	if session.Status != domain.SessionPending {
		return nil, domain.ErrSessionActive
	}

	positions, err := s.candidateRepo.ListPositions(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	found := false
	for _, p := range positions {
		if p.ID == input.PositionID {
			found = true
			break
		}
	}
	if !found {
		return nil, domain.ErrPositionNotFound
	}

	candidate := &domain.Candidate{
		ID:         uuid.New(),
		SessionID:  input.SessionID,
		PositionID: input.PositionID,
		Name:       input.Name,
		PhotoURL:   input.PhotoURL,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.candidateRepo.Save(ctx, candidate); err != nil {
		return nil, err
	}
	return candidate, nil
}

func (s *candidateService) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.Candidate, error) {
	if _, err := s.sessionRepo.GetByID(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.candidateRepo.ListBySession(ctx, sessionID)
}

func (s *candidateService) UpdateCandidate(ctx context.Context, candidateID uuid.UUID, input ports.UpdateCandidateInput) (*domain.Candidate, error) {
	candidate, err := s.candidateRepo.GetByID(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.GetByID(ctx, candidate.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionPending {
		return nil, domain.ErrSessionActive
	}

	if input.Name != nil {
		candidate.Name = *input.Name
	}
	if input.PhotoURL != nil {
		candidate.PhotoURL = *input.PhotoURL
	}
	if input.PositionID != nil {
		positions, err := s.candidateRepo.ListPositions(ctx, candidate.SessionID)
		if err != nil {
			return nil, err
		}
		found := false
		for _, p := range positions {
			if p.ID == *input.PositionID {
				found = true
				break
			}
		}
		if !found {
			return nil, domain.ErrPositionNotFound
		}
		candidate.PositionID = *input.PositionID
	}

	if err := s.candidateRepo.Update(ctx, candidate); err != nil {
		return nil, err
	}
	return candidate, nil
}
