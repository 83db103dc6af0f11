package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pickme/voting/internal/core/domain"
	"github.com/pickme/voting/internal/core/ports"
)

type sessionService struct {
	sessionRepo ports.SessionRepository
	voteRepo    ports.VoteRepository
	orgRepo     ports.OrganizationRepository
	email       ports.EmailSender
	notifRepo   ports.NotificationRepository
	lifecycle   *lifecycle
	logger      *slog.Logger
}

func NewSessionService(
	sessionRepo ports.SessionRepository,
	candidateRepo ports.CandidateRepository,
	voteRepo ports.VoteRepository,
	resultRepo ports.ResultRepository,
	orgRepo ports.OrganizationRepository,
	notifRepo ports.NotificationRepository,
	email ports.EmailSender,
	logger *slog.Logger,
) ports.SessionService {
	fanout := &memberFanout{orgs: orgRepo, notifications: notifRepo, email: email, logger: logger}
	return &sessionService{
		sessionRepo: sessionRepo,
		voteRepo:    voteRepo,
		orgRepo:     orgRepo,
		email:       email,
		notifRepo:   notifRepo,
		lifecycle: &lifecycle{
			sessions:   sessionRepo,
			candidates: candidateRepo,
			votes:      voteRepo,
			results:    resultRepo,
			fanout:     fanout,
			logger:     logger,
		},
		logger: logger,
	}
}

func (s *sessionService) Create(ctx context.Context, input ports.CreateSessionInput) (*domain.VotingSession, error) {
	if input.Title == "" {
		return nil, errors.New("title is required")
	}
	if !input.EndAt.After(input.StartAt) {
		return nil, errors.New("end date must be after start date")
	}

	if _, err := s.orgRepo.GetByID(ctx, input.OrganizationID); err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, input.CreatedBy, input.OrganizationID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &domain.VotingSession{
		ID:             uuid.New(),
		OrganizationID: input.OrganizationID,
		CreatedBy:      input.CreatedBy,
		Title:          input.Title,
		StartAt:        input.StartAt,
		EndAt:          input.EndAt,
		Status:         domain.SessionPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) Get(ctx context.Context, id uuid.UUID) (*domain.VotingSession, error) {
	return s.sessionRepo.GetByID(ctx, id)
}

func (s *sessionService) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.VotingSession, error) {
	if _, err := s.orgRepo.GetByID(ctx, orgID); err != nil {
		return nil, err
	}
	return s.sessionRepo.ListByOrganization(ctx, orgID)
}

func (s *sessionService) ListActive(ctx context.Context, requesterID, orgID uuid.UUID) ([]*domain.VotingSession, error) {
	if _, err := s.orgRepo.GetByID(ctx, orgID); err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, requesterID, orgID); err != nil {
		return nil, err
	}
	return s.sessionRepo.ListByOrganizationAndStatus(ctx, orgID, domain.SessionActive)
}

func (s *sessionService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.VotingSession, error) {
	return s.sessionRepo.ListForUser(ctx, userID)
}

func (s *sessionService) Update(ctx context.Context, requesterID, orgID, sessionID uuid.UUID, input ports.UpdateSessionInput) (*domain.VotingSession, error) {
	session, err := s.ownedSession(ctx, orgID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, requesterID, orgID); err != nil {
		return nil, err
	}
	// Metadata is admin-mutable pre-activation only; the status field belongs
	// to the lifecycle and is never written here.
	if session.Status != domain.SessionPending {
		return nil, domain.ErrSessionActive
	}

	if input.Title != nil {
		session.Title = *input.Title
	}
	if input.StartAt != nil {
		session.StartAt = *input.StartAt
	}
	if input.EndAt != nil {
		session.EndAt = *input.EndAt
	}
	if !session.EndAt.After(session.StartAt) {
		return nil, errors.New("end date must be after start date")
	}
	session.UpdatedAt = time.Now().UTC()

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) Delete(ctx context.Context, requesterID, orgID, sessionID uuid.UUID) error {
	session, err := s.ownedSession(ctx, orgID, sessionID)
	if err != nil {
		return err
	}
	if err := s.requireAdmin(ctx, requesterID, orgID); err != nil {
		return err
	}
	if session.Status == domain.SessionActive {
		return domain.ErrSessionActive
	}
	return s.sessionRepo.Delete(ctx, sessionID)
}

func (s *sessionService) Start(ctx context.Context, requesterID, orgID, sessionID uuid.UUID) (*domain.VotingSession, error) {
	session, err := s.ownedSession(ctx, orgID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, requesterID, orgID); err != nil {
		return nil, err
	}
	if session.Status != domain.SessionPending {
		return nil, domain.ErrSessionNotPending
	}

	changed, err := s.lifecycle.activate(ctx, session)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, domain.ErrSessionNotPending
	}
	return session, nil
}

func (s *sessionService) Stop(ctx context.Context, requesterID, orgID, sessionID uuid.UUID) (*domain.VotingSession, error) {
	session, err := s.ownedSession(ctx, orgID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, requesterID, orgID); err != nil {
		return nil, err
	}
	if session.Status != domain.SessionActive {
		return nil, domain.ErrSessionNotActive
	}

	changed, err := s.lifecycle.close(ctx, session)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, domain.ErrSessionNotActive
	}
	return session, nil
}

func (s *sessionService) RemindNonVoters(ctx context.Context, sessionID uuid.UUID) (int, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if session.Status != domain.SessionActive {
		return 0, domain.ErrSessionNotActive
	}

	nonVoters, err := s.voteRepo.ListNonVoters(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if len(nonVoters) == 0 {
		return 0, nil
	}

	message := fmt.Sprintf("Reminder: you haven't voted in %q yet. Please cast your vote before it ends.", session.Title)
	now := time.Now().UTC()
	notifications := make([]*domain.Notification, 0, len(nonVoters))
	for _, u := range nonVoters {
		notifications = append(notifications, &domain.Notification{
			ID:        uuid.New(),
			UserID:    u.ID,
			Message:   message,
			Type:      domain.NotificationGeneral,
			CreatedAt: now,
		})
	}
	if err := s.notifRepo.InsertBatch(ctx, notifications); err != nil {
		return 0, err
	}

	subject := "Reminder to vote: " + session.Title
	for _, u := range nonVoters {
		if u.Email == "" {
			continue
		}
		if err := s.email.Send(ctx, u.Email, subject, message); err != nil {
			s.logger.Warn("failed to send reminder email",
				"session_id", sessionID, "user_id", u.ID, "error", err)
		}
	}

	return len(nonVoters), nil
}

func (s *sessionService) ownedSession(ctx context.Context, orgID, sessionID uuid.UUID) (*domain.VotingSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.OrganizationID != orgID {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *sessionService) requireAdmin(ctx context.Context, userID, orgID uuid.UUID) error {
	isAdmin, err := s.orgRepo.IsAdmin(ctx, userID, orgID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return domain.ErrNotAdmin
	}
	return nil
}
