package services

import (
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pickme/voting/internal/core/domain"
	"github.com/pickme/voting/internal/core/ports"
)

// fixture wires every service over one shared in-memory store, plus a
// pre-seeded organization with an admin and two plain members.
type fixture struct {
	store *memStore

	sessionRepo   *memSessionRepo
	candidateRepo *memCandidateRepo
	voteRepo      *memVoteRepo
	resultRepo    *memResultRepo
	orgRepo       *memOrgRepo
	notifRepo     *memNotificationRepo
	email         *recordingEmailSender

	sessions      ports.SessionService
	candidates    ports.CandidateService
	votes         ports.VoteService
	results       ports.ResultService
	analytics     ports.AnalyticsService
	scheduler     ports.SchedulerService
	notifications ports.NotificationService

	org    *domain.Organization
	admin  *domain.User
	voter  *domain.User
	voter2 *domain.User
}

func newFixture() *fixture {
	store := newMemStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := &fixture{
		store:         store,
		sessionRepo:   &memSessionRepo{store: store},
		candidateRepo: &memCandidateRepo{store: store},
		voteRepo:      &memVoteRepo{store: store},
		resultRepo:    &memResultRepo{store: store},
		orgRepo:       &memOrgRepo{store: store},
		notifRepo:     &memNotificationRepo{store: store},
		email:         &recordingEmailSender{},
	}

	f.sessions = NewSessionService(f.sessionRepo, f.candidateRepo, f.voteRepo, f.resultRepo, f.orgRepo, f.notifRepo, f.email, logger)
	f.candidates = NewCandidateService(f.sessionRepo, f.candidateRepo)
	f.votes = NewVoteService(f.sessionRepo, f.candidateRepo, f.voteRepo)
	f.results = NewResultService(f.sessionRepo, f.candidateRepo, f.voteRepo, f.resultRepo, f.orgRepo, logger)
	f.analytics = NewAnalyticsService(f.sessionRepo, f.candidateRepo, f.voteRepo, f.orgRepo)
	f.scheduler = NewSchedulerService(f.sessionRepo, f.candidateRepo, f.voteRepo, f.resultRepo, f.orgRepo, f.notifRepo, f.email, time.Second, logger)
	f.notifications = NewNotificationService(f.notifRepo)

	f.org = &domain.Organization{ID: uuid.New(), Name: "Chess Club"}
	f.admin = &domain.User{ID: uuid.New(), Email: "admin@example.com", Name: "Admin"}
	f.voter = &domain.User{ID: uuid.New(), Email: "voter1@example.com", Name: "Voter One"}
	f.voter2 = &domain.User{ID: uuid.New(), Email: "voter2@example.com", Name: "Voter Two"}
	store.addOrg(f.org, f.admin, f.voter, f.voter2)

	return f
}

// seedSession inserts a session in the given status together with one
// position and two candidates.
func (f *fixture) seedSession(status domain.SessionStatus, start, end time.Time) (*domain.VotingSession, domain.Position, []domain.Candidate) {
	now := time.Now().UTC()
	session := &domain.VotingSession{
		ID:             uuid.New(),
		OrganizationID: f.org.ID,
		CreatedBy:      f.admin.ID,
		Title:          "Board Election",
		StartAt:        start,
		EndAt:          end,
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.store.addSession(session)

	position := domain.Position{ID: uuid.New(), SessionID: session.ID, Name: "President", CreatedAt: now}
	f.store.addPosition(position)

	candidates := []domain.Candidate{
		{ID: uuid.New(), SessionID: session.ID, PositionID: position.ID, Name: "Alice", CreatedAt: now},
		{ID: uuid.New(), SessionID: session.ID, PositionID: position.ID, Name: "Bob", CreatedAt: now.Add(time.Second)},
	}
	for _, c := range candidates {
		f.store.addCandidate(c)
	}

	return session, position, candidates
}
