package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pickme/voting/internal/core/domain"
	"github.com/pickme/voting/internal/core/ports"
)

// memStore backs all the in-memory repositories used by the service tests.
// One mutex guards everything so the concurrency tests exercise the same
// atomicity the postgres adapters get from transactions and constraints.
type memStore struct {
	mu sync.Mutex

	sessions      map[uuid.UUID]*domain.VotingSession
	positions     []domain.Position
	candidates    []domain.Candidate
	ballots       []domain.Ballot
	results       map[uuid.UUID]*domain.Result
	notifications []*domain.Notification

	orgs    map[uuid.UUID]*domain.Organization
	members map[uuid.UUID][]*domain.User
	admins  map[uuid.UUID]map[uuid.UUID]bool
}

func newMemStore() *memStore {
	return &memStore{
		sessions: make(map[uuid.UUID]*domain.VotingSession),
		results:  make(map[uuid.UUID]*domain.Result),
		orgs:     make(map[uuid.UUID]*domain.Organization),
		members:  make(map[uuid.UUID][]*domain.User),
		admins:   make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (s *memStore) addOrg(org *domain.Organization, admin *domain.User, members ...*domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgs[org.ID] = org
	all := append([]*domain.User{admin}, members...)
	s.members[org.ID] = all
	s.admins[org.ID] = map[uuid.UUID]bool{admin.ID: true}
}

func (s *memStore) addSession(session *domain.VotingSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *session
	s.sessions[session.ID] = &cp
}

func (s *memStore) addPosition(p domain.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions = append(s.positions, p)
}

func (s *memStore) addCandidate(c domain.Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates = append(s.candidates, c)
}

func (s *memStore) sessionStatus(id uuid.UUID) domain.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id].Status
}

func (s *memStore) candidateVoteCount(id uuid.UUID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.candidates {
		if c.ID == id {
			return c.VoteCount
		}
	}
	return -1
}

func (s *memStore) notificationsFor(userID uuid.UUID) []*domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

type memSessionRepo struct{ store *memStore }

func (r *memSessionRepo) Save(_ context.Context, session *domain.VotingSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *session
	r.store.sessions[session.ID] = &cp
	return nil
}

func (r *memSessionRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.VotingSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	session, ok := r.store.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *session
	return &cp, nil
}

func (r *memSessionRepo) ListByOrganization(_ context.Context, orgID uuid.UUID) ([]*domain.VotingSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*domain.VotingSession
	for _, s := range r.store.sessions {
		if s.OrganizationID == orgID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memSessionRepo) ListByOrganizationAndStatus(_ context.Context, orgID uuid.UUID, status domain.SessionStatus) ([]*domain.VotingSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*domain.VotingSession
	for _, s := range r.store.sessions {
		if s.OrganizationID == orgID && s.Status == status {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memSessionRepo) ListForUser(_ context.Context, userID uuid.UUID) ([]*domain.VotingSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*domain.VotingSession
	for orgID, members := range r.store.members {
		for _, m := range members {
			if m.ID != userID {
				continue
			}
			for _, s := range r.store.sessions {
				if s.OrganizationID == orgID {
					cp := *s
					out = append(out, &cp)
				}
			}
		}
	}
	return out, nil
}

func (r *memSessionRepo) Update(_ context.Context, session *domain.VotingSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.sessions[session.ID]; !ok {
		return domain.ErrSessionNotFound
	}
	cp := *session
	r.store.sessions[session.ID] = &cp
	return nil
}

func (r *memSessionRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(r.store.sessions, id)
	return nil
}

func (r *memSessionRepo) FindDue(_ context.Context, status domain.SessionStatus, now time.Time) ([]*domain.VotingSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*domain.VotingSession
	for _, s := range r.store.sessions {
		if s.Status != status {
			continue
		}
		boundary := s.StartAt
		if status == domain.SessionActive {
			boundary = s.EndAt
		}
		if !boundary.After(now) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memSessionRepo) TransitionStatus(_ context.Context, id uuid.UUID, from, to domain.SessionStatus) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	session, ok := r.store.sessions[id]
	if !ok || session.Status != from {
		return false, nil
	}
	session.Status = to
	session.UpdatedAt = time.Now().UTC()
	return true, nil
}

type memCandidateRepo struct{ store *memStore }

func (r *memCandidateRepo) SavePosition(_ context.Context, position *domain.Position) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.positions = append(r.store.positions, *position)
	return nil
}

func (r *memCandidateRepo) ListPositions(_ context.Context, sessionID uuid.UUID) ([]domain.Position, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.Position
	for _, p := range r.store.positions {
		if p.SessionID == sessionID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memCandidateRepo) Save(_ context.Context, candidate *domain.Candidate) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.candidates = append(r.store.candidates, *candidate)
	return nil
}

func (r *memCandidateRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Candidate, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, c := range r.store.candidates {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, domain.ErrCandidateNotFound
}

func (r *memCandidateRepo) ListBySession(_ context.Context, sessionID uuid.UUID) ([]domain.Candidate, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.Candidate
	for _, c := range r.store.candidates {
		if c.SessionID == sessionID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCandidateRepo) Update(_ context.Context, candidate *domain.Candidate) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i, c := range r.store.candidates {
		if c.ID == candidate.ID {
			r.store.candidates[i] = *candidate
			return nil
		}
	}
	return domain.ErrCandidateNotFound
}

func (r *memCandidateRepo) RebuildVoteCounts(_ context.Context, sessionID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	counts := make(map[uuid.UUID]int64)
	for _, b := range r.store.ballots {
		if b.SessionID == sessionID {
			counts[b.CandidateID]++
		}
	}
	for i, c := range r.store.candidates {
		if c.SessionID == sessionID {
			r.store.candidates[i].VoteCount = counts[c.ID]
		}
	}
	return nil
}

type memVoteRepo struct{ store *memStore }

func (r *memVoteRepo) CastBallot(_ context.Context, ballot *domain.Ballot) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, b := range r.store.ballots {
		if b.VoterID == ballot.VoterID && b.SessionID == ballot.SessionID && b.PositionID == ballot.PositionID {
			return domain.ErrDuplicateVote
		}
	}
	r.store.ballots = append(r.store.ballots, *ballot)
	for i, c := range r.store.candidates {
		if c.ID == ballot.CandidateID {
			r.store.candidates[i].VoteCount++
		}
	}
	return nil
}

func (r *memVoteRepo) HasVoted(_ context.Context, voterID, sessionID, positionID uuid.UUID) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, b := range r.store.ballots {
		if b.VoterID == voterID && b.SessionID == sessionID && b.PositionID == positionID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memVoteRepo) ListBySession(_ context.Context, sessionID uuid.UUID) ([]domain.Ballot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.Ballot
	for _, b := range r.store.ballots {
		if b.SessionID == sessionID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memVoteRepo) ListByVoter(_ context.Context, sessionID, voterID uuid.UUID) ([]domain.Ballot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.Ballot
	for _, b := range r.store.ballots {
		if b.SessionID == sessionID && b.VoterID == voterID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memVoteRepo) CountBySession(_ context.Context, sessionID uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n int64
	for _, b := range r.store.ballots {
		if b.SessionID == sessionID {
			n++
		}
	}
	return n, nil
}

func (r *memVoteRepo) ListNonVoters(_ context.Context, sessionID uuid.UUID) ([]*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	session, ok := r.store.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	voted := make(map[uuid.UUID]bool)
	for _, b := range r.store.ballots {
		if b.SessionID == sessionID {
			voted[b.VoterID] = true
		}
	}
	var out []*domain.User
	for _, m := range r.store.members[session.OrganizationID] {
		if !voted[m.ID] {
			out = append(out, m)
		}
	}
	return out, nil
}

type memResultRepo struct{ store *memStore }

func (r *memResultRepo) Save(_ context.Context, result *domain.Result) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.results[result.SessionID]; exists {
		return nil
	}
	cp := *result
	r.store.results[result.SessionID] = &cp
	return nil
}

func (r *memResultRepo) GetBySession(_ context.Context, sessionID uuid.UUID) (*domain.Result, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	result, ok := r.store.results[sessionID]
	if !ok {
		return nil, domain.ErrResultNotFound
	}
	cp := *result
	return &cp, nil
}

type memOrgRepo struct{ store *memStore }

func (r *memOrgRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Organization, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	org, ok := r.store.orgs[id]
	if !ok {
		return nil, domain.ErrOrganizationNotFound
	}
	return org, nil
}

func (r *memOrgRepo) Members(_ context.Context, orgID uuid.UUID) ([]*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.members[orgID], nil
}

func (r *memOrgRepo) IsAdmin(_ context.Context, userID, orgID uuid.UUID) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.admins[orgID][userID], nil
}

func (r *memOrgRepo) OrganizationIDsForUser(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []uuid.UUID
	for orgID, members := range r.store.members {
		for _, m := range members {
			if m.ID == userID {
				out = append(out, orgID)
			}
		}
	}
	return out, nil
}

type memNotificationRepo struct{ store *memStore }

func (r *memNotificationRepo) InsertBatch(_ context.Context, notifications []*domain.Notification) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.notifications = append(r.store.notifications, notifications...)
	return nil
}

func (r *memNotificationRepo) ListForUser(_ context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.Notification
	for _, n := range r.store.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *memNotificationRepo) MarkRead(_ context.Context, id, userID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, n := range r.store.notifications {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return nil
}

func (r *memNotificationRepo) MarkAllRead(_ context.Context, userID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, n := range r.store.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

// recordingEmailSender captures outbound mail for assertions.
type recordingEmailSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (s *recordingEmailSender) Send(_ context.Context, to, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, to)
	return nil
}

func (s *recordingEmailSender) recipients() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

var (
	_ ports.SessionRepository      = (*memSessionRepo)(nil)
	_ ports.CandidateRepository    = (*memCandidateRepo)(nil)
	_ ports.VoteRepository         = (*memVoteRepo)(nil)
	_ ports.ResultRepository       = (*memResultRepo)(nil)
	_ ports.OrganizationRepository = (*memOrgRepo)(nil)
	_ ports.NotificationRepository = (*memNotificationRepo)(nil)
	_ ports.EmailSender            = (*recordingEmailSender)(nil)
)
