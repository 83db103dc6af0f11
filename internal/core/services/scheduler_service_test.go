package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pickme/voting/internal/core/domain"
	"github.com/pickme/voting/internal/core/ports"
)

func TestSweepActivatesDueSessions(t *testing.T) {
	f := newFixture()
	now := time.Now().UTC()
	session, _, _ := f.seedSession(domain.SessionPending, now.Add(-time.Minute), now.Add(time.Hour))

	require.NoError(t, f.scheduler.Sweep(context.Background()))

	assert.Equal(t, domain.SessionActive, f.store.sessionStatus(session.ID))

	// Every organization member gets an in-app notification and an email.
	for _, u := range []*domain.User{f.admin, f.voter, f.voter2} {
		notifs := f.store.notificationsFor(u.ID)
		require.Len(t, notifs, 1)
		assert.Equal(t, domain.NotificationVotingStart, notifs[0].Type)
	}
	assert.Len(t, f.email.recipients(), 3)
}

func TestSweepClosesDueSessionsAndPersistsResult(t *testing.T) {
	f := newFixture()
	now := time.Now().UTC()
	session, _, candidates := f.seedSession(domain.SessionActive, now.Add(-2*time.Hour), now.Add(-time.Minute))

	for i := 0; i < 3; i++ {
		require.NoError(t, f.voteRepo.CastBallot(context.Background(), &domain.Ballot{
			ID: uuid.New(), VoterID: uuid.New(), SessionID: session.ID,
			CandidateID: candidates[0].ID, PositionID: candidates[0].PositionID,
			CastAt: now.Add(-time.Hour),
		}))
	}

	require.NoError(t, f.scheduler.Sweep(context.Background()))

	assert.Equal(t, domain.SessionClosed, f.store.sessionStatus(session.ID))

	result, err := f.resultRepo.GetBySession(context.Background(), session.ID)
	require.NoError(t, err)
	winner := result.Winners["President"]
	require.NotNil(t, winner)
	assert.Equal(t, candidates[0].ID, winner.CandidateID)
	assert.Equal(t, int64(3), winner.Votes)

	notifs := f.store.notificationsFor(f.voter.ID)
	require.Len(t, notifs, 1)
	assert.Equal(t, domain.NotificationVotingResult, notifs[0].Type)
	assert.Contains(t, notifs[0].Metadata, "winners")
}

func TestSweepIgnoresSessionsNotYetDue(t *testing.T) {
	f := newFixture()
	now := time.Now().UTC()
	pending, _, _ := f.seedSession(domain.SessionPending, now.Add(time.Hour), now.Add(2*time.Hour))
	active, _, _ := f.seedSession(domain.SessionActive, now.Add(-time.Hour), now.Add(time.Hour))

	require.NoError(t, f.scheduler.Sweep(context.Background()))

	assert.Equal(t, domain.SessionPending, f.store.sessionStatus(pending.ID))
	assert.Equal(t, domain.SessionActive, f.store.sessionStatus(active.ID))
	assert.Empty(t, f.store.notificationsFor(f.voter.ID))
}

func TestSweepCatchesUpOverdueSession(t *testing.T) {
	f := newFixture()
	now := time.Now().UTC()
	session, _, _ := f.seedSession(domain.SessionPending, now.Add(-2*time.Hour), now.Add(-time.Minute))

	// A session whose whole window has already passed moves through both
	// transitions in one pass: activated, then closed.
	require.NoError(t, f.scheduler.Sweep(context.Background()))
	assert.Equal(t, domain.SessionClosed, f.store.sessionStatus(session.ID))

	notifs := f.store.notificationsFor(f.voter.ID)
	require.Len(t, notifs, 2)
	assert.Equal(t, domain.NotificationVotingStart, notifs[0].Type)
	assert.Equal(t, domain.NotificationVotingResult, notifs[1].Type)
}

func TestConcurrentSweepsTransitionOnce(t *testing.T) {
	f := newFixture()
	now := time.Now().UTC()
	session, _, _ := f.seedSession(domain.SessionPending, now.Add(-time.Minute), now.Add(time.Hour))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.scheduler.Sweep(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, domain.SessionActive, f.store.sessionStatus(session.ID))

	// Racing sweeps either skipped on the lock or found the transition
	// already done; fan-out happens exactly once either way.
	assert.Len(t, f.store.notificationsFor(f.voter.ID), 1)
}

// failingResultRepo rejects writes for one session.
type failingResultRepo struct {
	ports.ResultRepository
	failFor uuid.UUID
}

func (r *failingResultRepo) Save(ctx context.Context, result *domain.Result) error {
	if result.SessionID == r.failFor {
		return errors.New("storage unavailable")
	}
	return r.ResultRepository.Save(ctx, result)
}

func TestSweepIsolatesPerSessionFailures(t *testing.T) {
	f := newFixture()
	now := time.Now().UTC()
	broken, _, _ := f.seedSession(domain.SessionActive, now.Add(-2*time.Hour), now.Add(-time.Minute))
	healthy, _, _ := f.seedSession(domain.SessionActive, now.Add(-2*time.Hour), now.Add(-time.Minute))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scheduler := NewSchedulerService(
		f.sessionRepo, f.candidateRepo, f.voteRepo,
		&failingResultRepo{ResultRepository: f.resultRepo, failFor: broken.ID},
		f.orgRepo, f.notifRepo, f.email, time.Second, logger,
	)

	require.NoError(t, scheduler.Sweep(context.Background()))

	// The failure is contained: both sessions still close, and the healthy
	// one gets its result persisted.
	assert.Equal(t, domain.SessionClosed, f.store.sessionStatus(broken.ID))
	assert.Equal(t, domain.SessionClosed, f.store.sessionStatus(healthy.ID))

	_, err := f.resultRepo.GetBySession(context.Background(), healthy.ID)
	assert.NoError(t, err)
	_, err = f.resultRepo.GetBySession(context.Background(), broken.ID)
	assert.ErrorIs(t, err, domain.ErrResultNotFound)
}
