package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pickme/voting/internal/core/domain"
	"github.com/pickme/voting/internal/core/ports"
)

// memberFanout enqueues in-app notifications and best-effort emails for every
// member of a session's organization. It is shared by the scheduler sweep and
// the manual start/stop operations so both paths send identical messages.
// Delivery failures are logged and swallowed: the status transition is the
// durable side effect, not the notification.
type memberFanout struct {
	orgs          ports.OrganizationRepository
	notifications ports.NotificationRepository
	email         ports.EmailSender
	logger        *slog.Logger
}

func (f *memberFanout) sessionStarted(ctx context.Context, session *domain.VotingSession) {
	message := fmt.Sprintf("The voting session %q has started. You can now cast your votes!", session.Title)
	subject := "Voting started: " + session.Title
	f.fanout(ctx, session, domain.NotificationVotingStart, message, subject, nil)
}

func (f *memberFanout) sessionClosed(ctx context.Context, session *domain.VotingSession, winners map[string]*domain.Winner) {
	message := fmt.Sprintf("The voting session %q has ended. You can now check the results.", session.Title)
	subject := "Results ready: " + session.Title
	var metadata map[string]any
	if len(winners) > 0 {
		metadata = map[string]any{"winners": winners}
	}
	f.fanout(ctx, session, domain.NotificationVotingResult, message, subject, metadata)
}

func (f *memberFanout) fanout(ctx context.Context, session *domain.VotingSession, kind domain.NotificationType, message, subject string, metadata map[string]any) {
	members, err := f.orgs.Members(ctx, session.OrganizationID)
	if err != nil {
		f.logger.Error("failed to enumerate organization members",
			"session_id", session.ID, "organization_id", session.OrganizationID, "error", err)
		return
	}
	if len(members) == 0 {
		f.logger.Warn("no members to notify", "session_id", session.ID)
		return
	}

	now := time.Now().UTC()
	notifications := make([]*domain.Notification, 0, len(members))
	for _, m := range members {
		notifications = append(notifications, &domain.Notification{
			ID:        uuid.New(),
			UserID:    m.ID,
			Message:   message,
			Type:      kind,
			Metadata:  metadata,
			CreatedAt: now,
		})
	}

	if err := f.notifications.InsertBatch(ctx, notifications); err != nil {
		f.logger.Error("failed to insert notifications",
			"session_id", session.ID, "count", len(notifications), "error", err)
	}

	for _, m := range members {
		if m.Email == "" {
			continue
		}
		if err := f.email.Send(ctx, m.Email, subject, message); err != nil {
			f.logger.Warn("failed to send email",
				"session_id", session.ID, "user_id", m.ID, "error", err)
		}
	}
}
