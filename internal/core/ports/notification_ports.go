package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/pickme/voting/internal/core/domain"
)

type NotificationRepository interface {
	InsertBatch(ctx context.Context, notifications []*domain.Notification) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

type NotificationService interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

// EmailSender delivers email best-effort. Failures are logged by callers,
// never propagated into the voting flow.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}
