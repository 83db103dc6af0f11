package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationVotingStart  NotificationType = "voting_start"
	NotificationVotingResult NotificationType = "voting_result"
	NotificationGeneral      NotificationType = "general"
)

type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	IsRead    bool             `json:"is_read"`
	Metadata  map[string]any   `json:"metadata,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
