package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationInfo    = "info"
	NotificationSuccess = "success"
	NotificationWarning = "warning"
	NotificationError   = "error"
)

type Notification struct {
	ID          uuid.UUID `json:"id" db:"id"`
	RecipientID uuid.UUID `json:"recipientId" db:"recipient_id"`
	Message     string    `json:"message" db:"message"`
	Type        string    `json:"type" db:"type"`
	Link        string    `json:"link,omitempty" db:"link"`
	Read        bool      `json:"read" db:"read"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
