package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationRequestCreated         = "REQUEST_CREATED"
	NotificationRequestPendingApproval = "REQUEST_PENDING_APPROVAL"
	NotificationRequestApproved        = "REQUEST_APPROVED"
	NotificationRequestRejected        = "REQUEST_REJECTED"
	NotificationRequestReturned        = "REQUEST_RETURNED"
	NotificationRequestReopened        = "REQUEST_REOPENED"
	NotificationRequestInProgress      = "REQUEST_IN_PROGRESS"
	NotificationRequestCompleted       = "REQUEST_COMPLETED"
)

// Notification is a fire-and-forget message surfaced to one recipient by polling.
// Only IsRead/ReadAt ever change after insert.
type Notification struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Type        string     `gorm:"type:varchar(40);not null" json:"type"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Message     string     `gorm:"type:text" json:"message"`
	IsRead      bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt      *time.Time `json:"read_at"`
	RequestID   *uuid.UUID `gorm:"type:uuid;index" json:"request_id"`
	RecipientID uuid.UUID  `gorm:"type:uuid;not null;index" json:"recipient_id"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
}

func (n *Notification) BeforeCreate(*gorm.DB) error {
	assignID(&n.ID)
	return nil
}
