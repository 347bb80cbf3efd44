package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog records every state-changing action. UserID is a weak
// reference: it is nullable so the trail survives the acting user being
// deleted between token issuance and the write (the writer retries with a
// null actor and keeps the original id inside Details).
type AuditLog struct {
	ID        string         `gorm:"type:uuid;primary_key" json:"id"`
	UserID    *string        `gorm:"type:uuid;index" json:"userId"`
	User      *User          `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"user,omitempty"`
	Action    string         `gorm:"not null" json:"action"`
	Entity    string         `gorm:"not null" json:"entity"`
	EntityID  string         `gorm:"index" json:"entityId"`
	Details   datatypes.JSON `gorm:"type:jsonb" json:"details,omitempty"`
	Timestamp time.Time      `gorm:"index" json:"timestamp"`
}

func (l *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now()
	}
	return nil
}
