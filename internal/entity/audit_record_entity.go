package entity

import (
	"time"

	"github.com/google/uuid"
)

// AuditRecord is the persisted trail of one query session. Only the
// question hash is stored, never the question itself.
type AuditRecord struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionId      uuid.UUID `gorm:"type:uuid;index"`
	OrganizationId uuid.UUID `gorm:"type:uuid;index"`
	SubjectId      *uuid.UUID
	RequesterId    uuid.UUID
	QuestionHash   string
	Status         string
	Confidence     float64
	OccurredAt     time.Time
	CreatedAt      time.Time
}
