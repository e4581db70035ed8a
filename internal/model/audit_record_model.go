package model

import (
	"time"

	"github.com/google/uuid"
)

type AuditRecord struct {
	Id             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId      uuid.UUID  `gorm:"type:uuid;not null;index"`
	OrganizationId uuid.UUID  `gorm:"type:uuid;not null;index"`
	SubjectId      *uuid.UUID `gorm:"type:uuid;index"`
	RequesterId    uuid.UUID  `gorm:"type:uuid;not null"`
	QuestionHash   string     `gorm:"type:varchar(64);not null"`
	Status         string     `gorm:"type:varchar(30);not null"`
	Confidence     float64
	OccurredAt     time.Time `gorm:"not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (AuditRecord) TableName() string {
	return "audit_records"
}
