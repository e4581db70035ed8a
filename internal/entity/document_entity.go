package entity

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title          string
	Content        string
	DocumentClass  string     // policy, protocol, clinical_note, reference
	SubjectId      *uuid.UUID `gorm:"type:uuid;index"`
	OrganizationId uuid.UUID  `gorm:"type:uuid;index"`
	UploadedBy     uuid.UUID  `gorm:"type:uuid"`
	IndexStatus    string     // pending, indexed, failed
	Metadata       map[string]interface{}
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
