package entity

import (
	"time"

	"github.com/google/uuid"
)

// RelationEdge is one directed edge in the care network (TREATS, WORKS_AT,
// VISITED, REFERRED). Either endpoint can be a subject, practitioner, or
// facility; names are denormalized for rendering.
type RelationEdge struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	FromId         uuid.UUID `gorm:"type:uuid;index"`
	FromName       string
	ToId           uuid.UUID `gorm:"type:uuid;index"`
	ToName         string
	Relation       string
	OrganizationId uuid.UUID `gorm:"type:uuid;index"`
	Properties     map[string]interface{}
	CreatedAt      time.Time
}
