package entity

import (
	"time"

	"github.com/google/uuid"
)

// PassageEmbedding is one indexed chunk of a document. Access tags are
// denormalized from the parent document so similarity search and scope
// filtering never need a join at query time.
type PassageEmbedding struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Text           string
	EmbeddingValue []float32
	DocumentId     uuid.UUID `gorm:"type:uuid;index"`
	ChunkIndex     int
	SubjectId      *uuid.UUID
	OrganizationId uuid.UUID
	DocumentClass  string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
