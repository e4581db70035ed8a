package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateDocumentRequest struct {
	Title         string                 `json:"title" validate:"required"`
	Content       string                 `json:"content" validate:"required"`
	DocumentClass string                 `json:"document_class" validate:"required,oneof=policy protocol clinical_note reference"`
	SubjectId     *uuid.UUID             `json:"subject_id,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

type CreateDocumentResponse struct {
	Id uuid.UUID `json:"id"`
}

type ShowDocumentResponse struct {
	Id            uuid.UUID              `json:"id"`
	Title         string                 `json:"title"`
	Content       string                 `json:"content"`
	DocumentClass string                 `json:"document_class"`
	SubjectId     *uuid.UUID             `json:"subject_id,omitempty"`
	IndexStatus   string                 `json:"index_status"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     *time.Time             `json:"updated_at"`
}

type ListDocumentsResponse struct {
	Id            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	DocumentClass string    `json:"document_class"`
	IndexStatus   string    `json:"index_status"`
	CreatedAt     time.Time `json:"created_at"`
}

// PublishIndexDocumentMessage is the watermill payload that triggers
// chunking and embedding for one document.
type PublishIndexDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}

type CreateRelationEdgeRequest struct {
	FromId   uuid.UUID              `json:"from_id" validate:"required"`
	FromName string                 `json:"from_name" validate:"required"`
	ToId     uuid.UUID              `json:"to_id" validate:"required"`
	ToName   string                 `json:"to_name" validate:"required"`
	Relation string                 `json:"relation" validate:"required,oneof=TREATS WORKS_AT VISITED REFERRED"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type CreateRelationEdgeResponse struct {
	Id uuid.UUID `json:"id"`
}
