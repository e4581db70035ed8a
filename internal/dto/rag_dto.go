package dto

import (
	"time"

	"github.com/google/uuid"
)

type QueryRequest struct {
	Question      string     `json:"question" validate:"required,min=3"`
	SubjectId     *uuid.UUID `json:"subject_id,omitempty"`
	MaxIterations int        `json:"max_iterations,omitempty" validate:"omitempty,min=1,max=10"`
	TopK          int        `json:"top_k,omitempty" validate:"omitempty,min=1,max=50"`
}

type CitationDTO struct {
	PassageId        uuid.UUID `json:"passage_id"`
	SourceDocumentId uuid.UUID `json:"source_document_id"`
	Confidence       float64   `json:"confidence"`
}

type SubQueryTraceDTO struct {
	Text           string `json:"text"`
	IterationsUsed int    `json:"iterations_used"`
	FinalStatus    string `json:"final_status"`
}

type QueryResponse struct {
	SessionId     uuid.UUID          `json:"session_id"`
	Answer        string             `json:"answer"`
	Confidence    float64            `json:"confidence"`
	Status        string             `json:"status"` // "answered" | "answered_low_confidence" | "failed"
	FailReason    string             `json:"fail_reason,omitempty"`
	Citations     []CitationDTO      `json:"citations"`
	SubQueryTrace []SubQueryTraceDTO `json:"sub_query_trace"`
	CreatedAt     time.Time          `json:"created_at"`
}

type SearchRequest struct {
	Query     string     `json:"query" validate:"required,min=2"`
	SubjectId *uuid.UUID `json:"subject_id,omitempty"`
	TopK      int        `json:"top_k,omitempty" validate:"omitempty,min=1,max=50"`
}

type ShowCitationResponse struct {
	PassageId        uuid.UUID `json:"passage_id"`
	SourceDocumentId uuid.UUID `json:"source_document_id"`
	DocumentClass    string    `json:"document_class"`
	ChunkIndex       int       `json:"chunk_index"`
	Text             string    `json:"text"`
}

type SearchResultDTO struct {
	PassageId        uuid.UUID `json:"passage_id"`
	SourceDocumentId uuid.UUID `json:"source_document_id"`
	SourceType       string    `json:"source_type"`
	Text             string    `json:"text"`
	Score            float64   `json:"score"`
}
