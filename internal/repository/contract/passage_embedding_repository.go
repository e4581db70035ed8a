package contract

import (
	"context"

	"docbox-be/internal/entity"
	"docbox-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredPassageEmbedding wraps PassageEmbedding with its similarity score.
type ScoredPassageEmbedding struct {
	Passage    *entity.PassageEmbedding
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type PassageEmbeddingRepository interface {
	Create(ctx context.Context, passage *entity.PassageEmbedding) error
	CreateBulk(ctx context.Context, passages []*entity.PassageEmbedding) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PassageEmbedding, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PassageEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore runs cosine similarity search constrained to
	// one organization. Subject and document-class visibility is enforced
	// by the scope filter above this layer, not here.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, organizationId uuid.UUID, threshold float64) ([]*ScoredPassageEmbedding, error)
}
