package implementation

import (
	"context"
	"errors"

	"docbox-be/internal/entity"
	"docbox-be/internal/mapper"
	"docbox-be/internal/model"
	"docbox-be/internal/repository/contract"
	"docbox-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type PassageEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PassageEmbeddingMapper
}

func NewPassageEmbeddingRepository(db *gorm.DB) contract.PassageEmbeddingRepository {
	return &PassageEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewPassageEmbeddingMapper(),
	}
}

func (r *PassageEmbeddingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PassageEmbeddingRepositoryImpl) Create(ctx context.Context, passage *entity.PassageEmbedding) error {
	m := r.mapper.ToModel(passage)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*passage = *r.mapper.ToEntity(m)
	return nil
}

func (r *PassageEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, passages []*entity.PassageEmbedding) error {
	models := make([]*model.PassageEmbedding, len(passages))
	for i, p := range passages {
		models[i] = r.mapper.ToModel(p)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	// Update IDs back to entities
	for i, m := range models {
		*passages[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *PassageEmbeddingRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.PassageEmbedding{}, id).Error
}

func (r *PassageEmbeddingRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.PassageEmbedding{}).Error
}

func (r *PassageEmbeddingRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PassageEmbedding, error) {
	var m model.PassageEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PassageEmbeddingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PassageEmbedding, error) {
	var models []*model.PassageEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *PassageEmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.PassageEmbedding{}).Count(&count).Error
	return count, err
}

// SearchSimilarWithScore returns passages with similarity scores above the
// threshold, scoped to one organization.
func (r *PassageEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, organizationId uuid.UUID, threshold float64) ([]*contract.ScoredPassageEmbedding, error) {
	if limit <= 0 {
		limit = 10
	}

	// Cosine distance in pgvector is: 1 - cosine_similarity
	// So we compute: 1 - (embedding_value <=> query_vector) = cosine_similarity
	type result struct {
		model.PassageEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("passage_embeddings").
		Select("passage_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("organization_id = ?", organizationId).
		Where("deleted_at IS NULL").
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredPassageEmbedding, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredPassageEmbedding{
			Passage:    r.mapper.ToEntity(&res.PassageEmbedding),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
