package mapper

import (
	"time"

	"docbox-be/internal/entity"
	"docbox-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type PassageEmbeddingMapper struct{}

func NewPassageEmbeddingMapper() *PassageEmbeddingMapper {
	return &PassageEmbeddingMapper{}
}

func (m *PassageEmbeddingMapper) ToEntity(p *model.PassageEmbedding) *entity.PassageEmbedding {
	if p == nil {
		return nil
	}

	var deletedAt *time.Time
	if p.DeletedAt.Valid {
		t := p.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}

	return &entity.PassageEmbedding{
		Id:             p.Id,
		Text:           p.Text,
		EmbeddingValue: p.EmbeddingValue.Slice(),
		DocumentId:     p.DocumentId,
		ChunkIndex:     p.ChunkIndex,
		SubjectId:      p.SubjectId,
		OrganizationId: p.OrganizationId,
		DocumentClass:  p.DocumentClass,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      p.DeletedAt.Valid,
	}
}

func (m *PassageEmbeddingMapper) ToModel(p *entity.PassageEmbedding) *model.PassageEmbedding {
	if p == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if p.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *p.DeletedAt, Valid: true}
	} else if p.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}

	return &model.PassageEmbedding{
		Id:             p.Id,
		Text:           p.Text,
		EmbeddingValue: pgvector.NewVector(p.EmbeddingValue),
		DocumentId:     p.DocumentId,
		ChunkIndex:     p.ChunkIndex,
		SubjectId:      p.SubjectId,
		OrganizationId: p.OrganizationId,
		DocumentClass:  p.DocumentClass,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
	}
}

func (m *PassageEmbeddingMapper) ToEntities(passages []*model.PassageEmbedding) []*entity.PassageEmbedding {
	entities := make([]*entity.PassageEmbedding, len(passages))
	for i, p := range passages {
		entities[i] = m.ToEntity(p)
	}
	return entities
}

func (m *PassageEmbeddingMapper) ToModels(passages []*entity.PassageEmbedding) []*model.PassageEmbedding {
	models := make([]*model.PassageEmbedding, len(passages))
	for i, p := range passages {
		models[i] = m.ToModel(p)
	}
	return models
}
