package implementation

import (
	"context"

	"docbox-be/internal/entity"
	"docbox-be/internal/mapper"
	"docbox-be/internal/model"
	"docbox-be/internal/repository/contract"
	"docbox-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RelationEdgeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RelationEdgeMapper
}

func NewRelationEdgeRepository(db *gorm.DB) contract.RelationEdgeRepository {
	return &RelationEdgeRepositoryImpl{
		db:     db,
		mapper: mapper.NewRelationEdgeMapper(),
	}
}

func (r *RelationEdgeRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *RelationEdgeRepositoryImpl) Create(ctx context.Context, edge *entity.RelationEdge) error {
	m := r.mapper.ToModel(edge)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*edge = *r.mapper.ToEntity(m)
	return nil
}

func (r *RelationEdgeRepositoryImpl) CreateBulk(ctx context.Context, edges []*entity.RelationEdge) error {
	models := make([]*model.RelationEdge, len(edges))
	for i, e := range edges {
		models[i] = r.mapper.ToModel(e)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		*edges[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *RelationEdgeRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.RelationEdge{}, id).Error
}

func (r *RelationEdgeRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RelationEdge, error) {
	var models []*model.RelationEdge
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *RelationEdgeRepositoryImpl) FindByNode(ctx context.Context, nodeId uuid.UUID) ([]*entity.RelationEdge, error) {
	var models []*model.RelationEdge
	err := r.db.WithContext(ctx).
		Where("from_id = ? OR to_id = ?", nodeId, nodeId).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
