package mapper

import (
	"encoding/json"

	"docbox-be/internal/entity"
	"docbox-be/internal/model"

	"gorm.io/datatypes"
)

type RelationEdgeMapper struct{}

func NewRelationEdgeMapper() *RelationEdgeMapper {
	return &RelationEdgeMapper{}
}

func (m *RelationEdgeMapper) ToEntity(e *model.RelationEdge) *entity.RelationEdge {
	if e == nil {
		return nil
	}

	var properties map[string]interface{}
	if len(e.Properties) > 0 {
		_ = json.Unmarshal(e.Properties, &properties)
	}

	return &entity.RelationEdge{
		Id:             e.Id,
		FromId:         e.FromId,
		FromName:       e.FromName,
		ToId:           e.ToId,
		ToName:         e.ToName,
		Relation:       e.Relation,
		OrganizationId: e.OrganizationId,
		Properties:     properties,
		CreatedAt:      e.CreatedAt,
	}
}

func (m *RelationEdgeMapper) ToModel(e *entity.RelationEdge) *model.RelationEdge {
	if e == nil {
		return nil
	}

	var properties datatypes.JSON
	if e.Properties != nil {
		if raw, err := json.Marshal(e.Properties); err == nil {
			properties = raw
		}
	}

	return &model.RelationEdge{
		Id:             e.Id,
		FromId:         e.FromId,
		FromName:       e.FromName,
		ToId:           e.ToId,
		ToName:         e.ToName,
		Relation:       e.Relation,
		OrganizationId: e.OrganizationId,
		Properties:     properties,
		CreatedAt:      e.CreatedAt,
	}
}

func (m *RelationEdgeMapper) ToEntities(edges []*model.RelationEdge) []*entity.RelationEdge {
	entities := make([]*entity.RelationEdge, len(edges))
	for i, e := range edges {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
