package mapper

import (
	"docbox-be/internal/entity"
	"docbox-be/internal/model"
)

type AuditRecordMapper struct{}

func NewAuditRecordMapper() *AuditRecordMapper {
	return &AuditRecordMapper{}
}

func (m *AuditRecordMapper) ToEntity(a *model.AuditRecord) *entity.AuditRecord {
	if a == nil {
		return nil
	}
	return &entity.AuditRecord{
		Id:             a.Id,
		SessionId:      a.SessionId,
		OrganizationId: a.OrganizationId,
		SubjectId:      a.SubjectId,
		RequesterId:    a.RequesterId,
		QuestionHash:   a.QuestionHash,
		Status:         a.Status,
		Confidence:     a.Confidence,
		OccurredAt:     a.OccurredAt,
		CreatedAt:      a.CreatedAt,
	}
}

func (m *AuditRecordMapper) ToModel(a *entity.AuditRecord) *model.AuditRecord {
	if a == nil {
		return nil
	}
	return &model.AuditRecord{
		Id:             a.Id,
		SessionId:      a.SessionId,
		OrganizationId: a.OrganizationId,
		SubjectId:      a.SubjectId,
		RequesterId:    a.RequesterId,
		QuestionHash:   a.QuestionHash,
		Status:         a.Status,
		Confidence:     a.Confidence,
		OccurredAt:     a.OccurredAt,
		CreatedAt:      a.CreatedAt,
	}
}

func (m *AuditRecordMapper) ToEntities(records []*model.AuditRecord) []*entity.AuditRecord {
	entities := make([]*entity.AuditRecord, len(records))
	for i, a := range records {
		entities[i] = m.ToEntity(a)
	}
	return entities
}
