package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByOrganization filters rows to one organization.
type ByOrganization struct {
	OrganizationId uuid.UUID
}

func (s ByOrganization) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("organization_id = ?", s.OrganizationId)
}

// BySubject filters rows tagged to one subject.
type BySubject struct {
	SubjectId uuid.UUID
}

func (s BySubject) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("subject_id = ?", s.SubjectId)
}

// ByDocumentClass filters by document class (policy, protocol, ...).
type ByDocumentClass struct {
	Class string
}

func (s ByDocumentClass) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_class = ?", s.Class)
}

// ByDocument filters passages belonging to one document.
type ByDocument struct {
	DocumentId uuid.UUID
}

func (s ByDocument) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentId)
}

// BySession filters audit records of one query session.
type BySession struct {
	SessionId uuid.UUID
}

func (s BySession) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionId)
}

// ByIndexStatus filters documents by indexing state.
type ByIndexStatus struct {
	Status string
}

func (s ByIndexStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("index_status = ?", s.Status)
}
