package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Document struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title          string         `gorm:"type:varchar(255);not null"`
	Content        string         `gorm:"type:text"`
	DocumentClass  string         `gorm:"type:varchar(50);not null;index"`
	SubjectId      *uuid.UUID     `gorm:"type:uuid;index"`
	OrganizationId uuid.UUID      `gorm:"type:uuid;not null;index"`
	UploadedBy     uuid.UUID      `gorm:"type:uuid;not null"`
	IndexStatus    string         `gorm:"type:varchar(20);default:'pending'"`
	Metadata       datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
