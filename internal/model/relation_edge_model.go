package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type RelationEdge struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FromId         uuid.UUID      `gorm:"type:uuid;not null;index"`
	FromName       string         `gorm:"type:varchar(255);not null"`
	ToId           uuid.UUID      `gorm:"type:uuid;not null;index"`
	ToName         string         `gorm:"type:varchar(255);not null"`
	Relation       string         `gorm:"type:varchar(50);not null"`
	OrganizationId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Properties     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
}

func (RelationEdge) TableName() string {
	return "relation_edges"
}
