package unitofwork

import (
	"context"

	"docbox-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	PassageEmbeddingRepository() contract.PassageEmbeddingRepository
	RelationEdgeRepository() contract.RelationEdgeRepository
	AuditRecordRepository() contract.AuditRecordRepository
}
