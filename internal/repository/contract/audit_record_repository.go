package contract

import (
	"context"

	"docbox-be/internal/entity"
	"docbox-be/internal/repository/specification"
)

type AuditRecordRepository interface {
	Create(ctx context.Context, record *entity.AuditRecord) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AuditRecord, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
