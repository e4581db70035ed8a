package contract

import (
	"context"

	"docbox-be/internal/entity"
	"docbox-be/internal/repository/specification"

	"github.com/google/uuid"
)

type RelationEdgeRepository interface {
	Create(ctx context.Context, edge *entity.RelationEdge) error
	CreateBulk(ctx context.Context, edges []*entity.RelationEdge) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RelationEdge, error)
	// FindByNode returns all edges touching the node in either direction.
	FindByNode(ctx context.Context, nodeId uuid.UUID) ([]*entity.RelationEdge, error)
}
