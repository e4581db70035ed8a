package unitofwork

import "context"

// RepositoryFactory opens a fresh UnitOfWork per request or worker task.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
