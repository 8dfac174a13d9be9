package unitofwork

import "context"

// RepositoryFactory hands out a fresh unit of work per operation. A nil
// factory means persistence is disabled.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
