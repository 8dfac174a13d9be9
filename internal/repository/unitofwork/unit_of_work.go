package unitofwork

import (
	"context"

	"bpmn-interview-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	BpmnGenerationRepository() contract.BpmnGenerationRepository
}
