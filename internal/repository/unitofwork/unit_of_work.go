package unitofwork

import (
	"context"

	"policygen/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ProjectRepository() contract.ProjectRepository
	GenerationLogRepository() contract.GenerationLogRepository
}
