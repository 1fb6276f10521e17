package contract

import (
	"context"

	"policygen/internal/entity"
	"policygen/internal/repository/specification"
)

type GenerationLogRepository interface {
	Create(ctx context.Context, log *entity.GenerationLog) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GenerationLog, error)
}
