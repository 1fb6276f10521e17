package implementation

import (
	"context"

	"policygen/internal/entity"
	"policygen/internal/mapper"
	"policygen/internal/model"
	"policygen/internal/repository/contract"
	"policygen/internal/repository/specification"

	"gorm.io/gorm"
)

type GenerationLogRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.GenerationLogMapper
}

func NewGenerationLogRepository(db *gorm.DB) contract.GenerationLogRepository {
	return &GenerationLogRepositoryImpl{
		db:     db,
		mapper: mapper.NewGenerationLogMapper(),
	}
}

func (r *GenerationLogRepositoryImpl) Create(ctx context.Context, log *entity.GenerationLog) error {
	m := r.mapper.ToModel(log)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*log = *r.mapper.ToEntity(m)
	return nil
}

func (r *GenerationLogRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GenerationLog, error) {
	var models []*model.GenerationLog
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
