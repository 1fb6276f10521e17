package mapper

import (
	"strings"
	"time"

	"policygen/internal/entity"
	"policygen/internal/model"
)

type GenerationLogMapper struct{}

func NewGenerationLogMapper() *GenerationLogMapper {
	return &GenerationLogMapper{}
}

func (m *GenerationLogMapper) ToEntity(l *model.GenerationLog) *entity.GenerationLog {
	if l == nil {
		return nil
	}
	var kinds []string
	if l.Kinds != "" {
		kinds = strings.Split(l.Kinds, ",")
	}
	return &entity.GenerationLog{
		Id:        l.Id,
		SessionId: l.SessionId,
		ProjectId: l.ProjectId,
		UserId:    l.UserId,
		Kinds:     kinds,
		Outcome:   entity.GenerationOutcome(l.Outcome),
		Error:     l.Error,
		Duration:  time.Duration(l.DurationMs) * time.Millisecond,
		CreatedAt: l.CreatedAt,
	}
}

func (m *GenerationLogMapper) ToModel(l *entity.GenerationLog) *model.GenerationLog {
	if l == nil {
		return nil
	}
	return &model.GenerationLog{
		Id:         l.Id,
		SessionId:  l.SessionId,
		ProjectId:  l.ProjectId,
		UserId:     l.UserId,
		Kinds:      strings.Join(l.Kinds, ","),
		Outcome:    string(l.Outcome),
		Error:      l.Error,
		DurationMs: l.Duration.Milliseconds(),
		CreatedAt:  l.CreatedAt,
	}
}

func (m *GenerationLogMapper) ToEntities(logs []*model.GenerationLog) []*entity.GenerationLog {
	entities := make([]*entity.GenerationLog, len(logs))
	for i, l := range logs {
		entities[i] = m.ToEntity(l)
	}
	return entities
}
