package mapper

import (
	"encoding/json"
	"fmt"
	"time"

	"policygen/internal/entity"
	"policygen/internal/model"
	"policygen/pkg/wizard"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProjectMapper struct{}

func NewProjectMapper() *ProjectMapper {
	return &ProjectMapper{}
}

func (m *ProjectMapper) ToEntity(p *model.Project) (*entity.Project, error) {
	if p == nil {
		return nil, nil
	}

	answers := wizard.DefaultAnswers()
	if len(p.Answers) > 0 {
		if err := json.Unmarshal(p.Answers, &answers); err != nil {
			return nil, fmt.Errorf("decode answers of project %s: %w", p.Id, err)
		}
	}

	var docs wizard.DocumentSet
	if len(p.Documents) > 0 && string(p.Documents) != "null" {
		if err := json.Unmarshal(p.Documents, &docs); err != nil {
			return nil, fmt.Errorf("decode documents of project %s: %w", p.Id, err)
		}
	}
	answers.Documents = docs

	var deletedAt *time.Time
	if p.DeletedAt.Valid {
		t := p.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}

	return &entity.Project{
		Id:        p.Id,
		UserId:    p.UserId,
		Name:      p.Name,
		Status:    entity.ProjectStatus(p.Status),
		Answers:   answers,
		Documents: docs,
		CreatedAt: p.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: p.DeletedAt.Valid,
	}, nil
}

func (m *ProjectMapper) ToModel(p *entity.Project) (*model.Project, error) {
	if p == nil {
		return nil, nil
	}

	// Documents live in their own column.
	answers := p.Answers.Clone()
	answers.Documents = nil
	rawAnswers, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}

	var rawDocs datatypes.JSON
	if len(p.Documents) > 0 {
		b, err := json.Marshal(p.Documents)
		if err != nil {
			return nil, fmt.Errorf("encode documents: %w", err)
		}
		rawDocs = b
	}

	var deletedAt gorm.DeletedAt
	if p.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *p.DeletedAt, Valid: true}
	} else if p.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}

	status := string(p.Status)
	if status == "" {
		status = string(entity.ProjectStatusDraft)
	}

	return &model.Project{
		Id:        p.Id,
		UserId:    p.UserId,
		Name:      p.Name,
		Status:    status,
		Answers:   datatypes.JSON(rawAnswers),
		Documents: rawDocs,
		CreatedAt: p.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}, nil
}

func (m *ProjectMapper) ToEntities(projects []*model.Project) ([]*entity.Project, error) {
	entities := make([]*entity.Project, len(projects))
	for i, p := range projects {
		e, err := m.ToEntity(p)
		if err != nil {
			return nil, err
		}
		entities[i] = e
	}
	return entities, nil
}
