package service

import (
	"context"
	"fmt"

	"policygen/internal/dto"
	"policygen/internal/repository/specification"
	"policygen/internal/repository/unitofwork"
	"policygen/pkg/wizard"

	"github.com/google/uuid"
)

type IProjectService interface {
	GetAll(ctx context.Context, userId uuid.UUID, req *dto.GetAllProjectRequest) ([]*dto.GetAllProjectResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowProjectResponse, error)
}

const defaultProjectPageSize = 20

type projectService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewProjectService(uowFactory unitofwork.RepositoryFactory) IProjectService {
	return &projectService{
		uowFactory: uowFactory,
	}
}

// GetAll lists the caller's projects, newest first.
func (c *projectService) GetAll(ctx context.Context, userId uuid.UUID, req *dto.GetAllProjectRequest) ([]*dto.GetAllProjectResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	projects, err := uow.ProjectRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", wizard.ErrUpstreamUnavailable, err)
	}

	result := make([]*dto.GetAllProjectResponse, 0, len(projects))
	for _, project := range projects {
		kinds := make([]string, 0, len(wizard.CanonicalKinds))
		for _, tab := range project.Documents.Tabs() {
			kinds = append(kinds, string(tab.Kind))
		}
		result = append(result, &dto.GetAllProjectResponse{
			Id:        project.Id,
			Name:      project.Name,
			Status:    string(project.Status),
			Documents: kinds,
			CreatedAt: project.CreatedAt,
			UpdatedAt: project.UpdatedAt,
		})
	}

	return result, nil
}

func (c *projectService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowProjectResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", wizard.ErrUpstreamUnavailable, err)
	}
	if project == nil {
		return nil, fmt.Errorf("%w: %s", wizard.ErrNotFound, id)
	}

	return &dto.ShowProjectResponse{
		Id:        project.Id,
		Name:      project.Name,
		Status:    string(project.Status),
		Answers:   project.Answers,
		Tabs:      project.Documents.Tabs(),
		CreatedAt: project.CreatedAt,
		UpdatedAt: project.UpdatedAt,
	}, nil
}
