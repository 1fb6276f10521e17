package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"policygen/internal/entity"
	"policygen/internal/repository/specification"
	"policygen/internal/repository/unitofwork"
	"policygen/pkg/wizard"

	"github.com/google/uuid"
)

// ProjectStore adapts the project repository to wizard.ProjectStore. Every
// read is scoped to one owner, so another user's project reads as missing.
type ProjectStore struct {
	uowFactory unitofwork.RepositoryFactory
	ownerID    uuid.UUID
}

var _ wizard.ProjectStore = (*ProjectStore)(nil)

func NewProjectStore(uowFactory unitofwork.RepositoryFactory, ownerID string) (*ProjectStore, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", wizard.ErrUnauthenticated)
	}
	return &ProjectStore{uowFactory: uowFactory, ownerID: owner}, nil
}

func (s *ProjectStore) find(ctx context.Context, uow unitofwork.UnitOfWork, id string) (*entity.Project, error) {
	projectID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", wizard.ErrNotFound, id)
	}
	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: projectID},
		specification.UserOwnedBy{UserID: s.ownerID},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", wizard.ErrUpstreamUnavailable, err)
	}
	if project == nil {
		return nil, fmt.Errorf("%w: %s", wizard.ErrNotFound, id)
	}
	return project, nil
}

func (s *ProjectStore) Get(ctx context.Context, id string) (*wizard.ProjectRecord, error) {
	project, err := s.find(ctx, s.uowFactory.NewUnitOfWork(ctx), id)
	if err != nil {
		return nil, err
	}
	return toRecord(project), nil
}

// Create stores a new draft named after the project, or the placeholder name.
func (s *ProjectStore) Create(ctx context.Context, ownerID string, answers wizard.Answers) (string, error) {
	if ownerID != s.ownerID.String() {
		return "", wizard.ErrUnauthenticated
	}

	name := strings.TrimSpace(answers.ProjectName)
	if name == "" {
		name = entity.DefaultProjectName
	}

	project := &entity.Project{
		Id:        uuid.New(),
		UserId:    s.ownerID,
		Name:      name,
		Status:    entity.ProjectStatusDraft,
		Answers:   answers.Clone(),
		Documents: answers.Documents,
		CreatedAt: time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ProjectRepository().Create(ctx, project); err != nil {
		return "", fmt.Errorf("%w: %v", wizard.ErrUpstreamUnavailable, err)
	}
	return project.Id.String(), nil
}

// Update replaces the stored answers. The name chosen at creation stays.
func (s *ProjectStore) Update(ctx context.Context, id string, answers wizard.Answers) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("%w: %v", wizard.ErrUpstreamUnavailable, err)
	}

	project, err := s.find(ctx, uow, id)
	if err != nil {
		uow.Rollback()
		return err
	}

	project.Answers = answers.Clone()
	if answers.Documents != nil {
		project.Documents = answers.Documents
	}
	if err := uow.ProjectRepository().Update(ctx, project); err != nil {
		uow.Rollback()
		return fmt.Errorf("%w: %v", wizard.ErrUpstreamUnavailable, err)
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("%w: %v", wizard.ErrUpstreamUnavailable, err)
	}
	return nil
}

func toRecord(p *entity.Project) *wizard.ProjectRecord {
	answers := p.Answers.Clone()
	answers.Documents = p.Documents
	return &wizard.ProjectRecord{
		ID:        p.Id.String(),
		OwnerID:   p.UserId.String(),
		Name:      p.Name,
		Status:    wizard.ProjectStatus(p.Status),
		Answers:   answers,
		CreatedAt: p.CreatedAt,
	}
}
