package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/repository"
	"github.com/mindtab/mindtab/internal/validation"
)

var ErrProjectArchived = errors.New("project is archived")

type ProjectInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Position    *int    `json:"position" validate:"omitempty,gte=0"`
}

type ProjectService struct {
	repo repository.ProjectRepository
}

func NewProjectService(repo repository.ProjectRepository) *ProjectService {
	return &ProjectService{repo: repo}
}

func (s *ProjectService) Create(userID string, in ProjectInput) (*model.Project, error) {
	if in.Name == nil || *in.Name == "" {
		return nil, validation.NewError("name is required")
	}
	err := validation.Struct(in)
	if err != nil {
		return nil, err
	}

	position, err := s.repo.CountActive(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	project := &model.Project{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        *in.Name,
		Description: valueOr(in.Description, ""),
		Status:      model.ProjectStatusActive,
		Position:    position,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.repo.Create(project)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

func (s *ProjectService) ByID(userID, projectID string) (*model.Project, error) {
	return s.repo.ByID(userID, projectID)
}

func (s *ProjectService) Projects(userID string, includeArchived bool) ([]*model.Project, error) {
	return s.repo.Projects(userID, includeArchived)
}

func (s *ProjectService) Update(userID, projectID string, in ProjectInput) (*model.Project, error) {
	err := validation.Struct(in)
	if err != nil {
		return nil, err
	}

	project, err := s.repo.ByID(userID, projectID)
	if err != nil {
		return nil, err
	}

	project.Name = valueOr(in.Name, project.Name)
	if in.Description != nil {
		project.Description = *in.Description
	}
	if in.Position != nil {
		project.Position = *in.Position
	}

	err = s.repo.Update(project)
	if err != nil {
		return nil, err
	}

	return s.repo.ByID(userID, projectID)
}

// Archive hides a project from default listings. Projects are never deleted,
// so goals and journals keep their reference.
func (s *ProjectService) Archive(userID, projectID string) (*model.Project, error) {
	return s.setStatus(userID, projectID, model.ProjectStatusArchived)
}

func (s *ProjectService) Unarchive(userID, projectID string) (*model.Project, error) {
	return s.setStatus(userID, projectID, model.ProjectStatusActive)
}

func (s *ProjectService) setStatus(userID, projectID, status string) (*model.Project, error) {
	err := s.repo.SetStatus(userID, projectID, status)
	if err != nil {
		return nil, err
	}
	return s.repo.ByID(userID, projectID)
}

// checkActiveProject accepts an empty reference or one to an active project of the user.
func checkActiveProject(repo repository.ProjectRepository, userID string, projectID *string) error {
	if projectID == nil || *projectID == "" {
		return nil
	}
	project, err := repo.ByID(userID, *projectID)
	if err != nil {
		return err
	}
	if project.IsArchived() {
		return ErrProjectArchived
	}
	return nil
}
