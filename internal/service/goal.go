package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/reorder"
	"github.com/mindtab/mindtab/internal/repository"
	"github.com/mindtab/mindtab/internal/validation"
)

var (
	ErrInvalidStatus = errors.New("invalid goal status")
	ErrInvalidSort   = errors.New("invalid sort")
	ErrGoalArchived  = errors.New("goal is archived")
)

// GoalInput is the body of goal create and update requests. On update, nil
// fields are left unchanged.
type GoalInput struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Status      *string `json:"status" validate:"omitempty,goalstatus"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=priority_1 priority_2 priority_3 priority_4"`
	Impact      *string `json:"impact" validate:"omitempty,oneof=low medium high"`
	Category    *string `json:"category" validate:"omitempty,oneof=personal work health finance learning relationships other"`
	Type        *string `json:"type" validate:"omitempty,oneof=one_time daily weekly monthly yearly"`
	ProjectID   *string `json:"projectId"`
}

// GoalExport is the document returned by the export endpoint.
type GoalExport struct {
	ExportedAt time.Time     `json:"exportedAt"`
	Count      int           `json:"count"`
	Goals      []*model.Goal `json:"goals"`
}

type GoalService struct {
	repo        repository.GoalRepository
	projectRepo repository.ProjectRepository
}

func NewGoalService(repo repository.GoalRepository, projectRepo repository.ProjectRepository) *GoalService {
	return &GoalService{
		repo:        repo,
		projectRepo: projectRepo,
	}
}

func (s *GoalService) Create(ctx context.Context, userID string, in GoalInput) (*model.Goal, error) {
	if in.Title == nil || *in.Title == "" {
		return nil, validation.NewError("title is required")
	}
	err := validation.Struct(in)
	if err != nil {
		return nil, err
	}

	err = checkActiveProject(s.projectRepo, userID, in.ProjectID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	goal := &model.Goal{
		ID:          uuid.New().String(),
		UserID:      userID,
		ProjectID:   emptyToNil(in.ProjectID),
		Title:       *in.Title,
		Description: in.Description,
		Status:      valueOr(in.Status, model.GoalStatusPending),
		Priority:    valueOr(in.Priority, model.GoalPriority4),
		Impact:      valueOr(in.Impact, model.GoalImpactMedium),
		Category:    valueOr(in.Category, model.GoalCategoryPersonal),
		Type:        valueOr(in.Type, model.GoalTypeOneTime),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if goal.IsCompleted() {
		goal.CompletedAt = &now
	}

	// New goals go to the end of their partition
	goal.Position, err = s.repo.CountByStatus(userID, goal.Status)
	if err != nil {
		return nil, err
	}

	err = s.repo.Create(goal)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	return goal, nil
}

func (s *GoalService) ByID(userID, goalID string) (*model.Goal, error) {
	return s.repo.ByID(userID, goalID)
}

func (s *GoalService) Goals(userID string, filter repository.GoalFilter) ([]*model.Goal, error) {
	if filter.Status != "" && !model.IsGoalStatus(filter.Status) {
		return nil, ErrInvalidStatus
	}
	switch filter.Sort {
	case "", repository.GoalSortPosition, repository.GoalSortPriority, repository.GoalSortRecent:
	default:
		return nil, ErrInvalidSort
	}

	return s.repo.Goals(userID, filter)
}

// Board loads the user's goals partitioned by status.
func (s *GoalService) Board(userID string) (reorder.Board, error) {
	goals, err := s.repo.BoardGoals(userID)
	if err != nil {
		return nil, err
	}
	return reorder.NewBoard(goals), nil
}

// Update applies the non-nil fields of in. A status change moves the goal to
// the end of its new partition and compacts the old one.
func (s *GoalService) Update(ctx context.Context, userID, goalID string, in GoalInput) (*model.Goal, error) {
	err := validation.Struct(in)
	if err != nil {
		return nil, err
	}

	goal, err := s.repo.ByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	if in.ProjectID != nil {
		err = checkActiveProject(s.projectRepo, userID, in.ProjectID)
		if err != nil {
			return nil, err
		}
		goal.ProjectID = emptyToNil(in.ProjectID)
	}
	if in.Title != nil {
		goal.Title = *in.Title
	}
	if in.Description != nil {
		goal.Description = emptyToNil(in.Description)
	}
	goal.Priority = valueOr(in.Priority, goal.Priority)
	goal.Impact = valueOr(in.Impact, goal.Impact)
	goal.Category = valueOr(in.Category, goal.Category)
	goal.Type = valueOr(in.Type, goal.Type)

	err = s.repo.Update(goal)
	if err != nil {
		return nil, err
	}

	if in.Status != nil && *in.Status != goal.Status {
		err = s.changeStatus(ctx, userID, goal, *in.Status)
		if err != nil {
			return nil, err
		}
	}

	return s.repo.ByID(userID, goalID)
}

func (s *GoalService) changeStatus(ctx context.Context, userID string, goal *model.Goal, status string) error {
	from := goal.Status

	switch {
	case model.IsBoardStatus(from) && model.IsBoardStatus(status):
		board, err := s.Board(userID)
		if err != nil {
			return err
		}
		plan, err := reorder.Move(board, goal.ID, status)
		if err != nil {
			return err
		}
		return s.repo.UpdatePositions(ctx, userID, plan.Updates)

	case status == model.GoalStatusArchived:
		goal.Status = status
		goal.CompletedAt = nil
		err := s.repo.Update(goal)
		if err != nil {
			return err
		}
		return s.compact(ctx, userID, from)

	default: // unarchive
		count, err := s.repo.CountByStatus(userID, status)
		if err != nil {
			return err
		}
		goal.Status = status
		goal.Position = count
		if status == model.GoalStatusCompleted {
			now := time.Now()
			goal.CompletedAt = &now
		}
		return s.repo.Update(goal)
	}
}

// Delete removes a goal and closes the gap it leaves in its partition.
func (s *GoalService) Delete(ctx context.Context, userID, goalID string) error {
	goal, err := s.repo.ByID(userID, goalID)
	if err != nil {
		return err
	}

	err = s.repo.Delete(userID, goalID)
	if err != nil {
		return err
	}

	if !model.IsBoardStatus(goal.Status) {
		return nil
	}

	err = s.compact(ctx, userID, goal.Status)
	if err != nil {
		// The goal is gone either way, a later reorder fixes the gap
		slog.Warn("failed to compact positions after delete", "error", err, "user_id", userID, "status", goal.Status)
	}
	return nil
}

func (s *GoalService) compact(ctx context.Context, userID, status string) error {
	if !model.IsBoardStatus(status) {
		return nil
	}
	board, err := s.Board(userID)
	if err != nil {
		return err
	}
	return s.repo.UpdatePositions(ctx, userID, reorder.Compact(board, status))
}

// Toggle advances the goal's status one step in the three-state cycle, or
// flips it between pending and completed when viewMode is list.
func (s *GoalService) Toggle(ctx context.Context, userID, goalID, viewMode string) (*model.Goal, error) {
	goal, err := s.repo.ByID(userID, goalID)
	if err != nil {
		return nil, err
	}
	if goal.Status == model.GoalStatusArchived {
		return nil, ErrGoalArchived
	}

	board, err := s.Board(userID)
	if err != nil {
		return nil, err
	}

	toggle := reorder.Toggle
	if viewMode == model.ViewModeList {
		toggle = reorder.ToggleList
	}

	plan, err := toggle(board, goalID)
	if err == nil {
		err = s.apply(ctx, userID, plan.Updates)
	}
	reorderTotal.WithLabelValues("toggle", result(err)).Inc()
	if err != nil {
		return nil, err
	}

	return s.repo.ByID(userID, goalID)
}

// Move runs the reorder engine server side for a drag of activeID onto overID.
func (s *GoalService) Move(ctx context.Context, userID, activeID, overID string) (*reorder.Plan, error) {
	board, err := s.Board(userID)
	if err != nil {
		return nil, err
	}

	plan, err := reorder.Move(board, activeID, overID)
	if errors.Is(err, reorder.ErrNoop) {
		reorderTotal.WithLabelValues("move", "noop").Inc()
		return nil, err
	}
	if err == nil {
		err = s.apply(ctx, userID, plan.Updates)
	}
	reorderTotal.WithLabelValues("move", result(err)).Inc()
	if err != nil {
		return nil, err
	}

	slog.Debug("goal moved", "user_id", userID, "goal_id", activeID, "from", plan.From, "to", plan.To, "rows", len(plan.Updates))
	return plan, nil
}

// UpdatePositions writes a client-computed reorder batch atomically.
func (s *GoalService) UpdatePositions(ctx context.Context, userID string, updates []model.PositionUpdate) error {
	for i := range updates {
		err := validation.Struct(updates[i])
		if err != nil {
			return fmt.Errorf("update %d: %w", i, err)
		}
	}

	err := s.apply(ctx, userID, updates)
	reorderTotal.WithLabelValues("batch", result(err)).Inc()
	return err
}

func (s *GoalService) apply(ctx context.Context, userID string, updates []model.PositionUpdate) error {
	reorderRows.Observe(float64(len(updates)))
	return s.repo.UpdatePositions(ctx, userID, updates)
}

// Updater binds the batch update contract to one user.
func (s *GoalService) Updater(userID string) reorder.BatchUpdater {
	return userUpdater{service: s, userID: userID}
}

type userUpdater struct {
	service *GoalService
	userID  string
}

func (u userUpdater) UpdatePositions(ctx context.Context, updates []model.PositionUpdate) error {
	return u.service.UpdatePositions(ctx, u.userID, updates)
}

func (s *GoalService) Export(userID string) (*GoalExport, error) {
	goals, err := s.repo.Goals(userID, repository.GoalFilter{})
	if err != nil {
		return nil, err
	}
	archived, err := s.repo.Goals(userID, repository.GoalFilter{Status: model.GoalStatusArchived})
	if err != nil {
		return nil, err
	}

	goals = append(goals, archived...)
	return &GoalExport{
		ExportedAt: time.Now().UTC(),
		Count:      len(goals),
		Goals:      goals,
	}, nil
}

func valueOr(v *string, def string) string {
	if v == nil || *v == "" {
		return def
	}
	return *v
}

func emptyToNil(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}
