package service

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/mindtab/mindtab/internal/markdown"
	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/repository"
	"github.com/mindtab/mindtab/internal/validation"
)

type JournalInput struct {
	Title     *string `json:"title" validate:"omitempty,min=1,max=255"`
	Content   *string `json:"content" validate:"omitempty,max=200000"`
	ProjectID *string `json:"projectId"`
}

type JournalService struct {
	repo        repository.JournalRepository
	projectRepo repository.ProjectRepository
	files       *FileService
	parser      *markdown.Parser
}

func NewJournalService(
	repo repository.JournalRepository,
	projectRepo repository.ProjectRepository,
	files *FileService,
	parser *markdown.Parser,
) *JournalService {
	return &JournalService{
		repo:        repo,
		projectRepo: projectRepo,
		files:       files,
		parser:      parser,
	}
}

func (s *JournalService) Create(userID string, in JournalInput) (*model.Journal, error) {
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
	journal := &model.Journal{
		ID:        uuid.New().String(),
		UserID:    userID,
		ProjectID: emptyToNil(in.ProjectID),
		Title:     *in.Title,
		Content:   valueOr(in.Content, ""),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.repo.Create(journal)
	if err != nil {
		return nil, fmt.Errorf("failed to create journal: %w", err)
	}

	return journal, nil
}

// ByID returns the journal with its attachments.
func (s *JournalService) ByID(ctx context.Context, userID, journalID string) (*model.Journal, error) {
	journal, err := s.repo.ByID(userID, journalID)
	if err != nil {
		return nil, err
	}

	journal.Attachments, err = s.files.Files(ctx, model.FileOwnerJournal, journal.ID)
	if err != nil {
		return nil, err
	}
	return journal, nil
}

func (s *JournalService) Journals(userID, projectID string, limit int) ([]*model.Journal, error) {
	return s.repo.Journals(userID, projectID, limit)
}

func (s *JournalService) Update(ctx context.Context, userID, journalID string, in JournalInput) (*model.Journal, error) {
	err := validation.Struct(in)
	if err != nil {
		return nil, err
	}

	journal, err := s.repo.ByID(userID, journalID)
	if err != nil {
		return nil, err
	}

	if in.ProjectID != nil {
		err = checkActiveProject(s.projectRepo, userID, in.ProjectID)
		if err != nil {
			return nil, err
		}
		journal.ProjectID = emptyToNil(in.ProjectID)
	}
	journal.Title = valueOr(in.Title, journal.Title)
	if in.Content != nil {
		journal.Content = *in.Content
	}

	err = s.repo.Update(journal)
	if err != nil {
		return nil, err
	}

	return s.ByID(ctx, userID, journalID)
}

func (s *JournalService) Delete(ctx context.Context, userID, journalID string) error {
	err := s.repo.Delete(userID, journalID)
	if err != nil {
		return err
	}

	err = s.files.DeleteByOwner(ctx, model.FileOwnerJournal, journalID)
	if err != nil {
		slog.Warn("failed to delete journal attachments", "error", err, "journal_id", journalID)
	}
	return nil
}

// Render converts the journal's markdown to HTML. A front matter title
// overrides the stored one.
func (s *JournalService) Render(userID, journalID string) (*model.RenderedJournal, error) {
	journal, err := s.repo.ByID(userID, journalID)
	if err != nil {
		return nil, err
	}

	doc, err := s.parser.Render([]byte(journal.Content))
	if err != nil {
		return nil, fmt.Errorf("failed to render journal: %w", err)
	}

	title := journal.Title
	if doc.Title != "" {
		title = doc.Title
	}

	return &model.RenderedJournal{
		ID:       journal.ID,
		Title:    title,
		HTML:     doc.HTML,
		Metadata: doc.Meta,
		Tags:     doc.Tags,
	}, nil
}

func (s *JournalService) AddAttachment(ctx context.Context, userID, journalID string, file multipart.File, header *multipart.FileHeader) (*model.File, error) {
	_, err := s.repo.ByID(userID, journalID)
	if err != nil {
		return nil, err
	}

	return s.files.UploadAttachment(ctx, userID, model.FileOwnerJournal, journalID, file, header)
}
