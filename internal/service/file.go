package service

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/repository"
	"github.com/mindtab/mindtab/internal/storage"
	"github.com/mindtab/mindtab/internal/validation"
)

type FileService struct {
	fileRepo repository.FileRepository
	storage  storage.Storage
}

// NewFileService accepts a nil storage, in which case uploads fail with
// storage.ErrDisabled and listings carry no URLs.
func NewFileService(fileRepo repository.FileRepository, storage storage.Storage) *FileService {
	return &FileService{
		fileRepo: fileRepo,
		storage:  storage,
	}
}

// UploadAttachment validates an image, PDF or text upload and stores it for an owner.
func (s *FileService) UploadAttachment(ctx context.Context, userID, ownerType, ownerID string, file multipart.File, header *multipart.FileHeader) (*model.File, error) {
	if s.storage == nil {
		return nil, storage.ErrDisabled
	}

	mimeType, err := validation.DetectAttachment(header, validation.JournalAttachments...)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	filename := uuid.New().String() + ext
	storagePath := path.Join(userID, ownerType+"s", ownerID, filename)

	err = s.storage.Save(ctx, storagePath, mimeType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	fileModel := &model.File{
		ID:           uuid.New().String(),
		UserID:       userID,
		OwnerType:    ownerType,
		OwnerID:      ownerID,
		Type:         model.FileTypeAttachment,
		Filename:     filename,
		OriginalName: header.Filename,
		MimeType:     mimeType,
		Size:         header.Size,
		StoragePath:  storagePath,
		CreatedAt:    time.Now(),
	}

	err = s.fileRepo.Create(fileModel)
	if err != nil {
		delErr := s.storage.Delete(ctx, storagePath)
		if delErr != nil {
			slog.Error("failed to delete file from storage during cleanup", "error", delErr, "path", storagePath)
		}
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	fileModel.URL = s.URL(ctx, fileModel)
	return fileModel, nil
}

// Files returns an owner's files with presigned URLs filled in.
func (s *FileService) Files(ctx context.Context, ownerType, ownerID string) ([]*model.File, error) {
	files, err := s.fileRepo.Files(ownerType, ownerID)
	if err != nil {
		return nil, err
	}

	for _, f := range files {
		f.URL = s.URL(ctx, f)
	}
	return files, nil
}

func (s *FileService) URL(ctx context.Context, file *model.File) string {
	if file == nil || s.storage == nil {
		return ""
	}

	url, err := s.storage.URL(ctx, file.StoragePath)
	if err != nil {
		slog.Warn("failed to presign file url", "error", err, "file_id", file.ID)
		return ""
	}
	return url
}

// DeleteByOwner removes an owner's objects (best effort) and their records.
func (s *FileService) DeleteByOwner(ctx context.Context, ownerType, ownerID string) error {
	files, err := s.fileRepo.Files(ownerType, ownerID)
	if err != nil {
		return err
	}

	s.deleteObjects(ctx, files)
	return s.fileRepo.DeleteByOwner(ownerType, ownerID)
}

func (s *FileService) DeleteAllUserFilesFromStorage(ctx context.Context, userID string) error {
	files, err := s.fileRepo.AllUserFiles(userID)
	if err != nil {
		return fmt.Errorf("failed to get user files: %w", err)
	}

	s.deleteObjects(ctx, files)
	return nil
}

func (s *FileService) deleteObjects(ctx context.Context, files []*model.File) {
	if s.storage == nil {
		return
	}
	for _, file := range files {
		err := s.storage.Delete(ctx, file.StoragePath)
		if err != nil {
			// Physical file may already be gone
			slog.Warn("failed to delete file from storage", "storage_path", file.StoragePath, "error", err)
		}
	}
}
