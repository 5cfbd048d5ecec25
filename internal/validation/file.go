package validation

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
)

// AttachmentKind is one accepted family of journal attachments.
type AttachmentKind struct {
	Name       string
	MimeTypes  []string
	Extensions []string
	MaxSize    int64
}

var (
	ImageAttachment = AttachmentKind{
		Name:       "image",
		MimeTypes:  []string{"image/jpeg", "image/png", "image/webp", "image/gif"},
		Extensions: []string{".jpg", ".jpeg", ".png", ".webp", ".gif"},
		MaxSize:    5 << 20,
	}
	DocumentAttachment = AttachmentKind{
		Name:       "document",
		MimeTypes:  []string{"application/pdf"},
		Extensions: []string{".pdf"},
		MaxSize:    10 << 20,
	}
	TextAttachment = AttachmentKind{
		Name:       "text",
		MimeTypes:  []string{"text/plain; charset=utf-8"},
		Extensions: []string{".txt", ".md", ".markdown"},
		MaxSize:    1 << 20,
	}

	// JournalAttachments are the kinds a journal entry accepts.
	JournalAttachments = []AttachmentKind{ImageAttachment, DocumentAttachment, TextAttachment}
)

// sniffLen is how much http.DetectContentType looks at.
const sniffLen = 512

// DetectAttachment sniffs the upload and returns its MIME type when it
// matches one of kinds by content, extension and size. The client supplied
// Content-Type is ignored.
func DetectAttachment(header *multipart.FileHeader, kinds ...AttachmentKind) (string, error) {
	if len(kinds) == 0 {
		return "", errors.New("no attachment kinds given")
	}

	detected, err := sniff(header)
	if err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))

	for _, kind := range kinds {
		if !slices.Contains(kind.MimeTypes, detected) || !slices.Contains(kind.Extensions, ext) {
			continue
		}
		if header.Size > kind.MaxSize {
			return "", NewError(fmt.Sprintf("%s too large: maximum size is %d MB", kind.Name, kind.MaxSize>>20))
		}
		return detected, nil
	}

	return "", NewError(fmt.Sprintf("unsupported attachment %q (detected %s)", ext, detected))
}

func sniff(header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return http.DetectContentType(buf[:n]), nil
}
