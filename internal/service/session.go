package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/repository"
)

var (
	ErrSessionInvalid = errors.New("invalid session token")
	ErrSessionExpired = errors.New("session expired")
)

type SessionService struct {
	repo         repository.SessionRepository
	userRepo     repository.UserRepository
	profileRepo  repository.ProfileRepository
	emailService *EmailService
	expiry       time.Duration
}

func NewSessionService(
	repo repository.SessionRepository,
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	emailService *EmailService,
	expiry time.Duration,
) *SessionService {
	return &SessionService{
		repo:         repo,
		userRepo:     userRepo,
		profileRepo:  profileRepo,
		emailService: emailService,
		expiry:       expiry,
	}
}

// Create issues a session token for the browser extension. The raw token is
// returned once, only its hash is stored.
func (s *SessionService) Create(userID, name string) (string, *model.Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Browser extension"
	}
	if utf8.RuneCountInString(name) > 100 {
		name = string([]rune(name)[:100])
	}

	raw, err := GenerateToken()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now()
	session := &model.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		TokenHash: repository.HashToken(raw),
		Name:      name,
		ExpiresAt: now.Add(s.expiry),
		CreatedAt: now,
	}

	err = s.repo.Create(session)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.notify(userID, name)
	slog.Info("extension session created", "user_id", userID, "session_id", session.ID)
	return raw, session, nil
}

func (s *SessionService) notify(userID, sessionName string) {
	user, err := s.userRepo.ByID(userID)
	if err != nil {
		slog.Warn("failed to load user for session email", "error", err, "user_id", userID)
		return
	}

	name := ""
	profile, err := s.profileRepo.ByUserID(userID)
	if err == nil {
		name = profile.Name
	}

	err = s.emailService.SendSessionCreatedEmail(user.Email, name, sessionName)
	if err != nil {
		slog.Warn("failed to send session created email", "error", err, "user_id", userID)
	}
}

// Authenticate resolves a raw session token.
func (s *SessionService) Authenticate(raw string) (*model.Session, error) {
	if raw == "" {
		return nil, ErrSessionInvalid
	}

	session, err := s.repo.ByTokenHash(repository.HashToken(raw))
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}

	if session.IsExpired() {
		return nil, ErrSessionExpired
	}

	err = s.repo.Touch(session.ID, time.Now())
	if err != nil {
		slog.Warn("failed to touch session", "error", err, "session_id", session.ID)
	}

	return session, nil
}

func (s *SessionService) Sessions(userID string) ([]*model.Session, error) {
	return s.repo.Sessions(userID)
}

func (s *SessionService) Revoke(userID, sessionID string) error {
	return s.repo.Delete(userID, sessionID)
}

func (s *SessionService) CleanupExpired() (int64, error) {
	return s.repo.DeleteExpired(time.Now())
}
