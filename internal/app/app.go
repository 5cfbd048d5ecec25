package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/mindtab/mindtab/internal/config"
	"github.com/mindtab/mindtab/internal/db"
	"github.com/mindtab/mindtab/internal/markdown"
	"github.com/mindtab/mindtab/internal/prefs"
	"github.com/mindtab/mindtab/internal/repository"
	"github.com/mindtab/mindtab/internal/service"
	"github.com/mindtab/mindtab/internal/storage"
)

type App struct {
	Cfg            *config.Config
	DB             *sqlx.DB
	AuthService    *service.AuthService
	UserService    *service.UserService
	ProfileService *service.ProfileService
	EmailService   *service.EmailService
	FileService    *service.FileService
	GoalService    *service.GoalService
	HabitService   *service.HabitService
	JournalService *service.JournalService
	ProjectService *service.ProjectService
	SessionService *service.SessionService
	SyncService    *service.SyncService
	TokenCleaner   repository.TokenRepository

	preferenceRepository repository.PreferenceRepository
}

func New(cfg *config.Config) (*App, error) {
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return NewWithDB(cfg, database)
}

// NewWithDB wires repositories and services over an open, migrated database.
func NewWithDB(cfg *config.Config, database *sqlx.DB) (*App, error) {
	// Repositories
	userRepository := repository.NewUserRepository(database)
	profileRepository := repository.NewProfileRepository(database)
	tokenRepository := repository.NewTokenRepository(database)
	fileRepository := repository.NewFileRepository(database)
	goalRepository := repository.NewGoalRepository(database)
	habitRepository := repository.NewHabitRepository(database)
	journalRepository := repository.NewJournalRepository(database)
	projectRepository := repository.NewProjectRepository(database)
	sessionRepository := repository.NewSessionRepository(database)
	syncItemRepository := repository.NewSyncItemRepository(database)
	preferenceRepository := repository.NewPreferenceRepository(database)

	// Storage is optional, attachments are disabled without a bucket
	fileStorage, err := storage.New(cfg)
	if errors.Is(err, storage.ErrDisabled) {
		slog.Info("file storage disabled, journal attachments unavailable")
		fileStorage, err = nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	fileService := service.NewFileService(fileRepository, fileStorage)
	authService := service.NewAuthService(
		userRepository,
		profileRepository,
		tokenRepository,
		emailService,
		cfg.JWTSecret,
		cfg.IsProduction(),
		cfg.JWTExpiry,
		cfg.TokenMagicLinkExpiry,
	)
	userService := service.NewUserService(userRepository, profileRepository, fileService, emailService)
	profileService := service.NewProfileService(profileRepository)
	goalService := service.NewGoalService(goalRepository, projectRepository)
	habitService := service.NewHabitService(habitRepository, profileRepository)
	journalService := service.NewJournalService(journalRepository, projectRepository, fileService, markdown.NewParser())
	projectService := service.NewProjectService(projectRepository)
	sessionService := service.NewSessionService(sessionRepository, userRepository, profileRepository, emailService, cfg.SessionExpiry)
	syncService := service.NewSyncService(syncItemRepository, cfg.SyncMaxItems)

	return &App{
		Cfg:            cfg,
		DB:             database,
		AuthService:    authService,
		UserService:    userService,
		ProfileService: profileService,
		EmailService:   emailService,
		FileService:    fileService,
		GoalService:    goalService,
		HabitService:   habitService,
		JournalService: journalService,
		ProjectService: projectService,
		SessionService: sessionService,
		SyncService:    syncService,
		TokenCleaner:   tokenRepository,

		preferenceRepository: preferenceRepository,
	}, nil
}

// Preferences returns the SQL-backed preference store of a user.
func (a *App) Preferences(userID string) *prefs.Store {
	return prefs.NewStore(prefs.NewSQLKV(a.preferenceRepository, userID))
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
