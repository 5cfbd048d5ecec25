package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/repository"
	"github.com/mindtab/mindtab/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

const AuthCookieName = "auth_token"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrPasswordless       = errors.New("this account uses passwordless login")
)

// Claims carried by MindTab JWTs.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type AuthService struct {
	userRepository       repository.UserRepository
	profileRepository    repository.ProfileRepository
	tokenRepository      repository.TokenRepository
	emailService         *EmailService
	jwtSecret            string
	isProduction         bool
	jwtExpiry            time.Duration
	tokenMagicLinkExpiry time.Duration
}

func NewAuthService(
	userRepository repository.UserRepository,
	profileRepository repository.ProfileRepository,
	tokenRepository repository.TokenRepository,
	emailService *EmailService,
	jwtSecret string,
	isProduction bool,
	jwtExpiry time.Duration,
	tokenMagicLinkExpiry time.Duration,
) *AuthService {
	return &AuthService{
		userRepository:       userRepository,
		profileRepository:    profileRepository,
		tokenRepository:      tokenRepository,
		emailService:         emailService,
		isProduction:         isProduction,
		jwtSecret:            jwtSecret,
		jwtExpiry:            jwtExpiry,
		tokenMagicLinkExpiry: tokenMagicLinkExpiry,
	}
}

func (s *AuthService) JWTExpiry() time.Duration {
	return s.jwtExpiry
}

func (s *AuthService) Login(email, password string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.HasPassword() {
		return nil, ErrPasswordless
	}

	err = s.ComparePassword(password, *user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
	}

	return user, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// SetPassword adds or replaces the password of an account.
func (s *AuthService) SetPassword(userID, newPassword string) error {
	err := validation.ValidatePassword(newPassword)
	if err != nil {
		return err
	}

	user, err := s.userRepository.ByID(userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	hashedPassword, err := s.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = &hashedPassword
	err = s.userRepository.Update(user)
	if err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}

	slog.Info("password set", "user_id", userID)
	return nil
}

// GenerateToken returns 32 random bytes, hex encoded.
func GenerateToken() (string, error) {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func (s *AuthService) GenerateJWT(user *model.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) VerifyJWT(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *AuthService) SetJWTCookie(w http.ResponseWriter, token string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Expires:  expiry,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearJWTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

// SendMagicLink handles the combined login/signup flow.
// Unknown addresses get a fresh passwordless account.
func (s *AuthService) SendMagicLink(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	err := validation.ValidateEmail(email)
	if err != nil {
		return ErrInvalidEmail
	}

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("failed to lookup user: %w", err)
		}
		user, err = s.createUser(email, false)
		if err != nil {
			return err
		}
		slog.Info("new passwordless user created", "user_id", user.ID)
	}

	// Only the newest link stays valid
	err = s.tokenRepository.DeleteByUserAndType(user.ID, model.TokenTypeMagicLink)
	if err != nil {
		slog.Warn("failed to delete old magic link tokens", "error", err, "user_id", user.ID)
	}

	magicToken, err := GenerateToken()
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	token := &model.Token{
		UserID:    user.ID,
		Type:      model.TokenTypeMagicLink,
		Token:     magicToken,
		ExpiresAt: time.Now().Add(s.tokenMagicLinkExpiry),
	}
	err = s.tokenRepository.Create(token)
	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}

	name := ""
	profile, err := s.profileRepository.ByUserID(user.ID)
	if err == nil && profile != nil {
		name = profile.Name
	}

	err = s.emailService.SendMagicLinkEmail(user.Email, magicToken, name)
	if err != nil {
		slog.Error("failed to send magic link email", "error", err, "user_id", user.ID)
		return fmt.Errorf("failed to send email: %w", err)
	}

	slog.Info("magic link sent", "user_id", user.ID)
	return nil
}

// VerifyMagicLink consumes the token and returns the authenticated user.
func (s *AuthService) VerifyMagicLink(token string) (*model.User, error) {
	tokenModel, err := s.tokenRepository.ConsumeToken(token)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if tokenModel.Type != model.TokenTypeMagicLink {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepository.ByID(tokenModel.UserID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	// Clicking the link proves ownership of the address
	if user.EmailVerifiedAt == nil {
		now := time.Now()
		user.EmailVerifiedAt = &now
		err = s.userRepository.Update(user)
		if err != nil {
			slog.Warn("failed to verify email", "error", err, "user_id", user.ID)
		}
	}

	slog.Info("user authenticated via magic link", "user_id", user.ID)
	return user, nil
}

// AuthenticateOAuth returns the user for a provider-verified email,
// creating the account on first login.
func (s *AuthService) AuthenticateOAuth(email, provider string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	err := validation.ValidateEmail(email)
	if err != nil {
		return nil, ErrInvalidEmail
	}

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to lookup user: %w", err)
		}

		user, err = s.createUser(email, true)
		if err != nil {
			return nil, err
		}

		slog.Info("new OAuth user created", "user_id", user.ID, "provider", provider)
		return user, nil
	}

	if user.EmailVerifiedAt == nil {
		now := time.Now()
		user.EmailVerifiedAt = &now
		err = s.userRepository.Update(user)
		if err != nil {
			slog.Warn("failed to mark email as verified", "error", err, "user_id", user.ID)
		}
	}

	slog.Info("user authenticated via OAuth", "user_id", user.ID, "provider", provider)
	return user, nil
}

func (s *AuthService) createUser(email string, verified bool) (*model.User, error) {
	now := time.Now()
	user := &model.User{
		ID:        uuid.New().String(),
		Email:     email,
		CreatedAt: now,
	}
	if verified {
		user.EmailVerifiedAt = &now
	}

	err := s.userRepository.Create(user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	err = s.profileRepository.Create(&model.Profile{UserID: user.ID, CreatedAt: now})
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return user, nil
}
