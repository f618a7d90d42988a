package services

import (
	"context"
	"strings"
	"time"

	"github.com/EzraBr1dger/space-map-admin/internal/models"
	"github.com/EzraBr1dger/space-map-admin/internal/repositories"
	"github.com/EzraBr1dger/space-map-admin/internal/security"
	"github.com/EzraBr1dger/space-map-admin/pkg/errors"
	"github.com/EzraBr1dger/space-map-admin/pkg/logger"
)

const minPasswordLength = 8

type LoginResult struct {
	Token string           `json:"token"`
	User  models.Principal `json:"user"`
}

type AuthService struct {
	users    *repositories.UserRepository
	secret   string
	tokenTTL time.Duration
	now      func() time.Time
}

func NewAuthService(users *repositories.UserRepository, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{users: users, secret: secret, tokenTTL: tokenTTL, now: time.Now}
}

// SeedAdmin makes sure the configured admin account exists. An existing
// account is left untouched so password changes survive restarts.
func (s *AuthService) SeedAdmin(ctx context.Context, username, passwordHash string) error {
	if username == "" || passwordHash == "" {
		return nil
	}
	if _, err := s.users.GetUser(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, errors.ErrCodeNotFound) {
		return err
	}

	id, err := s.nextUserID(ctx)
	if err != nil {
		return err
	}
	admin := &models.AdminUser{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         models.RoleAdmin,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.SaveUser(ctx, admin); err != nil {
		return err
	}
	logger.Info("Seeded admin account", "username", username)
	return nil
}

func (s *AuthService) nextUserID(ctx context.Context) (int, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return 0, err
	}
	next := 1
	for _, u := range users {
		if u != nil && u.ID >= next {
			next = u.ID + 1
		}
	}
	return next, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, errors.New(errors.ErrCodeValidation, "username and password required")
	}
	user, err := s.users.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			return nil, errors.New(errors.ErrCodeUnauthorized, "invalid credentials")
		}
		return nil, err
	}
	if !security.CheckPassword(user.PasswordHash, password) {
		return nil, errors.New(errors.ErrCodeUnauthorized, "invalid credentials")
	}

	principal := user.Principal()
	token, err := security.GenerateJWT(principal, s.secret, s.tokenTTL, s.now())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to issue token")
	}
	logger.Info("User logged in", "username", username)
	return &LoginResult{Token: token, User: principal}, nil
}

// Verify resolves a bearer token to its principal.
func (s *AuthService) Verify(token string) (models.Principal, error) {
	claims, err := security.ValidateJWT(token, s.secret)
	if err != nil {
		return models.Principal{}, errors.Wrap(err, errors.ErrCodeForbidden, "invalid or expired token")
	}
	return claims.Principal(), nil
}

func (s *AuthService) Register(ctx context.Context, actor models.Principal, username, password, role string) (models.Principal, error) {
	if err := requireAdmin(actor); err != nil {
		return models.Principal{}, err
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.Principal{}, errors.New(errors.ErrCodeValidation, "username and password required")
	}
	if len(password) < minPasswordLength {
		return models.Principal{}, errors.Newf(errors.ErrCodeValidation, "password must be at least %d characters", minPasswordLength)
	}
	if role == "" {
		role = string(models.RoleUser)
	}
	r, ok := models.ParseRole(role)
	if !ok {
		return models.Principal{}, errors.New(errors.ErrCodeValidation, "role must be admin, admiral, or user")
	}

	if _, err := s.users.GetUser(ctx, username); err == nil {
		return models.Principal{}, errors.New(errors.ErrCodeAlreadyExists, "username already exists")
	} else if !errors.Is(err, errors.ErrCodeNotFound) {
		return models.Principal{}, err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return models.Principal{}, errors.Wrap(err, errors.ErrCodeInternalError, "failed to hash password")
	}
	id, err := s.nextUserID(ctx)
	if err != nil {
		return models.Principal{}, err
	}
	user := &models.AdminUser{
		ID:           id,
		Username:     username,
		PasswordHash: hash,
		Role:         r,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.SaveUser(ctx, user); err != nil {
		return models.Principal{}, err
	}

	logger.Info("User created", "new_user", username, "role", r, "username", actor.Username)
	return user.Principal(), nil
}

func (s *AuthService) ChangePassword(ctx context.Context, actor models.Principal, current, next string) error {
	if current == "" || next == "" {
		return errors.New(errors.ErrCodeValidation, "current password and new password required")
	}
	if len(next) < minPasswordLength {
		return errors.Newf(errors.ErrCodeValidation, "password must be at least %d characters", minPasswordLength)
	}
	user, err := s.users.GetUser(ctx, actor.Username)
	if err != nil {
		return err
	}
	if !security.CheckPassword(user.PasswordHash, current) {
		return errors.New(errors.ErrCodeUnauthorized, "current password is incorrect")
	}

	hash, err := security.HashPassword(next)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to hash password")
	}
	user.PasswordHash = hash
	if err := s.users.SaveUser(ctx, user); err != nil {
		return err
	}
	logger.Info("Password changed", "username", actor.Username)
	return nil
}
