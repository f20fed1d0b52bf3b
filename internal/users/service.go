package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/engdahman/conference-app/internal/logger"
	"github.com/engdahman/conference-app/internal/models"
)

var (
	ErrValidation    = errors.New("invalid account input")
	ErrUsernameTaken = errors.New("username already exists")
	ErrNotFound      = errors.New("user not found")
	ErrLastAdmin     = errors.New("cannot remove the last admin")
)

const minPasswordLength = 8

// Store is the account persistence surface.
type Store interface {
	List(ctx context.Context) ([]models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) (bool, error)
	UpdateRole(ctx context.Context, id, role string) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	CountAdmins(ctx context.Context) (int, error)
}

// Service manages dashboard accounts.
type Service struct {
	store  Store
	logger *logger.Logger
}

func NewService(store Store, log *logger.Logger) *Service {
	return &Service{store: store, logger: log}
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// Create adds an account with a bcrypt-hashed password.
func (s *Service) Create(ctx context.Context, username, password, role string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}
	if role != models.RoleAdmin && role != models.RoleStaff {
		return nil, fmt.Errorf("%w: role must be admin or staff", ErrValidation)
	}

	existing, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Info("USERS", fmt.Sprintf("created %s account %s", role, username))
	}
	return user, nil
}

func (s *Service) SetPassword(ctx context.Context, id, password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	found, err := s.store.UpdatePassword(ctx, id, string(hash))
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

// SetRole changes an account's role, refusing to demote the last admin.
func (s *Service) SetRole(ctx context.Context, id, role string) error {
	if role != models.RoleAdmin && role != models.RoleStaff {
		return fmt.Errorf("%w: role must be admin or staff", ErrValidation)
	}
	if role == models.RoleStaff {
		if err := s.guardLastAdmin(ctx, id); err != nil {
			return err
		}
	}
	found, err := s.store.UpdateRole(ctx, id, role)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

// Delete removes an account, refusing to delete the last admin.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.guardLastAdmin(ctx, id); err != nil {
		return err
	}
	found, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

// guardLastAdmin fails when id is the only remaining admin account.
func (s *Service) guardLastAdmin(ctx context.Context, id string) error {
	users, err := s.store.List(ctx)
	if err != nil {
		return err
	}
	var target *models.User
	admins := 0
	for i := range users {
		if users[i].Role == models.RoleAdmin {
			admins++
		}
		if users[i].ID == id {
			target = &users[i]
		}
	}
	if target != nil && target.Role == models.RoleAdmin && admins <= 1 {
		return ErrLastAdmin
	}
	return nil
}
