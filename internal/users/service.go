// Package users manages accounts: self-registration, admin CRUD and
// credential checks.
package users

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"publazer/internal/apperrors"
	"publazer/internal/auth"
	"publazer/internal/models"
	"publazer/internal/store"
)

// DefaultDepartment is used when an admin creates a user without one.
const DefaultDepartment = "General"

type Service struct {
	users      store.Users
	bcryptCost int
	logger     *slog.Logger
}

func NewService(users store.Users, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{users: users, bcryptCost: bcryptCost, logger: logger}
}

// Register creates a student account.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	user := &models.User{
		Name:       strings.TrimSpace(req.Name),
		Email:      req.Email,
		Role:       models.RoleStudent,
		Department: strings.TrimSpace(req.Department),
	}
	if err := s.create(ctx, user, req.Password); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Create adds an account with any role on behalf of an admin.
func (s *Service) Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	if !models.IsValidRole(req.Role) {
		return nil, apperrors.Validation("", "Invalid role")
	}
	department := strings.TrimSpace(req.Department)
	if department == "" {
		department = DefaultDepartment
	}
	user := &models.User{
		Name:       strings.TrimSpace(req.Name),
		Email:      req.Email,
		Role:       req.Role,
		Department: department,
	}
	if err := s.create(ctx, user, req.Password); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *Service) create(ctx context.Context, user *models.User, password string) error {
	if user.Name == "" {
		return apperrors.Validation("", "Name is required")
	}
	if strings.TrimSpace(password) == "" {
		return apperrors.Validation("", "Password is required")
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return apperrors.Internal("failed to hash password", err)
	}
	user.PasswordHash = hash
	return s.users.Create(ctx, user)
}

// Authenticate checks the credentials and returns the account on success.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, apperrors.Auth(apperrors.CodeInvalidCredential, "Invalid password")
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

// Update edits an account. Non-admins may only edit themselves and keep
// their role. The password is rehashed only when a non-blank one is given.
func (s *Service) Update(ctx context.Context, actor models.Actor, id uuid.UUID, req models.UpdateUserRequest) (*models.User, error) {
	if !actor.IsAdmin() && actor.ID != id {
		return nil, apperrors.Forbidden("You can only update your own profile")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Role != "" && req.Role != user.Role {
		if !actor.IsAdmin() {
			return nil, apperrors.Forbidden("Only admins can change roles")
		}
		if !models.IsValidRole(req.Role) {
			return nil, apperrors.Validation("", "Invalid role")
		}
		user.Role = req.Role
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("", "Name is required")
	}
	user.Name = name
	user.Email = req.Email
	user.Department = strings.TrimSpace(req.Department)

	var newHash *string
	if strings.TrimSpace(req.Password) != "" {
		hash, err := auth.HashPassword(req.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.Internal("failed to hash password", err)
		}
		newHash = &hash
	}

	if err := s.users.Update(ctx, user, newHash); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user updated", "user_id", user.ID, "by", actor.ID, "password_changed", newHash != nil)
	return user, nil
}

func (s *Service) Delete(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return apperrors.Forbidden("Only admins can delete users")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "user deleted", "user_id", id, "by", actor.ID)
	return nil
}
