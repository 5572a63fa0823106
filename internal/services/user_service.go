// internal/services/user_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/footycollect/footycollect-api/internal/database"
	"github.com/footycollect/footycollect-api/internal/models"
	"github.com/footycollect/footycollect-api/internal/repositories"
)

// UserService keeps the owner records items point at. Identities come from
// the bearer token; there are no credentials here.
type UserService struct {
	db    *gorm.DB
	users repositories.UserRepository
}

type EnsureUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
}

func NewUserService(deps *Dependencies) *UserService {
	return &UserService{db: deps.DB, users: deps.Users}
}

func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// EnsureUser returns the user with req.Username, creating it on first use.
func (s *UserService) EnsureUser(ctx context.Context, req *EnsureUserRequest) (*models.User, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	username := strings.TrimSpace(req.Username)

	var user *models.User
	err := database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		var err error
		if user, err = s.users.GetByUsername(ctx, username); err != nil || user != nil {
			return err
		}
		user = &models.User{Username: username, Email: strings.TrimSpace(req.Email)}
		if err := s.users.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		logrus.WithFields(logrus.Fields{"user_id": user.ID, "username": username}).Info("User created")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
