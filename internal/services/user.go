package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/zaqqye/gazetrack_backend/internal/models"
	"github.com/zaqqye/gazetrack_backend/internal/repository"
)

const (
	minPasswordLength = 4
	// bcrypt rejects longer input.
	maxPasswordLength = 72
)

type UserService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewUserService(db *gorm.DB, log *zap.Logger) *UserService {
	return &UserService{db: db, log: log}
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateUser validates and stores a new administrator.
func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, invalid("username and password are required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, invalid("password must be at least 4 characters")
	}
	if len(req.Password) > maxPasswordLength {
		return nil, invalid("password must be at most 72 bytes")
	}

	var user *models.User
	err := inSession(ctx, s.db, func(sess *repository.Session) error {
		users := repository.NewUserRepository(sess)
		exists, err := users.UserExists(ctx, username)
		if err != nil {
			return err
		}
		if exists {
			return invalid("username already exists")
		}
		user, err = users.CreateUser(ctx, username, req.Password)
		return err
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, invalid("username already exists")
	}
	if err != nil {
		return nil, err
	}
	s.log.Info("User created", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

func (s *UserService) GetUserCount(ctx context.Context) (int64, error) {
	return repository.NewUserRepository(repository.NewSession(s.db)).CountUsers(ctx)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return repository.NewUserRepository(repository.NewSession(s.db)).GetByID(ctx, id)
}

// Authenticate returns the user when the password matches and
// ErrInvalidCredentials otherwise, without telling which part was wrong.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := repository.NewUserRepository(repository.NewSession(s.db)).GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// CanRegisterOpenly reports whether accounts may be created without logging
// in, which is only the case before the first user exists.
func (s *UserService) CanRegisterOpenly(ctx context.Context) (bool, error) {
	n, err := s.GetUserCount(ctx)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}
