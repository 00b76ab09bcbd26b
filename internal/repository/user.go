package repository

import (
	"context"

	"github.com/zaqqye/gazetrack_backend/internal/models"
)

type UserRepository struct {
	Base[models.User]
}

func NewUserRepository(s *Session) *UserRepository {
	return &UserRepository{Base[models.User]{s: s}}
}

// CreateUser stages a user with the bcrypt hash of password.
func (r *UserRepository) CreateUser(ctx context.Context, username, password string) (*models.User, error) {
	user := &models.User{Username: username}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	if err := r.Add(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.s.conn(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) UserExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.s.conn(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) GetAllUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.s.conn(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.s.conn(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}
