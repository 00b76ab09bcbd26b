// Package bootstrap prepares a fresh installation: the first administrator
// and the study new subjects are registered under.
package bootstrap

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/zaqqye/gazetrack_backend/internal/config"
	"github.com/zaqqye/gazetrack_backend/internal/models"
	"github.com/zaqqye/gazetrack_backend/internal/repository"
	"github.com/zaqqye/gazetrack_backend/internal/services"
)

const defaultStudyDescription = "Created from configuration"

// SeedAdmin creates the configured administrator when no user exists yet.
// Without configured credentials it only warns; the first account can then be
// created through the open registration endpoint.
func SeedAdmin(ctx context.Context, db *gorm.DB, cfg config.AdminConfig, log *zap.Logger) error {
	users := services.NewUserService(db, log)
	count, err := users.GetUserCount(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if cfg.Username == "" || cfg.Password == "" {
		log.Warn("No users exist and no admin credentials are configured; registration is open until the first account is created")
		return nil
	}

	user, err := users.CreateUser(ctx, services.CreateUserRequest{Username: cfg.Username, Password: cfg.Password})
	if err != nil {
		return err
	}
	log.Info("Seeded initial admin", zap.String("username", user.Username))
	return nil
}

// EnsureStudy returns the study matching the configured prototype, creating
// it when none matches. The returned study is the one new subjects join.
func EnsureStudy(ctx context.Context, db *gorm.DB, cfg config.StudyConfig, log *zap.Logger) (*models.Study, error) {
	url := config.Optional(cfg.PrototypeURL)
	img := config.Optional(cfg.PrototypeImagePath)

	existing, err := repository.NewStudyRepository(repository.NewSession(db)).FindByPrototype(ctx, url, img)
	if err == nil {
		log.Info("Using existing study", zap.Uint("study_id", existing.ID), zap.String("name", existing.Name))
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	name := cfg.Name
	if name == "" {
		name = "Study - " + time.Now().Format("2006-01-02 15:04")
	}
	desc := config.Optional(cfg.Description)
	if desc == nil {
		d := defaultStudyDescription
		desc = &d
	}

	return services.NewStudyService(db, log).CreateStudy(ctx, repository.StudyInput{
		Name:               name,
		Description:        desc,
		PrototypeURL:       url,
		PrototypeImagePath: img,
	})
}
