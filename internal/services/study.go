package services

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/zaqqye/gazetrack_backend/internal/models"
	"github.com/zaqqye/gazetrack_backend/internal/repository"
)

type StudyService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewStudyService(db *gorm.DB, log *zap.Logger) *StudyService {
	return &StudyService{db: db, log: log}
}

func (s *StudyService) CreateStudy(ctx context.Context, in repository.StudyInput) (*models.Study, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, invalid("study name is required")
	}

	var study *models.Study
	err := inSession(ctx, s.db, func(sess *repository.Session) error {
		var err error
		study, err = repository.NewStudyRepository(sess).CreateStudy(ctx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Study created", zap.Uint("study_id", study.ID), zap.String("name", study.Name))
	return study, nil
}

// ListStudies returns every study, newest first.
func (s *StudyService) ListStudies(ctx context.Context) ([]models.Study, error) {
	return repository.NewStudyRepository(repository.NewSession(s.db)).GetAllStudies(ctx)
}

func (s *StudyService) GetStudy(ctx context.Context, id uint) (*models.Study, error) {
	return repository.NewStudyRepository(repository.NewSession(s.db)).GetStudyByID(ctx, id)
}

// ActiveStudy returns the most recently created study.
func (s *StudyService) ActiveStudy(ctx context.Context) (*models.Study, error) {
	return repository.NewStudyRepository(repository.NewSession(s.db)).GetActiveStudy(ctx)
}

func (s *StudyService) UpdateStudy(ctx context.Context, id uint, upd repository.StudyUpdate) (*models.Study, error) {
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, invalid("study name cannot be empty")
		}
		upd.Name = &name
	}

	var study *models.Study
	err := inSession(ctx, s.db, func(sess *repository.Session) error {
		var err error
		study, err = repository.NewStudyRepository(sess).UpdateStudy(ctx, id, upd)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Study updated", zap.Uint("study_id", id))
	return study, nil
}

// DeleteStudy removes a study. Its subjects are kept without a study.
func (s *StudyService) DeleteStudy(ctx context.Context, id uint) error {
	err := inSession(ctx, s.db, func(sess *repository.Session) error {
		deleted, err := repository.NewStudyRepository(sess).DeleteStudy(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("Study deleted", zap.Uint("study_id", id))
	return nil
}
