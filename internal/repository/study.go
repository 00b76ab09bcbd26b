package repository

import (
	"context"
	"errors"

	"github.com/zaqqye/gazetrack_backend/internal/models"
)

type StudyRepository struct {
	Base[models.Study]
}

func NewStudyRepository(s *Session) *StudyRepository {
	return &StudyRepository{Base[models.Study]{s: s}}
}

type StudyInput struct {
	Name               string
	Description        *string
	PrototypeURL       *string
	PrototypeImagePath *string
}

// StudyUpdate lists the fields to change. Nil fields are left untouched;
// an empty string clears an optional field.
type StudyUpdate struct {
	Name               *string
	Description        *string
	PrototypeURL       *string
	PrototypeImagePath *string
}

const newestFirst = "created_at DESC, id DESC"

func (r *StudyRepository) CreateStudy(ctx context.Context, in StudyInput) (*models.Study, error) {
	study := &models.Study{
		Name:               in.Name,
		Description:        in.Description,
		PrototypeURL:       in.PrototypeURL,
		PrototypeImagePath: in.PrototypeImagePath,
	}
	if err := r.Add(ctx, study); err != nil {
		return nil, err
	}
	return study, nil
}

// GetAllStudies returns studies newest first; ties go to the highest id.
func (r *StudyRepository) GetAllStudies(ctx context.Context) ([]models.Study, error) {
	var studies []models.Study
	if err := r.s.conn(ctx).Order(newestFirst).Find(&studies).Error; err != nil {
		return nil, err
	}
	return studies, nil
}

func (r *StudyRepository) GetStudyByID(ctx context.Context, id uint) (*models.Study, error) {
	return r.GetByID(ctx, id)
}

func (r *StudyRepository) GetStudyByName(ctx context.Context, name string) (*models.Study, error) {
	var study models.Study
	if err := r.s.conn(ctx).Where("name = ?", name).Order(newestFirst).First(&study).Error; err != nil {
		return nil, translate(err)
	}
	return &study, nil
}

// GetActiveStudy returns the most recently created study.
func (r *StudyRepository) GetActiveStudy(ctx context.Context) (*models.Study, error) {
	var study models.Study
	if err := r.s.conn(ctx).Order(newestFirst).First(&study).Error; err != nil {
		return nil, translate(err)
	}
	return &study, nil
}

// FindByPrototype returns the newest study configured with exactly this
// prototype URL and image path. Nil matches NULL.
func (r *StudyRepository) FindByPrototype(ctx context.Context, url, imagePath *string) (*models.Study, error) {
	q := r.s.conn(ctx)
	if url == nil {
		q = q.Where("prototype_url IS NULL")
	} else {
		q = q.Where("prototype_url = ?", *url)
	}
	if imagePath == nil {
		q = q.Where("prototype_image_path IS NULL")
	} else {
		q = q.Where("prototype_image_path = ?", *imagePath)
	}

	var study models.Study
	if err := q.Order(newestFirst).First(&study).Error; err != nil {
		return nil, translate(err)
	}
	return &study, nil
}

func (r *StudyRepository) UpdateStudy(ctx context.Context, id uint, upd StudyUpdate) (*models.Study, error) {
	study, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		study.Name = *upd.Name
	}
	if upd.Description != nil {
		study.Description = nullable(*upd.Description)
	}
	if upd.PrototypeURL != nil {
		study.PrototypeURL = nullable(*upd.PrototypeURL)
	}
	if upd.PrototypeImagePath != nil {
		study.PrototypeImagePath = nullable(*upd.PrototypeImagePath)
	}

	tx, err := r.s.stage(ctx)
	if err != nil {
		return nil, err
	}
	if err := tx.Omit("Subjects").Save(study).Error; err != nil {
		return nil, err
	}
	return study, nil
}

// DeleteStudy reports whether a study with id existed and was removed.
func (r *StudyRepository) DeleteStudy(ctx context.Context, id uint) (bool, error) {
	study, err := r.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := r.Delete(ctx, study); err != nil {
		return false, err
	}
	return true, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
