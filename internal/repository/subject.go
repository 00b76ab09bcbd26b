package repository

import (
	"context"
	"strings"

	"github.com/zaqqye/gazetrack_backend/internal/models"
)

type SubjectRepository struct {
	Base[models.Subject]
}

func NewSubjectRepository(s *Session) *SubjectRepository {
	return &SubjectRepository{Base[models.Subject]{s: s}}
}

// SubjectFilter narrows SearchSubjects. Zero values match everything.
type SubjectFilter struct {
	StudyID      *uint
	WithoutStudy bool
	Query        string // matched against name and surname
}

func (r *SubjectRepository) CreateSubject(ctx context.Context, name, surname string, age int, studyID *uint) (*models.Subject, error) {
	subject := &models.Subject{Name: name, Surname: surname, Age: age, StudyID: studyID}
	if err := r.Add(ctx, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

func (r *SubjectRepository) GetSubjectByID(ctx context.Context, id uint) (*models.Subject, error) {
	var subject models.Subject
	if err := r.s.conn(ctx).Preload("Study").First(&subject, id).Error; err != nil {
		return nil, translate(err)
	}
	return &subject, nil
}

// GetAllSubjects returns every subject in insertion order.
func (r *SubjectRepository) GetAllSubjects(ctx context.Context) ([]models.Subject, error) {
	return r.SearchSubjects(ctx, SubjectFilter{})
}

// GetSubjectsByStudy returns the subjects of a study; nil selects the
// subjects that belong to no study.
func (r *SubjectRepository) GetSubjectsByStudy(ctx context.Context, studyID *uint) ([]models.Subject, error) {
	if studyID == nil {
		return r.SearchSubjects(ctx, SubjectFilter{WithoutStudy: true})
	}
	return r.SearchSubjects(ctx, SubjectFilter{StudyID: studyID})
}

// likeEscaper makes search text match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (r *SubjectRepository) SearchSubjects(ctx context.Context, filter SubjectFilter) ([]models.Subject, error) {
	q := r.s.conn(ctx).Model(&models.Subject{})
	switch {
	case filter.WithoutStudy:
		q = q.Where("study_id IS NULL")
	case filter.StudyID != nil:
		q = q.Where("study_id = ?", *filter.StudyID)
	}
	if text := strings.TrimSpace(filter.Query); text != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(text)) + "%"
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(surname) LIKE ? ESCAPE '\'`, like, like)
	}

	var subjects []models.Subject
	if err := q.Order("id ASC").Find(&subjects).Error; err != nil {
		return nil, err
	}
	return subjects, nil
}

func (r *SubjectRepository) CountSubjects(ctx context.Context) (int64, error) {
	var count int64
	err := r.s.conn(ctx).Model(&models.Subject{}).Count(&count).Error
	return count, err
}

// DeleteSubject removes a subject together with its measurements and task
// logs. It reports whether a row was removed.
func (r *SubjectRepository) DeleteSubject(ctx context.Context, id uint) (bool, error) {
	tx, err := r.s.stage(ctx)
	if err != nil {
		return false, err
	}
	res := tx.Delete(&models.Subject{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
