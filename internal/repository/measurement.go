package repository

import (
	"context"
	"time"

	"github.com/zaqqye/gazetrack_backend/internal/models"
)

type MeasurementRepository struct {
	Base[models.Measurement]
}

func NewMeasurementRepository(s *Session) *MeasurementRepository {
	return &MeasurementRepository{Base[models.Measurement]{s: s}}
}

// CreateMeasurement stages a sample for subjectID. gaze and mouse must be
// points created earlier in the session or nil.
func (r *MeasurementRepository) CreateMeasurement(ctx context.Context, date time.Time, subjectID uint, gaze, mouse *models.Point) (*models.Measurement, error) {
	m := &models.Measurement{
		Date:       date,
		SubjectID:  subjectID,
		GazePoint:  gaze,
		MousePoint: mouse,
	}
	if gaze != nil {
		m.GazePointID = &gaze.ID
	}
	if mouse != nil {
		m.MousePointID = &mouse.ID
	}
	if err := r.Add(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// GetMeasurementsBySubject returns the subject's samples in creation order
// with their points loaded.
func (r *MeasurementRepository) GetMeasurementsBySubject(ctx context.Context, subjectID uint) ([]models.Measurement, error) {
	var measurements []models.Measurement
	err := r.s.conn(ctx).
		Preload("GazePoint").
		Preload("MousePoint").
		Where("subject_id = ?", subjectID).
		Order("id ASC").
		Find(&measurements).Error
	if err != nil {
		return nil, err
	}
	return measurements, nil
}

func (r *MeasurementRepository) CountBySubject(ctx context.Context, subjectID uint) (int64, error) {
	var count int64
	err := r.s.conn(ctx).Model(&models.Measurement{}).Where("subject_id = ?", subjectID).Count(&count).Error
	return count, err
}
