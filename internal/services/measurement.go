package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/zaqqye/gazetrack_backend/internal/models"
	"github.com/zaqqye/gazetrack_backend/internal/repository"
)

// Notifier receives every batch of samples once it is committed.
type Notifier interface {
	PublishSamples(subjectID uint, samples []models.Measurement)
}

type MeasurementService struct {
	db       *gorm.DB
	log      *zap.Logger
	notifier Notifier
	now      func() time.Time
}

// NewMeasurementService builds the service. notifier may be nil.
func NewMeasurementService(db *gorm.DB, log *zap.Logger, notifier Notifier) *MeasurementService {
	return &MeasurementService{db: db, log: log, notifier: notifier, now: time.Now}
}

type Coordinates struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointSample is one entry sent by the tracker. Gaze and mouse are optional.
type PointSample struct {
	Date  string       `json:"date"`
	Gaze  *Coordinates `json:"gaze"`
	Mouse *Coordinates `json:"mouse"`
}

type SavePointsRequest struct {
	SubjectID uint
	Points    []PointSample
}

// SavePoints records the batch as one measurement per sample. The whole
// batch is committed at once or not at all. It returns the number of
// measurements written.
func (s *MeasurementService) SavePoints(ctx context.Context, req SavePointsRequest) (int, error) {
	if req.SubjectID == 0 {
		return 0, invalid("subject id is required")
	}

	var saved []models.Measurement
	err := inSession(ctx, s.db, func(sess *repository.Session) error {
		if _, err := repository.NewSubjectRepository(sess).GetByID(ctx, req.SubjectID); err != nil {
			return err
		}
		points := repository.NewPointRepository(sess)
		measurements := repository.NewMeasurementRepository(sess)

		saved = make([]models.Measurement, 0, len(req.Points))
		for _, sample := range req.Points {
			gaze, err := createPoint(ctx, points, sample.Gaze)
			if err != nil {
				return err
			}
			mouse, err := createPoint(ctx, points, sample.Mouse)
			if err != nil {
				return err
			}
			date := clientTimeOr(sample.Date, s.now)
			m, err := measurements.CreateMeasurement(ctx, date, req.SubjectID, gaze, mouse)
			if err != nil {
				return err
			}
			saved = append(saved, *m)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Debug("Points saved", zap.Uint("subject_id", req.SubjectID), zap.Int("count", len(saved)))
	if s.notifier != nil && len(saved) > 0 {
		s.notifier.PublishSamples(req.SubjectID, saved)
	}
	return len(saved), nil
}

func createPoint(ctx context.Context, repo *repository.PointRepository, c *Coordinates) (*models.Point, error) {
	if c == nil {
		return nil, nil
	}
	return repo.CreatePoint(ctx, c.X, c.Y)
}

// UserPoint flattens one measurement. Missing points leave their
// coordinates nil.
type UserPoint struct {
	XGaze  *float64 `json:"x_gaze"`
	YGaze  *float64 `json:"y_gaze"`
	XMouse *float64 `json:"x_mouse"`
	YMouse *float64 `json:"y_mouse"`
}

type UserPoints struct {
	SubjectID uint        `json:"subject_id"`
	Points    []UserPoint `json:"points"`
}

// GetUserPoints returns ErrNotFound when the subject does not exist.
func (s *MeasurementService) GetUserPoints(ctx context.Context, subjectID uint) (*UserPoints, error) {
	measurements, err := s.subjectMeasurements(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	out := &UserPoints{SubjectID: subjectID, Points: make([]UserPoint, 0, len(measurements))}
	for _, m := range measurements {
		var p UserPoint
		if m.GazePoint != nil {
			p.XGaze, p.YGaze = &m.GazePoint.X, &m.GazePoint.Y
		}
		if m.MousePoint != nil {
			p.XMouse, p.YMouse = &m.MousePoint.X, &m.MousePoint.Y
		}
		out.Points = append(out.Points, p)
	}
	return out, nil
}

// DisplayPoint is a single coordinate tagged with where it came from.
type DisplayPoint struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Type string  `json:"type"`
}

const (
	PointTypeMouse = "mouse"
	PointTypeGaze  = "gaze"
)

// GetDisplayPoints lists, per measurement, the mouse point followed by the
// gaze point, skipping whichever is missing.
func (s *MeasurementService) GetDisplayPoints(ctx context.Context, subjectID uint) ([]DisplayPoint, error) {
	measurements, err := s.subjectMeasurements(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	out := make([]DisplayPoint, 0, 2*len(measurements))
	for _, m := range measurements {
		if m.MousePoint != nil {
			out = append(out, DisplayPoint{X: m.MousePoint.X, Y: m.MousePoint.Y, Type: PointTypeMouse})
		}
		if m.GazePoint != nil {
			out = append(out, DisplayPoint{X: m.GazePoint.X, Y: m.GazePoint.Y, Type: PointTypeGaze})
		}
	}
	return out, nil
}

func (s *MeasurementService) subjectMeasurements(ctx context.Context, subjectID uint) ([]models.Measurement, error) {
	sess := repository.NewSession(s.db)
	if _, err := repository.NewSubjectRepository(sess).GetByID(ctx, subjectID); err != nil {
		return nil, err
	}
	return repository.NewMeasurementRepository(sess).GetMeasurementsBySubject(ctx, subjectID)
}
