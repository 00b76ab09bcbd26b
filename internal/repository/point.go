package repository

import (
	"context"

	"github.com/zaqqye/gazetrack_backend/internal/models"
)

type PointRepository struct {
	Base[models.Point]
}

func NewPointRepository(s *Session) *PointRepository {
	return &PointRepository{Base[models.Point]{s: s}}
}

func (r *PointRepository) CreatePoint(ctx context.Context, x, y float64) (*models.Point, error) {
	p := &models.Point{X: x, Y: y}
	if err := r.Add(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
