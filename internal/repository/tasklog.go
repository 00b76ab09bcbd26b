package repository

import (
	"context"
	"time"

	"github.com/zaqqye/gazetrack_backend/internal/models"
)

type TaskLogRepository struct {
	Base[models.TaskLog]
}

func NewTaskLogRepository(s *Session) *TaskLogRepository {
	return &TaskLogRepository{Base[models.TaskLog]{s: s}}
}

type TaskLogInput struct {
	StartTime       time.Time
	EndTime         *time.Time
	Response        *string
	SubjectID       uint
	TaskDescription *string
	TaskType        *string
	TaskVersion     *string
}

func (r *TaskLogRepository) CreateTaskLog(ctx context.Context, in TaskLogInput) (*models.TaskLog, error) {
	log := &models.TaskLog{
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		Response:        in.Response,
		SubjectID:       in.SubjectID,
		TaskDescription: in.TaskDescription,
		TaskType:        in.TaskType,
		TaskVersion:     in.TaskVersion,
	}
	if err := r.Add(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}

func (r *TaskLogRepository) GetTaskLogsBySubject(ctx context.Context, subjectID uint) ([]models.TaskLog, error) {
	var logs []models.TaskLog
	if err := r.s.conn(ctx).Where("subject_id = ?", subjectID).Order("id ASC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *TaskLogRepository) CountTaskLogsBySubject(ctx context.Context, subjectID uint) (int64, error) {
	var count int64
	err := r.s.conn(ctx).Model(&models.TaskLog{}).Where("subject_id = ?", subjectID).Count(&count).Error
	return count, err
}
