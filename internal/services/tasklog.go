package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/zaqqye/gazetrack_backend/internal/models"
	"github.com/zaqqye/gazetrack_backend/internal/repository"
)

type TaskLogService struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

func NewTaskLogService(db *gorm.DB, log *zap.Logger) *TaskLogService {
	return &TaskLogService{db: db, log: log, now: time.Now}
}

// TaskLogEntry is one task event sent by the tracker. A null or empty
// endTime marks a task still in progress.
type TaskLogEntry struct {
	StartTime       string  `json:"startTime"`
	EndTime         *string `json:"endTime"`
	Response        *string `json:"response"`
	TaskDescription *string `json:"taskDescription"`
	TaskType        *string `json:"taskType"`
	TaskVersion     *string `json:"taskVersion"`
}

type SaveTaskLogsRequest struct {
	SubjectID uint
	TaskLogs  []TaskLogEntry
}

// SaveTaskLogs stores every entry in a single commit and returns how many
// were written. End times are not checked against start times.
func (s *TaskLogService) SaveTaskLogs(ctx context.Context, req SaveTaskLogsRequest) (int, error) {
	if req.SubjectID == 0 {
		return 0, invalid("subject id is required")
	}

	err := inSession(ctx, s.db, func(sess *repository.Session) error {
		if _, err := repository.NewSubjectRepository(sess).GetByID(ctx, req.SubjectID); err != nil {
			return err
		}
		logs := repository.NewTaskLogRepository(sess)
		for _, entry := range req.TaskLogs {
			in := repository.TaskLogInput{
				StartTime:       clientTimeOr(entry.StartTime, s.now),
				Response:        entry.Response,
				SubjectID:       req.SubjectID,
				TaskDescription: entry.TaskDescription,
				TaskType:        entry.TaskType,
				TaskVersion:     entry.TaskVersion,
			}
			if entry.EndTime != nil && *entry.EndTime != "" {
				end := clientTimeOr(*entry.EndTime, s.now)
				in.EndTime = &end
			}
			if _, err := logs.CreateTaskLog(ctx, in); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Debug("Task logs saved", zap.Uint("subject_id", req.SubjectID), zap.Int("count", len(req.TaskLogs)))
	return len(req.TaskLogs), nil
}

type TaskLogView struct {
	ID              uint       `json:"id"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	Response        *string    `json:"response"`
	TaskDescription *string    `json:"task_description"`
	TaskType        *string    `json:"task_type"`
	TaskVersion     *string    `json:"task_version"`
}

type UserTaskLogs struct {
	SubjectID uint          `json:"subject_id"`
	TaskLogs  []TaskLogView `json:"task_logs"`
}

// GetUserTaskLogs returns ErrNotFound when the subject does not exist.
func (s *TaskLogService) GetUserTaskLogs(ctx context.Context, subjectID uint) (*UserTaskLogs, error) {
	logs, err := subjectTaskLogs(ctx, repository.NewSession(s.db), subjectID)
	if err != nil {
		return nil, err
	}
	out := &UserTaskLogs{SubjectID: subjectID, TaskLogs: make([]TaskLogView, 0, len(logs))}
	for _, l := range logs {
		out.TaskLogs = append(out.TaskLogs, TaskLogView{
			ID:              l.ID,
			StartTime:       l.StartTime,
			EndTime:         l.EndTime,
			Response:        l.Response,
			TaskDescription: l.TaskDescription,
			TaskType:        l.TaskType,
			TaskVersion:     l.TaskVersion,
		})
	}
	return out, nil
}

func subjectTaskLogs(ctx context.Context, sess *repository.Session, subjectID uint) ([]models.TaskLog, error) {
	if _, err := repository.NewSubjectRepository(sess).GetByID(ctx, subjectID); err != nil {
		return nil, err
	}
	return repository.NewTaskLogRepository(sess).GetTaskLogsBySubject(ctx, subjectID)
}
