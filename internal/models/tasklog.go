package models

import "time"

// TaskLog records one task interval for a subject. A nil EndTime means the
// task is still in progress.
type TaskLog struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	StartTime       time.Time  `gorm:"not null" json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	Response        *string    `gorm:"type:text" json:"response"`
	SubjectID       uint       `gorm:"not null;index" json:"subject_id"`
	TaskDescription *string    `gorm:"type:text" json:"task_description"`
	TaskType        *string    `gorm:"size:100" json:"task_type"`
	TaskVersion     *string    `gorm:"size:50" json:"task_version"`
}

// InProgress reports whether the task has no end time yet.
func (t TaskLog) InProgress() bool {
	return t.EndTime == nil
}
