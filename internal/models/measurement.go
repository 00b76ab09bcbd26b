package models

import (
	"fmt"
	"time"
)

// Measurement is one timestamped sample. Gaze and mouse points are
// independent and either may be missing.
type Measurement struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Date         time.Time `gorm:"not null" json:"date"`
	SubjectID    uint      `gorm:"not null;index" json:"subject_id"`
	GazePointID  *uint     `json:"-"`
	GazePoint    *Point    `gorm:"constraint:OnDelete:SET NULL" json:"gaze_point"`
	MousePointID *uint     `json:"-"`
	MousePoint   *Point    `gorm:"constraint:OnDelete:SET NULL" json:"mouse_point"`
}

func (m Measurement) String() string {
	return fmt.Sprintf("Measurement(id=%d, subject_id=%d, date=%s)", m.ID, m.SubjectID, m.Date.Format(time.RFC3339))
}
