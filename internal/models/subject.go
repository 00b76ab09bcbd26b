package models

import "fmt"

// Subject is a study participant. Measurements and task logs are removed
// together with the subject.
type Subject struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	Name         string        `gorm:"size:255;not null" json:"name"`
	Surname      string        `gorm:"size:255;not null" json:"surname"`
	Age          int           `json:"age"`
	StudyID      *uint         `gorm:"index" json:"study_id"`
	Study        *Study        `json:"-"`
	Measurements []Measurement `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	TaskLogs     []TaskLog     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (s Subject) String() string {
	return fmt.Sprintf("Subject(id=%d, name=%s %s, age=%d)", s.ID, s.Name, s.Surname, s.Age)
}
