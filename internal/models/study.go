package models

import (
	"fmt"
	"time"
)

// Study is a named research configuration subjects are grouped under.
// Deleting a study keeps its subjects and clears their study reference.
type Study struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Name               string    `gorm:"size:255;not null;index" json:"name"`
	Description        *string   `gorm:"type:text" json:"description"`
	PrototypeURL       *string   `gorm:"size:1024" json:"prototype_url"`
	PrototypeImagePath *string   `gorm:"size:1024" json:"prototype_image_path"`
	CreatedAt          time.Time `gorm:"index" json:"created_at"`
	Subjects           []Subject `gorm:"constraint:OnDelete:SET NULL" json:"-"`
}

func (s Study) String() string {
	return fmt.Sprintf("Study(id=%d, name=%q)", s.ID, s.Name)
}
