package models

import "fmt"

// Point is an immutable (x, y) coordinate referenced by measurements.
type Point struct {
	ID uint    `gorm:"primaryKey" json:"id"`
	X  float64 `gorm:"not null" json:"x"`
	Y  float64 `gorm:"not null" json:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("Point(x=%v, y=%v)", p.X, p.Y)
}
