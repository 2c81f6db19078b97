package models

import "time"

// AcademicYear scopes scores and report cards to a school year.
type AcademicYear struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:32;uniqueIndex;not null" json:"name"`
	Year      int       `gorm:"not null" json:"year"`
	Active    bool      `gorm:"default:false" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
