package models

import "time"

// Student represents a learner enrolled in a grade.
type Student struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	FirstName       string    `gorm:"size:128;not null" json:"first_name"`
	LastName        string    `gorm:"size:128;not null" json:"last_name"`
	AdmissionNumber string    `gorm:"size:64;uniqueIndex;not null" json:"admission_number"`
	GradeID         uint      `gorm:"not null;index" json:"grade_id"`
	Grade           *Grade    `gorm:"foreignKey:GradeID" json:"grade,omitempty"`
	GuardianEmail   string    `gorm:"size:255" json:"guardian_email"`
	Archived        bool      `gorm:"default:false" json:"archived"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// FullName joins the student's names for rendering and notifications.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
