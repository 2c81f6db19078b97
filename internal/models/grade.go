package models

import (
	"time"

	"github.com/andray-nkhatel/schoolerp-api/internal/grading"
)

// Grade is a class of students. Its section policy decides which
// certification rules apply and never changes once assigned.
type Grade struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	Name              string          `gorm:"size:64;not null" json:"name"`
	Section           grading.Section `gorm:"size:32;not null" json:"section"`
	HomeroomTeacherID *uint           `json:"homeroom_teacher_id"`
	HomeroomTeacher   *User           `gorm:"foreignKey:HomeroomTeacherID" json:"homeroom_teacher,omitempty"`
	Archived          bool            `gorm:"default:false" json:"archived"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
