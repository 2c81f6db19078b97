package models

import "time"

// ExamScore is one student's score for one subject in one exam context.
// At most one row exists per (student, subject, exam type, year, term);
// writes to an existing key update the row in place. An absent entry keeps
// score zero for aggregation but is recorded distinctly from a real zero.
type ExamScore struct {
	ID                 uint          `gorm:"primaryKey" json:"id"`
	StudentID          uint          `gorm:"not null;uniqueIndex:idx_score_key" json:"student_id"`
	SubjectID          uint          `gorm:"not null;uniqueIndex:idx_score_key" json:"subject_id"`
	ExamTypeID         uint          `gorm:"not null;uniqueIndex:idx_score_key" json:"exam_type_id"`
	AcademicYearID     uint          `gorm:"not null;uniqueIndex:idx_score_key" json:"academic_year_id"`
	Term               int           `gorm:"not null;uniqueIndex:idx_score_key" json:"term"`
	Score              float64       `gorm:"not null" json:"score"`
	Absent             bool          `gorm:"default:false" json:"absent"`
	RecordedByID       uint          `gorm:"not null" json:"recorded_by_id"`
	Comment            string        `gorm:"type:text" json:"comment"`
	CommentUpdatedAt   *time.Time    `json:"comment_updated_at"`
	CommentUpdatedByID *uint         `json:"comment_updated_by_id"`
	Student            *Student      `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Subject            *Subject      `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	ExamType           *ExamType     `gorm:"foreignKey:ExamTypeID" json:"exam_type,omitempty"`
	AcademicYear       *AcademicYear `gorm:"foreignKey:AcademicYearID" json:"academic_year,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}
