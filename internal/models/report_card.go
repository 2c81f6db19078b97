package models

import "time"

// ReportCard is the persisted record of a generated report card. At most one
// exists per (student, academic year, term); re-requesting creation returns
// the existing row. The rendered document itself is never stored here: it is
// a derived artifact regenerated on demand and held only by the document
// cache for its TTL.
type ReportCard struct {
	ID                        uint          `gorm:"primaryKey" json:"id"`
	StudentID                 uint          `gorm:"not null;uniqueIndex:idx_report_card_key" json:"student_id"`
	GradeID                   uint          `gorm:"not null;index" json:"grade_id"`
	AcademicYearID            uint          `gorm:"not null;uniqueIndex:idx_report_card_key" json:"academic_year_id"`
	Term                      int           `gorm:"not null;uniqueIndex:idx_report_card_key" json:"term"`
	GeneratedByID             uint          `gorm:"not null" json:"generated_by_id"`
	GeneralComment            string        `gorm:"type:text" json:"general_comment"`
	GeneralCommentUpdatedAt   *time.Time    `json:"general_comment_updated_at"`
	GeneralCommentUpdatedByID *uint         `json:"general_comment_updated_by_id"`
	Student                   *Student      `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Grade                     *Grade        `gorm:"foreignKey:GradeID" json:"grade,omitempty"`
	AcademicYear              *AcademicYear `gorm:"foreignKey:AcademicYearID" json:"academic_year,omitempty"`
	GeneratedBy               *User         `gorm:"foreignKey:GeneratedByID" json:"generated_by,omitempty"`
	CreatedAt                 time.Time     `json:"created_at"`
	UpdatedAt                 time.Time     `json:"updated_at"`
}
