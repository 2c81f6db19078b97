package dto

import (
	"time"

	"github.com/andray-nkhatel/schoolerp-api/internal/models"
)

// EnsureReportCardRequest asks for the report card of one (student, year,
// term) tuple, creating it on first request.
type EnsureReportCardRequest struct {
	StudentID      uint `json:"student_id" validate:"required,gt=0"`
	AcademicYearID uint `json:"academic_year_id" validate:"required,gt=0"`
	Term           int  `json:"term" validate:"required,min=1,max=4"`
}

// BatchGenerateRequest asks for report cards for every active student of a
// grade.
type BatchGenerateRequest struct {
	GradeID        uint `json:"grade_id" validate:"required,gt=0"`
	AcademicYearID uint `json:"academic_year_id" validate:"required,gt=0"`
	Term           int  `json:"term" validate:"required,min=1,max=4"`
}

// CommentUpdateRequest carries a general comment edit.
type CommentUpdateRequest struct {
	Text string `json:"text" validate:"required"`
}

// ReportCardResponse is the API shape of a report card record.
type ReportCardResponse struct {
	ID               uint       `json:"id"`
	StudentID        uint       `json:"student_id"`
	GradeID          uint       `json:"grade_id"`
	AcademicYearID   uint       `json:"academic_year_id"`
	Term             int        `json:"term"`
	GeneratedByID    uint       `json:"generated_by_id"`
	GeneralComment   string     `json:"general_comment"`
	CommentUpdatedAt *time.Time `json:"general_comment_updated_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

// NewReportCardResponse maps the model to its API shape.
func NewReportCardResponse(card models.ReportCard) ReportCardResponse {
	return ReportCardResponse{
		ID:               card.ID,
		StudentID:        card.StudentID,
		GradeID:          card.GradeID,
		AcademicYearID:   card.AcademicYearID,
		Term:             card.Term,
		GeneratedByID:    card.GeneratedByID,
		GeneralComment:   card.GeneralComment,
		CommentUpdatedAt: card.GeneralCommentUpdatedAt,
		CreatedAt:        card.CreatedAt,
	}
}

// FailureGroup summarises batch failures sharing an error category. At most
// ten student ids are listed explicitly; the rest are counted.
type FailureGroup struct {
	Category       string `json:"category"`
	Message        string `json:"message"`
	Count          int    `json:"count"`
	SampleStudents []uint `json:"sample_student_ids"`
	Truncated      int    `json:"truncated"`
}

// BatchResultResponse reports the outcome of a grade-wide generation run.
// Partial success is the normal case: created cards and itemised failures
// are returned together.
type BatchResultResponse struct {
	GradeID   uint                 `json:"grade_id"`
	Term      int                  `json:"term"`
	Requested int                  `json:"requested"`
	Created   []ReportCardResponse `json:"created"`
	Failures  []FailureGroup       `json:"failures"`
}
