package dto

import (
	"time"

	"github.com/andray-nkhatel/schoolerp-api/internal/models"
)

// ScoreUpsertRequest records or updates one exam score.
type ScoreUpsertRequest struct {
	StudentID      uint    `json:"student_id" validate:"required,gt=0"`
	SubjectID      uint    `json:"subject_id" validate:"required,gt=0"`
	ExamTypeID     uint    `json:"exam_type_id" validate:"required,gt=0"`
	AcademicYearID uint    `json:"academic_year_id" validate:"required,gt=0"`
	Term           int     `json:"term" validate:"required,min=1,max=4"`
	Score          float64 `json:"score" validate:"min=0,max=100"`
	Absent         bool    `json:"absent"`
	Comment        string  `json:"comment"`
}

// ScoreResponse is the API shape of an exam score.
type ScoreResponse struct {
	ID               uint       `json:"id"`
	StudentID        uint       `json:"student_id"`
	SubjectID        uint       `json:"subject_id"`
	ExamTypeID       uint       `json:"exam_type_id"`
	AcademicYearID   uint       `json:"academic_year_id"`
	Term             int        `json:"term"`
	Score            float64    `json:"score"`
	Absent           bool       `json:"absent"`
	Comment          string     `json:"comment"`
	CommentUpdatedAt *time.Time `json:"comment_updated_at"`
}

// NewScoreResponse maps the model to its API shape.
func NewScoreResponse(score models.ExamScore) ScoreResponse {
	return ScoreResponse{
		ID:               score.ID,
		StudentID:        score.StudentID,
		SubjectID:        score.SubjectID,
		ExamTypeID:       score.ExamTypeID,
		AcademicYearID:   score.AcademicYearID,
		Term:             score.Term,
		Score:            score.Score,
		Absent:           score.Absent,
		Comment:          score.Comment,
		CommentUpdatedAt: score.CommentUpdatedAt,
	}
}
