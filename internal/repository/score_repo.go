package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/andray-nkhatel/schoolerp-api/internal/models"
)

// ScoreKey identifies the unique exam score tuple.
type ScoreKey struct {
	StudentID      uint
	SubjectID      uint
	ExamTypeID     uint
	AcademicYearID uint
	Term           int
}

// ScoreUpdate carries the writable fields of a score entry.
type ScoreUpdate struct {
	Score        float64
	Absent       bool
	Comment      string
	RecordedByID uint
}

// ScoreRepository persists exam scores keyed by (student, subject, exam
// type, academic year, term).
type ScoreRepository interface {
	// Upsert writes a score for the key, updating the existing row when one
	// exists rather than creating a duplicate. Comment metadata is only
	// touched when the comment text actually changes.
	Upsert(ctx context.Context, key ScoreKey, update ScoreUpdate) (models.ExamScore, error)
	// ForStudent returns all scores for a student in one (year, term)
	// context with subject and exam type preloaded.
	ForStudent(ctx context.Context, studentID, academicYearID uint, term int) ([]models.ExamScore, error)
}

type scoreRepository struct {
	db *gorm.DB
}

// NewScoreRepository constructs the score repository.
func NewScoreRepository(db *gorm.DB) ScoreRepository {
	return &scoreRepository{db: db}
}

func (r *scoreRepository) Upsert(ctx context.Context, key ScoreKey, update ScoreUpdate) (models.ExamScore, error) {
	var result models.ExamScore

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.ExamScore
		err := tx.Where(&models.ExamScore{
			StudentID:      key.StudentID,
			SubjectID:      key.SubjectID,
			ExamTypeID:     key.ExamTypeID,
			AcademicYearID: key.AcademicYearID,
			Term:           key.Term,
		}).First(&existing).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			created := models.ExamScore{
				StudentID:      key.StudentID,
				SubjectID:      key.SubjectID,
				ExamTypeID:     key.ExamTypeID,
				AcademicYearID: key.AcademicYearID,
				Term:           key.Term,
				Score:          update.Score,
				Absent:         update.Absent,
				Comment:        update.Comment,
				RecordedByID:   update.RecordedByID,
			}
			if update.Comment != "" {
				now := time.Now()
				created.CommentUpdatedAt = &now
				created.CommentUpdatedByID = &update.RecordedByID
			}
			if err := tx.Create(&created).Error; err != nil {
				return err
			}
			result = created
			return nil
		}
		if err != nil {
			return err
		}

		existing.Score = update.Score
		existing.Absent = update.Absent
		existing.RecordedByID = update.RecordedByID
		if existing.Comment != update.Comment {
			existing.Comment = update.Comment
			now := time.Now()
			existing.CommentUpdatedAt = &now
			existing.CommentUpdatedByID = &update.RecordedByID
		}

		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		result = existing
		return nil
	})
	if err != nil {
		return models.ExamScore{}, err
	}
	return result, nil
}

func (r *scoreRepository) ForStudent(ctx context.Context, studentID, academicYearID uint, term int) ([]models.ExamScore, error) {
	var scores []models.ExamScore
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Preload("ExamType").
		Where("student_id = ?", studentID).
		Where("academic_year_id = ?", academicYearID).
		Where("term = ?", term).
		Order("subject_id").
		Find(&scores).Error
	if err != nil {
		return nil, err
	}
	return scores, nil
}
