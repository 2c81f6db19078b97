package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/andray-nkhatel/schoolerp-api/internal/models"
)

// ReportCardRepository persists report card records.
type ReportCardRepository interface {
	// Ensure returns the report card for (student, year, term), creating it
	// when absent. The boolean reports whether a new row was created. A
	// concurrent creation of the same tuple resolves to the winner's row.
	Ensure(ctx context.Context, card models.ReportCard) (models.ReportCard, bool, error)
	GetByID(ctx context.Context, id uint) (models.ReportCard, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.ReportCard, error)
	UpdateComment(ctx context.Context, id uint, comment string, editorID uint, editedAt time.Time) error
	DeleteAll(ctx context.Context) error
}

type reportCardRepository struct {
	db *gorm.DB
}

// NewReportCardRepository constructs the report card repository.
func NewReportCardRepository(db *gorm.DB) ReportCardRepository {
	return &reportCardRepository{db: db}
}

func (r *reportCardRepository) Ensure(ctx context.Context, card models.ReportCard) (models.ReportCard, bool, error) {
	existing, err := r.getByTuple(ctx, card.StudentID, card.AcademicYearID, card.Term)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ReportCard{}, false, err
	}

	if err := r.db.WithContext(ctx).Create(&card).Error; err != nil {
		// Another worker may have created the tuple between the lookup and
		// the insert; the unique index makes that a lost race, not an error.
		if isUniqueViolation(err) {
			winner, lookupErr := r.getByTuple(ctx, card.StudentID, card.AcademicYearID, card.Term)
			if lookupErr != nil {
				return models.ReportCard{}, false, lookupErr
			}
			return winner, false, nil
		}
		return models.ReportCard{}, false, err
	}

	return card, true, nil
}

func (r *reportCardRepository) getByTuple(ctx context.Context, studentID, academicYearID uint, term int) (models.ReportCard, error) {
	var card models.ReportCard
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("academic_year_id = ?", academicYearID).
		Where("term = ?", term).
		First(&card).Error
	if err != nil {
		return models.ReportCard{}, err
	}
	return card, nil
}

func (r *reportCardRepository) GetByID(ctx context.Context, id uint) (models.ReportCard, error) {
	var card models.ReportCard
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Student.Grade").
		Preload("Grade").
		Preload("AcademicYear").
		First(&card, id).Error
	if err != nil {
		return models.ReportCard{}, err
	}
	return card, nil
}

func (r *reportCardRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.ReportCard, error) {
	var cards []models.ReportCard
	err := r.db.WithContext(ctx).
		Preload("AcademicYear").
		Where("student_id = ?", studentID).
		Order("academic_year_id DESC, term DESC").
		Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *reportCardRepository) UpdateComment(ctx context.Context, id uint, comment string, editorID uint, editedAt time.Time) error {
	update := r.db.WithContext(ctx).Model(&models.ReportCard{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"general_comment":               comment,
			"general_comment_updated_at":    editedAt,
			"general_comment_updated_by_id": editorID,
		})
	if update.Error != nil {
		return update.Error
	}
	if update.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *reportCardRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.ReportCard{}).Error
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	text := strings.ToLower(err.Error())
	return strings.Contains(text, "duplicate key") || strings.Contains(text, "unique constraint")
}
