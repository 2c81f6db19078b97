package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/andray-nkhatel/schoolerp-api/internal/models"
)

// StudentRepository exposes persistence helpers for student lookups.
type StudentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Student, error)
	ListActiveByGrade(ctx context.Context, gradeID uint) ([]models.Student, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs the student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	query := r.db.WithContext(ctx).Preload("Grade").Preload("Grade.HomeroomTeacher")
	if err := query.First(&student, id).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) ListActiveByGrade(ctx context.Context, gradeID uint) ([]models.Student, error) {
	var students []models.Student
	err := r.db.WithContext(ctx).
		Where("grade_id = ?", gradeID).
		Where("archived = ?", false).
		Order("last_name, first_name").
		Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}
