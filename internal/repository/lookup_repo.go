package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/andray-nkhatel/schoolerp-api/internal/models"
)

// AcademicYearRepository resolves academic year references.
type AcademicYearRepository interface {
	GetByID(ctx context.Context, id uint) (models.AcademicYear, error)
}

type academicYearRepository struct {
	db *gorm.DB
}

// NewAcademicYearRepository constructs the academic year repository.
func NewAcademicYearRepository(db *gorm.DB) AcademicYearRepository {
	return &academicYearRepository{db: db}
}

func (r *academicYearRepository) GetByID(ctx context.Context, id uint) (models.AcademicYear, error) {
	var year models.AcademicYear
	if err := r.db.WithContext(ctx).First(&year, id).Error; err != nil {
		return models.AcademicYear{}, err
	}
	return year, nil
}

// GradeRepository resolves grade references including the homeroom teacher.
type GradeRepository interface {
	GetByID(ctx context.Context, id uint) (models.Grade, error)
}

type gradeRepository struct {
	db *gorm.DB
}

// NewGradeRepository constructs the grade repository.
func NewGradeRepository(db *gorm.DB) GradeRepository {
	return &gradeRepository{db: db}
}

func (r *gradeRepository) GetByID(ctx context.Context, id uint) (models.Grade, error) {
	var grade models.Grade
	if err := r.db.WithContext(ctx).Preload("HomeroomTeacher").First(&grade, id).Error; err != nil {
		return models.Grade{}, err
	}
	return grade, nil
}

// UserRepository resolves user references.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs the user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}
