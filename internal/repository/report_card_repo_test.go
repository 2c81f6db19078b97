package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/andray-nkhatel/schoolerp-api/internal/grading"
	"github.com/andray-nkhatel/schoolerp-api/internal/models"
)

func setupTestDB(t *testing.T, entities ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(entities...))
	return db
}

func seedStudent(t *testing.T, db *gorm.DB) models.Student {
	t.Helper()
	teacher := models.User{FullName: "Agnes Phiri", Email: fmt.Sprintf("agnes_%s@school.test", t.Name()), Role: models.RoleTeacher}
	require.NoError(t, db.Create(&teacher).Error)

	grade := models.Grade{Name: "Grade 9A", Section: grading.SectionJuniorSecondary, HomeroomTeacherID: &teacher.ID}
	require.NoError(t, db.Create(&grade).Error)

	student := models.Student{
		FirstName:       "Chanda",
		LastName:        "Mwale",
		AdmissionNumber: fmt.Sprintf("ADM-%s", t.Name()),
		GradeID:         grade.ID,
	}
	require.NoError(t, db.Create(&student).Error)
	return student
}

func TestReportCardEnsureIsIdempotent(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.Grade{}, &models.Student{}, &models.AcademicYear{}, &models.ReportCard{})
	repo := NewReportCardRepository(db)

	student := seedStudent(t, db)
	year := models.AcademicYear{Name: "2025", Year: 2025, Active: true}
	require.NoError(t, db.Create(&year).Error)

	card := models.ReportCard{
		StudentID:      student.ID,
		GradeID:        student.GradeID,
		AcademicYearID: year.ID,
		Term:           1,
		GeneratedByID:  1,
	}

	first, created, err := repo.Ensure(context.Background(), card)
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := repo.Ensure(context.Background(), card)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.ReportCard{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestReportCardGetByIDPreloadsRelations(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.Grade{}, &models.Student{}, &models.AcademicYear{}, &models.ReportCard{})
	repo := NewReportCardRepository(db)

	student := seedStudent(t, db)
	year := models.AcademicYear{Name: "2025", Year: 2025}
	require.NoError(t, db.Create(&year).Error)

	card, _, err := repo.Ensure(context.Background(), models.ReportCard{
		StudentID:      student.ID,
		GradeID:        student.GradeID,
		AcademicYearID: year.ID,
		Term:           2,
		GeneratedByID:  1,
	})
	require.NoError(t, err)

	loaded, err := repo.GetByID(context.Background(), card.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Student)
	require.NotNil(t, loaded.Student.Grade)
	require.NotNil(t, loaded.Grade)
	require.Equal(t, "Chanda Mwale", loaded.Student.FullName())
}

func TestReportCardUpdateCommentMissingRow(t *testing.T) {
	db := setupTestDB(t, &models.ReportCard{})
	repo := NewReportCardRepository(db)

	err := repo.UpdateComment(context.Background(), 99, "well done", 1, time.Now())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestReportCardDeleteAll(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.Grade{}, &models.Student{}, &models.AcademicYear{}, &models.ReportCard{})
	repo := NewReportCardRepository(db)

	student := seedStudent(t, db)
	year := models.AcademicYear{Name: "2025", Year: 2025}
	require.NoError(t, db.Create(&year).Error)

	for term := 1; term <= 3; term++ {
		_, _, err := repo.Ensure(context.Background(), models.ReportCard{
			StudentID:      student.ID,
			GradeID:        student.GradeID,
			AcademicYearID: year.ID,
			Term:           term,
			GeneratedByID:  1,
		})
		require.NoError(t, err)
	}

	require.NoError(t, repo.DeleteAll(context.Background()))

	var count int64
	require.NoError(t, db.Model(&models.ReportCard{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestReportCardListByStudent(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.Grade{}, &models.Student{}, &models.AcademicYear{}, &models.ReportCard{})
	repo := NewReportCardRepository(db)

	student := seedStudent(t, db)
	year := models.AcademicYear{Name: "2025", Year: 2025}
	require.NoError(t, db.Create(&year).Error)

	for term := 1; term <= 2; term++ {
		_, _, err := repo.Ensure(context.Background(), models.ReportCard{
			StudentID:      student.ID,
			GradeID:        student.GradeID,
			AcademicYearID: year.ID,
			Term:           term,
			GeneratedByID:  1,
		})
		require.NoError(t, err)
	}

	cards, err := repo.ListByStudent(context.Background(), student.ID)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	require.Equal(t, 2, cards[0].Term, "latest term first")
}
