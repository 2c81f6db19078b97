package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/andray-nkhatel/schoolerp-api/internal/apperr"
	"github.com/andray-nkhatel/schoolerp-api/internal/dto"
	"github.com/andray-nkhatel/schoolerp-api/internal/grading"
	"github.com/andray-nkhatel/schoolerp-api/internal/repository"
)

func newScoreService(t *testing.T, fx schoolFixture) ScoreService {
	t.Helper()
	return NewScoreService(
		repository.NewScoreRepository(fx.db),
		repository.NewStudentRepository(fx.db),
		validator.New(),
		zerolog.Nop(),
	)
}

func scoreRequest(fx schoolFixture, score float64) dto.ScoreUpsertRequest {
	return dto.ScoreUpsertRequest{
		StudentID:      fx.student.ID,
		SubjectID:      fx.subject.ID,
		ExamTypeID:     fx.examType.ID,
		AcademicYearID: fx.year.ID,
		Term:           1,
		Score:          score,
	}
}

func TestScoreUpsertCreatesThenUpdates(t *testing.T) {
	fx := seedSchool(t, newServiceDB(t), grading.SectionJuniorSecondary)
	svc := newScoreService(t, fx)

	first, err := svc.Upsert(context.Background(), scoreRequest(fx, 72), fx.homeroom.ID)
	require.NoError(t, err)
	require.Equal(t, 72.0, first.Score)

	second, err := svc.Upsert(context.Background(), scoreRequest(fx, 88), fx.homeroom.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID, "same key must update in place")
	require.Equal(t, 88.0, second.Score)

	stored, err := svc.ForStudent(context.Background(), fx.student.ID, fx.year.ID, 1)
	require.NoError(t, err)
	require.Len(t, stored, 1)
}

func TestScoreUpsertRejectsOutOfRangeScore(t *testing.T) {
	fx := seedSchool(t, newServiceDB(t), grading.SectionJuniorSecondary)
	svc := newScoreService(t, fx)

	_, err := svc.Upsert(context.Background(), scoreRequest(fx, 150), fx.homeroom.ID)
	require.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.Upsert(context.Background(), scoreRequest(fx, -3), fx.homeroom.ID)
	require.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestScoreUpsertUnknownStudent(t *testing.T) {
	fx := seedSchool(t, newServiceDB(t), grading.SectionJuniorSecondary)
	svc := newScoreService(t, fx)

	req := scoreRequest(fx, 60)
	req.StudentID = 8888

	_, err := svc.Upsert(context.Background(), req, fx.homeroom.ID)
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestScoreUpsertSanitisesComment(t *testing.T) {
	fx := seedSchool(t, newServiceDB(t), grading.SectionJuniorSecondary)
	svc := newScoreService(t, fx)

	req := scoreRequest(fx, 64)
	req.Comment = "<b>solid</b> improvement"

	score, err := svc.Upsert(context.Background(), req, fx.homeroom.ID)
	require.NoError(t, err)
	require.Equal(t, "solid improvement", score.Comment)
	require.NotNil(t, score.CommentUpdatedAt)
}

func TestScoreForStudentRejectsBadTerm(t *testing.T) {
	fx := seedSchool(t, newServiceDB(t), grading.SectionJuniorSecondary)
	svc := newScoreService(t, fx)

	_, err := svc.ForStudent(context.Background(), fx.student.ID, fx.year.ID, 0)
	require.True(t, apperr.IsKind(err, apperr.KindValidation))
}
