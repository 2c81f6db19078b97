package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/andray-nkhatel/schoolerp-api/internal/apperr"
	"github.com/andray-nkhatel/schoolerp-api/internal/dto"
	"github.com/andray-nkhatel/schoolerp-api/internal/repository"
)

// ScoreService validates and persists exam score entries.
type ScoreService interface {
	Upsert(ctx context.Context, req dto.ScoreUpsertRequest, recordedBy uint) (dto.ScoreResponse, error)
	ForStudent(ctx context.Context, studentID, academicYearID uint, term int) ([]dto.ScoreResponse, error)
}

type scoreService struct {
	scores    repository.ScoreRepository
	students  repository.StudentRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewScoreService constructs the score service.
func NewScoreService(scores repository.ScoreRepository, students repository.StudentRepository, v *validator.Validate, logger zerolog.Logger) ScoreService {
	return &scoreService{
		scores:    scores,
		students:  students,
		validator: v,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "score_service").Logger(),
	}
}

func (s *scoreService) Upsert(ctx context.Context, req dto.ScoreUpsertRequest, recordedBy uint) (dto.ScoreResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ScoreResponse{}, apperr.Wrap(apperr.KindValidation, "invalid score entry", err)
	}
	if recordedBy == 0 {
		return dto.ScoreResponse{}, apperr.Validationf("recording user id must be positive")
	}

	if _, err := s.students.GetByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ScoreResponse{}, apperr.NotFoundf("student %d not found", req.StudentID)
		}
		return dto.ScoreResponse{}, err
	}

	score, err := s.scores.Upsert(ctx, repository.ScoreKey{
		StudentID:      req.StudentID,
		SubjectID:      req.SubjectID,
		ExamTypeID:     req.ExamTypeID,
		AcademicYearID: req.AcademicYearID,
		Term:           req.Term,
	}, repository.ScoreUpdate{
		Score:        req.Score,
		Absent:       req.Absent,
		Comment:      strings.TrimSpace(s.sanitizer.Sanitize(req.Comment)),
		RecordedByID: recordedBy,
	})
	if err != nil {
		return dto.ScoreResponse{}, err
	}

	return dto.NewScoreResponse(score), nil
}

func (s *scoreService) ForStudent(ctx context.Context, studentID, academicYearID uint, term int) ([]dto.ScoreResponse, error) {
	if term < 1 || term > 4 {
		return nil, apperr.Validationf("term %d outside 1..4", term)
	}

	scores, err := s.scores.ForStudent(ctx, studentID, academicYearID, term)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ScoreResponse, 0, len(scores))
	for _, score := range scores {
		responses = append(responses, dto.NewScoreResponse(score))
	}
	return responses, nil
}
