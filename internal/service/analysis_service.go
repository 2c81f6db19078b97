package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/andray-nkhatel/schoolerp-api/internal/apperr"
	"github.com/andray-nkhatel/schoolerp-api/internal/dto"
	"github.com/andray-nkhatel/schoolerp-api/internal/grading"
	"github.com/andray-nkhatel/schoolerp-api/internal/repository"
)

// AnalysisService computes ranked class views from stored exam scores.
type AnalysisService interface {
	AnalyzeClass(ctx context.Context, req dto.ClassAnalysisRequest) (dto.ClassAnalysisResponse, error)
}

type analysisService struct {
	grades    repository.GradeRepository
	students  repository.StudentRepository
	scores    repository.ScoreRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAnalysisService constructs the analysis service.
func NewAnalysisService(grades repository.GradeRepository, students repository.StudentRepository, scores repository.ScoreRepository, v *validator.Validate, logger zerolog.Logger) AnalysisService {
	return &analysisService{
		grades:    grades,
		students:  students,
		scores:    scores,
		validator: v,
		logger:    logger.With().Str("component", "analysis_service").Logger(),
	}
}

func (s *analysisService) AnalyzeClass(ctx context.Context, req dto.ClassAnalysisRequest) (dto.ClassAnalysisResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ClassAnalysisResponse{}, apperr.Wrap(apperr.KindValidation, "invalid analysis request", err)
	}

	grade, err := s.grades.GetByID(ctx, req.GradeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassAnalysisResponse{}, apperr.NotFoundf("grade %d not found", req.GradeID)
		}
		return dto.ClassAnalysisResponse{}, err
	}

	students, err := s.students.ListActiveByGrade(ctx, req.GradeID)
	if err != nil {
		return dto.ClassAnalysisResponse{}, err
	}

	names := make(map[uint]string, len(students))
	outcomes := make([]grading.StudentOutcome, 0, len(students))
	for _, student := range students {
		scores, err := s.scores.ForStudent(ctx, student.ID, req.AcademicYearID, req.Term)
		if err != nil {
			return dto.ClassAnalysisResponse{}, err
		}
		// Students without a single score stay out of the ranking entirely.
		if len(scores) == 0 {
			continue
		}
		names[student.ID] = student.FullName()
		outcomes = append(outcomes, grading.StudentOutcome{
			StudentID: student.ID,
			Outcome:   grading.Certify(grade.Section, subjectScores(scores)),
		})
	}

	summary := grading.Rank(outcomes)

	ranked := make([]dto.RankedStudentResponse, 0, len(summary.Ranked))
	for _, entry := range summary.Ranked {
		ranked = append(ranked, dto.RankedStudentResponse{
			StudentID:   entry.StudentID,
			StudentName: names[entry.StudentID],
			Position:    entry.Position,
			Total:       entry.Outcome.Total,
			TotalPoints: entry.Outcome.TotalPoints,
			Certificate: entry.Outcome.Certificate,
		})
	}

	averages := make([]dto.SubjectAverageResponse, 0, len(summary.SubjectAverages))
	for _, avg := range summary.SubjectAverages {
		averages = append(averages, dto.SubjectAverageResponse{
			Subject:    avg.Subject,
			MeanScore:  avg.MeanScore,
			MeanPoints: avg.MeanPoints,
		})
	}

	return dto.ClassAnalysisResponse{
		GradeID:          grade.ID,
		GradeName:        grade.Name,
		Term:             req.Term,
		Students:         ranked,
		SubjectAverages:  averages,
		CertificateCount: summary.CertificateCount,
	}, nil
}
