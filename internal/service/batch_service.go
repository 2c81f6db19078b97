package service

import (
	"context"
	"errors"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/andray-nkhatel/schoolerp-api/internal/apperr"
	"github.com/andray-nkhatel/schoolerp-api/internal/dto"
	"github.com/andray-nkhatel/schoolerp-api/internal/models"
	"github.com/andray-nkhatel/schoolerp-api/internal/observability"
	"github.com/andray-nkhatel/schoolerp-api/internal/repository"
)

const (
	// Students are processed in fixed-size batches so a huge grade never
	// floods the scheduler with goroutines at once.
	batchSize = 40

	// Transient failures get this many additional attempts.
	maxRetries = 2

	retryBaseDelay = 50 * time.Millisecond

	// At most this many student ids are itemised per failure group.
	failureSampleLimit = 10
)

// BatchService generates report cards for every active student of a grade.
type BatchService interface {
	GenerateForGrade(ctx context.Context, req dto.BatchGenerateRequest, requestedBy uint) (dto.BatchResultResponse, error)
}

type batchService struct {
	cards     ReportCardService
	grades    repository.GradeRepository
	students  repository.StudentRepository
	users     repository.UserRepository
	years     repository.AcademicYearRepository
	validator *validator.Validate
	tracer    trace.Tracer
	logger    zerolog.Logger

	// sleep is swapped out in tests to keep retry backoff instant.
	sleep func(time.Duration)
}

// NewBatchService constructs the batch generation service.
func NewBatchService(cards ReportCardService, grades repository.GradeRepository, students repository.StudentRepository, users repository.UserRepository, years repository.AcademicYearRepository, v *validator.Validate, logger zerolog.Logger) BatchService {
	return &batchService{
		cards:     cards,
		grades:    grades,
		students:  students,
		users:     users,
		years:     years,
		validator: v,
		tracer:    otel.Tracer("schoolerp/batch"),
		logger:    logger.With().Str("component", "batch_service").Logger(),
		sleep:     time.Sleep,
	}
}

type studentResult struct {
	studentID uint
	card      dto.ReportCardResponse
	err       error
}

func (s *batchService) GenerateForGrade(ctx context.Context, req dto.BatchGenerateRequest, requestedBy uint) (dto.BatchResultResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.BatchResultResponse{}, apperr.Wrap(apperr.KindValidation, "invalid batch request", err)
	}

	ctx, span := s.tracer.Start(ctx, "batch.generate_for_grade",
		trace.WithAttributes(
			attribute.Int64("grade.id", int64(req.GradeID)),
			attribute.Int("term", req.Term),
		))
	defer span.End()

	started := time.Now()
	defer func() {
		observability.BatchDuration().Observe(time.Since(started).Seconds())
	}()

	// Shared references fail the whole call up front rather than once per
	// student inside the fan-out.
	if requestedBy == 0 {
		return dto.BatchResultResponse{}, apperr.Validationf("requesting user id must be positive")
	}
	if _, err := s.users.GetByID(ctx, requestedBy); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.BatchResultResponse{}, apperr.NotFoundf("user %d not found", requestedBy)
		}
		return dto.BatchResultResponse{}, err
	}

	year, err := s.years.GetByID(ctx, req.AcademicYearID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.BatchResultResponse{}, apperr.NotFoundf("academic year %d not found", req.AcademicYearID)
		}
		return dto.BatchResultResponse{}, err
	}
	if year.Year < minAcademicYear || year.Year > maxAcademicYear {
		return dto.BatchResultResponse{}, apperr.Validationf("academic year %d outside supported range", year.Year)
	}

	if _, err := s.grades.GetByID(ctx, req.GradeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.BatchResultResponse{}, apperr.NotFoundf("grade %d not found", req.GradeID)
		}
		return dto.BatchResultResponse{}, err
	}

	students, err := s.students.ListActiveByGrade(ctx, req.GradeID)
	if err != nil {
		return dto.BatchResultResponse{}, err
	}

	span.SetAttributes(attribute.Int("students.count", len(students)))

	// One semaphore spans the whole run so consecutive batches cannot stack
	// their concurrency on top of each other.
	semaphore := make(chan struct{}, 2*runtime.GOMAXPROCS(0))
	results := make([]studentResult, 0, len(students))

	for start := 0; start < len(students); start += batchSize {
		end := start + batchSize
		if end > len(students) {
			end = len(students)
		}
		results = append(results, s.runBatch(ctx, students[start:end], req, requestedBy, semaphore)...)
	}

	response := dto.BatchResultResponse{
		GradeID:   req.GradeID,
		Term:      req.Term,
		Requested: len(students),
		Created:   make([]dto.ReportCardResponse, 0, len(students)),
	}

	groups := make(map[apperr.Kind]*dto.FailureGroup)
	order := make([]apperr.Kind, 0)

	for _, result := range results {
		if result.err == nil {
			response.Created = append(response.Created, result.card)
			continue
		}

		kind := apperr.KindOf(result.err)
		observability.BatchFailures().WithLabelValues(string(kind)).Inc()

		group, ok := groups[kind]
		if !ok {
			group = &dto.FailureGroup{
				Category: string(kind),
				Message:  apperr.Message(result.err),
			}
			groups[kind] = group
			order = append(order, kind)
		}
		group.Count++
		if len(group.SampleStudents) < failureSampleLimit {
			group.SampleStudents = append(group.SampleStudents, result.studentID)
		} else {
			group.Truncated++
		}
	}

	for _, kind := range order {
		response.Failures = append(response.Failures, *groups[kind])
	}

	if len(response.Failures) > 0 {
		s.logger.Warn().
			Uint("grade_id", req.GradeID).
			Int("requested", response.Requested).
			Int("created", len(response.Created)).
			Int("failure_groups", len(response.Failures)).
			Msg("batch generation finished with failures")
	} else {
		s.logger.Info().
			Uint("grade_id", req.GradeID).
			Int("created", len(response.Created)).
			Msg("batch generation finished")
	}

	return response, nil
}

func (s *batchService) runBatch(ctx context.Context, students []models.Student, req dto.BatchGenerateRequest, requestedBy uint, semaphore chan struct{}) []studentResult {
	out := make(chan studentResult, len(students))
	var wg sync.WaitGroup

	for _, student := range students {
		wg.Add(1)
		go func(student models.Student) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			card, err := s.ensureWithRetry(ctx, student.ID, req, requestedBy)
			out <- studentResult{studentID: student.ID, card: card, err: err}
		}(student)
	}

	wg.Wait()
	close(out)

	results := make([]studentResult, 0, len(students))
	for result := range out {
		results = append(results, result)
	}
	return results
}

// ensureWithRetry retries transient failures only; validation, not-found and
// authorization errors are deterministic and fail immediately.
func (s *batchService) ensureWithRetry(ctx context.Context, studentID uint, req dto.BatchGenerateRequest, requestedBy uint) (dto.ReportCardResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * retryBaseDelay
			jitter := time.Duration(rand.Int63n(int64(retryBaseDelay)))
			s.sleep(backoff + jitter)
		}

		if err := ctx.Err(); err != nil {
			return dto.ReportCardResponse{}, apperr.Wrap(apperr.KindTransient, "batch cancelled", err)
		}

		card, err := s.cards.Ensure(ctx, dto.EnsureReportCardRequest{
			StudentID:      studentID,
			AcademicYearID: req.AcademicYearID,
			Term:           req.Term,
		}, requestedBy)
		if err == nil {
			return card, nil
		}

		lastErr = err
		if apperr.KindOf(err) != apperr.KindTransient {
			return dto.ReportCardResponse{}, err
		}
		s.logger.Debug().Err(err).Uint("student_id", studentID).Int("attempt", attempt+1).Msg("retrying transient failure")
	}

	return dto.ReportCardResponse{}, lastErr
}
