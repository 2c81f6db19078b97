package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/andray-nkhatel/schoolerp-api/internal/apperr"
	"github.com/andray-nkhatel/schoolerp-api/internal/dto"
	"github.com/andray-nkhatel/schoolerp-api/internal/grading"
	"github.com/andray-nkhatel/schoolerp-api/internal/models"
	"github.com/andray-nkhatel/schoolerp-api/internal/observability"
	"github.com/andray-nkhatel/schoolerp-api/internal/repository"
	"github.com/andray-nkhatel/schoolerp-api/pkg/mailer"
	"github.com/andray-nkhatel/schoolerp-api/pkg/render"
)

const (
	// Rendered documents stay cached briefly; score edits become visible
	// after expiry without any invalidation plumbing.
	documentCacheTTL = 10 * time.Minute
	listCacheTTL     = 30 * time.Minute

	maxCommentLength = 2000

	minAcademicYear = 2000
	maxAcademicYear = 2100
)

// ReportCardService orchestrates report card creation, rendering and
// comment management.
type ReportCardService interface {
	Ensure(ctx context.Context, req dto.EnsureReportCardRequest, requestedBy uint) (dto.ReportCardResponse, error)
	Document(ctx context.Context, reportCardID uint) ([]byte, error)
	Comment(ctx context.Context, reportCardID uint) (string, error)
	UpdateComment(ctx context.Context, reportCardID uint, text string, editorID uint) error
	CanEditComment(ctx context.Context, reportCardID, editorID uint) (bool, error)
	ListForStudent(ctx context.Context, studentID uint) ([]dto.ReportCardResponse, error)
	DeleteAll(ctx context.Context, actor ActivityActor) error
}

// ReportCardDeps groups the collaborators of the report card service.
type ReportCardDeps struct {
	Cards    repository.ReportCardRepository
	Students repository.StudentRepository
	Users    repository.UserRepository
	Years    repository.AcademicYearRepository
	Scores   repository.ScoreRepository
	Cache    DocumentCache
	Renderer render.Renderer
	Notifier mailer.Sender
	// NotifyAddress receives a copy of every newly created report card.
	// Empty disables the side channel.
	NotifyAddress string
	Validator     *validator.Validate
	Activity      ActivityRecorder
	Logger        zerolog.Logger
	// DocumentTTL and ListTTL override the default cache lifetimes when
	// positive.
	DocumentTTL time.Duration
	ListTTL     time.Duration
}

type reportCardService struct {
	cards         repository.ReportCardRepository
	students      repository.StudentRepository
	users         repository.UserRepository
	years         repository.AcademicYearRepository
	scores        repository.ScoreRepository
	cache         DocumentCache
	renderer      render.Renderer
	notifier      mailer.Sender
	notifyAddress string
	validator     *validator.Validate
	activity      ActivityRecorder
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
	documentTTL   time.Duration
	listTTL       time.Duration
	now           func() time.Time
}

// NewReportCardService constructs the report card service.
func NewReportCardService(deps ReportCardDeps) ReportCardService {
	if deps.DocumentTTL <= 0 {
		deps.DocumentTTL = documentCacheTTL
	}
	if deps.ListTTL <= 0 {
		deps.ListTTL = listCacheTTL
	}
	return &reportCardService{
		cards:         deps.Cards,
		students:      deps.Students,
		users:         deps.Users,
		years:         deps.Years,
		scores:        deps.Scores,
		cache:         deps.Cache,
		renderer:      deps.Renderer,
		notifier:      deps.Notifier,
		notifyAddress: deps.NotifyAddress,
		validator:     deps.Validator,
		activity:      deps.Activity,
		sanitizer:     bluemonday.StrictPolicy(),
		logger:        deps.Logger.With().Str("component", "report_card_service").Logger(),
		documentTTL:   deps.DocumentTTL,
		listTTL:       deps.ListTTL,
		now:           time.Now,
	}
}

func (s *reportCardService) Ensure(ctx context.Context, req dto.EnsureReportCardRequest, requestedBy uint) (dto.ReportCardResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ReportCardResponse{}, apperr.Wrap(apperr.KindValidation, "invalid report card request", err)
	}
	if requestedBy == 0 {
		return dto.ReportCardResponse{}, apperr.Validationf("requesting user id must be positive")
	}

	year, err := s.years.GetByID(ctx, req.AcademicYearID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReportCardResponse{}, apperr.NotFoundf("academic year %d not found", req.AcademicYearID)
		}
		return dto.ReportCardResponse{}, err
	}
	if year.Year < minAcademicYear || year.Year > maxAcademicYear {
		return dto.ReportCardResponse{}, apperr.Validationf("academic year %d outside supported range", year.Year)
	}

	student, err := s.students.GetByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReportCardResponse{}, apperr.NotFoundf("student %d not found", req.StudentID)
		}
		return dto.ReportCardResponse{}, err
	}

	requester, err := s.users.GetByID(ctx, requestedBy)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReportCardResponse{}, apperr.NotFoundf("user %d not found", requestedBy)
		}
		return dto.ReportCardResponse{}, err
	}

	card, created, err := s.cards.Ensure(ctx, models.ReportCard{
		StudentID:      student.ID,
		GradeID:        student.GradeID,
		AcademicYearID: year.ID,
		Term:           req.Term,
		GeneratedByID:  requester.ID,
	})
	if err != nil {
		return dto.ReportCardResponse{}, err
	}

	if created {
		observability.ReportCards().WithLabelValues("created").Inc()
		s.recordActivity(ctx, requester, "report_card.created", card.ID, map[string]interface{}{
			"student_id": student.ID,
			"term":       req.Term,
		})
		s.notifyCreated(ctx, card, student, year)
	} else {
		observability.ReportCards().WithLabelValues("existing").Inc()
	}

	return dto.NewReportCardResponse(card), nil
}

// notifyCreated delivers the freshly rendered document to the configured
// recipient. Delivery is at-least-once relative to nothing: the report card
// stays durable whether or not the message arrives.
func (s *reportCardService) notifyCreated(ctx context.Context, card models.ReportCard, student models.Student, year models.AcademicYear) {
	if s.notifier == nil || s.notifyAddress == "" {
		return
	}

	document, err := s.renderForStudent(ctx, card, student, year)
	if err != nil {
		s.logger.Warn().Err(err).Uint("report_card_id", card.ID).Msg("skipping notification, render failed")
		return
	}

	subject := fmt.Sprintf("Report card: %s, term %d %s", student.FullName(), card.Term, year.Name)
	body := fmt.Sprintf("The report card for %s (term %d, %s) is attached.", student.FullName(), card.Term, year.Name)
	filename := fmt.Sprintf("report-card-%d-%d-%d.html", card.StudentID, year.Year, card.Term)

	if err := s.notifier.SendWithAttachment(ctx, s.notifyAddress, subject, body, document, filename); err != nil {
		delivery := apperr.Wrap(apperr.KindDelivery, "report card notification failed", err)
		s.logger.Warn().Err(delivery).Uint("report_card_id", card.ID).Msg("notification dispatch failed")
	}
}

func (s *reportCardService) Document(ctx context.Context, reportCardID uint) ([]byte, error) {
	cacheKey := fmt.Sprintf("reportcard:doc:%d", reportCardID)

	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, cacheKey); err != nil {
			s.logger.Warn().Err(err).Msg("failed to read document cache")
		} else if ok {
			observability.DocumentCacheHits().Inc()
			s.logger.Debug().Uint("report_card_id", reportCardID).Msg("document cache hit")
			return cached, nil
		}
	}
	observability.DocumentCacheMisses().Inc()

	card, err := s.cards.GetByID(ctx, reportCardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("report card %d not found", reportCardID)
		}
		return nil, err
	}
	if card.Student == nil {
		return nil, apperr.NotFoundf("report card %d has no student record", reportCardID)
	}
	if card.Student.Grade == nil {
		return nil, apperr.NotFoundf("report card %d student has no grade record", reportCardID)
	}

	year := models.AcademicYear{ID: card.AcademicYearID}
	if card.AcademicYear != nil {
		year = *card.AcademicYear
	}

	document, err := s.renderForStudent(ctx, card, *card.Student, year)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, document, s.documentTTL); err != nil {
			s.logger.Warn().Err(err).Msg("failed to store document cache")
		}
	}

	return document, nil
}

func (s *reportCardService) renderForStudent(ctx context.Context, card models.ReportCard, student models.Student, year models.AcademicYear) ([]byte, error) {
	scores, err := s.scores.ForStudent(ctx, student.ID, card.AcademicYearID, card.Term)
	if err != nil {
		return nil, err
	}

	section := grading.SectionPrimary
	if student.Grade != nil {
		section = student.Grade.Section
	}
	outcome := grading.Certify(section, subjectScores(scores))

	gradeName := ""
	if student.Grade != nil {
		gradeName = student.Grade.Name
	}

	data := render.ReportData{
		StudentName:     student.FullName(),
		AdmissionNumber: student.AdmissionNumber,
		GradeName:       gradeName,
		AcademicYear:    year.Name,
		Term:            card.Term,
		Subjects:        subjectLines(scores, outcome),
		Total:           outcome.Total,
		TotalPoints:     outcome.TotalPoints,
		Certificate:     outcome.Certificate,
		GeneralComment:  card.GeneralComment,
		GeneratedAt:     s.now(),
	}

	document, err := s.renderer.Render(ctx, data)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindRender, "document generation failed", err)
	}
	return document, nil
}

func (s *reportCardService) Comment(ctx context.Context, reportCardID uint) (string, error) {
	card, err := s.cards.GetByID(ctx, reportCardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.NotFoundf("report card %d not found", reportCardID)
		}
		return "", err
	}
	return card.GeneralComment, nil
}

func (s *reportCardService) UpdateComment(ctx context.Context, reportCardID uint, text string, editorID uint) error {
	if len(text) > maxCommentLength {
		return apperr.Validationf("comment exceeds %d characters", maxCommentLength)
	}
	clean := strings.TrimSpace(s.sanitizer.Sanitize(text))

	card, err := s.cards.GetByID(ctx, reportCardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("report card %d not found", reportCardID)
		}
		return err
	}

	editor, allowed, err := s.commentEditor(ctx, card, editorID)
	if err != nil {
		return err
	}
	if !allowed {
		return apperr.Authorizationf("user %d may not edit comments for report card %d", editorID, reportCardID)
	}

	// Unchanged text keeps the existing comment metadata untouched.
	if clean == card.GeneralComment {
		return nil
	}

	if err := s.cards.UpdateComment(ctx, reportCardID, clean, editorID, s.now()); err != nil {
		return err
	}

	s.recordActivity(ctx, editor, "report_card.comment_updated", reportCardID, map[string]interface{}{
		"length": len(clean),
	})
	return nil
}

func (s *reportCardService) CanEditComment(ctx context.Context, reportCardID, editorID uint) (bool, error) {
	card, err := s.cards.GetByID(ctx, reportCardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperr.NotFoundf("report card %d not found", reportCardID)
		}
		return false, err
	}

	_, allowed, err := s.commentEditor(ctx, card, editorID)
	return allowed, err
}

// commentEditor resolves the editing user and decides permission: comment
// edits are restricted to administrators and the homeroom teacher of the
// student's current grade.
func (s *reportCardService) commentEditor(ctx context.Context, card models.ReportCard, editorID uint) (models.User, bool, error) {
	editor, err := s.users.GetByID(ctx, editorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, false, apperr.NotFoundf("user %d not found", editorID)
		}
		return models.User{}, false, err
	}

	if editor.IsAdmin() {
		return editor, true, nil
	}

	student, err := s.students.GetByID(ctx, card.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return editor, false, apperr.NotFoundf("student %d not found", card.StudentID)
		}
		return editor, false, err
	}

	if student.Grade != nil && student.Grade.HomeroomTeacherID != nil && *student.Grade.HomeroomTeacherID == editorID {
		return editor, true, nil
	}
	return editor, false, nil
}

func (s *reportCardService) ListForStudent(ctx context.Context, studentID uint) ([]dto.ReportCardResponse, error) {
	cacheKey := fmt.Sprintf("reportcard:list:%d", studentID)

	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, cacheKey); err == nil && ok {
			var responses []dto.ReportCardResponse
			if unmarshalErr := json.Unmarshal(cached, &responses); unmarshalErr == nil {
				return responses, nil
			}
		} else if err != nil {
			s.logger.Warn().Err(err).Msg("failed to read report card list cache")
		}
	}

	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("student %d not found", studentID)
		}
		return nil, err
	}

	cards, err := s.cards.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ReportCardResponse, 0, len(cards))
	for _, card := range cards {
		responses = append(responses, dto.NewReportCardResponse(card))
	}

	if s.cache != nil {
		if payload, err := json.Marshal(responses); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.listTTL); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store report card list cache")
			}
		}
	}

	return responses, nil
}

func (s *reportCardService) DeleteAll(ctx context.Context, actor ActivityActor) error {
	if err := s.cards.DeleteAll(ctx); err != nil {
		return err
	}

	if s.activity != nil {
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "report_card.deleted_all",
			EntityType: "report_card",
		})
	}
	return nil
}

func (s *reportCardService) recordActivity(ctx context.Context, actor models.User, action string, entityID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	id := entityID
	_, _ = s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "report_card",
		EntityID:   &id,
		Metadata:   metadata,
	})
}

// subjectScores maps stored scores into the grading engine's input,
// preserving storage order for stable tie-breaking.
func subjectScores(scores []models.ExamScore) []grading.SubjectScore {
	input := make([]grading.SubjectScore, 0, len(scores))
	for _, score := range scores {
		name := ""
		if score.Subject != nil {
			name = score.Subject.Name
		}
		input = append(input, grading.SubjectScore{
			Subject: name,
			Score:   score.Score,
			Absent:  score.Absent,
		})
	}
	return input
}

func subjectLines(scores []models.ExamScore, outcome grading.Outcome) []render.SubjectLine {
	points := make(map[string]int, len(outcome.Points))
	for _, p := range outcome.Points {
		points[p.Subject] = p.Points
	}

	lines := make([]render.SubjectLine, 0, len(scores))
	for _, score := range scores {
		name := ""
		if score.Subject != nil {
			name = score.Subject.Name
		}
		lines = append(lines, render.SubjectLine{
			Subject: name,
			Score:   score.Score,
			Points:  points[name],
			Absent:  score.Absent,
		})
	}
	return lines
}
