package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/andray-nkhatel/schoolerp-api/internal/dto"
	"github.com/andray-nkhatel/schoolerp-api/internal/grading"
	"github.com/andray-nkhatel/schoolerp-api/internal/models"
	"github.com/andray-nkhatel/schoolerp-api/internal/repository"
	"github.com/andray-nkhatel/schoolerp-api/pkg/render"
)

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	// sqlite serialises writers anyway; a single connection avoids spurious
	// lock errors when batch tests write concurrently.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.AcademicYear{}, &models.Grade{}, &models.Student{},
		&models.Subject{}, &models.ExamType{}, &models.ExamScore{},
		&models.ReportCard{}, &models.ActivityLog{},
	))
	return db
}

type schoolFixture struct {
	db       *gorm.DB
	admin    models.User
	homeroom models.User
	staff    models.User
	year     models.AcademicYear
	grade    models.Grade
	student  models.Student
	subject  models.Subject
	examType models.ExamType
}

func seedSchool(t *testing.T, db *gorm.DB, section grading.Section) schoolFixture {
	t.Helper()

	admin := models.User{FullName: "Beatrice Zulu", Email: fmt.Sprintf("beatrice_%s@school.test", t.Name()), Role: models.RoleAdmin}
	require.NoError(t, db.Create(&admin).Error)

	homeroom := models.User{FullName: "Agnes Phiri", Email: fmt.Sprintf("agnes_%s@school.test", t.Name()), Role: models.RoleTeacher}
	require.NoError(t, db.Create(&homeroom).Error)

	staff := models.User{FullName: "Moses Banda", Email: fmt.Sprintf("moses_%s@school.test", t.Name()), Role: models.RoleStaff}
	require.NoError(t, db.Create(&staff).Error)

	year := models.AcademicYear{Name: fmt.Sprintf("2025-%s", t.Name()), Year: 2025, Active: true}
	require.NoError(t, db.Create(&year).Error)

	grade := models.Grade{Name: "Grade 9A", Section: section, HomeroomTeacherID: &homeroom.ID}
	require.NoError(t, db.Create(&grade).Error)

	student := models.Student{
		FirstName:       "Chanda",
		LastName:        "Mwale",
		AdmissionNumber: fmt.Sprintf("ADM-%s", t.Name()),
		GradeID:         grade.ID,
	}
	require.NoError(t, db.Create(&student).Error)

	subject := models.Subject{Name: fmt.Sprintf("Mathematics-%s", t.Name()), Code: "MAT"}
	require.NoError(t, db.Create(&subject).Error)

	examType := models.ExamType{Name: fmt.Sprintf("End of Term-%s", t.Name())}
	require.NoError(t, db.Create(&examType).Error)

	return schoolFixture{
		db:       db,
		admin:    admin,
		homeroom: homeroom,
		staff:    staff,
		year:     year,
		grade:    grade,
		student:  student,
		subject:  subject,
		examType: examType,
	}
}

func seedScore(t *testing.T, fx schoolFixture, student models.Student, subject models.Subject, term int, score float64) {
	t.Helper()
	entry := models.ExamScore{
		StudentID:      student.ID,
		SubjectID:      subject.ID,
		ExamTypeID:     fx.examType.ID,
		AcademicYearID: fx.year.ID,
		Term:           term,
		Score:          score,
		RecordedByID:   fx.homeroom.ID,
	}
	require.NoError(t, fx.db.Create(&entry).Error)
}

// stubRenderer counts invocations and lets tests vary the produced bytes.
type stubRenderer struct {
	mu     sync.Mutex
	calls  int
	output []byte
	err    error
}

func (r *stubRenderer) Render(ctx context.Context, data render.ReportData) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	if r.output != nil {
		return r.output, nil
	}
	return []byte("<html>" + data.StudentName + "</html>"), nil
}

func (r *stubRenderer) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// recordingSender captures notification attempts.
type recordingSender struct {
	mu    sync.Mutex
	sent  []string
	err   error
	files []string
}

func (s *recordingSender) SendWithAttachment(ctx context.Context, to, subject, body string, attachment []byte, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, to)
	s.files = append(s.files, filename)
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

// memoryCache is an in-process DocumentCache honouring TTLs against a
// controllable clock.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryCacheEntry
	now     time.Time
}

type memoryCacheEntry struct {
	value   []byte
	expires time.Time
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]memoryCacheEntry), now: time.Now()}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || c.now.After(entry.expires) {
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryCacheEntry{value: value, expires: c.now.Add(ttl)}
	return nil
}

func (c *memoryCache) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newCardService(t *testing.T, fx schoolFixture, deps ReportCardDeps) ReportCardService {
	t.Helper()
	if deps.Cards == nil {
		deps.Cards = repository.NewReportCardRepository(fx.db)
	}
	if deps.Students == nil {
		deps.Students = repository.NewStudentRepository(fx.db)
	}
	if deps.Users == nil {
		deps.Users = repository.NewUserRepository(fx.db)
	}
	if deps.Years == nil {
		deps.Years = repository.NewAcademicYearRepository(fx.db)
	}
	if deps.Scores == nil {
		deps.Scores = repository.NewScoreRepository(fx.db)
	}
	if deps.Renderer == nil {
		deps.Renderer = &stubRenderer{}
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	deps.Logger = zerolog.Nop()
	return NewReportCardService(deps)
}

func ensureRequest(fx schoolFixture, term int) dto.EnsureReportCardRequest {
	return dto.EnsureReportCardRequest{
		StudentID:      fx.student.ID,
		AcademicYearID: fx.year.ID,
		Term:           term,
	}
}
