package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/andray-nkhatel/schoolerp-api/internal/config"
	"github.com/andray-nkhatel/schoolerp-api/internal/database"
	"github.com/andray-nkhatel/schoolerp-api/internal/handler"
	"github.com/andray-nkhatel/schoolerp-api/internal/middleware"
	"github.com/andray-nkhatel/schoolerp-api/internal/models"
	"github.com/andray-nkhatel/schoolerp-api/internal/repository"
	"github.com/andray-nkhatel/schoolerp-api/internal/router"
	"github.com/andray-nkhatel/schoolerp-api/internal/service"
	"github.com/andray-nkhatel/schoolerp-api/pkg/mailer"
	"github.com/andray-nkhatel/schoolerp-api/pkg/render"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{}, &models.AcademicYear{}, &models.Grade{}, &models.Student{},
		&models.Subject{}, &models.ExamType{}, &models.ExamScore{},
		&models.ReportCard{}, &models.ActivityLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	renderer, err := render.NewHTMLRenderer(logger)
	if err != nil {
		log.Fatalf("failed to create renderer: %v", err)
	}

	var notifier mailer.Sender
	if cfg.SMTPHost != "" {
		notifier, err = mailer.NewSMTPSender(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create mailer: %v", err)
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	yearRepo := repository.NewAcademicYearRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	scoreRepo := repository.NewScoreRepository(db)
	cardRepo := repository.NewReportCardRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	scoreService := service.NewScoreService(scoreRepo, studentRepo, validate, logger)
	analysisService := service.NewAnalysisService(gradeRepo, studentRepo, scoreRepo, validate, logger)
	cardService := service.NewReportCardService(service.ReportCardDeps{
		Cards:         cardRepo,
		Students:      studentRepo,
		Users:         userRepo,
		Years:         yearRepo,
		Scores:        scoreRepo,
		Cache:         service.NewRedisDocumentCache(redisClient),
		Renderer:      renderer,
		Notifier:      notifier,
		NotifyAddress: cfg.NotifyAddress,
		Validator:     validate,
		Activity:      activityService,
		Logger:        logger,
		DocumentTTL:   cfg.DocumentCacheTTL,
		ListTTL:       cfg.ListCacheTTL,
	})
	batchService := service.NewBatchService(cardService, gradeRepo, studentRepo, userRepo, yearRepo, validate, logger)

	reportCardHandler := handler.NewReportCardHandler(cardService, batchService, logger)
	scoreHandler := handler.NewScoreHandler(scoreService, logger)
	analysisHandler := handler.NewAnalysisHandler(analysisService, logger)
	activityHandler := handler.NewActivityHandler(activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ReportCardHandler: reportCardHandler,
		ScoreHandler:      scoreHandler,
		AnalysisHandler:   analysisHandler,
		ActivityHandler:   activityHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
