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
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/phSch08/EvaP/internal/config"
	"github.com/phSch08/EvaP/internal/database"
	"github.com/phSch08/EvaP/internal/handler"
	"github.com/phSch08/EvaP/internal/middleware"
	"github.com/phSch08/EvaP/internal/models"
	"github.com/phSch08/EvaP/internal/repository"
	"github.com/phSch08/EvaP/internal/router"
	"github.com/phSch08/EvaP/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStartup()

	db, err := database.ConnectPostgres(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Semester{},
		&models.UserProfile{},
		&models.Course{},
		&models.Contribution{},
		&models.Questionnaire{},
		&models.Question{},
		&models.TextAnswer{},
		&models.LikertAnswer{},
		&models.GradeAnswer{},
		&models.EmailTemplate{},
		&models.ActivityLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(startupCtx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	quorum := service.QuorumConfig{
		MinAnswerCount:      cfg.MinAnswerCount,
		MinAnswerPercentage: cfg.MinAnswerPercentage,
	}

	courseRepo := repository.NewCourseRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	userRepo := repository.NewUserRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	reviewService := service.NewReviewService(answerRepo, logger)
	publisher := service.NewBrokerEventPublisher(redisClient, natsConn, cfg.EventChannelBase, logger)
	lifecycleService := service.NewLifecycleService(courseRepo, userRepo, reviewService, quorum, publisher, logger)
	archiveService := service.NewArchiveService(semesterRepo, courseRepo, activityService, quorum, redisClient, cfg.OverviewCacheTTL, logger)
	resultsService := service.NewResultsService(courseRepo, userRepo, answerRepo, quorum, logger)
	delivery := service.NewLogMailDelivery(logger)
	notificationService := service.NewNotificationService(courseRepo, userRepo, templateRepo, delivery, cfg.ReplyToEmail, cfg.ManagerEmails, logger)
	userService := service.NewUserService(userRepo, cfg.InternalEmailDomains, cfg.LoginKeyValidityDays, logger)

	courseHandler := handler.NewCourseHandler(lifecycleService, resultsService, validate, logger)
	reviewHandler := handler.NewReviewHandler(reviewService, validate, logger)
	semesterHandler := handler.NewSemesterHandler(archiveService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, validate, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	activityHandler := handler.NewActivityHandler(activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		CourseHandler:       courseHandler,
		ReviewHandler:       reviewHandler,
		SemesterHandler:     semesterHandler,
		NotificationHandler: notificationHandler,
		UserHandler:         userHandler,
		ActivityHandler:     activityHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
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
