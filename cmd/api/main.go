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

	"github.com/vidyadoc/slc-api/internal/config"
	"github.com/vidyadoc/slc-api/internal/database"
	"github.com/vidyadoc/slc-api/internal/events"
	"github.com/vidyadoc/slc-api/internal/handler"
	"github.com/vidyadoc/slc-api/internal/middleware"
	"github.com/vidyadoc/slc-api/internal/models"
	"github.com/vidyadoc/slc-api/internal/observability"
	"github.com/vidyadoc/slc-api/internal/repository"
	"github.com/vidyadoc/slc-api/internal/router"
	"github.com/vidyadoc/slc-api/internal/service"
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
		&models.User{},
		&models.School{},
		&models.Student{},
		&models.LeavingCertificate{},
		&models.StatusHistory{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Redis and NATS are optional; the API degrades to uncached reads and
	// no event publishing when they are absent.
	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, certificate caching disabled")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable, status events disabled")
		natsConn = nil
	} else {
		defer natsConn.Drain()
	}

	observability.RegisterMetrics()

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	schoolRepo := repository.NewSchoolRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	certificateRepo := repository.NewCertificateRepository(db)
	historyRepo := repository.NewStatusHistoryRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	audit := service.NewAuditRecorder(auditRepo, cfg.AuditQueueSize, logger)
	defer audit.Close()

	publisher := events.NewPublisher(natsConn, "slc", logger)
	workflow := service.NewWorkflowService(historyRepo, audit, publisher, logger)

	authService := service.NewAuthService(userRepo, audit, validate, cfg.JWTSecret, cfg.TokenTTL, logger)
	schoolService := service.NewSchoolService(schoolRepo, workflow, audit, validate, logger)
	studentService := service.NewStudentService(studentRepo, workflow, audit, validate, logger)
	certificateService := service.NewCertificateService(certificateRepo, workflow, audit, validate, redisClient, cfg.CertificateCacheTTL, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	schoolHandler := handler.NewSchoolHandler(schoolService, logger)
	studentHandler := handler.NewStudentHandler(studentService, logger)
	certificateHandler := handler.NewCertificateHandler(certificateService, logger)
	auditHandler := handler.NewAuditHandler(audit, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:        authHandler,
		SchoolHandler:      schoolHandler,
		StudentHandler:     studentHandler,
		CertificateHandler: certificateHandler,
		AuditHandler:       auditHandler,
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
		RoleRefresh: middleware.RefreshRole(func(ctx context.Context, userID uint) (string, error) {
			actor, err := authService.ResolveActor(ctx, userID)
			if err != nil {
				return "", err
			}
			return actor.Role, nil
		}),
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
