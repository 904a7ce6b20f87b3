package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/editorialhq/editorial-api/internal/api"
	authmiddleware "github.com/editorialhq/editorial-api/internal/api/middleware"
	"github.com/editorialhq/editorial-api/internal/config"
	"github.com/editorialhq/editorial-api/internal/jobs"
	"github.com/editorialhq/editorial-api/internal/mail"
	"github.com/editorialhq/editorial-api/internal/platform/postgres"
	"github.com/editorialhq/editorial-api/internal/service"
	"github.com/editorialhq/editorial-api/internal/service/auth"
)

// application holds the dependency graph of the server: configuration,
// stores, services, HTTP handlers and the background job runner.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	authHandler         *api.AuthHandler
	taskHandler         *api.TaskHandler
	schedulerHandler    *api.SchedulerHandler
	notificationHandler *api.NotificationHandler
	authMiddleware      *authmiddleware.AuthMiddleware

	jobRunner *jobs.Runner
}

// newApplication wires up all application dependencies in order:
// auth primitives, stores, services, handlers, background jobs.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	// Auth primitives
	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}
	passwordVerifier := auth.NewBcryptVerifier()

	// Stores
	taskStore := postgres.NewPostgresTaskStore(db, logger)
	commentStore := postgres.NewPostgresCommentStore(db, logger)
	postStore := postgres.NewPostgresPostStore(db, logger)
	userStore := postgres.NewPostgresUserStore(db, logger)
	activityStore := postgres.NewPostgresActivityStore(db, logger)

	// Outbound mail
	sender, err := mail.NewSMTPSender(cfg.Mail)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail sender: %w", err)
	}

	// Services
	taskService, err := service.NewTaskService(taskStore, userStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}
	commentService, err := service.NewCommentService(taskStore, commentStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment service: %w", err)
	}
	schedulerService, err := service.NewSchedulerService(db, taskStore, postStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler service: %w", err)
	}
	notificationService, err := service.NewNotificationService(
		taskStore,
		postStore,
		userStore,
		sender,
		time.Duration(cfg.Jobs.ReminderWindowHours)*time.Hour,
		cfg.Jobs.ReminderMaxConcurrency,
		cfg.Mail.SiteURL,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification service: %w", err)
	}
	activityService, err := service.NewActivityService(activityStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create activity service: %w", err)
	}

	// Handlers
	authHandler := api.NewAuthHandler(userStore, jwtService, passwordVerifier)
	taskHandler := api.NewTaskHandler(
		taskService,
		commentService,
		schedulerService,
		notificationService,
		activityService,
		logger,
	)
	schedulerHandler := api.NewSchedulerHandler(schedulerService, activityService, logger)
	notificationHandler := api.NewNotificationHandler(notificationService, activityService, logger)
	authMiddleware := authmiddleware.NewAuthMiddleware(jwtService)

	// Background jobs
	reminderJob := jobs.NewReminderJob(
		notificationService,
		time.Duration(cfg.Jobs.ReminderIntervalMinutes)*time.Minute,
		logger,
	)
	publisherJob := jobs.NewPublisherJob(
		schedulerService,
		time.Duration(cfg.Jobs.PublishIntervalMinutes)*time.Minute,
		logger,
	)
	jobRunner := jobs.NewRunner(logger, reminderJob, publisherJob)

	return &application{
		config:              cfg,
		logger:              logger,
		db:                  db,
		authHandler:         authHandler,
		taskHandler:         taskHandler,
		schedulerHandler:    schedulerHandler,
		notificationHandler: notificationHandler,
		authMiddleware:      authMiddleware,
		jobRunner:           jobRunner,
	}, nil
}

// Run starts the background jobs and the HTTP server, blocking until
// the server shuts down.
func (app *application) Run(ctx context.Context) error {
	app.jobRunner.Start()
	router := app.setupRouter()
	return startHTTPServer(ctx, app, router)
}

// cleanup releases application resources during shutdown.
func (app *application) cleanup() {
	app.jobRunner.Stop()
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Failed to close database connection", slog.String("error", err.Error()))
		} else {
			app.logger.Info("Database connection closed")
		}
	}
}
