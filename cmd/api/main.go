package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/splitter-app/splitter/internal/config"
	"github.com/splitter-app/splitter/internal/database"
	"github.com/splitter-app/splitter/internal/debt"
	"github.com/splitter-app/splitter/internal/dispatch"
	"github.com/splitter-app/splitter/internal/mailer"
	"github.com/splitter-app/splitter/internal/notification"
	"github.com/splitter-app/splitter/internal/reminder"
	"github.com/splitter-app/splitter/internal/settlement"
	"github.com/splitter-app/splitter/internal/slack"
	"github.com/splitter-app/splitter/internal/statistics"
	"github.com/splitter-app/splitter/internal/user"
	"github.com/splitter-app/splitter/pkg/logging"
	mw "github.com/splitter-app/splitter/pkg/middleware"
)

// @title Splitter API
// @version 1.0
// @description Bill splitting for group food orders: settlements, debts and notifications.
// @BasePath /api/v1
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	logging.Setup()

	cfg := config.Load()

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	slog.Info("connected to database")

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, cfg.JWTSecret)
	userHandler := user.NewHandler(userService)

	// Notification feature
	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationService)

	// Event dispatcher with its side-effect handlers. In-app notifications
	// are always on; mail and Slack only when configured.
	dispatcher := dispatch.New()
	dispatch.NewNotifier(notificationService).RegisterHandlers(dispatcher)

	m := mailer.New(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
		BaseURL:  cfg.AppBaseURL,
	})
	if m.Enabled() {
		dispatch.NewEmailNotifier(m).RegisterHandlers(dispatcher)
	} else {
		slog.Info("SMTP not configured, outbound mail disabled")
	}

	slackClient := slack.New(cfg.SlackWebhookURL)
	if slackClient.Enabled() {
		dispatch.NewSlackNotifier(slackClient).RegisterHandlers(dispatcher)
	} else {
		slog.Info("Slack webhook not configured, announcements disabled")
	}

	// Settlement feature
	settlementRepo := settlement.NewRepository(db)
	settlementService := settlement.NewService(settlementRepo, userRepo, dispatcher)
	settlementHandler := settlement.NewHandler(settlementService)

	// Debt feature
	debtRepo := debt.NewRepository(db)
	debtService := debt.NewService(debtRepo, cfg.HistoryPageSize)
	debtHandler := debt.NewHandler(debtService)

	// Statistics feature
	statisticsRepo := statistics.NewRepository(db)
	statisticsService := statistics.NewService(statisticsRepo)
	statisticsHandler := statistics.NewHandler(statisticsService)

	// Weekly debt digest
	if cfg.ReminderCron != "" && m.Enabled() {
		sched, err := reminder.New(debtService, m, cfg.ReminderCron)
		if err != nil {
			slog.Error("failed to create reminder scheduler", "error", err)
			os.Exit(1)
		}
		if err := sched.Start(); err != nil {
			slog.Error("failed to start reminder scheduler", "error", err)
			os.Exit(1)
		}
		defer sched.Stop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", userHandler.AuthRoutes())

		// Everything else requires a valid token.
		r.Group(func(r chi.Router) {
			r.Use(mw.Auth(cfg.JWTSecret))
			r.Mount("/users", userHandler.Routes())
			r.Mount("/settlements", settlementHandler.Routes())
			r.Mount("/debts", debtHandler.Routes())
			r.Mount("/statistics", statisticsHandler.Routes())
			r.Mount("/notifications", notificationHandler.Routes())
		})
	})

	slog.Info("server starting", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
