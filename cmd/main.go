package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Harsha29-kns/scorecraft-backend/cache"
	"github.com/Harsha29-kns/scorecraft-backend/config"
	"github.com/Harsha29-kns/scorecraft-backend/db"
	"github.com/Harsha29-kns/scorecraft-backend/handlers"
	"github.com/Harsha29-kns/scorecraft-backend/realtime"
	"github.com/Harsha29-kns/scorecraft-backend/repositories"
	api "github.com/Harsha29-kns/scorecraft-backend/routes"
	"github.com/Harsha29-kns/scorecraft-backend/services"
	"github.com/Harsha29-kns/scorecraft-backend/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

// schedulerInterval — как часто проверяются запланированные открытия окон.
const schedulerInterval = 5 * time.Second

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Подключение к Redis (кэш лидерборда)
	redisClient, err := cache.Connect(cfg.RedisAddr, cfg.RedisDB, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer redisClient.Close()
	logger.Info("redis connection established")

	// Инициализация загрузчика файлов (Cloudflare R2)
	cloudflareUploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	// Инициализация WebSocket Hub
	wsHub := realtime.NewHub()
	logger.Info("WebSocket Hub created")

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	domainRepo := repositories.NewPostgresDomainRepository(dbConn)
	settingsRepo := repositories.NewPostgresSettingsRepository(dbConn)
	issueRepo := repositories.NewPostgresIssueRepository(dbConn)
	reminderRepo := repositories.NewPostgresReminderRepository(dbConn)
	attendanceRepo := repositories.NewPostgresAttendanceRepository(dbConn)
	reviewRepo := repositories.NewPostgresReviewRepository(dbConn)
	leaderboardRepo := repositories.NewRedisLeaderboardRepository(redisClient)
	presentationRepo := repositories.NewRedisPresentationRepository(redisClient)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo, cfg.JWTSecretKey)
	registrationService := services.NewRegistrationService(dbConn, settingsRepo, teamRepo, wsHub, logger)
	domainService := services.NewDomainService(dbConn, domainRepo, teamRepo, settingsRepo, wsHub, logger)
	teamService := services.NewTeamService(teamRepo, issueRepo, cloudflareUploader, wsHub, logger)
	scoreService := services.NewScoreService(teamRepo, reviewRepo, attendanceRepo, leaderboardRepo, wsHub, logger)
	notificationService := services.NewNotificationService(reminderRepo, presentationRepo, wsHub, logger)
	dashboardService := services.NewDashboardService(teamService, domainRepo, issueRepo, registrationService)
	logger.Info("Services initialized")

	// Планировщик окон: переводит регистрацию и выбор доменов в открытое
	// состояние по наступлении запланированного времени и рассылает события.
	go func() {
		ticker := time.NewTicker(schedulerInterval)
		defer ticker.Stop()
		logger.Info("Window transition scheduler started", slog.Duration("interval", schedulerInterval))

		if err := registrationService.CheckWindowTransitions(context.Background()); err != nil {
			logger.Error("Scheduler: initial run failed", slog.Any("error", err))
		}

		for range ticker.C {
			if err := registrationService.CheckWindowTransitions(context.Background()); err != nil {
				logger.Error("Scheduler: periodic run failed", slog.Any("error", err))
			}
		}
	}()

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService)
	registrationHandler := handlers.NewRegistrationHandler(registrationService)
	teamHandler := handlers.NewTeamHandler(teamService)
	domainHandler := handlers.NewDomainHandler(domainService)
	scoreHandler := handlers.NewScoreHandler(scoreService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, notificationService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, authService, registrationService, domainService, notificationService)
	logger.Info("HTTP handlers initialized")

	// Хаб запускается после регистрации интентов.
	go wsHub.Run()

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authService,
		authHandler,
		registrationHandler,
		teamHandler,
		domainHandler,
		scoreHandler,
		dashboardHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
