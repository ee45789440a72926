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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/Dosada05/medcamp/config"
	"github.com/Dosada05/medcamp/db"
	"github.com/Dosada05/medcamp/handlers"
	"github.com/Dosada05/medcamp/middleware"
	"github.com/Dosada05/medcamp/notify"
	"github.com/Dosada05/medcamp/payments"
	"github.com/Dosada05/medcamp/realtime"
	"github.com/Dosada05/medcamp/repositories"
	api "github.com/Dosada05/medcamp/routes"
	"github.com/Dosada05/medcamp/services"
	"github.com/Dosada05/medcamp/storage"
)

const (
	connectTimeout  = 5 * time.Second
	shutdownTimeout = 15 * time.Second

	notifyQueueSize    = 256
	notifyTimeout      = 10 * time.Second
	notifyDrainTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("application exited")
}

func run() error {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("environment", cfg.Environment),
		slog.String("storage", cfg.StorageDriver),
		slog.String("payments", cfg.PaymentProvider))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Хранилище
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// Загрузчик файлов (Cloudflare R2), опционально
	var uploader storage.FileUploader
	if cfg.R2.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			BucketName:      cfg.R2.BucketName,
			PublicBaseURL:   cfg.R2.PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 is not configured, image uploads are disabled")
	}

	paymentProvider, err := payments.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize payment provider: %w", err)
	}

	// WebSocket Hub
	wsHub := realtime.NewHub()
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	notifier, closeNotifier := buildNotifier(ctx, cfg, wsHub, logger)
	defer closeNotifier()

	// Сервисы
	userService := services.NewUserService(store.Users, uploader, services.OrganizerAccess{
		Emails:     cfg.OrganizerEmails,
		SignupCode: cfg.OrganizerSignupCode,
	}, logger)
	sessionService := services.NewSessionService(store.Users, cfg.JWTSecretKey, cfg.SessionTTL)
	campService := services.NewCampService(store.Camps, uploader, logger)
	ledger := services.NewRegistrationLedger(store.Registrations, store.Camps, paymentProvider, cfg.PaymentCurrency, notifier, uploader, logger)
	paymentService := services.NewPaymentService(paymentProvider, store.Camps, cfg.PaymentCurrency, logger)
	feedbackService := services.NewFeedbackService(store.Feedback, store.Camps, store.Users)
	dashboardService := services.NewDashboardService(store.Users, store.Camps, store.Registrations)
	logger.Info("services initialized")

	// Маршрутизатор
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:          handlers.NewAuthHandler(userService, sessionService, cfg.IsProduction()),
		Users:         handlers.NewUserHandler(userService),
		Camps:         handlers.NewCampHandler(campService),
		Registrations: handlers.NewRegistrationHandler(ledger),
		Payments:      handlers.NewPaymentHandler(paymentService),
		Feedback:      handlers.NewFeedbackHandler(feedbackService),
		Dashboard:     handlers.NewDashboardHandler(dashboardService),
		WebSocket:     handlers.NewWebSocketHandler(wsHub, campService, cfg.CORSOrigins),
	}, middleware.NewAuthenticator(sessionService, userService, logger), cfg.CORSOrigins, logger)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return err
		}
		logger.Info("server shutdown complete")
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repositories.Store, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMongo:
		client, err := db.ConnectMongo(cfg.MongoURI, connectTimeout)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		closeFn := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), connectTimeout)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				logger.Error("failed to disconnect from mongo", slog.Any("error", err))
				return
			}
			logger.Info("mongo connection closed")
		}

		database := client.Database(cfg.MongoDatabase)
		if err := repositories.EnsureMongoIndexes(ctx, database); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("failed to create mongo indexes: %w", err)
		}
		logger.Info("mongo connection established", slog.String("database", cfg.MongoDatabase))
		return repositories.NewMongoStore(database), closeFn, nil

	default:
		dbConn, err := db.Connect(cfg.DatabaseURL, connectTimeout)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		closeFn := func() {
			if err := dbConn.Close(); err != nil {
				logger.Error("failed to close database connection", slog.Any("error", err))
				return
			}
			logger.Info("database connection closed")
		}

		if err := db.Migrate(ctx, dbConn); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("failed to apply schema: %w", err)
		}
		logger.Info("database connection established")
		return repositories.NewPostgresStore(dbConn), closeFn, nil
	}
}

// buildNotifier подключает все настроенные каналы уведомлений. Недоступный
// канал логируется и пропускается: уведомления не должны мешать старту.
func buildNotifier(ctx context.Context, cfg *config.Config, hub *realtime.Hub, logger *slog.Logger) (notify.Notifier, func()) {
	multi := notify.NewMulti(notify.Named{Name: "websocket", Notifier: hub})
	closers := []func(){}

	if cfg.RabbitMQURL != "" {
		publisher, err := notify.NewRabbitMQPublisher(cfg.RabbitMQURL)
		if err != nil {
			logger.Error("rabbitmq notifier disabled", slog.Any("error", err))
		} else {
			multi.Add("rabbitmq", publisher)
			closers = append(closers, publisher.Close)
		}
	}

	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			logger.Error("telegram notifier disabled", slog.Any("error", err))
		} else {
			multi.Add("telegram", tg)
		}
	}

	if cfg.SheetsSpreadsheetID != "" && cfg.GoogleServiceAccountJSON != "" {
		sheets, err := notify.NewSheetsNotifier(ctx, cfg.GoogleServiceAccountJSON, cfg.SheetsSpreadsheetID)
		if err != nil {
			logger.Error("google sheets notifier disabled", slog.Any("error", err))
		} else {
			multi.Add("sheets", sheets)
		}
	}

	if cfg.SMTP.Enabled() {
		multi.Add("email", notify.NewEmailNotifier(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}))
	}

	logger.Info("notifiers configured", slog.Int("sinks", multi.Len()))

	// Доставка идет в фоне; при остановке очередь дочитывается до закрытия каналов.
	async := notify.NewAsync(multi, notifyQueueSize, notifyTimeout, logger)
	return async, func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), notifyDrainTimeout)
		defer cancel()
		if err := async.Close(drainCtx); err != nil {
			logger.Warn("notification queue was not drained", slog.Any("error", err))
		}
		for _, c := range closers {
			c()
		}
	}
}
