package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/bookmydoc/bookmydoc-server/cmd/mainconfig"
	"github.com/bookmydoc/bookmydoc-server/internal/api/router"
	"github.com/bookmydoc/bookmydoc-server/internal/applications"
	"github.com/bookmydoc/bookmydoc-server/internal/appointments"
	"github.com/bookmydoc/bookmydoc-server/internal/chat"
	appconfig "github.com/bookmydoc/bookmydoc-server/internal/config"
	"github.com/bookmydoc/bookmydoc-server/internal/doctors"
	"github.com/bookmydoc/bookmydoc-server/internal/events"
	"github.com/bookmydoc/bookmydoc-server/internal/notify"
	"github.com/bookmydoc/bookmydoc-server/internal/observability/metrics"
	"github.com/bookmydoc/bookmydoc-server/internal/payments"
	"github.com/bookmydoc/bookmydoc-server/internal/users"
	"github.com/bookmydoc/bookmydoc-server/internal/video"
	"github.com/bookmydoc/bookmydoc-server/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting bookmydoc API server", "env", cfg.Env, "port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	dynamoClient := dynamodb.NewFromConfig(awsCfg)

	registry := prometheus.NewRegistry()
	bookingMetrics := metrics.NewBookingMetrics(registry)
	chatMetrics := metrics.NewChatMetrics(registry)
	webhookMetrics := metrics.NewWebhookMetrics(registry)

	// Postgres is optional: without it the ledger and outbox degrade to nil.
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create postgres pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
	}

	// Directory and sync.
	userStore := users.NewStore(dynamoClient, cfg.UsersTable, logger)
	syncService := users.NewSyncService(userStore, logger)
	usersHandler := users.NewHandler(syncService, userStore, logger)
	identityWebhook := users.NewWebhookHandler(cfg.IdentityWebhookSecret, syncService, webhookMetrics, logger)

	// Doctor directory and applications.
	doctorStore := doctors.NewStore(dynamoClient, cfg.DoctorsTable, logger)
	doctorsHandler := doctors.NewHandler(doctorStore, logger)
	applicationStore := applications.NewStore(dynamoClient, cfg.ApplicationsTable, logger)
	applicationService := applications.NewService(applicationStore, userStore, doctorStore, logger)
	applicationsHandler := applications.NewHandler(applicationService, logger)

	// Payments.
	var gateway payments.Gateway
	if cfg.StripeSecretKey != "" {
		stripe, err := payments.NewStripeGateway(cfg.StripeSecretKey, logger)
		if err != nil {
			logger.Error("failed to create stripe gateway", "error", err)
			os.Exit(1)
		}
		gateway = stripe
	} else if cfg.AllowFakePayments {
		logger.Warn("stripe not configured, using fake payment gateway")
		gateway = payments.NewFakeGateway()
	} else {
		logger.Error("no payment gateway configured; set STRIPE_SECRET_KEY or ALLOW_FAKE_PAYMENTS")
		os.Exit(1)
	}
	var ledger *payments.Ledger
	if pool != nil {
		ledger = payments.NewLedger(pool)
	}
	paymentsHandler := payments.NewHandler(gateway, ledger, logger)

	// Lifecycle events.
	var outbox *events.OutboxStore
	if pool != nil {
		outbox = events.NewOutboxStore(pool)
		if cfg.AppointmentEventsQueueURL != "" {
			publisher := events.NewSQSPublisher(sqs.NewFromConfig(awsCfg), cfg.AppointmentEventsQueueURL)
			deliverer := events.NewDeliverer(outbox, publisher, logger).
				WithInterval(cfg.OutboxPollInterval)
			go deliverer.Start(ctx)
		}
	}

	// Confirmation email: SendGrid when configured, otherwise SES, otherwise a stub.
	var emailSender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		emailSender = sg
	} else if cfg.SESFromEmail != "" {
		emailSender = notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{FromEmail: cfg.SESFromEmail}, logger)
	} else {
		emailSender = notify.NewStubEmailSender(logger)
	}
	notifyService := notify.NewService(emailSender, logger)

	// Video join tokens.
	var videoClient *video.Client
	if cfg.VideoAPIKey != "" {
		videoClient, err = video.New(video.Config{
			APIKey:   cfg.VideoAPIKey,
			BaseURL:  cfg.VideoAPIBaseURL,
			TokenTTL: cfg.VideoTokenTTL,
			Logger:   logger,
		})
		if err != nil {
			logger.Error("failed to create video client", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("video API key not configured; join requests will be rejected")
	}

	// Appointments: the booking fan-out and lifecycle.
	appointmentStore := appointments.NewStore(dynamoClient, appointments.Tables{
		Appointments:        cfg.AppointmentsTable,
		DoctorAppointments:  cfg.DoctorAppointmentsTable,
		PatientAppointments: cfg.PatientAppointmentsTable,
		DailyAppointments:   cfg.DailyAppointmentsTable,
	}, logger)
	deps := appointments.ServiceDeps{
		Store:   appointmentStore,
		Emails:  notifyService,
		Metrics: bookingMetrics,
		Logger:  logger,
	}
	if ledger != nil {
		deps.Ledger = ledger
	}
	if outbox != nil {
		deps.Outbox = outbox
	}
	if videoClient != nil {
		deps.Video = videoClient
	}
	appointmentService := appointments.NewService(deps)
	appointmentsHandler := appointments.NewHandler(appointmentService, logger)

	// Assistant chat.
	var chatHandler *chat.Handler
	if cfg.GeminiAPIKey != "" {
		gemini, err := chat.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
			os.Exit(1)
		}
		defer gemini.Close()

		var sessionStore *chat.SessionStore
		if cfg.RedisAddr != "" {
			redisClient := redis.NewClient(&redis.Options{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
			})
			sessionStore = chat.NewSessionStore(redisClient, cfg.ChatSessionTTL)
		}
		chatHandler = chat.NewHandler(chat.NewService(gemini, sessionStore, chatMetrics, logger), logger)
	} else {
		logger.Warn("gemini API key not configured; chat endpoint disabled")
	}

	r := router.New(&router.Config{
		Logger:              logger,
		UsersHandler:        usersHandler,
		IdentityWebhook:     identityWebhook,
		DoctorsHandler:      doctorsHandler,
		ApplicationsHandler: applicationsHandler,
		AppointmentsHandler: appointmentsHandler,
		PaymentsHandler:     paymentsHandler,
		ChatHandler:         chatHandler,
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AdminAuthSecret:     cfg.AdminJWTSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerSecond:  cfg.RateLimitPerSecond,
		RateLimitBurst:      cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
