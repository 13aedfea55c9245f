package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string

	CORSAllowedOrigins []string
	RateLimitPerSecond float64
	RateLimitBurst     int

	// Postgres payment ledger + outbox
	DatabaseURL string

	// DynamoDB document store
	AWSRegion                string
	AWSAccessKeyID           string
	AWSSecretAccessKey       string
	AWSEndpointOverride      string
	UsersTable               string
	DoctorsTable             string
	ApplicationsTable        string
	AppointmentsTable        string
	DoctorAppointmentsTable  string
	PatientAppointmentsTable string
	DailyAppointmentsTable   string

	// Identity provider webhook (svix-style signing)
	IdentityWebhookSecret string

	// Payment gateway
	StripeSecretKey   string
	AllowFakePayments bool

	// Video room service
	VideoAPIKey     string
	VideoAPIBaseURL string
	VideoTokenTTL   time.Duration

	// Assistant chat
	GeminiAPIKey   string
	GeminiModelID  string
	ChatSessionTTL time.Duration

	// Redis chat session log
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Lifecycle events
	AppointmentEventsQueueURL string
	OutboxPollInterval        time.Duration

	// Notifications
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string

	// Admin API auth
	AdminJWTSecret string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),
		RateLimitPerSecond: getEnvAsFloat("RATE_LIMIT_PER_SECOND", 10),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 30),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		AWSRegion:                getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:           getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:       getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride:      getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		UsersTable:               getEnv("USERS_TABLE", "users"),
		DoctorsTable:             getEnv("DOCTORS_TABLE", "doctors"),
		ApplicationsTable:        getEnv("APPLICATIONS_TABLE", "doctor_applications"),
		AppointmentsTable:        getEnv("APPOINTMENTS_TABLE", "appointments"),
		DoctorAppointmentsTable:  getEnv("DOCTOR_APPOINTMENTS_TABLE", "doctor_appointments"),
		PatientAppointmentsTable: getEnv("PATIENT_APPOINTMENTS_TABLE", "patient_appointments"),
		DailyAppointmentsTable:   getEnv("DAILY_APPOINTMENTS_TABLE", "daily_appointments"),

		IdentityWebhookSecret: getEnv("IDENTITY_WEBHOOK_SECRET", ""),

		StripeSecretKey:   getEnv("STRIPE_SECRET_KEY", ""),
		AllowFakePayments: getEnvAsBool("ALLOW_FAKE_PAYMENTS", false),

		VideoAPIKey:     getEnv("VIDEO_API_KEY", ""),
		VideoAPIBaseURL: getEnv("VIDEO_API_BASE_URL", "https://api.daily.co/v1"),
		VideoTokenTTL:   getEnvAsDuration("VIDEO_TOKEN_TTL", time.Hour),

		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:  getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		ChatSessionTTL: getEnvAsDuration("CHAT_SESSION_TTL", 7*24*time.Hour),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		AppointmentEventsQueueURL: getEnv("APPOINTMENT_EVENTS_QUEUE_URL", ""),
		OutboxPollInterval:        getEnvAsDuration("OUTBOX_POLL_INTERVAL", 15*time.Second),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "BookMyDoc"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsSlice splits a comma-separated environment variable, trimming blanks.
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
