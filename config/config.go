package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port      string
	MongoURI  string
	DBName    string
	LoansDB   string
	CatalogDB string

	JWTSecret string
	AuthEmail string
	AuthPass  string

	TrainTopN     int64
	RetentionDays int

	// Notification transports; webhook takes precedence when both are set.
	NotifyWebhookURL string
	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPass         string
	NotifyFrom       string
	NotifyTo         string
}

func Load() (*Config, error) {
	topN := int64(20)
	if n, err := strconv.ParseInt(getEnv("TRAIN_TOP_N", "20"), 10, 64); err == nil && n > 0 {
		topN = n
	}
	retention := 365
	if n, err := strconv.Atoi(getEnv("RETENTION_DAYS", "365")); err == nil && n > 0 {
		retention = n
	}
	smtpPort := 587
	if n, err := strconv.Atoi(getEnv("SMTP_PORT", "587")); err == nil && n > 0 {
		smtpPort = n
	}

	return &Config{
		Port:             getEnv("PORT", "8001"),
		MongoURI:         getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:           getEnv("MONGODB_DB", "recommendations"),
		LoansDB:          getEnv("LOANS_DB", "loanservice"),
		CatalogDB:        getEnv("CATALOG_DB", "eBookProject"),
		JWTSecret:        getEnv("JWT_SECRET", "change-me-in-production"),
		AuthEmail:        getEnv("AUTH_EMAIL", "admin@example.com"),
		AuthPass:         getEnv("AUTH_PASSWORD", "password"),
		TrainTopN:        topN,
		RetentionDays:    retention,
		NotifyWebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         smtpPort,
		SMTPUser:         getEnv("SMTP_USER", ""),
		SMTPPass:         getEnv("SMTP_PASSWORD", ""),
		NotifyFrom:       getEnv("NOTIFY_FROM", ""),
		NotifyTo:         getEnv("NOTIFY_TO", ""),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
