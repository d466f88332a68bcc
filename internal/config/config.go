package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values
type Config struct {
	// Server configuration
	Port           int    `json:"port"`
	Environment    string `json:"environment"`
	ServiceVersion string `json:"service_version"`
	PublicBaseURL  string `json:"public_base_url"`

	// MongoDB configuration
	MongoURI      string `json:"mongo_uri"`
	MongoDatabase string `json:"mongo_database"`

	// Redis configuration
	RedisURI      string        `json:"redis_uri"`
	RedisPassword string        `json:"redis_password"`
	RedisDB       int           `json:"redis_db"`
	RedisTTL      time.Duration `json:"redis_ttl"`

	// Collection names
	ApplicationCollection string `json:"mongo_application_collection"`
	UserCollection        string `json:"mongo_user_collection"`
	AuditLogsCollection   string `json:"mongo_audit_logs_collection"`
	DocumentBucket        string `json:"mongo_document_bucket"`
	MediaBucket           string `json:"mongo_media_bucket"`

	// Cache configuration
	ApplicationCacheTTL time.Duration `json:"application_cache_ttl"`
	SignatureCacheTTL   time.Duration `json:"signature_cache_ttl"`

	// Identity provider configuration
	IdentityClientID string `json:"identity_client_id"`

	// Upload configuration
	MaxUploadSize int64 `json:"max_upload_size"`

	// Tracing configuration
	TracingEnabled     bool    `json:"tracing_enabled"`
	TracingEndpoint    string  `json:"tracing_endpoint"`
	TracingSampleRatio float64 `json:"tracing_sample_ratio"`

	// Audit configuration
	AuditLogsEnabled bool `json:"audit_logs_enabled"`
	AuditWorkerCount int  `json:"audit_worker_count"`
	AuditBufferSize  int  `json:"audit_buffer_size"`

	// Index maintenance schedule (cron expression)
	IndexMaintenanceSchedule string `json:"index_maintenance_schedule"`
}

var (
	AppConfig *Config
)

// LoadConfig loads configuration from environment variables. A .env file in
// the working directory is read first when present; real environment
// variables take precedence over it.
func LoadConfig() error {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnvOrDefault("PORT", "8080"))
	if err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		return fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	redisTTL, err := time.ParseDuration(getEnvOrDefault("REDIS_TTL", "60m"))
	if err != nil {
		return fmt.Errorf("invalid REDIS_TTL: %w", err)
	}

	applicationCacheTTL, err := time.ParseDuration(getEnvOrDefault("APPLICATION_CACHE_TTL", "10m"))
	if err != nil {
		return fmt.Errorf("invalid APPLICATION_CACHE_TTL: %w", err)
	}

	signatureCacheTTL, err := time.ParseDuration(getEnvOrDefault("SIGNATURE_CACHE_TTL", "1h"))
	if err != nil {
		return fmt.Errorf("invalid SIGNATURE_CACHE_TTL: %w", err)
	}

	maxUploadSize, err := strconv.ParseInt(getEnvOrDefault("MAX_UPLOAD_SIZE", "10485760"), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid MAX_UPLOAD_SIZE: %w", err)
	}

	tracingEnabled, err := strconv.ParseBool(getEnvOrDefault("TRACING_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("invalid TRACING_ENABLED: %w", err)
	}

	auditEnabled, err := strconv.ParseBool(getEnvOrDefault("AUDIT_LOGS_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("invalid AUDIT_LOGS_ENABLED: %w", err)
	}

	auditWorkers, err := strconv.Atoi(getEnvOrDefault("AUDIT_WORKER_COUNT", "2"))
	if err != nil {
		return fmt.Errorf("invalid AUDIT_WORKER_COUNT: %w", err)
	}

	auditBuffer, err := strconv.Atoi(getEnvOrDefault("AUDIT_BUFFER_SIZE", "1000"))
	if err != nil {
		return fmt.Errorf("invalid AUDIT_BUFFER_SIZE: %w", err)
	}

	sampleRatio, err := strconv.ParseFloat(getEnvOrDefault("TRACING_SAMPLE_RATIO", "1"), 64)
	if err != nil || sampleRatio < 0 || sampleRatio > 1 {
		return fmt.Errorf("invalid TRACING_SAMPLE_RATIO: must be between 0 and 1")
	}

	identityClientID := os.Getenv("IDENTITY_CLIENT_ID")
	if identityClientID == "" {
		return fmt.Errorf("IDENTITY_CLIENT_ID environment variable is required")
	}

	AppConfig = &Config{
		// Server configuration
		Port:           port,
		Environment:    getEnvOrDefault("ENVIRONMENT", "development"),
		ServiceVersion: getEnvOrDefault("SERVICE_VERSION", "dev"),
		PublicBaseURL:  getEnvOrDefault("PUBLIC_BASE_URL", fmt.Sprintf("http://localhost:%d", port)),

		// MongoDB configuration
		MongoURI:      getEnvOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnvOrDefault("MONGODB_DATABASE", "qcb"),

		// Redis configuration
		RedisURI:      getEnvOrDefault("REDIS_URI", "localhost:6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,
		RedisTTL:      redisTTL,

		// Collection names
		ApplicationCollection: getEnvOrDefault("MONGODB_APPLICATION_COLLECTION", "orphan_applications"),
		UserCollection:        getEnvOrDefault("MONGODB_USER_COLLECTION", "users"),
		AuditLogsCollection:   getEnvOrDefault("MONGODB_AUDIT_LOGS_COLLECTION", "audit_logs"),
		DocumentBucket:        getEnvOrDefault("MONGODB_DOCUMENT_BUCKET", "orphan_documents"),
		MediaBucket:           getEnvOrDefault("MONGODB_MEDIA_BUCKET", "user_media"),

		ApplicationCacheTTL: applicationCacheTTL,
		SignatureCacheTTL:   signatureCacheTTL,

		IdentityClientID: identityClientID,

		MaxUploadSize: maxUploadSize,

		TracingEnabled:     tracingEnabled,
		TracingEndpoint:    getEnvOrDefault("TRACING_ENDPOINT", "localhost:4317"),
		TracingSampleRatio: sampleRatio,

		AuditLogsEnabled: auditEnabled,
		AuditWorkerCount: auditWorkers,
		AuditBufferSize:  auditBuffer,

		IndexMaintenanceSchedule: getEnvOrDefault("INDEX_MAINTENANCE_SCHEDULE", "@every 1h"),
	}

	return nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
