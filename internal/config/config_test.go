package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, values map[string]string) {
	t.Helper()
	for k, v := range values {
		t.Setenv(k, v)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	setEnv(t, map[string]string{"IDENTITY_CLIENT_ID": "qcb-portal"})
	os.Unsetenv("PORT")

	require.NoError(t, LoadConfig())

	assert.Equal(t, 8080, AppConfig.Port)
	assert.Equal(t, "development", AppConfig.Environment)
	assert.Equal(t, "http://localhost:8080", AppConfig.PublicBaseURL)
	assert.Equal(t, "orphan_applications", AppConfig.ApplicationCollection)
	assert.Equal(t, "orphan_documents", AppConfig.DocumentBucket)
	assert.Equal(t, 10*time.Minute, AppConfig.ApplicationCacheTTL)
	assert.Equal(t, int64(10485760), AppConfig.MaxUploadSize)
	assert.Equal(t, "@every 1h", AppConfig.IndexMaintenanceSchedule)
	assert.True(t, AppConfig.AuditLogsEnabled)
	assert.False(t, AppConfig.TracingEnabled)
	assert.Equal(t, 1.0, AppConfig.TracingSampleRatio)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setEnv(t, map[string]string{
		"IDENTITY_CLIENT_ID":      "qcb-portal",
		"PORT":                    "9090",
		"ENVIRONMENT":             "production",
		"SERVICE_VERSION":         "v2.3.1",
		"REDIS_DB":                "3",
		"SIGNATURE_CACHE_TTL":     "15m",
		"MAX_UPLOAD_SIZE":         "2048",
		"TRACING_ENABLED":         "true",
		"TRACING_SAMPLE_RATIO":    "0.25",
		"PUBLIC_BASE_URL":         "https://api.qcb.example.org",
		"AUDIT_LOGS_ENABLED":      "false",
		"MONGODB_USER_COLLECTION": "staff",
	})

	require.NoError(t, LoadConfig())

	assert.Equal(t, 9090, AppConfig.Port)
	assert.Equal(t, "production", AppConfig.Environment)
	assert.Equal(t, "v2.3.1", AppConfig.ServiceVersion)
	assert.Equal(t, 0.25, AppConfig.TracingSampleRatio)
	assert.Equal(t, 3, AppConfig.RedisDB)
	assert.Equal(t, 15*time.Minute, AppConfig.SignatureCacheTTL)
	assert.Equal(t, int64(2048), AppConfig.MaxUploadSize)
	assert.True(t, AppConfig.TracingEnabled)
	assert.Equal(t, "https://api.qcb.example.org", AppConfig.PublicBaseURL)
	assert.False(t, AppConfig.AuditLogsEnabled)
	assert.Equal(t, "staff", AppConfig.UserCollection)
}

func TestLoadConfig_MissingClientID(t *testing.T) {
	t.Setenv("IDENTITY_CLIENT_ID", "")
	os.Unsetenv("IDENTITY_CLIENT_ID")

	err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IDENTITY_CLIENT_ID")
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "port", key: "PORT", val: "eighty"},
		{name: "redis db", key: "REDIS_DB", val: "x"},
		{name: "redis ttl", key: "REDIS_TTL", val: "forever"},
		{name: "cache ttl", key: "APPLICATION_CACHE_TTL", val: "10"},
		{name: "upload size", key: "MAX_UPLOAD_SIZE", val: "big"},
		{name: "tracing flag", key: "TRACING_ENABLED", val: "maybe"},
		{name: "audit workers", key: "AUDIT_WORKER_COUNT", val: "two"},
		{name: "sample ratio", key: "TRACING_SAMPLE_RATIO", val: "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, map[string]string{"IDENTITY_CLIENT_ID": "qcb-portal", tt.key: tt.val})
			err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("QCB_TEST_VALUE", "set")
	assert.Equal(t, "set", getEnvOrDefault("QCB_TEST_VALUE", "default"))
	assert.Equal(t, "default", getEnvOrDefault("QCB_TEST_UNSET_VALUE", "default"))
}
