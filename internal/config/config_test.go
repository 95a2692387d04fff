package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "postgres://postgres@localhost:5432/wellregistry?sslmode=disable", cfg.DatabaseURL)
	assert.Equal(t, 10, cfg.DBMaxOpenConns)
	assert.Equal(t, 1000, cfg.PageSizeMax)
	assert.Equal(t, "https://waterservices.usgs.gov/nwis/site/", cfg.NWISEndpoint)
	assert.Equal(t, 10*time.Second, cfg.NWISTimeout)
	assert.Equal(t, "USGS", cfg.NWISAgencyCode)
	assert.Empty(t, cfg.SuperuserEmails)
	assert.Empty(t, cfg.AgencyGroups)
	assert.Empty(t, cfg.LocalAquiferPath)
	assert.False(t, cfg.KafkaEnabled)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "monitoring-location-changes", cfg.KafkaTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", testSecret)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("DATABASE_URL", "postgres://registry@db:5432/registry")
	t.Setenv("DB_MAX_OPEN_CONNS", "25")
	t.Setenv("PAGE_SIZE_MAX", "200")
	t.Setenv("SUPERUSER_EMAILS", "Admin@usgs.gov, ops@example.com")
	t.Setenv("AGENCY_GROUPS", "USGS=usgs-staff, mbmg=montana")
	t.Setenv("LOCAL_AQUIFER_LOOKUP_PATH", "/data/aquifers.csv")
	t.Setenv("NWIS_SITE_SERVICE_ENDPOINT", "http://nwis.local/site/")
	t.Setenv("NWIS_TIMEOUT", "3s")
	t.Setenv("NWIS_AGENCY_CODE", "usgs")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "well-changes")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "postgres://registry@db:5432/registry", cfg.DatabaseURL)
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
	assert.Equal(t, 200, cfg.PageSizeMax)
	assert.Equal(t, []string{"admin@usgs.gov", "ops@example.com"}, cfg.SuperuserEmails)
	assert.Equal(t, map[string]string{"USGS": "usgs-staff", "MBMG": "montana"}, cfg.AgencyGroups)
	assert.Equal(t, "/data/aquifers.csv", cfg.LocalAquiferPath)
	assert.Equal(t, "http://nwis.local/site/", cfg.NWISEndpoint)
	assert.Equal(t, 3*time.Second, cfg.NWISTimeout)
	assert.Equal(t, "USGS", cfg.NWISAgencyCode)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "well-changes", cfg.KafkaTopic)
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_JWT_SECRET")
}

func TestLoadTooling_WithoutJWTSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "postgres://tool@db:5432/wells")

	cfg, err := LoadTooling()
	require.NoError(t, err)
	assert.Empty(t, cfg.AuthJWTSecret)
	assert.Equal(t, "postgres://tool@db:5432/wells", cfg.DatabaseURL)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", testSecret)
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidNWISTimeout(t *testing.T) {
	for _, v := range []string{"bad", "0s", "-1s"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("AUTH_JWT_SECRET", testSecret)
			t.Setenv("NWIS_TIMEOUT", v)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "NWIS_TIMEOUT")
		})
	}
}

func TestLoad_InvalidMaxOpenConns(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", testSecret)
	t.Setenv("DB_MAX_OPEN_CONNS", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_MAX_OPEN_CONNS")
}

func TestLoad_InvalidAgencyGroups(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", testSecret)
	t.Setenv("AGENCY_GROUPS", "USGS")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AGENCY_GROUPS")
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", testSecret)
	t.Setenv("KAFKA_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", testSecret)
	t.Setenv("KAFKA_BROKERS", "broker:9092")
	t.Setenv("KAFKA_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}
