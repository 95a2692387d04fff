package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	DatabaseURL      string
	DBMaxOpenConns   int
	PageSizeMax      int
	AuthJWTSecret    string
	SuperuserEmails  []string
	AgencyGroups     map[string]string
	LocalAquiferPath string

	// NWIS site service configuration.
	NWISEndpoint   string
	NWISTimeout    time.Duration
	NWISAgencyCode string

	// Change-event publishing.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool
}

// Load reads configuration from environment variables, applying defaults
// where unset. The server requires AUTH_JWT_SECRET.
func Load() (*Config, error) {
	cfg, err := LoadTooling()
	if err != nil {
		return nil, err
	}
	if cfg.AuthJWTSecret == "" {
		return nil, errors.New("AUTH_JWT_SECRET is required")
	}
	return cfg, nil
}

// LoadTooling reads the same configuration as Load for command line tools,
// which do not verify tokens and so run without AUTH_JWT_SECRET.
func LoadTooling() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	nwisTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("NWIS_TIMEOUT", "10s"))
	if err != nil || nwisTimeout <= 0 {
		return nil, errors.New("invalid NWIS_TIMEOUT")
	}

	maxConns, err := positiveInt("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return nil, err
	}
	pageSizeMax, err := positiveInt("PAGE_SIZE_MAX", 1000)
	if err != nil {
		return nil, err
	}

	agencyGroups, err := parseAgencyGroups(os.Getenv("AGENCY_GROUPS"))
	if err != nil {
		return nil, err
	}

	brokers := sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DatabaseURL:      sharedcfg.EnvOrDefault("DATABASE_URL", "postgres://postgres@localhost:5432/wellregistry?sslmode=disable"),
		DBMaxOpenConns:   maxConns,
		PageSizeMax:      pageSizeMax,
		AuthJWTSecret:    os.Getenv("AUTH_JWT_SECRET"),
		SuperuserEmails:  lower(splitList(os.Getenv("SUPERUSER_EMAILS"))),
		AgencyGroups:     agencyGroups,
		LocalAquiferPath: os.Getenv("LOCAL_AQUIFER_LOOKUP_PATH"),

		NWISEndpoint:   sharedcfg.EnvOrDefault("NWIS_SITE_SERVICE_ENDPOINT", "https://waterservices.usgs.gov/nwis/site/"),
		NWISTimeout:    nwisTimeout,
		NWISAgencyCode: strings.ToUpper(sharedcfg.EnvOrDefault("NWIS_AGENCY_CODE", "USGS")),

		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "monitoring-location-changes"),
		KafkaEnabled: kafkaEnabled,
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}

	return cfg, nil
}

func positiveInt(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return n, nil
}

// parseAgencyGroups parses "USGS=usgs,ADWR=adwr-staff" into agency code -> group name.
func parseAgencyGroups(s string) (map[string]string, error) {
	out := make(map[string]string)
	for _, pair := range splitList(s) {
		agency, group, ok := strings.Cut(pair, "=")
		agency, group = strings.TrimSpace(agency), strings.TrimSpace(group)
		if !ok || agency == "" || group == "" {
			return nil, fmt.Errorf("invalid AGENCY_GROUPS entry %q", pair)
		}
		out[strings.ToUpper(agency)] = group
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func lower(in []string) []string {
	for i := range in {
		in[i] = strings.ToLower(in[i])
	}
	return in
}
