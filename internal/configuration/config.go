package configuration

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/apperr"
	"github.com/joho/godotenv"
)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"

	// MaxValidityDays is the longest lifetime a V4 signature allows.
	MaxValidityDays = 7
)

type Config struct {
	Storage      StorageConfig
	Records      RecordsConfig
	Server       ServerConfig
	Log          LogConfig
	ValidityDays int
	NATSURL      string
	CLAMAVURL    string
}

type StorageConfig struct {
	Endpoint        string
	Region          string
	BucketName      string
	CredentialsPath string
	AccessKey       string
	SecretKey       string
	UseSSL          bool
}

type RecordsConfig struct {
	Backend     string
	File        string
	DatabaseURL string
}

type ServerConfig struct {
	Port          string
	OIDCIssuerURL string
}

type LogConfig struct {
	Level string
	File  string
}

// Load reads the configuration from the environment, after applying the
// given .env file if it exists.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: failed to read %s: %v", apperr.ErrConfiguration, envFile, err)
		}
	}

	validity, err := strconv.Atoi(getEnv("SIGNED_URL_VALIDITY_DAYS", strconv.Itoa(MaxValidityDays)))
	if err != nil {
		return nil, fmt.Errorf("%w: SIGNED_URL_VALIDITY_DAYS must be a whole number of days", apperr.ErrConfiguration)
	}

	return &Config{
		Storage: StorageConfig{
			Endpoint:        getEnv("STORAGE_ENDPOINT", "storage.googleapis.com"),
			Region:          getEnv("STORAGE_REGION", "auto"),
			BucketName:      getEnv("GCS_BUCKET_NAME", ""),
			CredentialsPath: getEnv("GCS_CREDENTIALS_PATH", "./gcs_credentials"),
			AccessKey:       getEnv("GCS_ACCESS_KEY", ""),
			SecretKey:       getEnv("GCS_SECRET_KEY", ""),
			UseSSL:          getEnv("STORAGE_USE_SSL", "true") == "true",
		},
		Records: RecordsConfig{
			Backend:     strings.ToLower(getEnv("RECORDS_BACKEND", BackendFile)),
			File:        getEnv("SIGNED_URLS_FILE", "signed_urls.json"),
			DatabaseURL: getEnv("RECORDS_DATABASE_URL", ""),
		},
		Server: ServerConfig{
			Port:          getEnv("SERVER_PORT", "8080"),
			OIDCIssuerURL: getEnv("OIDC_ISSUER_URL", ""),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "warn"),
			File:  getEnv("LOG_FILE", ""),
		},
		ValidityDays: validity,
		NATSURL:      getEnv("NATS_URL", ""),
		CLAMAVURL:    getEnv("CLAMAV_URL", ""),
	}, nil
}

// Validity is the lifetime given to newly signed URLs.
func (c *Config) Validity() time.Duration {
	return time.Duration(c.ValidityDays) * 24 * time.Hour
}

// ValidateRecords checks the settings every command needs.
func (c *Config) ValidateRecords() error {
	return joinConfigErrors(c.recordProblems())
}

// ValidateStorage additionally checks the object store settings used by
// the upload and sign commands.
func (c *Config) ValidateStorage() error {
	errs := c.recordProblems()
	if c.Storage.BucketName == "" {
		errs = append(errs, errors.New("GCS_BUCKET_NAME environment variable is required"))
	}
	if !c.Storage.HasStaticKeys() {
		if _, err := os.Stat(c.Storage.CredentialsPath); err != nil {
			errs = append(errs, fmt.Errorf("credentials file not found at %s", c.Storage.CredentialsPath))
		}
	}
	return joinConfigErrors(errs)
}

func (c *Config) recordProblems() []error {
	var errs []error
	if c.ValidityDays < 1 || c.ValidityDays > MaxValidityDays {
		errs = append(errs, fmt.Errorf("SIGNED_URL_VALIDITY_DAYS must be between 1 and %d", MaxValidityDays))
	}
	switch c.Records.Backend {
	case BackendFile:
		if c.Records.File == "" {
			errs = append(errs, errors.New("SIGNED_URLS_FILE must not be empty"))
		}
	case BackendPostgres:
		if c.Records.DatabaseURL == "" {
			errs = append(errs, errors.New("RECORDS_DATABASE_URL is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown RECORDS_BACKEND %q", c.Records.Backend))
	}
	return errs
}

// HasStaticKeys reports whether both HMAC keys were given directly.
func (s StorageConfig) HasStaticKeys() bool {
	return s.AccessKey != "" && s.SecretKey != ""
}

func joinConfigErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", apperr.ErrConfiguration, errors.Join(errs...))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
