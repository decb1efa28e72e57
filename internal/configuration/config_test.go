package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"GCS_BUCKET_NAME", "GCS_CREDENTIALS_PATH", "GCS_ACCESS_KEY", "GCS_SECRET_KEY",
	"STORAGE_ENDPOINT", "STORAGE_REGION", "STORAGE_USE_SSL", "SIGNED_URLS_FILE",
	"SIGNED_URL_VALIDITY_DAYS", "RECORDS_BACKEND", "RECORDS_DATABASE_URL",
	"NATS_URL", "CLAMAV_URL", "SERVER_PORT", "OIDC_ISSUER_URL", "LOG_LEVEL", "LOG_FILE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "storage.googleapis.com", cfg.Storage.Endpoint)
	assert.Equal(t, "./gcs_credentials", cfg.Storage.CredentialsPath)
	assert.True(t, cfg.Storage.UseSSL)
	assert.Equal(t, "signed_urls.json", cfg.Records.File)
	assert.Equal(t, BackendFile, cfg.Records.Backend)
	assert.Equal(t, MaxValidityDays, cfg.ValidityDays)
	assert.Equal(t, 7*24, int(cfg.Validity().Hours()))
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.NoError(t, cfg.ValidateRecords())
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("GCS_BUCKET_NAME=shared-files\nSIGNED_URL_VALIDITY_DAYS=3\n"), 0o644))
	// godotenv does not override variables that are already set.
	require.NoError(t, os.Unsetenv("GCS_BUCKET_NAME"))
	require.NoError(t, os.Unsetenv("SIGNED_URL_VALIDITY_DAYS"))

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "shared-files", cfg.Storage.BucketName)
	assert.Equal(t, 3, cfg.ValidityDays)
}

func TestLoadMissingEnvFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), ".env"))
	assert.NoError(t, err)
}

func TestLoadInvalidValidity(t *testing.T) {
	clearEnv(t)
	t.Setenv("SIGNED_URL_VALIDITY_DAYS", "a week")

	_, err := Load("")
	assert.ErrorIs(t, err, apperr.ErrConfiguration)
}

func TestValidate(t *testing.T) {
	credentials := filepath.Join(t.TempDir(), "gcs_credentials")
	require.NoError(t, os.WriteFile(credentials, []byte("[default]\n"), 0o600))

	valid := func() *Config {
		return &Config{
			Storage:      StorageConfig{BucketName: "files", CredentialsPath: credentials},
			Records:      RecordsConfig{Backend: BackendFile, File: "signed_urls.json"},
			ValidityDays: MaxValidityDays,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing bucket", mutate: func(c *Config) { c.Storage.BucketName = "" }, wantErr: "GCS_BUCKET_NAME"},
		{name: "missing credentials", mutate: func(c *Config) { c.Storage.CredentialsPath = credentials + ".missing" }, wantErr: "credentials file not found"},
		{name: "static keys replace credentials file", mutate: func(c *Config) {
			c.Storage.CredentialsPath = credentials + ".missing"
			c.Storage.AccessKey, c.Storage.SecretKey = "GOOG1EXAMPLE", "secret"
		}},
		{name: "validity too long", mutate: func(c *Config) { c.ValidityDays = 8 }, wantErr: "between 1 and 7"},
		{name: "validity zero", mutate: func(c *Config) { c.ValidityDays = 0 }, wantErr: "between 1 and 7"},
		{name: "postgres without url", mutate: func(c *Config) { c.Records.Backend = BackendPostgres }, wantErr: "RECORDS_DATABASE_URL"},
		{name: "unknown backend", mutate: func(c *Config) { c.Records.Backend = "redis" }, wantErr: "unknown RECORDS_BACKEND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.ValidateStorage()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, apperr.ErrConfiguration)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateRecordsIgnoresStorage(t *testing.T) {
	cfg := &Config{
		Records:      RecordsConfig{Backend: BackendFile, File: "signed_urls.json"},
		ValidityDays: MaxValidityDays,
	}
	assert.NoError(t, cfg.ValidateRecords())
	assert.ErrorIs(t, cfg.ValidateStorage(), apperr.ErrConfiguration)
}
