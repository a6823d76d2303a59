package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	conf, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, conf.API.Environment)
	assert.Equal(t, "8080", conf.API.Port)
	assert.Equal(t, 10*time.Second, conf.API.RequestTimeout)
	assert.Equal(t, "localhost", conf.Postgres.Host)
	assert.Equal(t, "order.status_changed", conf.Kafka.Topic)
	assert.False(t, conf.Kafka.Enabled())
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	yml := `
api:
  environment: production
  port: "9090"
  jwt_signing_key: file-key
  request_timeout: 3s
postgres:
  host: db
stripe:
  secret_key: sk_test_file
  webhook_secret: whsec_file
kafka:
  brokers: ["kafka:9092"]
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_env")
	t.Setenv("POSTGRES_PORT", "6543")

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", conf.API.Port)
	assert.Equal(t, 3*time.Second, conf.API.RequestTimeout)
	assert.Equal(t, "db", conf.Postgres.Host)
	assert.Equal(t, "6543", conf.Postgres.Port)
	assert.Equal(t, "whsec_env", conf.Stripe.WebhookSecret)
	assert.True(t, conf.Kafka.Enabled())
	assert.Equal(t, "host=db port=6543 user=postgres password=postgres dbname=registrations sslmode=disable", conf.Postgres.DSN())
}

func TestLoadProductionRequiresSecrets(t *testing.T) {
	t.Setenv("API_ENVIRONMENT", EnvProduction)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errMissingJWTKey)
	assert.ErrorIs(t, err, errMissingStripeKey)
	assert.ErrorIs(t, err, errMissingWebhookSecret)
}
