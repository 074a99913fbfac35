package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("INVOICER_INVOICE_NUMBER_PREFIX", "QUO")
	t.Setenv("INVOICER_INVOICE_NUMBER_LENGTH", "8")
	t.Setenv("INVOICER_AUTH_SECRET", "test-secret")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "QUO", cfg.Invoice.NumberPrefix)
	assert.Equal(t, 8, cfg.Invoice.NumberLength)
	assert.Equal(t, "test-secret", cfg.Auth.Secret)
	assert.Equal(t, 7, cfg.Invoice.ShareLinkExpiryDays)
}

func TestConfiguration_Validate(t *testing.T) {
	cfg := GetDefaultConfig()
	// default config has no database or auth secret
	assert.Error(t, cfg.Validate())

	cfg.Postgres = PostgresConfig{Host: "localhost", Port: 5432, User: "u", DBName: "db", SSLMode: "disable"}
	cfg.Auth = AuthConfig{Secret: "s"}
	cfg.Sentry = SentryConfig{SampleRate: 1}
	assert.NoError(t, cfg.Validate())

	cfg.Invoice.NumberLength = 0
	assert.Error(t, cfg.Validate())
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	c := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "inv", SSLMode: "disable"}
	assert.Equal(t, "user=u password=p dbname=inv host=db port=5432 sslmode=disable", c.GetDSN())
}
