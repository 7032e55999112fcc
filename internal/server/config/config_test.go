package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.EndpointAddr)
	assert.Equal(t, "", c.DatabaseDSN)
	assert.Equal(t, "secretKey", c.SecretKey)
	assert.Equal(t, 24*time.Hour, c.AccessTokenValidityDuration)
	assert.Equal(t, "https://api.payments.example.com", c.PaymentBaseEndpoint)
	assert.Equal(t, int64(2900), c.TrackPriceCents)
	assert.Equal(t, int64(7900), c.BundlePriceCents)
	assert.Equal(t, "usd", c.Currency)
	assert.False(t, c.DevGrantEnabled)
}

func TestParseEnv_Overrides(t *testing.T) {
	t.Setenv("ADDRESS", ":9090")
	t.Setenv("DATABASE_DSN", "postgres://localhost/trackpass")
	t.Setenv("ACCESS_TOKEN_TTL", "30m")
	t.Setenv("TRACK_PRICE_CENTS", "1900")
	t.Setenv("DEV_GRANT_ENABLED", "true")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, ":9090", c.EndpointAddr)
	assert.Equal(t, "postgres://localhost/trackpass", c.DatabaseDSN)
	assert.Equal(t, 30*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, int64(1900), c.TrackPriceCents)
	assert.True(t, c.DevGrantEnabled)
}

func TestParseEnv_IgnoresMalformed(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL", "whenever")
	t.Setenv("TRACK_PRICE_CENTS", "a lot")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, 24*time.Hour, c.AccessTokenValidityDuration)
	assert.Equal(t, int64(2900), c.TrackPriceCents)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	c := LoadConfig()

	require.NotNil(t, c, "LoadConfig must not return nil")
	assert.Equal(t, "secretKey", c.SecretKey)
	assert.Equal(t, "usd", c.Currency)
}
