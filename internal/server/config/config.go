// Package config handles configuration for the server component,
// including defaults, JSON overlay, environment variables, and
// command-line flags (applied in that order).
package config

import "time"

// Config holds runtime settings for the trackpass server.
//
// Fields:
//   - EndpointAddr: bind address for the HTTP API.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store
//     (dev mode only).
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use the test
//     default in prod.
//   - AccessTokenValidityDuration: access token lifetime.
//   - PaymentAPIKey / PaymentBaseEndpoint: credentials and base URL of the
//     payment provider's REST API.
//   - TrackPriceCents / BundlePriceCents / Currency: catalog pricing used
//     when creating payment intents and checkout sessions.
//   - DevGrantEnabled: enables the unverified developer grant endpoint.
type Config struct {
	EndpointAddr                string
	DatabaseDSN                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	PaymentAPIKey               string
	PaymentBaseEndpoint         string
	TrackPriceCents             int64
	BundlePriceCents            int64
	Currency                    string
	DevGrantEnabled             bool
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 24 * time.Hour
	c.PaymentAPIKey = ""
	c.PaymentBaseEndpoint = "https://api.payments.example.com"
	c.TrackPriceCents = 2900
	c.BundlePriceCents = 7900
	c.Currency = "usd"
	c.DevGrantEnabled = false
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, environment variables, and finally
// command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
