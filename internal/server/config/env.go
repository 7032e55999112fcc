package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays Config fields from environment variables. Unset or
// malformed variables leave the current value in place.
//
// Recognized variables:
//
//	ADDRESS               HTTP bind address
//	DATABASE_DSN          PostgreSQL DSN
//	SECRET_KEY            JWT HMAC secret
//	ACCESS_TOKEN_TTL      access token lifetime, Go duration string
//	PAYMENT_API_KEY       payment provider secret key
//	PAYMENT_ENDPOINT      payment provider base URL
//	TRACK_PRICE_CENTS     single-track price
//	BUNDLE_PRICE_CENTS    all-tracks bundle price
//	CURRENCY              ISO currency code
//	DEV_GRANT_ENABLED     "true" enables the dev grant endpoint
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv("ADDRESS"); ok {
		config.EndpointAddr = v
	}
	if v, ok := os.LookupEnv("DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("SECRET_KEY"); ok {
		config.SecretKey = v
	}
	if v, ok := os.LookupEnv("ACCESS_TOKEN_TTL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.AccessTokenValidityDuration = d
		}
	}
	if v, ok := os.LookupEnv("PAYMENT_API_KEY"); ok {
		config.PaymentAPIKey = v
	}
	if v, ok := os.LookupEnv("PAYMENT_ENDPOINT"); ok {
		config.PaymentBaseEndpoint = v
	}
	if v, ok := os.LookupEnv("TRACK_PRICE_CENTS"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.TrackPriceCents = n
		}
	}
	if v, ok := os.LookupEnv("BUNDLE_PRICE_CENTS"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.BundlePriceCents = n
		}
	}
	if v, ok := os.LookupEnv("CURRENCY"); ok {
		config.Currency = v
	}
	if v, ok := os.LookupEnv("DEV_GRANT_ENABLED"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			config.DevGrantEnabled = b
		}
	}
}
