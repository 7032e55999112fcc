package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/trackpass/internal/flagx"
	"github.com/dmitrijs2005/trackpass/internal/timex"
)

// JsonConfig is the intermediate DTO used only for reading JSON
// configuration files. It uses timex.Duration for interval fields, which
// allows parsing both string values such as "24h" and integer nanoseconds.
// After unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr                string         `json:"endpoint_addr"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	PaymentAPIKey               string         `json:"payment_api_key"`
	PaymentBaseEndpoint         string         `json:"payment_base_endpoint"`
	TrackPriceCents             int64          `json:"track_price_cents"`
	BundlePriceCents            int64          `json:"bundle_price_cents"`
	Currency                    string         `json:"currency"`
	DevGrantEnabled             bool           `json:"dev_grant_enabled"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. If no file is named, nothing
// is loaded. If the file cannot be read or contains invalid JSON, the
// function panics: a named but broken config file should stop startup.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.PaymentAPIKey != "" {
		config.PaymentAPIKey = c.PaymentAPIKey
	}
	if c.PaymentBaseEndpoint != "" {
		config.PaymentBaseEndpoint = c.PaymentBaseEndpoint
	}
	if c.TrackPriceCents != 0 {
		config.TrackPriceCents = c.TrackPriceCents
	}
	if c.BundlePriceCents != 0 {
		config.BundlePriceCents = c.BundlePriceCents
	}
	if c.Currency != "" {
		config.Currency = c.Currency
	}
	if c.DevGrantEnabled {
		config.DevGrantEnabled = true
	}
}
