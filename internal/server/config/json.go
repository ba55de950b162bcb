package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/yuwenwww/membervault/internal/flagx"
	"github.com/yuwenwww/membervault/internal/timex"
)

// JsonConfig is the intermediate DTO for JSON configuration files. Interval
// fields use timex.Duration, which accepts both string values such as "15m"
// and integer nanoseconds. Zero-valued fields are treated as absent and do
// not override defaults.
type JsonConfig struct {
	HTTPAddr                    string         `json:"http_addr"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	PIIKeyLabel                 string         `json:"pii_key_label"`
	PIIKeySizeBits              int            `json:"pii_key_size_bits"`
	BcryptCost                  int            `json:"bcrypt_cost"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c/-config flags; if neither
// is set, no JSON file is loaded. A file that cannot be read or parsed is a
// startup failure.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.HTTPAddr != "" {
		config.HTTPAddr = c.HTTPAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	}
	if c.PIIKeyLabel != "" {
		config.PIIKeyLabel = c.PIIKeyLabel
	}
	if c.PIIKeySizeBits != 0 {
		config.PIIKeySizeBits = c.PIIKeySizeBits
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
}
