package config

import (
	"encoding/json"
	"os"

	"github.com/bikram73/My-Bank/internal/flagx"
	"github.com/bikram73/My-Bank/internal/timex"
)

// JsonConfig is the file representation of Config. Durations use
// timex.Duration so both "1h" and integer nanoseconds are accepted. Pointer
// fields distinguish "absent" from an explicit zero value.
type JsonConfig struct {
	EndpointAddrHTTP             string          `json:"endpoint_addr_http"`
	DatabaseDSN                  string          `json:"database_dsn"`
	InMemory                     *bool           `json:"in_memory"`
	SecretKey                    string          `json:"secret_key"`
	SessionTokenValidityDuration *timex.Duration `json:"session_token_validity_duration"`
	DBMaxOpenConns               *int            `json:"db_max_open_conns"`
	DBQueryTimeout               *timex.Duration `json:"db_query_timeout"`
	BcryptCost                   *int            `json:"bcrypt_cost"`
	AutoMigrate                  *bool           `json:"auto_migrate"`
	StaticDir                    *string         `json:"static_dir"`
	CookieSecure                 *bool           `json:"cookie_secure"`
	AuthRateLimit                *int            `json:"auth_rate_limit"`
	LogLevel                     string          `json:"log_level"`
}

// parseJson loads configuration values from the JSON file named by the -c or
// -config flag into config. Without the flag nothing is loaded. Only keys
// present in the file override existing values. An unreadable file or
// invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.InMemory != nil {
		config.InMemory = *c.InMemory
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.SessionTokenValidityDuration != nil {
		config.SessionTokenValidityDuration = c.SessionTokenValidityDuration.Duration
	}
	if c.DBMaxOpenConns != nil {
		config.DBMaxOpenConns = *c.DBMaxOpenConns
	}
	if c.DBQueryTimeout != nil {
		config.DBQueryTimeout = c.DBQueryTimeout.Duration
	}
	if c.BcryptCost != nil {
		config.BcryptCost = *c.BcryptCost
	}
	if c.AutoMigrate != nil {
		config.AutoMigrate = *c.AutoMigrate
	}
	if c.StaticDir != nil {
		config.StaticDir = *c.StaticDir
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	if c.AuthRateLimit != nil {
		config.AuthRateLimit = *c.AuthRateLimit
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
}
