package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_http":              "www.example:9000",
		"database_dsn":                    "postgres://json",
		"in_memory":                       true,
		"secret_key":                      "my_secret_key",
		"session_token_validity_duration": "30m",
		"db_max_open_conns":               3,
		"db_query_timeout":                "750ms",
		"bcrypt_cost":                     11,
		"auto_migrate":                    false,
		"static_dir":                      "public",
		"cookie_secure":                   true,
		"auth_rate_limit":                 0,
		"log_level":                       "error",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := defaults()
		parseJson(cfg)

		assert.Equal(t, &Config{
			EndpointAddrHTTP:             "www.example:9000",
			DatabaseDSN:                  "postgres://json",
			InMemory:                     true,
			SecretKey:                    "my_secret_key",
			SessionTokenValidityDuration: 30 * time.Minute,
			DBMaxOpenConns:               3,
			DBQueryTimeout:               750 * time.Millisecond,
			BcryptCost:                   11,
			AutoMigrate:                  false,
			StaticDir:                    "public",
			CookieSecure:                 true,
			AuthRateLimit:                0,
			LogLevel:                     "error",
		}, cfg)
	})

	t.Run("partial file keeps other values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"secret_key": "only-this"})
		os.Args = []string{"testbin", "-c", partial}

		cfg := defaults()
		parseJson(cfg)

		expected := defaults()
		expected.SecretKey = "only-this"
		assert.Equal(t, expected, cfg)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := defaults()
		parseJson(cfg)

		assert.Equal(t, defaults(), cfg)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(dir, "absent.json")}

		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
