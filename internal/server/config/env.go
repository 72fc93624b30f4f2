package config

import (
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/bikram73/My-Bank/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv overlays values from process environment variables. A dotenv file
// given with -env, or ./.env otherwise, is loaded first when it exists;
// variables already set in the environment win over the file.
func parseEnv(config *Config) {
	envFile := flagx.EnvFileFlag()
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			panic(err)
		}
	} else {
		// production usually has no .env, which is fine
		_ = godotenv.Load()
	}

	config.EndpointAddrHTTP = getEnv("HTTP_ADDR", config.EndpointAddrHTTP)
	if port := getEnv("PORT", ""); port != "" && getEnv("HTTP_ADDR", "") == "" {
		config.EndpointAddrHTTP = ":" + port
	}

	config.DatabaseDSN = dsnFromEnv(config.DatabaseDSN)
	config.InMemory = getEnvBool("IN_MEMORY", config.InMemory)
	config.SecretKey = getEnv("JWT_SECRET", config.SecretKey)
	config.SessionTokenValidityDuration = getEnvDuration("SESSION_TTL", config.SessionTokenValidityDuration)
	config.DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", config.DBMaxOpenConns)
	config.DBQueryTimeout = getEnvDuration("DB_QUERY_TIMEOUT", config.DBQueryTimeout)
	config.BcryptCost = getEnvInt("BCRYPT_COST", config.BcryptCost)
	config.AutoMigrate = getEnvBool("AUTO_MIGRATE", config.AutoMigrate)
	config.StaticDir = getEnv("STATIC_DIR", config.StaticDir)
	config.CookieSecure = getEnvBool("COOKIE_SECURE", config.CookieSecure)
	config.AuthRateLimit = getEnvInt("AUTH_RATE_LIMIT", config.AuthRateLimit)
	config.LogLevel = getEnv("LOG_LEVEL", config.LogLevel)
}

// dsnFromEnv prefers DATABASE_URL, then assembles a DSN from DB_* parts when
// DB_HOST is set.
func dsnFromEnv(fallback string) string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}

	host := os.Getenv("DB_HOST")
	if host == "" {
		return fallback
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(getEnv("DB_USER", "postgres"), os.Getenv("DB_PASSWORD")),
		Host:   net.JoinHostPort(host, getEnv("DB_PORT", "5432")),
		Path:   "/" + getEnv("DB_NAME", "mybank"),
	}
	q := url.Values{}
	q.Set("sslmode", getEnv("DB_SSLMODE", "disable"))
	u.RawQuery = q.Encode()

	return u.String()
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

// getEnvDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
