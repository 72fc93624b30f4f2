package config

import (
	"flag"
	"os"
	"time"

	"github.com/bikram73/My-Bank/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":3000")
//	-d string   PostgreSQL DSN
//	-memory     keep data in memory, no database
//	-s string   session token HMAC secret
//	-t int      session token validity, minutes
//	-m int      max open DB connections
//	-q int      per-operation DB timeout, seconds
//	-cost int   bcrypt cost
//	-migrate    apply migrations on startup
//	-w string   static files directory
//	-secure     mark session cookie Secure
//	-l int      auth requests per minute per IP (0 disables)
//	-v string   log level
//
// os.Args is filtered through flagx.FilterArgs first so the -c and -env
// flags handled elsewhere do not trip the parser.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-d", "-memory", "-s", "-t", "-m", "-q", "-cost", "-migrate", "-w", "-secure", "-l", "-v",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.BoolVar(&config.InMemory, "memory", config.InMemory, "use in-memory storage instead of PostgreSQL")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionTokenValidity := fs.Int("t", int(config.SessionTokenValidityDuration.Minutes()), "session_token_validity_duration (in minutes)")
	fs.IntVar(&config.DBMaxOpenConns, "m", config.DBMaxOpenConns, "max open database connections")
	dbQueryTimeout := fs.Int("q", int(config.DBQueryTimeout.Seconds()), "db_query_timeout (in seconds)")
	fs.IntVar(&config.BcryptCost, "cost", config.BcryptCost, "bcrypt cost")

	fs.BoolVar(&config.AutoMigrate, "migrate", config.AutoMigrate, "apply database migrations on startup")
	fs.StringVar(&config.StaticDir, "w", config.StaticDir, "static files directory")
	fs.BoolVar(&config.CookieSecure, "secure", config.CookieSecure, "set Secure on the session cookie")
	fs.IntVar(&config.AuthRateLimit, "l", config.AuthRateLimit, "login/register requests per minute per IP")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// whole-unit flags only override when given, so "90s" from env survives
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.SessionTokenValidityDuration = time.Duration(*sessionTokenValidity) * time.Minute
		case "q":
			config.DBQueryTimeout = time.Duration(*dbQueryTimeout) * time.Second
		}
	})
}
