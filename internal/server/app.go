// Package server initializes and runs the MyBank server. It opens the
// database pool, applies migrations, wires the account service and serves
// the HTTP API until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/bikram73/My-Bank/internal/dbx"
	"github.com/bikram73/My-Bank/internal/logging"
	"github.com/bikram73/My-Bank/internal/server/config"
	"github.com/bikram73/My-Bank/internal/server/metrics"
	"github.com/bikram73/My-Bank/internal/server/repositories/memory"
	"github.com/bikram73/My-Bank/internal/server/repositories/repomanager"
	"github.com/bikram73/My-Bank/internal/server/rest"
	"github.com/bikram73/My-Bank/internal/server/services"
)

const (
	startupTimeout   = 30 * time.Second
	insecureDevelKey = "secretKey"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	metrics        *metrics.Metrics
	accountService *services.AccountService
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	if c.SecretKey == insecureDevelKey {
		logger.Warn(ctx, "using the built-in development signing secret; set JWT_SECRET in production")
	}

	var (
		db  *sql.DB
		rm  repomanager.RepositoryManager
		err error
	)
	if c.InMemory {
		logger.Warn(ctx, "using in-memory storage; data is lost on exit")
		rm = repomanager.NewInMemoryRepositoryManager(memory.NewStore())
	} else {
		db, rm, err = openPostgres(ctx, c, logger)
		if err != nil {
			return nil, err
		}
	}

	m := metrics.NewMetrics()

	as, err := services.NewAccountService(db, rm, c, logger, services.WithMetrics(m))
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("account service init error: %w", err)
	}

	return &App{config: c, logger: logger, db: db, metrics: m, accountService: as}, nil
}

func openPostgres(ctx context.Context, c *config.Config, logger logging.Logger) (*sql.DB, repomanager.RepositoryManager, error) {
	opts := dbx.DefaultPoolOptions()
	opts.MaxOpenConns = c.DBMaxOpenConns

	db, err := dbx.Open(c.DatabaseDSN, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if c.AutoMigrate {
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("db migration error: %w", err)
		}
		logger.Info(ctx, "migrations applied")
	}

	return db, rm, nil
}

// health pings the database; in-memory storage is always healthy.
func (app *App) health(ctx context.Context) error {
	if app.db == nil {
		return nil
	}
	return app.db.PingContext(ctx)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := rest.NewHTTPServer(app.config, app.logger, app.accountService, app.health, app.metrics)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "error closing database", "error", err)
		}
	}
	app.logger.Info(ctx, "App stopped")
}
