package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/shandysiswandi/gofactor/internal/pkg/clock"
	"github.com/shandysiswandi/gofactor/internal/pkg/codestore"
	"github.com/shandysiswandi/gofactor/internal/pkg/config"
	"github.com/shandysiswandi/gofactor/internal/pkg/ecsig"
	"github.com/shandysiswandi/gofactor/internal/pkg/goroutine"
	"github.com/shandysiswandi/gofactor/internal/pkg/hash"
	"github.com/shandysiswandi/gofactor/internal/pkg/idempotency"
	"github.com/shandysiswandi/gofactor/internal/pkg/instrument"
	"github.com/shandysiswandi/gofactor/internal/pkg/messaging"
	"github.com/shandysiswandi/gofactor/internal/pkg/mfa"
	"github.com/shandysiswandi/gofactor/internal/pkg/router"
	"github.com/shandysiswandi/gofactor/internal/pkg/sms"
	"github.com/shandysiswandi/gofactor/internal/pkg/storage"
	"github.com/shandysiswandi/gofactor/internal/pkg/uid"
	"github.com/shandysiswandi/gofactor/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine    *goroutine.Manager
	validator    validator.Validator
	clock        clock.Clocker
	hmac         hash.Hash
	uid          uid.NumberID
	uuid         uid.StringID
	verifier     ecsig.Verifier
	mfaEncryptor mfa.Encryptor

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	codeStore codestore.Store
	idemp     idempotency.Idempotency
	sms       sms.SMS
	messaging messaging.Messaging
	storage   storage.Storage

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New loads the configuration file and initializes the application.
func New() *App {
	return NewWithConfig(loadConfig())
}

// NewWithConfig initializes the application from cfg. It exits the process
// when a required resource cannot be reached.
func NewWithConfig(cfg config.Config) *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
		config: cfg,
	}

	app.initInstrument()
	app.initLibraries()
	app.initDatabase()
	app.initMigrations()
	app.initCache()
	app.initSMS()
	app.initStorage()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
