package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/application/accounts"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/application/migration"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/application/policy"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/application/seed"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/config"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/domain"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/infrastructure/db/postgres"
	rabbitmq_pub "github.com/baechuer/admin-dashboard/services/account-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/infrastructure/redis"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/infrastructure/security"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/logger"
	http_handlers "github.com/baechuer/admin-dashboard/services/account-service/internal/transport/http/handlers"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/transport/http/middleware"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/transport/http/response"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

// NewApp builds the application core without the HTTP surface. Used by the
// accountctl CLI.
func NewApp() (*App, error) {
	return newApp(defaultDeps())
}

func NewAppWithDeps(deps Deps) (*App, error) {
	return newApp(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(addr string, debug bool) (*sql.DB, error)

	// Migrate applies the embedded schema migrations.
	Migrate func(ctx context.Context, db *sql.DB) error

	NewStore func(db *sql.DB) accounts.Store

	NewRedis func(addr, password string, db int) *redis.Client

	NewPublisher func(url, exchange string) (accounts.EventPublisher, error)

	NewRouter func(router.Deps) (http.Handler, error)
}

// App is the wired application core.
type App struct {
	Config   *config.Config
	DB       *sql.DB
	Store    accounts.Store
	Hasher   *security.BcryptHasher
	Sessions *security.SessionSigner
	Service  *accounts.Service
	Seeder   *seed.Initializer
	Runner   *migration.Runner

	cleanupFns []func()
}

// Close releases everything NewApp opened. Safe to call more than once.
func (a *App) Close() {
	fns := a.cleanupFns
	a.cleanupFns = nil
	runCleanup(fns)
}

/*
========================
 Core bootstrap logic
========================
*/

func newApp(deps Deps) (*App, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, err
	}

	// 1) db
	db, err := deps.NewDB(cfg.DBAddr, cfg.DBDebug)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, DB: db}
	app.cleanupFns = append(app.cleanupFns, func() { _ = db.Close() })

	// 2) schema
	if deps.Migrate != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := deps.Migrate(ctx, db)
		cancel()
		if err != nil {
			app.Close()
			return nil, err
		}
	}

	// 3) account store
	app.Store = deps.NewStore(db)

	// 4) redis (best-effort, only guards the migration batch)
	var lease migration.Lease
	if cfg.RedisAddr != "" && deps.NewRedis != nil {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := c.Ping(ctx)
		cancel()

		if err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable; migration lease disabled")
			_ = c.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			lease = redis.NewLease(c)
			app.cleanupFns = append(app.cleanupFns, func() { _ = c.Close() })
		}
	}

	// 5) publisher
	var pub accounts.EventPublisher = rabbitmq_pub.NewNoopPublisher()
	if cfg.RabbitURL != "" && deps.NewPublisher != nil {
		p, err := deps.NewPublisher(cfg.RabbitURL, cfg.RabbitExch)
		switch {
		case err == nil:
			pub = p
			if c, ok := p.(interface{ Close() error }); ok {
				app.cleanupFns = append(app.cleanupFns, func() { _ = c.Close() })
			}
		case cfg.Env == "dev":
			logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; using noop publisher")
		default:
			app.Close()
			return nil, err
		}
	}

	// 6) security
	logger.Logger.Info().Str("issuer", cfg.JWTIssuer).Dur("session_ttl", cfg.SessionTTL).Msg("initializing session signer")
	app.Hasher = security.NewBcryptHasher(cfg.BcryptCost)
	app.Sessions = security.NewSessionSigner(cfg.JWTSecret, cfg.JWTIssuer, cfg.SessionTTL)

	// 7) services
	app.Runner = migration.NewRunner(
		migration.NewNormalizer(app.Store, cfg.StoreTimeout),
		lease,
		cfg.MigrationLeaseTTL,
	)
	app.Service = accounts.NewService(
		app.Store,
		app.Hasher,
		app.Sessions,
		policy.New(policy.Options{AdminCanCreateAdmin: cfg.AdminCanCreateAdmin}),
		pub,
		app.Runner,
		accounts.Config{StoreTimeout: cfg.StoreTimeout},
	)
	app.Seeder = seed.NewInitializer(app.Store, app.Hasher, seed.DefaultAccount{
		Name:     cfg.DefaultAdminName,
		Email:    cfg.DefaultAdminEmail,
		Password: cfg.DefaultAdminPassword,
	}, cfg.StoreTimeout)

	return app, nil
}

// Startup runs the one-shot tasks every instance performs before serving.
func (a *App) Startup(ctx context.Context) error {
	created, err := a.Seeder.EnsureDefaultAccount(ctx)
	if err != nil {
		return err
	}
	if created && a.Config.DefaultAdminPassword == "" {
		logger.Logger.Warn().Str("email", seed.DefaultEmail).Msg("default SuperAdmin created with the documented password; change it")
	}

	if a.Config.MigrateOnStart {
		rep, err := a.Runner.Run(ctx)
		switch {
		case err == nil:
			logger.Logger.Info().
				Int("migrated", rep.Migrated).
				Int("failed", len(rep.Failures)).
				Msg("startup role migration finished")
		case domain.Is(err, "migration_running"):
			logger.Logger.Info().Msg("role migration running on another instance")
		default:
			// reads resolve legacy roles regardless; don't block serving
			logger.Logger.Warn().Err(err).Msg("startup role migration failed")
		}
	}
	return nil
}

func newServer(deps Deps) (*http.Server, func(), error) {
	if deps.NewRouter == nil {
		return nil, nil, errNilDep
	}
	app, err := newApp(deps)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = app.Startup(ctx)
	cancel()
	if err != nil {
		app.Close()
		return nil, nil, err
	}

	// 8) handlers + middleware
	healthH := http_handlers.NewHealthHandler(app.DB)
	authH := http_handlers.NewAuthHandler(app.Service)
	accountsH := http_handlers.NewAccountsHandler(app.Service)
	adminH := http_handlers.NewAdminHandler(app.Service)
	authMW := middleware.Auth(app.Service, response.WriteError)

	// 9) router
	mux, err := deps.NewRouter(router.Deps{
		Health:   healthH,
		Auth:     authH,
		Accounts: accountsH,
		Admin:    adminH,
		AuthMW:   authMW,
	})
	if err != nil {
		app.Close()
		return nil, nil, err
	}

	// 10) server
	srv := &http.Server{
		Addr:         app.Config.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  app.Config.HTTPReadTimeout,
		WriteTimeout: app.Config.HTTPWriteTimeout,
		IdleTimeout:  app.Config.HTTPIdleTimeout,
	}

	return srv, app.Close, nil
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB:      config.NewDB,
		Migrate:    postgres.Migrate,
		NewStore: func(db *sql.DB) accounts.Store {
			return postgres.NewAccountRepo(db)
		},
		NewRedis: redis.New,
		NewPublisher: func(url, exchange string) (accounts.EventPublisher, error) {
			p, err := rabbitmq_pub.NewPublisher(url, exchange)
			if err != nil {
				return nil, err
			}
			return p, nil
		},
		NewRouter: router.New,
	}
}

/*
========================
 helpers
========================
*/

var errNilDep = errors.New("bootstrap: missing dependency")

func (d Deps) validate() error {
	if d.LoadConfig == nil || d.NewDB == nil || d.NewStore == nil {
		return errNilDep
	}
	return nil
}

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
