// Package httpserver wires voxline's concrete dependencies (Postgres,
// Redis, Twilio, WorkOS, Supabase) into a configured Echo instance,
// mirroring the teacher's internal/httpserver/router.go middleware setup
// and extending it with the routes api/http registers.
package httpserver

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	apihttp "github.com/chadiek/voxline/api/http"
	"github.com/chadiek/voxline/internal/catalogstore"
	"github.com/chadiek/voxline/internal/catalogsync"
	"github.com/chadiek/voxline/internal/config"
	"github.com/chadiek/voxline/internal/db"
	"github.com/chadiek/voxline/internal/jobqueue"
	"github.com/chadiek/voxline/internal/llm"
	"github.com/chadiek/voxline/internal/notify"
	"github.com/chadiek/voxline/internal/oauthbootstrap"
	"github.com/chadiek/voxline/internal/persistence"
	"github.com/chadiek/voxline/internal/tenant"
)

// Server bundles the configured Echo router.
type Server struct {
	Router *echo.Echo
}

// New constructs every concrete dependency from cfg and wires them into a
// configured Echo router. Database failures are returned rather than
// panicked — main.go decides whether that's fatal. The Redis client
// connects lazily, so Redis connectivity is not checked here.
func New(cfg config.Config) (*Server, error) {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	gormDB, err := db.OpenPostgres(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("httpserver: open postgres: %w", err)
	}

	resolver, err := tenant.NewGormResolver(gormDB)
	if err != nil {
		return nil, fmt.Errorf("httpserver: construct tenant resolver: %w", err)
	}

	store, err := persistence.NewGormStore(gormDB)
	if err != nil {
		return nil, fmt.Errorf("httpserver: construct persistence store: %w", err)
	}

	var notifier notify.Notifier
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		notifier = notify.NewTwilioNotifier(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	jobs := jobqueue.NewProducer(redisClient)

	var syncer *catalogsync.Syncer
	if cfg.SupabaseURL != "" && cfg.SupabaseServiceRoleKey != "" {
		store, err := catalogstore.New(catalogstore.Config{
			URL:            cfg.SupabaseURL,
			ServiceRoleKey: cfg.SupabaseServiceRoleKey,
			Bucket:         cfg.SupabaseCatalogBucket,
		})
		if err != nil {
			return nil, fmt.Errorf("httpserver: construct catalog store: %w", err)
		}
		syncer = catalogsync.New(nil, resolver, store)
	}

	var oauth *oauthbootstrap.Exchanger
	if cfg.WorkOSKey != "" && cfg.WorkOSClientID != "" {
		oauth = oauthbootstrap.NewExchanger(cfg.WorkOSKey, cfg.WorkOSClientID)
	}

	handlers := apihttp.NewHandlers(
		apihttp.SessionDeps{
			Resolver:     resolver,
			PersistStore: store,
			Notifier:     notifier,
			LLMConfig: llm.Config{
				BaseURL: cfg.CerebrasBaseURL,
				APIKey:  cfg.CerebrasKey,
				Model:   cfg.CerebrasModelID,
			},
			TurnTimeout: cfg.TurnTimeout,
		},
		jobs,
		syncer,
		oauth,
		func() string { return cfg.TwilioAuthToken },
	)
	handlers.Register(e)

	return &Server{Router: e}, nil
}
