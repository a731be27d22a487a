package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/club-bracket/internal/config"
	"github.com/AdamBeresnev/club-bracket/internal/db"
	"github.com/AdamBeresnev/club-bracket/internal/events"
	"github.com/AdamBeresnev/club-bracket/internal/live"
	"github.com/AdamBeresnev/club-bracket/internal/service"
	"github.com/AdamBeresnev/club-bracket/internal/store"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("Server stopped with error")
	}
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	// Route chi's request log through zerolog
	chimiddleware.DefaultLogger = chimiddleware.RequestLogger(&chimiddleware.DefaultLogFormatter{
		Logger:  requestLogger{},
		NoColor: !cfg.LogPretty,
	})
}

// requestLogger sends chi's request lines to zerolog at info level.
type requestLogger struct{}

func (requestLogger) Print(v ...any) {
	log.Info().Msg(fmt.Sprint(v...))
}

// openStore picks the gateway for the configured driver. SQLite also backs the
// session store; everything else keeps sessions in memory.
func openStore(ctx context.Context, cfg *config.Config, sessionManager *scs.SessionManager) (store.Gateway, func(), error) {
	noop := func() {}

	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn().Msg("Using in-memory store, data is lost on restart")
		return store.NewMemoryStore(), noop, nil

	case config.StoreSQLite, config.StorePostgres:
		database, err := db.Connect(cfg.StoreDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		if err := db.RunMigrations(database.DB, cfg.StoreDriver); err != nil {
			database.Close()
			return nil, noop, fmt.Errorf("failed to run migrations: %w", err)
		}
		if cfg.StoreDriver == config.StoreSQLite {
			sessionManager.Store = sqlite3store.New(database.DB)
		}
		return store.NewTournamentStore(database), func() { database.Close() }, nil

	case config.StoreS3:
		objects, err := store.NewObjectStoreFromConfig(ctx, store.ObjectStoreConfig{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
		if err != nil {
			return nil, noop, err
		}
		return objects, noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode

	gateway, closeStore, err := openStore(ctx, cfg, sessionManager)
	if err != nil {
		return err
	}
	defer closeStore()

	hub := live.NewHub(cfg.CORSOrigins)
	publishers := events.Fanout{hub, events.LogPublisher{}}

	if cfg.NATSURL != "" {
		natsCfg := events.DefaultNATSConfig()
		natsCfg.URL = cfg.NATSURL
		natsCfg.SubjectPrefix = cfg.NATSSubject

		nc, err := events.ConnectNATS(natsCfg)
		if err != nil {
			return err
		}
		defer nc.Drain()
		publishers = append(publishers, events.NewNATSPublisher(nc, natsCfg.SubjectPrefix))
		log.Info().Str("url", cfg.NATSURL).Str("subject", natsCfg.SubjectPrefix).Msg("Publishing tournament events to NATS")
	}

	app := &application{
		services:    service.New(gateway, service.WithPublisher(publishers)),
		sessions:    sessionManager,
		hub:         hub,
		corsOrigins: cfg.CORSOrigins,
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hub.Run(gctx)
	})

	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.StoreDriver).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
