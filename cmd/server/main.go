package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"route-planner-service/internal/adapters/catalog"
	"route-planner-service/internal/adapters/notify"
	"route-planner-service/internal/adapters/repositories"
	"route-planner-service/internal/api"
	"route-planner-service/internal/config"
	"route-planner-service/internal/platform/db"
	"route-planner-service/internal/platform/logging"
	"route-planner-service/internal/ports"
	"route-planner-service/internal/scheduler"
	"route-planner-service/internal/services"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, asynq, catalog source) behind ports and starts the HTTP server.
func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logFile, err := logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer logFile.Close()

	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Schema is created on startup for local runs; seeding is left to dbtool.
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return err
	}

	store := repositories.NewPostgresStore(conn)

	source, err := catalog.NewSource(cfg.CatalogSource, cfg.CatalogPath, conn)
	if err != nil {
		return err
	}
	cat := services.NewCatalog(source)
	if err := cat.Load(ctx); err != nil {
		return err
	}

	notifier, closeNotifier := newNotifier(cfg)
	defer closeNotifier()

	planner := services.NewPlanner(store, store, cat, cfg.Capacity())
	planner.Parallelism = cfg.Parallelism

	coord := services.NewAssignmentCoordinator(store, store, notifier)
	coord.TTL = cfg.AssignmentTTL
	defer coord.Wait()

	if cfg.CatalogWatch && cfg.CatalogSource == "file" {
		w, err := catalog.NewWatcher(cfg.CatalogPath, cat, 500*time.Millisecond)
		if err != nil {
			return err
		}
		w.Start(ctx)
		defer w.Close()
	}

	sched := scheduler.New(5 * time.Minute)
	if err := sched.Add("catalog-reload", cfg.CatalogReloadCron, cat.Reload); err != nil {
		return err
	}
	if err := sched.Add("plan-routes", cfg.PlanCron, func(ctx context.Context) error {
		_, err := planner.PlanRoutes(ctx)
		return err
	}); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop(context.Background())

	router := api.NewRouter(api.Deps{
		Planner:     planner,
		Routes:      store,
		Assignments: coord,
		Catalog:     cat,
	})

	// Planning a large backlog can take a while; write timeout allows for it.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		log.Info().Msg("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newNotifier(cfg config.Config) (ports.Notifier, func()) {
	if cfg.Notifier != "asynq" {
		return notify.LogNotifier{}, func() {}
	}

	client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddress, Password: cfg.RedisPassword})
	breaker := notify.NewBreaker(notify.BreakerSettings{
		Name:    "asynq-notifier",
		Timeout: 30 * time.Second,
	})
	return notify.NewAsynqNotifier(client, breaker), func() { _ = client.Close() }
}
