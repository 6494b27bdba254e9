package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"route-planner-service/internal/adapters/catalog"
	"route-planner-service/internal/adapters/repositories"
	"route-planner-service/internal/config"
	"route-planner-service/internal/platform/db"
	"route-planner-service/internal/platform/logging"
	"route-planner-service/internal/services"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	envFile  string
	seedPath string
	dryRun   bool

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:           "dbtool",
	Short:         "Database maintenance for the route planner",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(envFile)
		if err != nil {
			return err
		}
		if _, err := logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
			return err
		}
		return cfg.RequireDatabase()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, conn *sql.DB) error {
			log.Info().Msg("initializing database schema")
			if err := repositories.InitSchema(ctx, conn); err != nil {
				return fmt.Errorf("schema initialization failed: %w", err)
			}
			log.Info().Msg("schema ready")
			return nil
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the catalog file, drivers and booked drops",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := seedPath
		if path == "" {
			path = cfg.SeedPath
		}

		return withDB(cmd.Context(), func(ctx context.Context, conn *sql.DB) error {
			if err := repositories.InitSchema(ctx, conn); err != nil {
				return fmt.Errorf("schema initialization failed: %w", err)
			}

			entries, err := catalog.NewFileSource(cfg.CatalogPath).LoadCatalog(ctx)
			if err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}
			if err := repositories.UpsertCatalog(ctx, conn, entries); err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}
			log.Info().Int("entries", len(entries)).Str("file", cfg.CatalogPath).Msg("catalog seeded")

			if err := repositories.SeedFromJSON(ctx, conn, path); err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}
			log.Info().Str("file", path).Msg("seeding complete")
			return nil
		})
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Run one planning pass over booked drops",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, conn *sql.DB) error {
			store := repositories.NewPostgresStore(conn)

			source, err := catalog.NewSource(cfg.CatalogSource, cfg.CatalogPath, conn)
			if err != nil {
				return err
			}

			cat := services.NewCatalog(source)
			planner := services.NewPlanner(store, store, cat, cfg.Capacity())
			planner.Parallelism = cfg.Parallelism

			run := planner.PlanRoutes
			if dryRun {
				run = planner.Preview
			}

			res, err := run(ctx)
			if err != nil {
				return err
			}

			for _, r := range res.Routes {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tdrops=%d\tstops=%d\tkm=%.1f\tmin=%.0f\tbackhaul=%t\tfull=%t\n",
					r.ID, r.Area, len(r.DropIDs()), len(r.Stops), r.DistanceKm, r.DurationMinutes, r.BackhaulEligible, r.FullLoad)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "routes=%d unassigned=%d score=%.1f persisted=%t\n",
				len(res.Routes), len(res.UnassignedDropIDs), res.OptimizationScore, !dryRun)
			return nil
		})
	},
}

func withDB(ctx context.Context, fn func(ctx context.Context, conn *sql.DB) error) error {
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(ctx, conn)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "env file to load before reading the environment")
	seedCmd.Flags().StringVar(&seedPath, "file", "", "seed JSON file (default SEED_PATH)")
	planCmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute routes without storing them")

	rootCmd.AddCommand(migrateCmd, seedCmd, planCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("dbtool failed")
		os.Exit(1)
	}
}
