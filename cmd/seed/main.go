package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"art-seeder/config"
	"art-seeder/platform"
	"art-seeder/providers/artsy"
	"art-seeder/services"
	"art-seeder/storage"
)

var seedFlags struct {
	artworks       int
	events         int
	eventStatus    string
	posts          int
	users          int
	collabRequests int
	batchSize      int
	seed           int64
	dryRun         bool
	report         string
	verbose        bool
}

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run a single catalog migration against the target platform",
	Long: `Fetch artworks and shows from Artsy, create them on the target platform and
generate follows, likes, comments, collaboration and upgrade requests.

Configuration is read from the environment (and .env). Flags override the
corresponding variables for this run only.

Examples:
  seed --dry-run
  seed --artworks 50 --events 10 --users 200 --seed 42
  seed --report run.json`,
	SilenceUsage: true,
	RunE:         runSeed,
}

func init() {
	f := rootCmd.Flags()
	f.IntVar(&seedFlags.artworks, "artworks", 0, "number of artworks to fetch (ARTWORK_COUNT)")
	f.IntVar(&seedFlags.events, "events", 0, "number of shows to fetch (EVENT_COUNT)")
	f.StringVar(&seedFlags.eventStatus, "event-status", "", "show status filter, e.g. upcoming, running, closed (EVENT_STATUS)")
	f.IntVar(&seedFlags.posts, "posts", 0, "number of generated posts (POST_COUNT)")
	f.IntVar(&seedFlags.users, "users", 0, "number of generated plain users (USER_COUNT)")
	f.IntVar(&seedFlags.collabRequests, "collab-requests", 0, "number of collaboration requests (COLLAB_REQUEST_COUNT)")
	f.IntVar(&seedFlags.batchSize, "batch-size", 0, "edges per bulk request (BATCH_SIZE)")
	f.Int64Var(&seedFlags.seed, "seed", 0, "random seed, 0 picks one (SEED)")
	f.BoolVar(&seedFlags.dryRun, "dry-run", false, "do not write to the target platform (PLATFORM_DRY_RUN)")
	f.StringVar(&seedFlags.report, "report", "", "write the run report as JSON to this file, - for stdout")
	f.BoolVarP(&seedFlags.verbose, "verbose", "v", false, "debug logging")
}

// applyFlags übernimmt nur explizit gesetzte Flags in die Konfiguration.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed
	if changed("artworks") {
		cfg.ArtworkCount = seedFlags.artworks
	}
	if changed("events") {
		cfg.EventCount = seedFlags.events
	}
	if changed("event-status") {
		cfg.EventStatus = seedFlags.eventStatus
	}
	if changed("posts") {
		cfg.PostCount = seedFlags.posts
	}
	if changed("users") {
		cfg.UserCount = seedFlags.users
	}
	if changed("collab-requests") {
		cfg.CollabRequestCount = seedFlags.collabRequests
	}
	if changed("batch-size") {
		cfg.BatchSize = seedFlags.batchSize
	}
	if changed("seed") {
		cfg.Seed = seedFlags.seed
	}
	if changed("dry-run") {
		cfg.PlatformDryRun = seedFlags.dryRun
	}
	return cfg.Validate()
}

func runSeed(cmd *cobra.Command, _ []string) error {
	zapCfg := zap.NewProductionConfig()
	if seedFlags.verbose {
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logging, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %w", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	sinks, _, err := storage.Sinks(cfg, logging)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	normalizer := services.NewFieldNormalizer(logging, services.NormalizerOptions{
		EmailDomain:    cfg.EmailDomain,
		PaymentContact: cfg.PaymentContact,
		EventWindow:    cfg.EventWindow(),
	})
	migration := services.NewMigrationService(
		artsy.NewFetcher(cfg, logging),
		platform.NewClient(cfg, logging),
		normalizer,
		services.OptionsFromConfig(cfg),
		logging,
		sinks...,
	)

	report, runErr := migration.Run(ctx)
	if seedFlags.report != "" {
		if err := writeReport(seedFlags.report, report); err != nil {
			logging.Error("Bericht konnte nicht geschrieben werden", zap.Error(err))
		}
	}
	return runErr
}

func writeReport(path string, report *services.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if path == "-" {
		_, err = fmt.Fprintln(os.Stdout, string(data))
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
