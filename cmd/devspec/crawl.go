package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/devspec/internal/config"
	"github.com/nao1215/devspec/internal/database"
	seclog "github.com/nao1215/devspec/internal/log"
	"github.com/nao1215/devspec/internal/metrics"
	"github.com/nao1215/devspec/internal/model"
	"github.com/nao1215/devspec/internal/pipeline"
	"github.com/nao1215/devspec/internal/proxy"
	"github.com/nao1215/devspec/internal/store"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <proxy-token>",
		Short: "Fetch new device pages into the store",
		Long: `Crawl discovers the device pages of the allow-listed vendors and fetches
at most --limit pages that are not stored yet.

All requests go through the forwarding proxy, authenticated with the given
token. The token is never written to logs.

A run proceeds in five steps:
  1. Load the records already in the store
  2. Walk the vendor menu, listing pages and device grids
  3. Drop stored and duplicate URLs and cut the rest to --limit
  4. Fetch the selected pages one at a time
  5. Save the old and new records back to the store

If any listing page cannot be fetched the run fails and the store is left
untouched. Device pages that answer a non-200 status are skipped and stay
candidates for the next run. Every run is written to the run journal.

Examples:
  # Fetch two new device pages (the default limit)
  devspec crawl $PROXY_TOKEN

  # Fetch up to 20 Nokia and Sony pages, one per second
  devspec crawl --vendor nokia --vendor sony -l 20 --delay 1s $PROXY_TOKEN

  # Keep records in SQLite and export metrics for node_exporter
  devspec crawl --store devspec-store.db --store-kind sqlite \
    --metrics-file /var/lib/node_exporter/devspec.prom $PROXY_TOKEN`,
		Args: exactlyOneArg,
		RunE: runCrawlCmd,
	}

	cmd.Flags().IntP("limit", "l", config.DefaultRequestLimit,
		"Maximum number of new device pages fetched in this run")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of device pages per logged batch")
	cmd.Flags().StringP("store", "s", config.DefaultStorePath,
		"Record store path")
	cmd.Flags().String("store-kind", config.DefaultStoreKind,
		"Record store backend (csv or sqlite)")
	cmd.Flags().StringSlice("vendor", nil,
		"Vendor slug to crawl, repeatable (default: config file, then samsung and apple)")
	cmd.Flags().String("base-url", config.DefaultBaseURL,
		"Catalog origin")
	cmd.Flags().String("proxy", config.DefaultProxyAddress,
		"Forwarding proxy address (host:port)")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Minimum spacing between device page fetches")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Per-request timeout (0 leaves it to the transport)")
	cmd.Flags().Bool("strict-pagination", false,
		"Fail when a vendor listing has no pagination links")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .devspec in current or home directory)")
	cmd.Flags().String("db-dir", "",
		"Run journal directory (default: XDG data directory)")
	cmd.Flags().String("metrics-file", "",
		"Write run metrics in Prometheus text format to this file")

	return cmd
}

// exactlyOneArg requires the proxy token and prints usage to stderr when
// it is missing, even though the root command silences usage on errors.
// cmd.Usage would follow OutOrStderr, which is stdout once SetOut is called.
func exactlyOneArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
		return err
	}
	return nil
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCrawlConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := seclog.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)

	// Cancellation stops the executor between fetches and the pipeline
	// between steps. A cancelled run persists nothing.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := runCrawl(ctx, cfg, logger)
	if err != nil {
		return err
	}

	printSummary(cmd.OutOrStdout(), summary)
	return nil
}

// buildCrawlConfig merges defaults, the config file and explicitly set flags,
// in that order of precedence from lowest to highest.
func buildCrawlConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Token = args[0]
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	if err := applyConfigFile(cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("limit") {
		if cfg.RequestLimit, err = flags.GetInt("limit"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("batch") {
		if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("store") {
		if cfg.StorePath, err = flags.GetString("store"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("store-kind") {
		if cfg.StoreKind, err = flags.GetString("store-kind"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("vendor") {
		if cfg.Vendors, err = flags.GetStringSlice("vendor"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("base-url") {
		if cfg.BaseURL, err = flags.GetString("base-url"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("delay") {
		if cfg.CrawlDelay, err = flags.GetDuration("delay"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("strict-pagination") {
		if cfg.StrictPagination, err = flags.GetBool("strict-pagination"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("db-dir") {
		if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
			return nil, err
		}
	}
	if cfg.MetricsFile, err = flags.GetString("metrics-file"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyConfigFile loads the .devspec file into cfg.
// An explicit --config path that does not exist is an error; a missing
// implicit file is not.
func applyConfigFile(cfg *config.Config) error {
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath == "" {
		if explicitConfigPath {
			return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
		}
		return nil
	}

	file, err := config.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	file.Apply(cfg)
	return nil
}

// runCrawl executes one crawl run and records it in the journal.
// The returned summary describes the run even when it failed.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) (model.RunSummary, error) {
	client, err := proxy.NewClient(cfg.Token,
		proxy.WithProxyAddress(cfg.ProxyAddress),
		proxy.WithHeaders(cfg.Headers),
		proxy.WithTimeout(cfg.Timeout),
		proxy.WithMaxBodySize(cfg.MaxBodySize),
		proxy.WithLogger(logger),
	)
	if err != nil {
		return model.RunSummary{}, fmt.Errorf("failed to create proxy client: %w", err)
	}

	run := model.NewCrawlRun()

	s, err := store.Open(cfg.StoreKind, cfg.StorePath, store.WithRunID(run.ID))
	if err != nil {
		return model.RunSummary{}, fmt.Errorf("failed to open store: %w", err)
	}
	defer s.Close()

	recorder := metrics.NewRecorder()

	logger.Info("starting crawl",
		"run", run.ID,
		"vendors", cfg.Vendors,
		"limit", cfg.RequestLimit,
		"store", cfg.StorePath,
		"proxy", client.ProxyAddress(),
	)

	p := pipeline.CrawlPipeline(client, s,
		[]pipeline.Option{pipeline.WithLogger(logger)},
		pipeline.WithPipelineBaseURL(cfg.BaseURL),
		pipeline.WithPipelineVendors(cfg.Vendors),
		pipeline.WithPipelineRequestLimit(cfg.RequestLimit),
		pipeline.WithPipelineBatchSize(cfg.BatchSize),
		pipeline.WithPipelineCrawlDelay(cfg.CrawlDelay),
		pipeline.WithPipelineStrictPagination(cfg.StrictPagination),
		pipeline.WithPipelineObserver(recorder),
		pipeline.WithPipelineLogger(logger),
	)

	execErr := p.Execute(ctx, run)
	run.CallCount = client.Calls()
	run.Finish(execErr)
	summary := run.Summary()

	// The journal and metrics describe failed and cancelled runs as well,
	// so they are written with a context that outlives the signal.
	if err := saveRun(context.WithoutCancel(ctx), cfg.DBDir, summary, logger); err != nil {
		logger.Error("failed to write run journal", "run", run.ID, "error", err)
	}

	if cfg.MetricsFile != "" {
		recorder.ObserveRun(summary)
		if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Error("failed to write metrics", "path", cfg.MetricsFile, "error", err)
		}
	}

	if execErr != nil {
		return summary, fmt.Errorf("crawl failed: %w", execErr)
	}

	logger.Info("crawl complete",
		"run", run.ID,
		"fetched", summary.Fetched,
		"failed", summary.Failed,
		"stored", summary.Stored,
		"proxyCalls", summary.ProxyCalls,
		"elapsed", summary.Duration().Round(time.Millisecond),
	)
	return summary, nil
}

// saveRun appends the run to the journal database in dbDir.
func saveRun(ctx context.Context, dbDir string, summary model.RunSummary, logger *slog.Logger) error {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.SaveRun(ctx, summary); err != nil {
		return err
	}

	logger.Debug("run saved to journal", "run", summary.ID, "db", db.Path())
	return nil
}

// printSummary writes the one-line result of a successful run.
func printSummary(w io.Writer, s model.RunSummary) {
	fmt.Fprintf(w, "fetched %d, failed %d, stored %d, proxy calls %d\n",
		s.Fetched, s.Failed, s.Stored, s.ProxyCalls)
}
