package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/devspec/internal/config"
	"github.com/nao1215/devspec/internal/extract"
	seclog "github.com/nao1215/devspec/internal/log"
	"github.com/nao1215/devspec/internal/report"
	"github.com/nao1215/devspec/internal/store"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the devices in the store",
		Long: `Report extracts the model name, status, OS, model numbers and price from
every stored device page and prints them as a table.

Pages without a model name heading are skipped with a warning. Report never
touches the network.

Examples:
  # Print a text table
  devspec report

  # Write a Markdown document
  devspec report --markdown -o devices.md

  # Read a SQLite store and print JSON
  devspec report --store devspec-store.db --store-kind sqlite --json`,
		Args: cobra.NoArgs,
		RunE: runReportCmd,
	}

	cmd.Flags().StringP("store", "s", config.DefaultStorePath,
		"Record store path")
	cmd.Flags().String("store-kind", config.DefaultStoreKind,
		"Record store backend (csv or sqlite)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to this file (creates directories if needed)")
	cmd.Flags().Int("concurrency", config.DefaultReportConcurrency,
		"Number of pages parsed in parallel")

	return cmd
}

// reportOptions are the parsed flags of the report command.
type reportOptions struct {
	storePath   string
	storeKind   string
	json        bool
	markdown    bool
	output      string
	concurrency int
}

func parseReportFlags(cmd *cobra.Command) (*reportOptions, error) {
	opts := &reportOptions{}
	var err error

	if opts.storePath, err = cmd.Flags().GetString("store"); err != nil {
		return nil, err
	}
	if opts.storeKind, err = cmd.Flags().GetString("store-kind"); err != nil {
		return nil, err
	}
	if opts.json, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if opts.markdown, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if opts.output, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	if opts.concurrency, err = cmd.Flags().GetInt("concurrency"); err != nil {
		return nil, err
	}

	if opts.json && opts.markdown {
		return nil, config.ErrConflictingReportFormats
	}
	if err := config.ValidateStoreKind(opts.storeKind); err != nil {
		return nil, err
	}
	return opts, nil
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, _ []string) error {
	opts, err := parseReportFlags(cmd)
	if err != nil {
		return err
	}

	logger := seclog.NewSecureLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd))
	ctx := cmd.Context()

	s, err := store.Open(opts.storeKind, opts.storePath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer s.Close()

	records, err := s.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}

	result, err := extract.All(ctx, records.Records(), opts.concurrency)
	if err != nil {
		return fmt.Errorf("failed to extract devices: %w", err)
	}
	for _, skipped := range result.Skipped {
		logger.Warn("skipping device page", "url", skipped.URL, "error", skipped.Err)
	}
	logger.Debug("devices extracted",
		"records", records.Len(),
		"devices", len(result.Devices),
		"skipped", len(result.Skipped),
	)

	output, closeOutput, err := openReportOutput(cmd.OutOrStdout(), opts.output)
	if err != nil {
		return err
	}
	defer closeOutput()

	_, err = newReportWriter(output, opts).Write(result.Devices)
	return err
}

// newReportWriter picks the writer for the requested format.
func newReportWriter(w io.Writer, opts *reportOptions) report.Writer {
	switch {
	case opts.json:
		return report.NewJSONWriter(w, report.WithPrettyPrint())
	case opts.markdown:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w)
	}
}

// openReportOutput returns stdout, or the file at path when it is set.
func openReportOutput(stdout io.Writer, path string) (io.Writer, func(), error) {
	if path == "" {
		return stdout, func() {}, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
