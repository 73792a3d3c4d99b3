package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nao1215/devspec/internal/config"
	"github.com/nao1215/devspec/internal/database"
	"github.com/nao1215/devspec/internal/model"
)

// errRunNotFound is returned by history --id for an unknown run.
var errRunNotFound = errors.New("run not found")

// NewHistoryCmd creates the history command.
// It reads the run journal written by every crawl.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past crawl runs",
		Long: `History lists the crawl runs recorded in the run journal, newest first.

Each crawl, including failed and cancelled ones, appends one entry with its
counters: vendors, listing pages, candidates, frontier size, fetched and
failed pages, stored records, proxy calls and the error, if any.

Examples:
  # List the last 20 runs
  devspec history

  # Show one run in detail
  devspec history --id 3f1c2a9e-...

  # Export the last 100 runs as JSON
  devspec history --limit 100 --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("db-dir", "",
		"Run journal directory (default: XDG data directory)")
	cmd.Flags().IntP("limit", "n", config.DefaultHistoryLimit,
		"Number of runs to list (0 lists all)")
	cmd.Flags().String("id", "",
		"Show a single run by ID")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	id, err := cmd.Flags().GetString("id")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if id != "" {
		run, err := db.GetRun(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load run: %w", err)
		}
		if run == nil {
			return fmt.Errorf("%w: %s", errRunNotFound, id)
		}
		if jsonOutput {
			return writeJSON(out, run)
		}
		writeRunDetail(out, *run)
		return nil
	}

	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		if runs == nil {
			runs = []model.RunSummary{}
		}
		return writeJSON(out, runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No crawl runs recorded yet. Run 'devspec crawl <proxy-token>' first.")
		return nil
	}
	return writeRunTable(out, runs)
}

// writeRunTable prints one row per run.
func writeRunTable(w io.Writer, runs []model.RunSummary) error {
	table := tablewriter.NewWriter(w)
	table.Header("Run", "Started", "Fetched", "Failed", "Stored", "Proxy Calls", "Result")

	for _, r := range runs {
		row := []string{
			shortID(r.ID),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			strconv.Itoa(r.Fetched),
			strconv.Itoa(r.Failed),
			strconv.Itoa(r.Stored),
			strconv.FormatInt(r.ProxyCalls, 10),
			runResult(r),
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to add table row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}

// writeRunDetail prints every counter of one run.
func writeRunDetail(w io.Writer, r model.RunSummary) {
	fmt.Fprintf(w, "Run:           %s\n", r.ID)
	fmt.Fprintf(w, "Started:       %s\n", r.StartedAt.Local().Format(time.RFC3339))
	if !r.FinishedAt.IsZero() {
		fmt.Fprintf(w, "Finished:      %s (%s)\n", r.FinishedAt.Local().Format(time.RFC3339), r.Duration().Round(time.Millisecond))
	}
	fmt.Fprintf(w, "Vendors:       %d\n", r.Vendors)
	fmt.Fprintf(w, "Listing pages: %d\n", r.ListingPages)
	fmt.Fprintf(w, "Candidates:    %d\n", r.Candidates)
	fmt.Fprintf(w, "Frontier:      %d\n", r.Frontier)
	fmt.Fprintf(w, "Fetched:       %d\n", r.Fetched)
	fmt.Fprintf(w, "Failed:        %d\n", r.Failed)
	fmt.Fprintf(w, "Stored:        %d\n", r.Stored)
	fmt.Fprintf(w, "Proxy calls:   %d\n", r.ProxyCalls)
	fmt.Fprintf(w, "Result:        %s\n", runResult(r))
}

func runResult(r model.RunSummary) string {
	if r.Succeeded() {
		return "ok"
	}
	return "error: " + r.Error
}

// shortID abbreviates a UUID for the table.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
