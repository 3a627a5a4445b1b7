package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/darkhound/internal/log"
	"github.com/nao1215/darkhound/internal/report"
	"github.com/nao1215/darkhound/internal/store"
)

// NewDashboardCmd creates the dashboard command.
func NewDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the highest-risk recorded leaks",
		Long: `Dashboard reads the local leak database and lists the stored findings
ranked by risk score. Unlike alert emails, the dashboard shows the full
captured context; it never leaves this machine.

Examples:
  # Show the top 10 leaks
  darkhound dashboard

  # Show the top 25 leaks as Markdown
  darkhound dashboard -n 25 -m

  # Export everything recorded as JSON
  darkhound dashboard -n 1000 -j -o leaks.json`,
		Args: cobra.NoArgs,
		RunE: runDashboardCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: darkhound.yml in current or XDG config directory)")
	cmd.Flags().IntP("limit", "n", 10,
		"Maximum number of leaks to show")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write dashboard to specified file path (creates directories if needed)")

	return cmd
}

// runDashboardCmd executes the dashboard command.
func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	verbose := getVerboseFlag(cmd)
	logger := log.NewSecureLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	cfg, err := loadConfig(cmd, logger)
	if err != nil {
		return err
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	writer, cleanup, err := buildReportWriter(cmd, verbose)
	if err != nil {
		return err
	}
	defer cleanup()

	dashboard := &report.Dashboard{GeneratedAt: time.Now()}

	// An absent database just means nothing has been recorded yet.
	opts := store.DefaultOptions()
	opts.CreateIfNotExists = false
	opts.Logger = logger
	db, err := store.Open(cfg.Storage.Dir, opts)
	if err != nil {
		logger.Debug("leak database not available", "dir", cfg.Storage.Dir, "error", err)
		_, werr := writer.WriteDashboard(dashboard)
		return werr
	}
	defer db.Close()

	ctx := cmd.Context()
	dashboard.Leaks, err = db.TopLeaks(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to query leaks: %w", err)
	}
	dashboard.TotalLeaks, err = db.CountLeaks(ctx)
	if err != nil {
		return fmt.Errorf("failed to count leaks: %w", err)
	}

	if _, err := writer.WriteDashboard(dashboard); err != nil {
		return fmt.Errorf("failed to write dashboard: %w", err)
	}
	return nil
}
