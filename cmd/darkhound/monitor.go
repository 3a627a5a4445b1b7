package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/darkhound/internal/alert"
	"github.com/nao1215/darkhound/internal/config"
	"github.com/nao1215/darkhound/internal/feed"
	"github.com/nao1215/darkhound/internal/fetch"
	"github.com/nao1215/darkhound/internal/log"
	"github.com/nao1215/darkhound/internal/monitor"
	"github.com/nao1215/darkhound/internal/report"
	"github.com/nao1215/darkhound/internal/scanner"
	"github.com/nao1215/darkhound/internal/store"
	"github.com/nao1215/darkhound/internal/tor"
)

// NewMonitorCmd creates the monitor command.
func NewMonitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Run one monitoring cycle over the configured sources",
		Long: `Monitor fetches every configured source through the Tor proxy, scans
the sanitized content for your indicators, stores findings in the local
leak database, and dispatches redacted email alerts.

A cycle tolerates individual failures: an unreachable source or a
rejected alert is reported in the cycle summary, never aborts the run.

Examples:
  # Run a cycle with the default configuration search
  darkhound monitor

  # Use a specific configuration file
  darkhound monitor -c /etc/darkhound/darkhound.yml

  # Emit the cycle summary as Markdown to a file
  darkhound monitor -m -o cycle.md`,
		Args: cobra.NoArgs,
		RunE: runMonitorCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: darkhound.yml in current or XDG config directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown summary (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write summary to specified file path (creates directories if needed)")

	return cmd
}

// runMonitorCmd executes the monitor command.
func runMonitorCmd(cmd *cobra.Command, _ []string) error {
	verbose := getVerboseFlag(cmd)
	logger := log.NewSecureLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	cfg, err := loadConfig(cmd, logger)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	writer, cleanup, err := buildReportWriter(cmd, verbose)
	if err != nil {
		return err
	}
	defer cleanup()

	// Graceful shutdown on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runMonitor(ctx, cfg, logger, writer)
}

// runMonitor wires the collaborators and runs one cycle.
func runMonitor(ctx context.Context, cfg *config.Config, logger *slog.Logger, writer report.Writer) error {
	client, shutdownTor, err := connectTor(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer shutdownTor()

	opts := store.DefaultOptions()
	opts.Logger = logger
	db, err := store.Open(cfg.Storage.Dir, opts)
	if err != nil {
		return fmt.Errorf("failed to open leak database: %w", err)
	}
	defer db.Close()
	logger.Info("leak database opened", "dir", cfg.Storage.Dir)

	fetcher := fetch.New(client.NewHTTPClient(),
		fetch.WithTimeout(cfg.Security.FetchTimeout),
		fetch.WithProxyAddress(cfg.Proxy.SocksAddr),
		fetch.WithLogger(logger))

	var lookup feed.Lookup = feed.Disabled{}
	if cfg.Feed.URL != "" {
		lookup = feed.NewHTTPClient(cfg.Feed.URL,
			feed.WithAPIKey(cfg.Feed.APIKey),
			feed.WithLogger(logger))
	}

	sc := scanner.New(
		scanner.WithFeed(lookup),
		scanner.WithMediaInspection(cfg.Scanner.InspectMedia),
		scanner.WithLogger(logger))

	dispatcher, err := alert.New(cfg.Alerting.SMTPAddr, cfg.Alerting.From, cfg.Alerting.Destination,
		alert.WithCredentials(cfg.Alerting.Username, cfg.Alerting.Password),
		alert.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("alerting error: %w", err)
	}

	mon := monitor.New(fetcher, sc, db, dispatcher,
		monitor.WithLogger(logger),
		monitor.WithConcurrency(cfg.Security.MaxConcurrentScans))

	summary, runErr := mon.RunCycle(ctx, cfg.Sources, cfg.Indicators)

	if _, err := writer.WriteCycle(summary); err != nil {
		return fmt.Errorf("failed to write cycle summary: %w", err)
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

// connectTor builds a Tor client from the configuration, either by
// verifying the external proxy or by bootstrapping the embedded daemon.
// The returned func releases the embedded daemon, if any.
func connectTor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*tor.Client, func(), error) {
	if !cfg.Proxy.Embedded {
		client, err := tor.NewClient(cfg.Proxy.SocksAddr, cfg.Security.FetchTimeout)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Tor client: %w", err)
		}

		if status := client.CheckConnection(ctx); status != tor.ProxyStatusOK {
			return nil, nil, fmt.Errorf("tor proxy check failed: %s (make sure Tor is running at %s)",
				status, cfg.Proxy.SocksAddr)
		}
		logger.Info("Tor proxy connection verified", "address", cfg.Proxy.SocksAddr)
		return client, func() {}, nil
	}

	logger.Info("starting embedded Tor daemon (this may take a few minutes)...")
	embedded := tor.NewEmbeddedTor(tor.WithStartupTimeout(cfg.Proxy.StartupTimeout))
	if err := embedded.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to start embedded Tor: %w", err)
	}

	client, err := embedded.NewClient(cfg.Security.FetchTimeout)
	if err != nil {
		_ = embedded.Stop()
		return nil, nil, fmt.Errorf("failed to create Tor client: %w", err)
	}

	logger.Info("embedded Tor ready", "socks_addr", embedded.SocksAddr())
	cfg.Proxy.SocksAddr = embedded.SocksAddr()
	return client, func() {
		logger.Info("stopping embedded Tor daemon...")
		if err := embedded.Stop(); err != nil {
			logger.Error("failed to stop embedded Tor", "error", err)
		}
	}, nil
}

// loadConfig loads, normalizes, and annotates the configuration from
// the --config flag.
func loadConfig(cmd *cobra.Command, logger *slog.Logger) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) && path != "" {
			return nil, fmt.Errorf("configuration file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.Normalize(logger)
	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildReportWriter builds the report writer selected by the format and
// output flags. The cleanup func closes the output file, if one was
// opened.
func buildReportWriter(cmd *cobra.Command, verbose bool) (report.Writer, func(), error) {
	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return nil, nil, err
	}
	markdownOut, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, nil, err
	}
	if jsonOut && markdownOut {
		return nil, nil, errors.New("conflicting report formats: --json and --markdown cannot be used together")
	}

	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = cmd.OutOrStdout()
	cleanup := func() {}
	if outputPath != "" {
		if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.Create(outputPath) //nolint:gosec // User-provided output path is intentional
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create output file: %w", err)
		}
		out = f
		cleanup = func() { _ = f.Close() }
	}

	switch {
	case jsonOut:
		return report.NewJSONWriter(out, report.WithPrettyPrint()), cleanup, nil
	case markdownOut:
		return report.NewMarkdownWriter(out), cleanup, nil
	default:
		return report.NewSimpleWriter(out, report.WithVerbose(verbose)), cleanup, nil
	}
}
