// Package main provides the entry point for the DarkHound CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for DarkHound.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "darkhound",
		Short: "Dark web leak monitoring for your indicators",
		Long: `DarkHound monitors dark web sources for leaked indicators such as
domains, email addresses, and project names. It fetches configured
sources through a Tor SOCKS proxy, scans the sanitized content for
watched tokens, persists findings to a local database, and sends
redacted email alerts.

By default DarkHound expects an external Tor proxy at 127.0.0.1:9050.
Set proxy.embedded in the configuration to start an embedded Tor daemon.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewMonitorCmd())
	cmd.AddCommand(NewDashboardCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
