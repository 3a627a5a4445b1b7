package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed templates/darkhound.yml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new DarkHound configuration file",
		Long: `Init creates a new darkhound.yml configuration file in the current
directory.

The generated file includes:
- Commented examples for sources and indicators
- Alerting, proxy, and storage settings with their defaults
- Documentation for all available options

Credentials (SMTP, feed API key) are never stored in the file; set them
through the DARKHOUND_* environment variables instead.

Examples:
  # Create darkhound.yml in current directory
  darkhound init

  # Create config file at a specific path
  darkhound init -o /etc/darkhound/darkhound.yml

  # Force overwrite existing file
  darkhound init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", "darkhound.yml",
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/darkhound.yml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nEdit this file to configure:")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Sources to monitor and indicators to watch")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Alert destination and SMTP server")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Tor proxy and storage settings")

	return nil
}
