// Package cmd implements the variant command tree.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/variant-dev/variant/internal/config"
	"github.com/variant-dev/variant/internal/logging"
	"github.com/variant-dev/variant/internal/style"
)

// Command groups shown in help.
const (
	GroupIdentity = "identity"
	GroupDiag     = "diag"
)

var rootCmd = &cobra.Command{
	Use:   "variant",
	Short: "Switch between git identities",
	Long: `variant switches the ssh key and git identity in use.

Every subdirectory of ~/.ssh holding a key pair is a variant:

  ~/.ssh/work/id_ed25519
  ~/.ssh/work/id_ed25519.pub

Switching to a variant loads its key into ssh-agent and writes user.name,
user.email and user.signingkey to git config. The name and email are asked
for once and remembered in ~/.variant.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

var (
	configPath string
	logLevel   string

	// cfg is loaded before any subcommand runs.
	cfg *config.Config
)

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupIdentity, Title: "Identity Commands:"},
		&cobra.Group{ID: GroupDiag, Title: "Diagnostics:"},
	)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $VARIANT_CONFIG or <config dir>/variant/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return err
		}
		path = p
	}

	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.LogLevel = logLevel
	}
	cfg = loaded

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	return nil
}

// Execute runs the root command and returns the process exit code.
func Execute(version string) int {
	rootCmd.Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", style.ErrorPrefix, err)
		return 1
	}
	return 0
}

// requireSubcommand is the RunE of commands that only group subcommands.
func requireSubcommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("requires a subcommand\n\nRun '%s --help' for usage", cmd.CommandPath())
	}
	return fmt.Errorf("unknown subcommand %q for %q\n\nRun '%s --help' for usage", args[0], cmd.CommandPath(), cmd.CommandPath())
}
