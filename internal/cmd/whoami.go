package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	GroupID: GroupIdentity,
	Short:   "Show the git identity in use",
	Long: `Show user.name, user.email and user.signingkey as git sees them from
the current directory.

With --verbose the whole 'git config --list' output is shown.`,
	Args: cobra.NoArgs,
	RunE: runWhoami,
}

var whoamiVerbose bool

func init() {
	rootCmd.AddCommand(whoamiCmd)
	whoamiCmd.Flags().BoolVarP(&whoamiVerbose, "verbose", "v", false, "Show the full git configuration")
}

func runWhoami(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	out, err := e.switcher.Whoami(cmd.Context(), whoamiVerbose)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
