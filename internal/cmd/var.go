package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/variant-dev/variant/internal/cache"
	"github.com/variant-dev/variant/internal/identity"
	"github.com/variant-dev/variant/internal/style"
)

var varCmd = &cobra.Command{
	Use:     "var",
	GroupID: GroupIdentity,
	Short:   "Switch to a variant",
	Long: `Activate a variant: load its key into ssh-agent and write its identity
to git config.

Other keys are removed from the agent first. If the variant has no cached
name and email you are asked for them once.

By default the identity goes to the global git config. With --sacred it is
written to the current repository only.

Examples:
  variant var -n work          # Use ~/.ssh/work everywhere
  variant var -n oss --sacred  # Use ~/.ssh/oss in this repository`,
	Args: cobra.NoArgs,
	RunE: runVar,
}

var (
	varName   string
	varSacred bool
)

func init() {
	rootCmd.AddCommand(varCmd)

	varCmd.Flags().StringVarP(&varName, "name", "n", "", "Variant to activate (a directory under the ssh root)")
	varCmd.Flags().BoolVarP(&varSacred, "sacred", "s", false, "Write to the repository's git config instead of the global one")
	_ = varCmd.MarkFlagRequired("name")
}

func runVar(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	scope, err := identity.ParseScope(cfg.Scope)
	if err != nil {
		return err
	}
	if varSacred {
		scope = identity.ScopeLocal
	}

	store, err := cache.Init(e.cachePath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	// The current git identity is only read once a prompt is needed.
	provider := identity.ProviderFunc(func(ctx context.Context, username string) (cache.Metadata, error) {
		return newProvider(e.switcher.Current(ctx)).Resolve(ctx, username)
	})
	if err := e.switcher.Apply(ctx, varName, store, provider, scope); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s Successfully set variant %s\n", style.SuccessPrefix, style.Variant.Render(varName))

	who, err := e.switcher.Whoami(ctx, false)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(who))
	return nil
}
