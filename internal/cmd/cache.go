package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/variant-dev/variant/internal/cache"
	"github.com/variant-dev/variant/internal/style"
)

var cacheCmd = &cobra.Command{
	Use:     "cache",
	GroupID: GroupIdentity,
	Short:   "Inspect and edit remembered identities",
	Long: `Inspect and edit the name and email remembered for each variant.

Examples:
  variant cache list
  variant cache set work --name "Ada Lovelace" --email ada@example.com`,
	RunE: requireSubcommand,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show remembered identities",
	Args:  cobra.NoArgs,
	RunE:  runCacheList,
}

var cacheSetCmd = &cobra.Command{
	Use:   "set <variant>",
	Short: "Remember the identity of a variant",
	Long: `Remember the name and email of a variant without switching to it.

An existing entry is replaced. The next 'variant var' uses these values
instead of asking.`,
	Args: cobra.ExactArgs(1),
	RunE: runCacheSet,
}

var (
	cacheSetName  string
	cacheSetEmail string
)

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheSetCmd)

	cacheSetCmd.Flags().StringVar(&cacheSetName, "name", "", "git user.name for the variant")
	cacheSetCmd.Flags().StringVar(&cacheSetEmail, "email", "", "git user.email for the variant")
	_ = cacheSetCmd.MarkFlagRequired("name")
	_ = cacheSetCmd.MarkFlagRequired("email")
}

func runCacheList(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	list, err := cache.Open(e.cachePath).ReadAll()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(list) == 0 {
		fmt.Fprintln(out, "No identities cached. They are added on first switch or with 'variant cache set'.")
		return nil
	}

	for _, m := range list {
		fmt.Fprintf(out, "%s  %s\n", style.Variant.Render(m.Username), style.Identity(m.Name, m.Email))
	}
	return nil
}

func runCacheSet(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	m := cache.Metadata{Username: args[0], Name: cacheSetName, Email: cacheSetEmail}
	if err := m.Validate(); err != nil {
		return err
	}

	if _, err := e.discoverer.FindByName(m.Username); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", style.WarningPrefix, err)
	}

	store, err := cache.Init(e.cachePath)
	if err != nil {
		return err
	}
	if err := store.Write(m); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Cached %s as %s\n", style.SuccessPrefix, style.Variant.Render(m.Username), style.Identity(m.Name, m.Email))
	return nil
}
