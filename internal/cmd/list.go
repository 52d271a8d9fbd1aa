package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/variant-dev/variant/internal/cache"
	"github.com/variant-dev/variant/internal/style"
)

var listCmd = &cobra.Command{
	Use:     "list",
	GroupID: GroupIdentity,
	Short:   "Show all variants",
	Long: `List the variants found under the ssh root.

The variant whose public key git is signing with is marked with an
asterisk (*). With --long each variant also shows its key and the cached
name and email.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var listLong bool

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVarP(&listLong, "long", "l", false, "Show keys and cached identities")
}

func runList(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	variants, err := e.discoverer.DiscoverAll()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(variants) == 0 {
		fmt.Fprintf(out, "No variants in %s. Create %s/<name>/ holding a key pair.\n", e.sshRoot, e.sshRoot)
		return nil
	}

	active := e.switcher.Active(cmd.Context(), variants)
	store := cache.Open(e.cachePath)

	for _, v := range variants {
		fmt.Fprintln(out, style.VariantLine(v.Name, active != nil && active.Name == v.Name))

		if !listLong {
			continue
		}
		fmt.Fprintf(out, "    key:  %s\n", style.Path.Render(v.Keys.Private))

		meta, err := store.ReadOne(v.Name)
		if err != nil {
			return err
		}
		if meta == nil {
			fmt.Fprintf(out, "    user: %s\n", style.Hint.Render("(not cached)"))
			continue
		}
		fmt.Fprintf(out, "    user: %s\n", style.Identity(meta.Name, meta.Email))
	}
	return nil
}
