package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/variant-dev/variant/internal/doctor"
	"github.com/variant-dev/variant/internal/style"
)

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	GroupID: GroupDiag,
	Short:   "Check the ssh directory, keys, tools and cache",
	Long: `Run health checks on everything a switch depends on:

  - the ssh root exists
  - every variant has exactly one key pair and a private key only you can read
  - git, ssh-agent and ssh-add are on PATH
  - the metadata cache parses

With --fix, private keys readable by others are chmod'ed to 0600.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

var doctorFix bool

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Repair what can be repaired")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	ctx := &doctor.CheckContext{
		SSHRoot:   e.sshRoot,
		CachePath: e.cachePath,
		Tools:     e.tools,
	}
	results := doctor.Run(ctx, doctor.DefaultChecks(), doctorFix)

	out := cmd.OutOrStdout()
	failed := 0
	for _, r := range results {
		prefix := style.SuccessPrefix
		switch r.Status {
		case doctor.StatusWarning:
			prefix = style.WarningPrefix
		case doctor.StatusError:
			prefix = style.ErrorPrefix
			failed++
		}

		fmt.Fprintf(out, "%s %s: %s\n", prefix, style.Heading.Render(r.Name), r.Message)
		for _, d := range r.Details {
			fmt.Fprintf(out, "    %s\n", d)
		}
		if r.Status != doctor.StatusOK && r.FixHint != "" {
			fmt.Fprintf(out, "    %s\n", style.Hint.Render(r.FixHint))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}
