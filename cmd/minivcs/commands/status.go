package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the working tree status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := TV.Repo.Status(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if st.Branch != "" {
			fmt.Fprintf(out, "On branch %s\n", st.Branch)
		} else {
			fmt.Fprintln(out, "HEAD detached")
		}
		if st.Head.IsZero() {
			fmt.Fprintln(out, "No commits yet")
		} else {
			fmt.Fprintf(out, "Current commit: %s\n", st.Head.Short())
		}
		fmt.Fprintln(out)

		if len(st.Staged) == 0 {
			fmt.Fprintln(out, "Nothing to commit, working tree clean")
			return nil
		}

		fmt.Fprintln(out, "Changes to be committed:")
		fmt.Fprintln(out, `  (use "minivcs commit" to commit)`)
		fmt.Fprintln(out)
		for _, p := range st.Staged {
			fmt.Fprintf(out, "\tnew file:   %s\n", p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
