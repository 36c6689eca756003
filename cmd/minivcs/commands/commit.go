package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var commitMsg string

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Record changes to the repository",
	Long:  `Create a new commit containing the current contents of the index and the given log message describing the changes.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := TV.Repo.Commit(cmd.Context(), commitMsg)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", c.ID().Short(), commitMsg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commitCmd)

	commitCmd.Flags().StringVarP(&commitMsg, "message", "m", "", "commit message")
	_ = commitCmd.MarkFlagRequired("message")
}
