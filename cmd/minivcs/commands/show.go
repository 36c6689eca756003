package commands

import (
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <object>",
	Short: "Show a commit, tree or blob",
	Long:  `Pretty-print any object. The object may be HEAD, a full id or an abbreviated id of at least 4 characters.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		hash, err := TV.Repo.ResolveObject(ctx, args[0])
		if err != nil {
			return err
		}
		return TV.Exporter.PrintObject(ctx, hash, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
