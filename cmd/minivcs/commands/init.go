package commands

import (
	"fmt"
	"path/filepath"

	"minivcs/pkg/repo"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a minivcs repository",
	Long:  `Create an empty minivcs repository or reinitialize an existing one.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(viper.GetString("repo.root"))
		if err != nil {
			return err
		}

		created, err := repo.Init(root)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if created {
			fmt.Fprintf(out, "Initialized empty minivcs repository in %s\n", repo.RepoDir(root))
		} else {
			fmt.Fprintf(out, "Reinitialized existing minivcs repository in %s\n", repo.RepoDir(root))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
