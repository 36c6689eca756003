package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <file>...",
	Short: "Remove files from the staging area (index)",
	Long:  `Unstage files from the index. This does not delete files from the filesystem, but they will no longer be part of the next commit.`,
	Args:  cobra.MinimumNArgs(1), // 至少指定一个文件
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := make([]string, 0, len(args))
		for _, a := range args {
			abs, err := filepath.Abs(a)
			if err != nil {
				return err
			}
			paths = append(paths, abs)
		}

		removed, err := TV.Repo.Unstage(paths)
		if err != nil {
			return err
		}

		for _, p := range removed {
			fmt.Fprintf(cmd.OutOrStdout(), "Unstaged: %s\n", p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
