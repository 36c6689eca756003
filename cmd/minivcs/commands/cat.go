package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var catCmd = &cobra.Command{
	Use:   "cat <blob>",
	Short: "Show file content by hash",
	Long:  `Write the raw content of a blob to stdout, e.g. 'minivcs cat 1a2b > file'.`,
	Args:  cobra.ExactArgs(1), // 必须提供 Hash
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		hash, err := TV.Repo.ResolveObject(ctx, args[0])
		if err != nil {
			return err
		}

		// writer 是 stdout：文本直接显示，二进制可以通过 > file.bin 重定向
		if err := TV.Exporter.ExportBlob(ctx, hash, cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("cat failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
}
