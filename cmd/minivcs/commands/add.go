package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"minivcs/pkg/ignore"

	"github.com/spf13/cobra"
)

var addForce bool

var addCmd = &cobra.Command{
	Use:   "add <file>...",
	Short: "Add file contents to the index",
	Long:  `Store the given files as blobs and record them in the staging index. Directories are not supported.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// 1. 转成绝对路径 (相对当前目录)，交给 Repo 换算成仓库内路径
		paths := make([]string, 0, len(args))
		for _, a := range args {
			abs, err := filepath.Abs(a)
			if err != nil {
				return err
			}
			paths = append(paths, abs)
		}

		// 2. 忽略规则：默认拒绝，--force 跳过检查
		if !addForce {
			matcher, err := ignore.NewMatcher(TV.Repo.Root())
			if err != nil {
				return err
			}
			var ignored []string
			for _, p := range paths {
				rel, err := TV.Repo.RelPath(p)
				if err != nil {
					return err
				}
				if matcher.Matches(rel) {
					ignored = append(ignored, rel)
				}
			}
			if len(ignored) > 0 {
				return fmt.Errorf("paths are ignored by %s: %s (use --force to add them anyway)",
					ignore.FileName, strings.Join(ignored, ", "))
			}
		}

		// 3. 入库并更新暂存区
		staged, err := TV.Repo.StageAll(ctx, paths)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, s := range staged {
			fmt.Fprintf(out, "Added: %s\n", s.Path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().BoolVarP(&addForce, "force", "f", false, "add files even if they match ignore rules")
}
