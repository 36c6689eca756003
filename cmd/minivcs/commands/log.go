package commands

import (
	"errors"
	"fmt"

	"minivcs/pkg/core"
	"minivcs/pkg/exporter"
	"minivcs/pkg/refs"
	"minivcs/pkg/repo"

	"github.com/spf13/cobra"
)

var (
	logLimit  int
	logAuthor string
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show commit logs",
	Long:  `Display the commit history starting from HEAD, newest first.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var (
			commits []*core.Commit
			err     error
		)
		if logAuthor != "" {
			commits, err = TV.SearchByAuthor(ctx, logAuthor, logLimit)
		} else {
			commits, err = TV.Repo.Log(ctx, repo.LogOptions{Limit: logLimit})
		}

		out := cmd.OutOrStdout()
		if err == nil && len(commits) == 0 {
			if logAuthor == "" {
				fmt.Fprintln(out, "No commits yet")
				return nil
			}
			// 有历史但过滤后为空
			_, headErr := TV.Repo.CurrentCommit(ctx)
			switch {
			case errors.Is(headErr, refs.ErrNoHead):
				fmt.Fprintln(out, "No commits yet")
			case headErr != nil:
				return headErr
			default:
				fmt.Fprintf(out, "No commits match author %q\n", logAuthor)
			}
			return nil
		}

		// 历史中途损坏时，先打印已经读到的部分
		for _, c := range commits {
			if perr := exporter.PrintLogEntry(c, out); perr != nil {
				return perr
			}
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.Flags().IntVarP(&logLimit, "max-count", "n", 0, "limit the number of commits to output")
	logCmd.Flags().StringVar(&logAuthor, "author", "", "only show commits whose author contains the given text")
}
