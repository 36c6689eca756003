package exporter

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"minivcs/pkg/core"
)

// DateLayout 是 log / show 输出的时间格式
const DateLayout = "2006-01-02 15:04:05"

// previewLimit 是 show 一个 blob 时最多打印的字节数
const previewLimit = 512

// PrintStructure 按对象类型分发打印
func PrintStructure(obj core.Object, w io.Writer) error {
	switch o := obj.(type) {
	case *core.Commit:
		return printCommit(o, w)
	case *core.Tree:
		return printTree(o, w)
	case *core.Blob:
		return printBlob(o, w)
	default:
		return fmt.Errorf("unknown object type: %s", obj.Type())
	}
}

func printCommit(c *core.Commit, w io.Writer) error {
	fmt.Fprintf(w, "Type:      Commit\n")
	fmt.Fprintf(w, "Hash:      %s\n", c.ID())
	fmt.Fprintf(w, "Tree:      %s\n", c.TreeHash)
	if c.HasParent() {
		fmt.Fprintf(w, "Parent:    %s\n", c.Parent)
	}
	fmt.Fprintf(w, "Author:    %s\n", c.Author.Name)
	fmt.Fprintf(w, "Committer: %s\n", c.Committer.Name)
	fmt.Fprintf(w, "Date:      %s\n", c.Committer.Time().Format(DateLayout))
	_, err := fmt.Fprintf(w, "\n%s\n", c.Message)
	return err
}

func printTree(t *core.Tree, w io.Writer) error {
	fmt.Fprintf(w, "Type: Tree\n\n")
	// 使用 tabwriter 对齐输出 (像 git ls-tree)
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "MODE\tTYPE\tHASH\tPATH\n")
	for _, entry := range t.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", entry.Mode, entry.Type, entry.Hash.Short(), entry.Path)
	}
	return tw.Flush()
}

func printBlob(b *core.Blob, w io.Writer) error {
	fmt.Fprintf(w, "Type: Blob\n")
	fmt.Fprintf(w, "Size: %s\n", fmtSize(b.Size()))

	data := b.Payload()
	if !utf8.Valid(data) {
		// 二进制内容不直接打到终端
		_, err := fmt.Fprintf(w, "\n(binary data not shown, use 'minivcs cat %s > file' to save)\n", b.ID().Short())
		return err
	}
	if len(data) > previewLimit {
		data = data[:previewLimit]
	}
	_, err := fmt.Fprintf(w, "\n%s\n", data)
	return err
}

// PrintLogEntry 打印 log 中的一条提交
func PrintLogEntry(c *core.Commit, w io.Writer) error {
	fmt.Fprintf(w, "commit %s\n", c.ID())
	if c.HasParent() {
		fmt.Fprintf(w, "Parent: %s\n", c.Parent)
	}
	fmt.Fprintf(w, "Author: %s\n", c.Author.Name)
	fmt.Fprintf(w, "Date:   %s\n", c.Author.Time().Format(DateLayout))
	fmt.Fprintln(w)
	for line := range strings.SplitSeq(strings.TrimSpace(c.Message), "\n") {
		fmt.Fprintf(w, "    %s\n", line)
	}
	_, err := fmt.Fprintln(w)
	return err
}

func fmtSize(s int64) string {
	if s < 1024 {
		return fmt.Sprintf("%dB", s)
	} else if s < 1024*1024 {
		return fmt.Sprintf("%.1fKB", float64(s)/1024)
	}
	return fmt.Sprintf("%.2fMB", float64(s)/1024/1024)
}
