package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"minivcs/pkg/core"
	"minivcs/pkg/repo"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupWorkdir 切换到一个空的临时工作目录
func setupWorkdir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Chdir(root)
	return root
}

// run 模拟一次命令行调用，返回 stdout/stderr 的合并输出
func run(t *testing.T, root string, args ...string) (string, error) {
	t.Helper()

	// 全局 flag 变量在多次执行之间会残留，这里重置
	commitMsg, addForce, logLimit, logAuthor = "", false, 0, ""
	viper.Set("repo.root", root)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := execute(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, root string, args ...string) string {
	t.Helper()
	out, err := run(t, root, args...)
	require.NoError(t, err, "minivcs %s\n%s", strings.Join(args, " "), out)
	return out
}

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0644))
}

func TestIntegration_CommitFlow(t *testing.T) {
	root := setupWorkdir(t)

	// 1. init (两次)
	out := mustRun(t, root, "init")
	assert.Contains(t, out, "Initialized empty minivcs repository")
	out = mustRun(t, root, "init")
	assert.Contains(t, out, "Reinitialized existing minivcs repository")

	// 2. add
	writeFile(t, root, "a.txt", "hello")
	out = mustRun(t, root, "add", "a.txt")
	assert.Contains(t, out, "Added: a.txt")

	out = mustRun(t, root, "status")
	assert.Contains(t, out, "On branch master")
	assert.Contains(t, out, "No commits yet")
	assert.Contains(t, out, "\tnew file:   a.txt")

	// 3. commit
	out = mustRun(t, root, "commit", "-m", "first")
	assert.Regexp(t, `^\[[0-9a-f]{7}\] first\n$`, out)

	head, err := os.ReadFile(filepath.Join(root, ".minivcs", "refs", "heads", "master"))
	require.NoError(t, err)
	headID := strings.TrimSpace(string(head))

	out = mustRun(t, root, "status")
	assert.Contains(t, out, "Current commit: "+headID[:7])
	assert.Contains(t, out, "Nothing to commit, working tree clean")

	// 4. 第二次提交
	writeFile(t, root, "b.txt", "world")
	mustRun(t, root, "add", "b.txt")
	mustRun(t, root, "commit", "-m", "second")

	// 5. log：最新的在前
	out = mustRun(t, root, "log")
	assert.Equal(t, 2, strings.Count(out, "commit "))
	assert.Less(t, strings.Index(out, "    second"), strings.Index(out, "    first"))
	assert.Contains(t, out, "Parent: "+headID)
	assert.Contains(t, out, "Author: User <user@example.com>")

	out = mustRun(t, root, "log", "-n", "1")
	assert.Equal(t, 1, strings.Count(out, "commit "))
	assert.Contains(t, out, "second")

	// 6. show / cat
	out = mustRun(t, root, "show", headID[:8])
	assert.Contains(t, out, "Type:      Commit")
	assert.Contains(t, out, "first")

	blobID := core.HashObject(core.TypeBlob, []byte("hello"))
	out = mustRun(t, root, "cat", blobID.String()[:6])
	assert.Equal(t, "hello", out)

	out = mustRun(t, root, "show", blobID.String())
	assert.Contains(t, out, "Type: Blob")
}

func TestIntegration_NotInitialized(t *testing.T) {
	root := setupWorkdir(t)

	for _, args := range [][]string{{"status"}, {"log"}, {"commit", "-m", "x"}} {
		_, err := run(t, root, args...)
		assert.ErrorIs(t, err, repo.ErrNotInitialized, "minivcs %v", args)
	}
	assert.NoDirExists(t, filepath.Join(root, ".minivcs"))
}

func TestIntegration_EmptyCommit(t *testing.T) {
	root := setupWorkdir(t)
	mustRun(t, root, "init")

	_, err := run(t, root, "commit", "-m", "nothing")
	assert.ErrorIs(t, err, repo.ErrEmptyCommit)

	out := mustRun(t, root, "log")
	assert.Contains(t, out, "No commits yet")
}

func TestIntegration_AddErrors(t *testing.T) {
	root := setupWorkdir(t)
	mustRun(t, root, "init")
	require.NoError(t, os.Mkdir(filepath.Join(root, "dir"), 0755))

	_, err := run(t, root, "add", "missing.txt")
	assert.ErrorIs(t, err, repo.ErrPathNotFound)

	_, err = run(t, root, "add", "dir")
	assert.ErrorIs(t, err, repo.ErrUnsupportedPath)

	out := mustRun(t, root, "status")
	assert.Contains(t, out, "Nothing to commit")
}

func TestIntegration_IgnoreRules(t *testing.T) {
	root := setupWorkdir(t)
	mustRun(t, root, "init")

	writeFile(t, root, ".minivcsignore", "*.log\n")
	writeFile(t, root, "debug.log", "noise")
	writeFile(t, root, "keep.txt", "keep")

	_, err := run(t, root, "add", "keep.txt", "debug.log")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ignored")

	// 整体失败：keep.txt 也没有被暂存
	out := mustRun(t, root, "status")
	assert.NotContains(t, out, "keep.txt")

	out = mustRun(t, root, "add", "--force", "debug.log")
	assert.Contains(t, out, "Added: debug.log")
}

func TestIntegration_Rm(t *testing.T) {
	root := setupWorkdir(t)
	mustRun(t, root, "init")
	writeFile(t, root, "a.txt", "a")
	writeFile(t, root, "b.txt", "b")
	mustRun(t, root, "add", "a.txt", "b.txt")

	out := mustRun(t, root, "rm", "a.txt")
	assert.Contains(t, out, "Unstaged: a.txt")

	out = mustRun(t, root, "status")
	assert.NotContains(t, out, "a.txt")
	assert.Contains(t, out, "b.txt")
	assert.FileExists(t, filepath.Join(root, "a.txt"))

	_, err := run(t, root, "rm", "a.txt")
	assert.ErrorIs(t, err, repo.ErrPathNotFound)
}

func TestIntegration_LogAuthor(t *testing.T) {
	root := setupWorkdir(t)
	mustRun(t, root, "init")

	writeFile(t, root, "a.txt", "a")
	mustRun(t, root, "add", "a.txt")
	mustRun(t, root, "commit", "-m", "by user")

	viper.Set("user.name", "Alice <alice@example.com>")
	t.Cleanup(func() { viper.Set("user.name", repo.DefaultIdentity) })
	writeFile(t, root, "b.txt", "b")
	mustRun(t, root, "add", "b.txt")
	mustRun(t, root, "commit", "-m", "by alice")

	out := mustRun(t, root, "log", "--author", "alice")
	assert.Contains(t, out, "by alice")
	assert.NotContains(t, out, "by user")
}

func TestIntegration_LogAuthor_NoMatch(t *testing.T) {
	root := setupWorkdir(t)
	mustRun(t, root, "init")

	out := mustRun(t, root, "log", "--author", "nobody")
	assert.Contains(t, out, "No commits yet")

	writeFile(t, root, "a.txt", "a")
	mustRun(t, root, "add", "a.txt")
	mustRun(t, root, "commit", "-m", "first")

	out = mustRun(t, root, "log", "--author", "nobody")
	assert.Contains(t, out, `No commits match author "nobody"`)
	assert.NotContains(t, out, "No commits yet")
}
