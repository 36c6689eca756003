package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"minivcs/pkg/core"
	"minivcs/pkg/repo"
	"minivcs/pkg/storage/disk"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetViper 给每个测试一个干净的全局配置
func resetViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestInitStore_Disk(t *testing.T) {
	resetViper(t)
	root := t.TempDir()
	viper.Set("storage.type", "disk")

	store, err := initStore(context.Background(), root)
	require.NoError(t, err)
	adapter, ok := store.(*disk.Adapter)
	require.True(t, ok)
	assert.Equal(t, repo.ObjectsDir(root), adapter.Root())

	// 显式指定路径
	custom := filepath.Join(t.TempDir(), "objs")
	viper.Set("storage.path", custom)
	store, err = initStore(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, custom, store.(*disk.Adapter).Root())
}

func TestInitStore_S3_MissingBucket(t *testing.T) {
	resetViper(t)
	viper.Set("storage.type", "s3")
	// 故意不设置 bucket

	store, err := initStore(context.Background(), ".")
	assert.Error(t, err)
	assert.Nil(t, store)
	assert.Contains(t, err.Error(), "bucket is required")
}

func TestInitStore_UnknownType(t *testing.T) {
	resetViper(t)
	viper.Set("storage.type", "ftp") // 不支持的类型

	store, err := initStore(context.Background(), ".")
	assert.Error(t, err)
	assert.Nil(t, store)
	assert.Contains(t, err.Error(), "unsupported storage type")
}

func TestInitMeta(t *testing.T) {
	resetViper(t)
	ctx := context.Background()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(repo.RepoDir(root), 0755))

	db, err := initMeta(ctx, root)
	require.NoError(t, err)
	assert.Nil(t, db, "meta index disabled by default")

	viper.Set("meta.driver", "sqlite")
	db, err = initMeta(ctx, root)
	require.NoError(t, err)
	require.NotNil(t, db)
	defer db.Close()
	assert.FileExists(t, filepath.Join(repo.RepoDir(root), "meta.db"))

	viper.Set("meta.driver", "mongo")
	_, err = initMeta(ctx, root)
	assert.ErrorContains(t, err, "unsupported meta driver")
}

func TestNewApp_NotInitialized(t *testing.T) {
	resetViper(t)
	root := t.TempDir()
	viper.Set("repo.root", root)

	_, err := NewApp(context.Background())
	assert.ErrorIs(t, err, repo.ErrNotInitialized)
	assert.NoDirExists(t, repo.RepoDir(root), "must not create the repo dir")
}

func TestNewApp_WithSQLiteMeta(t *testing.T) {
	resetViper(t)
	ctx := context.Background()
	root := t.TempDir()
	_, err := repo.Init(root)
	require.NoError(t, err)

	viper.Set("repo.root", root)
	viper.Set("meta.driver", "sqlite")
	viper.Set("user.name", "Alice <alice@example.com>")

	a, err := NewApp(ctx)
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.Meta)

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0644))
	_, err = a.Repo.Stage(ctx, "a.txt")
	require.NoError(t, err)
	c, err := a.Repo.Commit(ctx, "first")
	require.NoError(t, err)

	// 提交被投影到 SQL 索引
	m, err := a.Meta.GetCommit(ctx, c.ID())
	require.NoError(t, err)
	assert.Equal(t, "Alice <alice@example.com>", m.Author)

	found, err := a.SearchByAuthor(ctx, "alice@", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, c.ID(), found[0].ID())
}

func TestSearchByAuthor_WithoutMeta(t *testing.T) {
	resetViper(t)
	ctx := context.Background()
	root := t.TempDir()
	_, err := repo.Init(root)
	require.NoError(t, err)
	viper.Set("repo.root", root)

	a, err := NewApp(ctx)
	require.NoError(t, err)
	defer a.Close()
	assert.Nil(t, a.Meta)

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0644))
	_, err = a.Repo.Stage(ctx, "a.txt")
	require.NoError(t, err)
	_, err = a.Repo.Commit(ctx, "first")
	require.NoError(t, err)

	found, err := a.SearchByAuthor(ctx, "User", 0)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = a.SearchByAuthor(ctx, "nobody", 0)
	require.NoError(t, err)
	assert.Empty(t, found)
}

// openApp 用当前的 viper 配置打开 root 处的仓库
func openApp(t *testing.T, root string, settings map[string]any) *App {
	t.Helper()
	viper.Reset()
	viper.Set("repo.root", root)
	for k, v := range settings {
		viper.Set(k, v)
	}
	a, err := NewApp(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func commitFile(t *testing.T, a *App, name, content, msg string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, os.WriteFile(filepath.Join(a.RepoRoot, name), []byte(content), 0644))
	_, err := a.Repo.Stage(ctx, name)
	require.NoError(t, err)
	_, err = a.Repo.Commit(ctx, msg)
	require.NoError(t, err)
}

func TestSearchByAuthor_MatchesLogFilter(t *testing.T) {
	resetViper(t)
	ctx := context.Background()
	root := t.TempDir()
	_, err := repo.Init(root)
	require.NoError(t, err)

	a := openApp(t, root, map[string]any{"meta.driver": "sqlite", "user.name": "Alice <a@x>"})
	commitFile(t, a, "a.txt", "a", "first")
	commitFile(t, a, "b.txt", "b", "second")

	for _, query := range []string{"Alice", "ALICE", "alice", "a@x", "%", "Bob"} {
		want, err := a.Repo.Log(ctx, repo.LogOptions{Author: query})
		require.NoError(t, err)
		got, err := a.SearchByAuthor(ctx, query, 0)
		require.NoError(t, err)
		assert.Equal(t, commitIDs(want), commitIDs(got), query)
	}

	got, err := a.SearchByAuthor(ctx, "Alice", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "second", got[0].Message)
}

func TestSearchByAuthor_BackfillsUnindexedCommits(t *testing.T) {
	resetViper(t)
	ctx := context.Background()
	root := t.TempDir()
	_, err := repo.Init(root)
	require.NoError(t, err)

	// meta 关闭时创建的提交
	plain := openApp(t, root, map[string]any{"user.name": "Alice <a@x>"})
	commitFile(t, plain, "a.txt", "a", "before meta")
	require.NoError(t, plain.Close())

	a := openApp(t, root, map[string]any{"meta.driver": "sqlite", "user.name": "Alice <a@x>"})
	commitFile(t, a, "b.txt", "b", "after meta")

	got, err := a.SearchByAuthor(ctx, "Alice", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "after meta", got[0].Message)
	assert.Equal(t, "before meta", got[1].Message)

	m, err := a.Meta.GetCommit(ctx, got[1].ID())
	require.NoError(t, err)
	files, err := m.FileList()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, files)
}

func TestSearchByAuthor_SharedDatabase(t *testing.T) {
	resetViper(t)
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "shared.db")

	rootA, rootB := t.TempDir(), t.TempDir()
	for _, root := range []string{rootA, rootB} {
		_, err := repo.Init(root)
		require.NoError(t, err)
	}
	settings := map[string]any{"meta.driver": "sqlite", "meta.sqlite_path": dbPath, "user.name": "Alice <a@x>"}

	a := openApp(t, rootA, settings)
	commitFile(t, a, "only-in-a.txt", "a", "from a")
	require.NoError(t, a.Close())

	b := openApp(t, rootB, settings)
	commitFile(t, b, "only-in-b.txt", "b", "from b")

	got, err := b.SearchByAuthor(ctx, "Alice", 0)
	require.NoError(t, err, "commits of another repository must not leak in")
	require.Len(t, got, 1)
	assert.Equal(t, "from b", got[0].Message)
}

func commitIDs(cs []*core.Commit) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.ID().String()
	}
	return ids
}
