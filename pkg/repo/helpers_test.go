package repo

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"minivcs/pkg/storage/disk"

	"github.com/stretchr/testify/require"
)

// setupRepo 初始化一个临时仓库并打开它
func setupRepo(t *testing.T, opts ...Option) *Repo {
	t.Helper()
	root := t.TempDir()

	created, err := Init(root)
	require.NoError(t, err)
	require.True(t, created)

	store, err := disk.NewAdapter(ObjectsDir(root))
	require.NoError(t, err)

	clock := time.Unix(1700000000, 0)
	opts = append([]Option{WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})}, opts...)

	r, err := Open(root, store, opts...)
	require.NoError(t, err)
	return r
}

// writeFile 在工作区写入一个文件
func writeFile(t *testing.T, r *Repo, rel, content string) {
	t.Helper()
	p := filepath.Join(r.Root(), filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
}

// mustStage 写文件并暂存
func mustStage(t *testing.T, r *Repo, rel, content string) {
	t.Helper()
	writeFile(t, r, rel, content)
	_, err := r.Stage(context.Background(), rel)
	require.NoError(t, err)
}

// countObjects 统计对象库里的对象数量
func countObjects(t *testing.T, r *Repo) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(ObjectsDir(r.Root()), func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	require.NoError(t, err)
	return n
}
