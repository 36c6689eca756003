package meta

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"testing"
	"time"

	"minivcs/pkg/core"
	"minivcs/pkg/types"

	"github.com/stretchr/testify/require"
)

// mockHash 生成合法的测试用 Hash
func mockHash(input string) types.Hash {
	sum := sha1.Sum([]byte(input))
	return types.Hash(hex.EncodeToString(sum[:]))
}

// mustNewCommit 创建 Commit，如果失败直接终止测试
func mustNewCommit(t *testing.T, treeHash, parent types.Hash, author string, ts int64, msg string, msgAndArgs ...any) *core.Commit {
	t.Helper()
	c, err := core.NewCommit(treeHash, parent, author, time.Unix(ts, 0), msg)
	require.NoError(t, err, msgAndArgs...)
	return c
}

// mustIndexCommit 强制索引 Commit，失败则终止
func mustIndexCommit(t *testing.T, repo *Repository, c *core.Commit, files []string, msgAndArgs ...any) {
	t.Helper()
	err := repo.IndexCommit(context.Background(), c, files)
	require.NoError(t, err, msgAndArgs...)
}
