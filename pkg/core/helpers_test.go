package core

import (
	"crypto/sha1"
	"encoding/hex"
	"testing"
	"time"

	"minivcs/pkg/types"

	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// 辅助工具
// -----------------------------------------------------------------------------

// mockHash 生成一个合法的 20 字节 Hex 字符串 (40字符长度)
func mockHash(input string) types.Hash {
	sum := sha1.Sum([]byte(input))
	return types.Hash(hex.EncodeToString(sum[:]))
}

// mustNewCommit 创建 Commit，如果失败直接终止测试
func mustNewCommit(t *testing.T, treeHash, parent types.Hash, msg string, msgAndArgs ...any) *Commit {
	t.Helper()
	c, err := NewCommit(treeHash, parent, "Tester <t@example.com>", time.Unix(1700000000, 0), msg)
	require.NoError(t, err, msgAndArgs...)
	return c
}

func mustNewTree(t *testing.T, entries []TreeEntry, msgAndArgs ...any) *Tree {
	t.Helper()
	tr, err := NewTree(entries)
	require.NoError(t, err, msgAndArgs...)
	return tr
}
