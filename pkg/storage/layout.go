package storage

import (
	"fmt"
	"strings"

	"minivcs/pkg/types"
)

// MinPrefixLen 是 ExpandHash 接受的最短前缀
const MinPrefixLen = 4

// shardLen 是分片目录名的长度
const shardLen = 2

// Locator 由能说明自己物理位置的后端实现
// 缓存层用它区分共享同一个 Redis 的不同仓库
type Locator interface {
	Location() string
}

// ObjectKey 返回对象的分片 Key，磁盘和 S3 共用同一套布局
// "aabbcc..." -> "aa/bbcc..."
func ObjectKey(hash types.Hash) string {
	h := string(hash)
	if len(h) <= shardLen {
		return h
	}
	return h[:shardLen] + "/" + h[shardLen:]
}

// HashFromKey 是 ObjectKey 的逆操作，不是对象 Key 时返回 false
func HashFromKey(key string) (types.Hash, bool) {
	shard, rest, ok := strings.Cut(key, "/")
	if !ok || len(shard) != shardLen || strings.Contains(rest, "/") {
		return "", false
	}
	h := types.Hash(shard + rest)
	if !h.IsValid() {
		return "", false
	}
	return h, true
}

// NormalizePrefix 校验短哈希并转成小写
func NormalizePrefix(short types.HashPrefix) (string, error) {
	p := strings.ToLower(short.String())
	if len(p) < MinPrefixLen {
		return "", fmt.Errorf("hash prefix %q too short (min %d)", p, MinPrefixLen)
	}
	// 过长或含非十六进制字符的前缀不可能命中任何对象
	if len(p) > types.HashLen || strings.Trim(p, "0123456789abcdef") != "" {
		return "", fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	return p, nil
}

// PickUnique 从候选里挑出唯一的完整哈希
func PickUnique(prefix string, candidates []types.Hash) (types.Hash, error) {
	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("%s: %w", prefix, ErrNotFound)
	case 1:
		return candidates[0], nil
	default:
		return "", fmt.Errorf("%s: %w", prefix, ErrAmbiguousHash)
	}
}
