package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"minivcs/pkg/core"
	"minivcs/pkg/types"
)

var (
	ErrNotFound      = errors.New("object not found")
	ErrAmbiguousHash = errors.New("ambiguous hash prefix")
)

// Store defines the interface for a storage backend.
// Implementations can be local disk, S3-compatible object storage, or a cache decorator.
type Store interface {
	// Put 将一个核心对象持久化 (写入 obj.Bytes())
	// 对象只写一次：已存在的 ID 直接跳过
	Put(ctx context.Context, obj core.Object) error

	// Get 根据 Hash 读取落盘编码 ("<type>\0<payload>")
	Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error)

	// Has 检查对象是否存在
	Has(ctx context.Context, hash types.Hash) (bool, error)

	// ExpandHash 把唯一的短哈希扩展为完整哈希
	ExpandHash(ctx context.Context, short types.HashPrefix) (types.Hash, error)
}

// minLoadLen 是 LoadObject 接受的最短 ID
const minLoadLen = 3

// PutObject 存储对象并返回它的 ID
func PutObject(ctx context.Context, s Store, obj core.Object) (types.Hash, error) {
	if err := s.Put(ctx, obj); err != nil {
		return "", fmt.Errorf("store %s %s: %w", obj.Type(), obj.ID(), err)
	}
	return obj.ID(), nil
}

// LoadObject 读取并解码对象
// ID 过短或文件不存在时返回 ErrNotFound；文件损坏时返回 core.ErrCorruptObject
func LoadObject(ctx context.Context, s Store, hash types.Hash) (core.Object, error) {
	if len(hash) < minLoadLen {
		return nil, ErrNotFound
	}

	r, err := s.Get(ctx, hash)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", hash, err)
	}

	obj, err := core.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", hash, err)
	}
	return obj, nil
}

// LoadCommit 读取一个提交对象，类型不符返回 ErrTypeMismatch
func LoadCommit(ctx context.Context, s Store, hash types.Hash) (*core.Commit, error) {
	obj, err := LoadObject(ctx, s, hash)
	if err != nil {
		return nil, err
	}
	c, ok := obj.(*core.Commit)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %s, want commit", ErrTypeMismatch, hash, obj.Type())
	}
	return c, nil
}

// LoadTree 读取一个树对象
func LoadTree(ctx context.Context, s Store, hash types.Hash) (*core.Tree, error) {
	obj, err := LoadObject(ctx, s, hash)
	if err != nil {
		return nil, err
	}
	t, ok := obj.(*core.Tree)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %s, want tree", ErrTypeMismatch, hash, obj.Type())
	}
	return t, nil
}

// ErrTypeMismatch 表示对象存在但类型不是调用方期望的
var ErrTypeMismatch = errors.New("object type mismatch")

// PrefixOf 截取哈希的前 n 位作为短哈希
func PrefixOf(h types.Hash, n int) types.HashPrefix {
	if n >= len(h) {
		return types.HashPrefix(h)
	}
	return types.HashPrefix(h[:n])
}
