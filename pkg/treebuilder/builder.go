package treebuilder

import (
	"context"
	"fmt"

	"minivcs/pkg/core"
	"minivcs/pkg/storage"
	"minivcs/pkg/types"
)

// Builder 负责将暂存区快照转换为树对象
type Builder struct {
	store storage.Store
}

func NewBuilder(store storage.Store) *Builder {
	return &Builder{store: store}
}

// Build 把 path -> blob ID 的快照写成一个扁平的树对象，返回树的 ID
// 目录不会拆成子树：路径原样保存在条目里
// 除了一次 Put 之外没有其它副作用
func (b *Builder) Build(ctx context.Context, snapshot map[string]types.Hash) (types.Hash, error) {
	entries := make([]core.TreeEntry, 0, len(snapshot))
	for path, hash := range snapshot {
		entries = append(entries, core.TreeEntry{
			Mode: core.ModeFile,
			Type: core.TypeBlob,
			Hash: hash,
			Path: path,
		})
	}

	// NewTree 负责排序，保证确定性
	tree, err := core.NewTree(entries)
	if err != nil {
		return "", fmt.Errorf("failed to create tree object: %w", err)
	}

	if err := b.store.Put(ctx, tree); err != nil {
		return "", fmt.Errorf("failed to store tree: %w", err)
	}
	return tree.ID(), nil
}
