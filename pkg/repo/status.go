package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"minivcs/pkg/refs"
	"minivcs/pkg/storage"
	"minivcs/pkg/types"
)

// Status 是 status 命令展示的内容
type Status struct {
	Branch string     // detached 时为空
	Head   types.Hash // 还没有提交时为空
	Staged []string   // 按路径排序
}

func (r *Repo) Status(ctx context.Context) (*Status, error) {
	branch, err := r.Refs.Branch()
	if err != nil {
		return nil, err
	}

	head, err := r.CurrentCommit(ctx)
	if err != nil && !errors.Is(err, refs.ErrNoHead) {
		return nil, err
	}

	return &Status{
		Branch: branch,
		Head:   head,
		Staged: r.Index.Paths(),
	}, nil
}

// ResolveObject 把 "HEAD"、完整 ID 或至少 4 位的短 ID 解析为完整 ID
func (r *Repo) ResolveObject(ctx context.Context, name string) (types.Hash, error) {
	if name == "HEAD" {
		return r.CurrentCommit(ctx)
	}

	h := types.Hash(strings.ToLower(name))
	if h.IsValid() {
		ok, err := r.Store.Has(ctx, h)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("%w: %s", storage.ErrNotFound, name)
		}
		return h, nil
	}
	return r.Store.ExpandHash(ctx, types.HashPrefix(name))
}
