package repo

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"minivcs/pkg/core"
	"minivcs/pkg/refs"
	"minivcs/pkg/storage"
	"minivcs/pkg/types"
)

// CommitIndexer 接收新提交的投影 (例如 SQL 元数据索引)
type CommitIndexer interface {
	IndexCommit(ctx context.Context, c *core.Commit, files []string) error
}

// CurrentCommit 解析 HEAD，仓库还没有提交时返回 refs.ErrNoHead
func (r *Repo) CurrentCommit(ctx context.Context) (types.Hash, error) {
	return r.Refs.GetHead(ctx)
}

// Commit 把暂存区写成树和提交，推进 HEAD 指向的引用，然后清空暂存区
// 暂存区为空时返回 ErrEmptyCommit，不产生任何对象
// 引用更新与清空暂存区不是原子的：中途失败时暂存区可能残留已提交的内容
func (r *Repo) Commit(ctx context.Context, message string) (*core.Commit, error) {
	if r.Index.IsEmpty() {
		return nil, ErrEmptyCommit
	}

	// 1. 暂存区 -> 树
	snapshot := r.Index.Snapshot()
	treeHash, err := r.builder.Build(ctx, snapshot)
	if err != nil {
		return nil, err
	}

	// 2. 父提交
	parent, err := r.CurrentCommit(ctx)
	if errors.Is(err, refs.ErrNoHead) {
		parent = ""
	} else if err != nil {
		return nil, err
	}

	// 3. 提交对象
	c, err := core.NewCommit(treeHash, parent, r.identity, r.now(), message)
	if err != nil {
		return nil, fmt.Errorf("failed to create commit: %w", err)
	}
	if _, err := storage.PutObject(ctx, r.Store, c); err != nil {
		return nil, err
	}

	// 4. 推进引用
	if err := r.Refs.UpdateHead(ctx, c.ID()); err != nil {
		return nil, err
	}

	// 5. 清空暂存区
	r.Index.Reset()
	if err := r.Index.Save(); err != nil {
		return nil, fmt.Errorf("commit %s created but index not cleared: %w", c.ID().Short(), err)
	}

	r.logger.Debug("created commit", "id", c.ID(), "tree", treeHash, "parent", parent, "files", len(snapshot))

	// 6. 元数据索引是可重建的投影，失败只记日志
	if r.indexer != nil {
		if err := r.indexer.IndexCommit(ctx, c, r.snapshotPaths(snapshot)); err != nil {
			r.logger.Warn("failed to index commit metadata", "id", c.ID(), "err", err)
		}
	}
	return c, nil
}

func (r *Repo) snapshotPaths(snapshot map[string]types.Hash) []string {
	paths := make([]string, 0, len(snapshot))
	for p := range snapshot {
		paths = append(paths, p)
	}
	return paths
}

// History 从 HEAD 沿 parent 链向根遍历，最新的在前
// 遇到不存在的对象或非提交对象时静默结束；损坏的对象和 I/O 错误会作为 error 产出并结束
// 每次 range 都从 HEAD 重新开始
func (r *Repo) History(ctx context.Context) iter.Seq2[*core.Commit, error] {
	return func(yield func(*core.Commit, error) bool) {
		hash, err := r.CurrentCommit(ctx)
		if errors.Is(err, refs.ErrNoHead) {
			return
		}
		if err != nil {
			yield(nil, err)
			return
		}

		for !hash.IsZero() {
			obj, err := storage.LoadObject(ctx, r.Store, hash)
			if errors.Is(err, storage.ErrNotFound) {
				r.logger.Debug("history truncated: missing object", "id", hash)
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}

			c, ok := obj.(*core.Commit)
			if !ok {
				r.logger.Debug("history truncated: not a commit", "id", hash, "type", obj.Type())
				return
			}
			if !yield(c, nil) {
				return
			}
			hash = c.Parent
		}
	}
}

// LogOptions 过滤 Log 的结果
type LogOptions struct {
	Limit  int    // <= 0 表示不限制
	Author string // 作者子串，空表示不过滤
}

// Log 收集 History，按 opts 过滤
func (r *Repo) Log(ctx context.Context, opts LogOptions) ([]*core.Commit, error) {
	var out []*core.Commit
	for c, err := range r.History(ctx) {
		if err != nil {
			return out, err
		}
		if opts.Author != "" && !strings.Contains(c.Author.Name, opts.Author) {
			continue
		}
		out = append(out, c)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out, nil
}
