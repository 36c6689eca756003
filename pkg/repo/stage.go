package repo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"minivcs/pkg/index"
	"minivcs/pkg/types"

	"golang.org/x/sync/errgroup"
)

// StagedFile 是一次 add 的结果
type StagedFile struct {
	Path string     // 相对工作区根目录，以 / 分隔
	Hash types.Hash // blob ID
}

// Stage 把单个文件写成 blob 并记录到暂存区
func (r *Repo) Stage(ctx context.Context, path string) (types.Hash, error) {
	staged, err := r.StageAll(ctx, []string{path})
	if err != nil {
		return "", err
	}
	return staged[0].Hash, nil
}

// StageAll 先校验全部路径，任何一个失败都不会改动暂存区
// 校验通过后并发写入 blob，最后在调用方 goroutine 上一次性更新并保存 index
func (r *Repo) StageAll(ctx context.Context, paths []string) ([]StagedFile, error) {
	// 1. 校验
	rels := make([]string, len(paths))
	for i, p := range paths {
		rel, err := r.checkFile(p)
		if err != nil {
			return nil, err
		}
		rels[i] = rel
	}

	// 2. 并发入库：blob 只写一次且幂等，互不影响
	staged := make([]StagedFile, len(rels))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, rel := range rels {
		g.Go(func() error {
			blob, err := r.ingester.IngestPath(gctx, r.abs(rel))
			if err != nil {
				return fmt.Errorf("failed to add %s: %w", rel, err)
			}
			staged[i] = StagedFile{Path: rel, Hash: blob.ID()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 3. 更新暂存区 (同一路径出现多次时，后者覆盖前者，内容一致)
	for _, s := range staged {
		r.Index.Add(s.Path, s.Hash)
		r.logger.Debug("staged file", "path", s.Path, "blob", s.Hash.Short())
	}
	if err := r.Index.Save(); err != nil {
		return nil, err
	}
	return staged, nil
}

// Unstage 从暂存区移除路径，不动工作区文件
// 任何一个路径不在暂存区时返回 ErrPathNotFound，暂存区保持不变
func (r *Repo) Unstage(paths []string) ([]string, error) {
	rels := make([]string, len(paths))
	for i, p := range paths {
		rel, err := r.relPath(p)
		if err != nil {
			return nil, err
		}
		if _, ok := r.Index.Get(rel); !ok {
			return nil, fmt.Errorf("%w: %s is not staged", ErrPathNotFound, rel)
		}
		rels[i] = rel
	}

	for _, rel := range rels {
		r.Index.Remove(rel)
	}
	if err := r.Index.Save(); err != nil {
		return nil, err
	}
	return rels, nil
}

// RelPath 把用户给的路径转换成暂存区使用的 key
func (r *Repo) RelPath(p string) (string, error) {
	return r.relPath(p)
}

// relPath 把绝对路径或相对工作区根目录的路径规范化
// 拒绝跑出工作区和落在 .minivcs 里的路径
func (r *Repo) relPath(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("%w: empty path", ErrPathNotFound)
	}

	rel := p
	if filepath.IsAbs(p) {
		var err error
		rel, err = filepath.Rel(r.root, p)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrUnsupportedPath, p, err)
		}
	}

	rel = index.CleanPath(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%w: %s is outside the repository", ErrUnsupportedPath, p)
	}
	if rel == DirName || strings.HasPrefix(rel, DirName+"/") {
		return "", fmt.Errorf("%w: %s is inside the repository metadata", ErrUnsupportedPath, p)
	}
	return rel, nil
}

// checkFile 校验路径存在并且是普通文件
// 树对象按行、按 tab 分隔，含 \t 或 \n 的路径无法提交
func (r *Repo) checkFile(p string) (string, error) {
	rel, err := r.relPath(p)
	if err != nil {
		return "", err
	}
	if strings.ContainsAny(rel, "\t\n") {
		return "", fmt.Errorf("%w: %q contains a tab or newline", ErrUnsupportedPath, rel)
	}

	info, err := os.Stat(r.abs(rel))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrPathNotFound, p)
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", p, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrUnsupportedPath, p)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s is not a regular file", ErrUnsupportedPath, p)
	}
	return rel, nil
}

func (r *Repo) abs(rel string) string {
	return filepath.Join(r.root, filepath.FromSlash(rel))
}
