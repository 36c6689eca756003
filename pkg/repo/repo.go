// Package repo ties the object store, staging index and refs together
// into the user-facing operations: init, add, commit, log, status.
package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"minivcs/pkg/index"
	"minivcs/pkg/ingester"
	"minivcs/pkg/refs"
	"minivcs/pkg/storage"
	"minivcs/pkg/treebuilder"
)

const (
	// DirName 是工作区根目录下的仓库目录
	DirName = ".minivcs"
	// DefaultIdentity 用于 author / committer
	DefaultIdentity = "User <user@example.com>"

	indexFile  = "index"
	objectsDir = "objects"
)

var (
	ErrNotInitialized  = errors.New("not a minivcs repository (run 'minivcs init' first)")
	ErrPathNotFound    = errors.New("pathspec did not match any files")
	ErrUnsupportedPath = errors.New("unsupported path")
	ErrEmptyCommit     = errors.New("nothing to commit (empty index)")
)

// Repo 是一次命令执行的上下文：工作区、对象库、暂存区和引用
// 不做任何加锁：同一个仓库同时只应有一个进程写入
type Repo struct {
	root string // 工作区根目录 (绝对路径)
	dir  string // <root>/.minivcs

	Store storage.Store
	Index *index.Index
	Refs  *refs.Manager

	builder  *treebuilder.Builder
	ingester *ingester.Ingester

	identity    string
	now         func() time.Time
	indexer     CommitIndexer
	logger      *slog.Logger
	concurrency int
}

// Option 定制 Open 返回的 Repo
type Option func(*Repo)

// WithIdentity 设置 author / committer
func WithIdentity(identity string) Option {
	return func(r *Repo) {
		if identity != "" {
			r.identity = identity
		}
	}
}

// WithClock 替换时间来源 (测试用)
func WithClock(now func() time.Time) Option {
	return func(r *Repo) { r.now = now }
}

// WithIndexer 在提交成功后把提交投影到元数据索引
func WithIndexer(ix CommitIndexer) Option {
	return func(r *Repo) { r.indexer = ix }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Repo) { r.logger = l }
}

// WithConcurrency 限制 StageAll 并发入库的文件数
func WithConcurrency(n int) Option {
	return func(r *Repo) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// RepoDir 返回 root 对应的仓库目录
func RepoDir(root string) string {
	return filepath.Join(root, DirName)
}

// ObjectsDir 返回本地对象库的默认位置
func ObjectsDir(root string) string {
	return filepath.Join(root, DirName, objectsDir)
}

// Init 在 root 下创建仓库骨架：objects/、refs/heads/、HEAD、空的 index
// 重复执行是安全的：已存在的部分保持不变，返回 created=false
func Init(root string) (created bool, err error) {
	dir := RepoDir(root)

	_, statErr := os.Stat(dir)
	switch {
	case statErr == nil:
	case errors.Is(statErr, fs.ErrNotExist):
		created = true
	default:
		return false, fmt.Errorf("failed to stat %s: %w", dir, statErr)
	}

	if err := os.MkdirAll(filepath.Join(dir, objectsDir), 0755); err != nil {
		return false, fmt.Errorf("failed to create objects dir: %w", err)
	}

	if _, err := refs.NewManager(dir).Init(refs.DefaultBranch); err != nil {
		return false, err
	}

	idxPath := filepath.Join(dir, indexFile)
	if _, err := os.Stat(idxPath); errors.Is(err, fs.ErrNotExist) {
		idx, err := index.NewIndex(idxPath)
		if err != nil {
			return false, err
		}
		if err := idx.Save(); err != nil {
			return false, err
		}
	} else if err != nil {
		return false, fmt.Errorf("failed to stat index: %w", err)
	}

	return created, nil
}

// Check 确认 root 下已经执行过 init
func Check(root string) error {
	dir := RepoDir(root)
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotInitialized
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrNotInitialized, dir)
	}
	return nil
}

// Open 打开一个已初始化的仓库
// store 由调用方根据配置选择 (本地磁盘 / S3 / 带缓存)
func Open(root string, store storage.Store, opts ...Option) (*Repo, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve repo root: %w", err)
	}

	if err := Check(abs); err != nil {
		return nil, err
	}
	dir := RepoDir(abs)

	idx, err := index.NewIndex(filepath.Join(dir, indexFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load index: %w", err)
	}

	r := &Repo{
		root:        abs,
		dir:         dir,
		Store:       store,
		Index:       idx,
		Refs:        refs.NewManager(dir),
		builder:     treebuilder.NewBuilder(store),
		ingester:    ingester.NewIngester(store),
		identity:    DefaultIdentity,
		now:         time.Now,
		logger:      slog.Default(),
		concurrency: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Root 返回工作区根目录
func (r *Repo) Root() string { return r.root }

// Dir 返回 .minivcs 目录
func (r *Repo) Dir() string { return r.dir }

// Identity 返回提交使用的身份
func (r *Repo) Identity() string { return r.identity }
