// pkg/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"minivcs/pkg/core"
	"minivcs/pkg/exporter"
	"minivcs/pkg/meta"
	"minivcs/pkg/repo"
	"minivcs/pkg/storage"
	"minivcs/pkg/storage/cache"
	"minivcs/pkg/storage/disk"
	"minivcs/pkg/storage/s3"
	"minivcs/pkg/types"

	"github.com/spf13/viper"
)

// App 是整个应用程序的依赖容器 (Dependency Container)
// 它持有一次命令执行需要的所有服务
type App struct {
	Repo     *repo.Repo
	Store    storage.Store
	Exporter *exporter.Exporter
	Meta     *meta.Repository // meta.driver=none 时为 nil

	RepoRoot string
	closers  []func() error
}

// NewApp 是工厂函数，负责组装这一台机器
// 它遵循 Viper 的配置，但不知道具体的 CLI 命令
func NewApp(ctx context.Context) (*App, error) {
	// 1. 获取工作区根目录
	root, err := filepath.Abs(viper.GetString("repo.root"))
	if err != nil {
		return nil, fmt.Errorf("invalid repo root: %w", err)
	}

	// 2. 在创建任何目录之前确认仓库存在
	if err := repo.Check(root); err != nil {
		return nil, err
	}

	a := &App{RepoRoot: root}

	// 3. 初始化存储层
	store, err := initStore(ctx, root)
	if err != nil {
		return nil, err
	}

	// 4. 可选：Redis 缓存装饰器
	if url := viper.GetString("cache.redis_url"); url != "" {
		cached, err := cache.NewCachedStore(store, cache.Config{
			RedisURL: url,
			TTL:      viper.GetDuration("cache.ttl"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to init cache: %w", err)
		}
		a.closers = append(a.closers, cached.Close)
		store = cached
	}
	a.Store = store

	opts := []repo.Option{
		repo.WithIdentity(viper.GetString("user.name")),
		repo.WithLogger(slog.Default()),
	}

	// 5. 可选：元数据索引
	db, err := initMeta(ctx, root)
	if err != nil {
		a.Close()
		return nil, err
	}
	if db != nil {
		a.closers = append(a.closers, db.Close)
		a.Meta = meta.NewRepository(db, root)
		opts = append(opts, repo.WithIndexer(a.Meta))
	}

	// 6. 打开仓库
	r, err := repo.Open(root, store, opts...)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Repo = r
	a.Exporter = exporter.NewExporter(store)
	return a, nil
}

// Close 释放缓存和数据库连接
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// SearchByAuthor 按作者子串查找提交，结果与 repo.Log 的过滤一致
// 启用元数据索引时匹配交给 SQL；历史仍以对象库为准，
// 索引里缺失的提交 (例如在关闭 meta 时创建的) 会先补进去
func (a *App) SearchByAuthor(ctx context.Context, author string, limit int) ([]*core.Commit, error) {
	if a.Meta == nil {
		return a.Repo.Log(ctx, repo.LogOptions{Author: author, Limit: limit})
	}

	// 1. 当前分支上可达的提交，顺序即输出顺序
	var (
		history []*core.Commit
		walkErr error
	)
	for c, err := range a.Repo.History(ctx) {
		if err != nil {
			walkErr = err
			break
		}
		history = append(history, c)
	}

	// 2. 补全索引
	if err := a.backfill(ctx, history); err != nil {
		return nil, err
	}

	// 3. SQL 匹配，只保留可达的提交
	models, err := a.Meta.FindCommitsByAuthor(ctx, author, 0)
	if err != nil {
		return nil, err
	}
	matched := make(map[types.Hash]bool, len(models))
	for _, m := range models {
		matched[types.Hash(m.Hash)] = true
	}

	var commits []*core.Commit
	for _, c := range history {
		if !matched[c.ID()] {
			continue
		}
		commits = append(commits, c)
		if limit > 0 && len(commits) >= limit {
			break
		}
	}
	return commits, walkErr
}

// backfill 把还没进索引的提交写进去
func (a *App) backfill(ctx context.Context, history []*core.Commit) error {
	ids := make([]types.Hash, len(history))
	for i, c := range history {
		ids[i] = c.ID()
	}
	indexed, err := a.Meta.IndexedHashes(ctx, ids)
	if err != nil {
		return err
	}

	for _, c := range history {
		if indexed[c.ID()] {
			continue
		}
		var files []string
		if tree, err := storage.LoadTree(ctx, a.Store, c.TreeHash); err == nil {
			files = tree.Paths()
		} else {
			slog.Warn("backfill without file list", "id", c.ID(), "err", err)
		}
		if err := a.Meta.IndexCommit(ctx, c, files); err != nil {
			return err
		}
		slog.Debug("backfilled commit metadata", "id", c.ID())
	}
	return nil
}

// initStore 根据配置初始化存储后端
func initStore(ctx context.Context, root string) (storage.Store, error) {
	storeType := viper.GetString("storage.type")

	switch storeType {
	case "", "disk":
		path := viper.GetString("storage.path")
		if path == "" {
			path = repo.ObjectsDir(root)
		}
		slog.Debug("using disk storage", "path", path)
		store, err := disk.NewAdapter(path)
		if err != nil {
			return nil, fmt.Errorf("failed to init disk storage: %w", err)
		}
		return store, nil

	case "s3":
		cfg := s3.Config{
			Endpoint:        viper.GetString("storage.s3.endpoint"),
			Region:          viper.GetString("storage.s3.region"),
			Bucket:          viper.GetString("storage.s3.bucket"),
			Prefix:          viper.GetString("storage.s3.prefix"),
			AccessKeyID:     viper.GetString("storage.s3.access_key_id"),
			SecretAccessKey: viper.GetString("storage.s3.secret_access_key"),
		}
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("s3 bucket is required (storage.s3.bucket)")
		}
		slog.Debug("using s3 storage", "bucket", cfg.Bucket, "endpoint", cfg.Endpoint)
		store, err := s3.NewAdapter(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to init s3 storage: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storeType)
	}
}

// initMeta 根据 meta.driver 打开元数据库，none 返回 nil
func initMeta(ctx context.Context, root string) (*meta.DB, error) {
	driver := viper.GetString("meta.driver")

	switch driver {
	case "", "none":
		return nil, nil

	case "sqlite":
		path := viper.GetString("meta.sqlite_path")
		if path == "" {
			path = filepath.Join(repo.RepoDir(root), "meta.db")
		}
		db, err := meta.NewSQLite(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to init meta index: %w", err)
		}
		return db, nil

	case "postgres":
		db, err := meta.NewDB(ctx, meta.Config{
			Host:     viper.GetString("database.host"),
			Port:     viper.GetInt("database.port"),
			User:     viper.GetString("database.user"),
			Password: viper.GetString("database.password"),
			DBName:   viper.GetString("database.dbname"),
			SSLMode:  viper.GetString("database.sslmode"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to init meta index: %w", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported meta driver: %s", driver)
	}
}
