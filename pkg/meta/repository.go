package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"minivcs/pkg/core"
	"minivcs/pkg/types"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrCommitNotFound = errors.New("commit not found in metadata")

// Repository 封装所有对 SQL 数据库的操作
// 所有读写都限定在 scope (一个仓库) 内
type Repository struct {
	db    *DB
	scope string
}

func NewRepository(db *DB, scope string) *Repository {
	return &Repository{db: db, scope: scope}
}

func (r *Repository) scoped(ctx context.Context) *gorm.DB {
	return r.db.GetConn().WithContext(ctx).Where("repo = ?", r.scope)
}

// IndexCommit 将 core.Commit 对象“投影”到 SQL 数据库中
// files 是该提交树里的路径
func (r *Repository) IndexCommit(ctx context.Context, c *core.Commit, files []string) error {
	sorted := slices.Clone(files)
	slices.Sort(sorted)
	if sorted == nil {
		sorted = []string{}
	}
	filesJSON, err := json.Marshal(sorted)
	if err != nil {
		return fmt.Errorf("failed to marshal files: %w", err)
	}

	model := CommitModel{
		Repo:       r.scope,
		Hash:       c.ID().String(),
		Author:     c.Author.Name,
		Committer:  c.Committer.Name,
		Message:    c.Message,
		Timestamp:  c.Committer.When,
		TreeHash:   c.TreeHash.String(),
		ParentHash: c.Parent.String(),
		Files:      datatypes.JSON(filesJSON),
		CreatedAt:  time.Unix(c.Committer.When, 0),
	}

	// 幂等写入：如果 (Repo, Hash) 已存在，则什么都不做 (Do Nothing)
	err = r.db.GetConn().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "repo"}, {Name: "hash"}},
			DoNothing: true,
		}).
		Create(&model).Error
	if err != nil {
		return fmt.Errorf("failed to index commit: %w", err)
	}
	return nil
}

func (r *Repository) GetCommit(ctx context.Context, hash types.Hash) (*CommitModel, error) {
	var commit CommitModel
	err := r.scoped(ctx).
		Where("hash = ?", hash.String()).
		First(&commit).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCommitNotFound
	}
	if err != nil {
		return nil, err
	}
	return &commit, nil
}

// FindCommitsByAuthor 按作者子串查找 (区分大小写)，最新的在前
// limit <= 0 表示不限制
func (r *Repository) FindCommitsByAuthor(ctx context.Context, author string, limit int) ([]CommitModel, error) {
	q := r.scoped(ctx).
		Where(r.containsAuthor(), author).
		Order("timestamp DESC").
		Order("hash")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var commits []CommitModel
	if err := q.Find(&commits).Error; err != nil {
		return nil, fmt.Errorf("failed to query commits: %w", err)
	}
	return commits, nil
}

// FileList 解码 Files 列
func (m *CommitModel) FileList() ([]string, error) {
	if len(m.Files) == 0 {
		return nil, nil
	}
	var files []string
	if err := json.Unmarshal(m.Files, &files); err != nil {
		return nil, fmt.Errorf("corrupted files column for %s: %w", m.Hash, err)
	}
	return files, nil
}

// IndexedHashes 返回 hashes 中已经被索引的那些
func (r *Repository) IndexedHashes(ctx context.Context, hashes []types.Hash) (map[types.Hash]bool, error) {
	ids := make([]string, len(hashes))
	for i, h := range hashes {
		ids[i] = h.String()
	}

	found := make(map[types.Hash]bool, len(hashes))
	for chunk := range slices.Chunk(ids, lookupBatch) {
		var rows []string
		err := r.scoped(ctx).
			Model(&CommitModel{}).
			Where("hash IN ?", chunk).
			Pluck("hash", &rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to query indexed commits: %w", err)
		}
		for _, h := range rows {
			found[types.Hash(h)] = true
		}
	}
	return found, nil
}

// lookupBatch 控制 IN 列表长度，SQLite 对绑定参数个数有上限
const lookupBatch = 500

// containsAuthor 返回区分大小写的子串匹配条件
// SQLite 的 LIKE 对 ASCII 不区分大小写，所以两种方言都不用 LIKE
func (r *Repository) containsAuthor() string {
	if r.db.GetConn().Dialector.Name() == "postgres" {
		return "strpos(author, ?) > 0"
	}
	return "instr(author, ?) > 0"
}
