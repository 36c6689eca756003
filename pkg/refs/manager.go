package refs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"minivcs/pkg/fsutil"
	"minivcs/pkg/types"
)

var ErrNoHead = errors.New("HEAD not found (clean repo)")

const (
	// DefaultBranch 是唯一的分支
	DefaultBranch = "master"

	symrefPrefix = "ref: "
	headsDir     = "refs/heads"
)

// Manager 负责管理引用 (Refs)：HEAD 和 refs/heads/<branch>
type Manager struct {
	rootPath string // .minivcs 目录
}

func NewManager(rootPath string) *Manager {
	return &Manager{rootPath: rootPath}
}

// headPath 返回 .minivcs/HEAD 的物理路径
func (m *Manager) headPath() string {
	return filepath.Join(m.rootPath, "HEAD")
}

func (m *Manager) refPath(ref string) string {
	return filepath.Join(m.rootPath, filepath.FromSlash(ref))
}

// Init 创建 refs/heads 目录，并在 HEAD 不存在时让它指向 branch
// 返回是否写入了新的 HEAD
func (m *Manager) Init(branch string) (bool, error) {
	if err := os.MkdirAll(filepath.Join(m.rootPath, filepath.FromSlash(headsDir)), 0755); err != nil {
		return false, fmt.Errorf("failed to create refs dir: %w", err)
	}

	if _, err := os.Stat(m.headPath()); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to stat HEAD: %w", err)
	}

	content := symrefPrefix + headsDir + "/" + branch + "\n"
	if err := fsutil.WriteFileAtomic(m.headPath(), []byte(content), 0644); err != nil {
		return false, fmt.Errorf("failed to write HEAD: %w", err)
	}
	return true, nil
}

// HeadRef 读取 HEAD 指向的引用名，例如 "refs/heads/master"
// HEAD 直接保存提交 ID (detached) 时返回空字符串
func (m *Manager) HeadRef() (string, error) {
	data, err := os.ReadFile(m.headPath())
	if err != nil {
		// HEAD 本身缺失不是 ErrNoHead，而是仓库损坏
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}

	// 清理换行符 (vim 编辑时可能会自动加 \n)
	content := strings.TrimSpace(string(data))
	if ref, ok := strings.CutPrefix(content, symrefPrefix); ok {
		return strings.TrimSpace(ref), nil
	}
	return "", nil
}

// Branch 返回当前分支名，detached 时返回空字符串
func (m *Manager) Branch() (string, error) {
	ref, err := m.HeadRef()
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(ref, headsDir+"/"), nil
}

// GetHead 解析 HEAD 得到当前的 Commit Hash
// 如果是新仓库（没提交过），返回 ErrNoHead
func (m *Manager) GetHead(ctx context.Context) (types.Hash, error) {
	ref, err := m.HeadRef()
	if err != nil {
		return "", err
	}

	path := m.headPath()
	if ref != "" {
		path = m.refPath(ref)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNoHead
	}
	if err != nil {
		return "", fmt.Errorf("failed to read ref %s: %w", ref, err)
	}

	hash := types.Hash(strings.TrimSpace(string(data)))
	if hash.IsZero() {
		return "", ErrNoHead
	}
	return hash, nil
}

// UpdateHead 把 HEAD 指向的引用更新为新的 Commit Hash
// detached 状态下直接改写 HEAD
// 没有锁：多个进程同时提交时后写入者胜出
func (m *Manager) UpdateHead(ctx context.Context, commitHash types.Hash) error {
	if !commitHash.IsValid() {
		return fmt.Errorf("invalid commit hash %q", commitHash)
	}

	ref, err := m.HeadRef()
	if err != nil {
		return err
	}

	path := m.headPath()
	if ref != "" {
		path = m.refPath(ref)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create ref dir: %w", err)
		}
	}

	if err := fsutil.WriteFileAtomic(path, []byte(commitHash.String()+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to update ref: %w", err)
	}
	return nil
}
