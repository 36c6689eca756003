package disk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"minivcs/pkg/core"
	"minivcs/pkg/storage"
	"minivcs/pkg/types"
)

// Adapter 实现了 storage.Store 接口
type Adapter struct {
	rootPath string // 比如: /home/user/project/.minivcs/objects
}

// NewAdapter 创建一个新的磁盘存储适配器
func NewAdapter(root string) (*Adapter, error) {
	// 确保根目录存在
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root storage dir: %w", err)
	}
	return &Adapter{rootPath: root}, nil
}

// Root 返回对象目录
func (s *Adapter) Root() string { return s.rootPath }

// Location 返回对象目录的绝对路径
func (s *Adapter) Location() string {
	abs, err := filepath.Abs(s.rootPath)
	if err != nil {
		abs = s.rootPath
	}
	return "file://" + filepath.ToSlash(abs)
}

// layout 返回哈希对应的物理路径，分片规则见 storage.ObjectKey
func (s *Adapter) layout(hash types.Hash) string {
	return filepath.Join(s.rootPath, filepath.FromSlash(storage.ObjectKey(hash)))
}

func (s *Adapter) Put(ctx context.Context, obj core.Object) error {
	targetPath := s.layout(obj.ID())

	// 1. 检查是否存在 (幂等性)
	if _, err := os.Stat(targetPath); err == nil {
		return nil
	}

	// 2. 准备分片目录
	dir := filepath.Dir(targetPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("object write mkdir: %w", err)
	}

	// 3. 原子写入：先写临时文件，再 Rename
	// 要么文件不存在，要么文件是完整的
	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tempFile.Name()
	defer os.Remove(tmpName)

	if _, err := tempFile.Write(obj.Bytes()); err != nil {
		tempFile.Close()
		return fmt.Errorf("object write: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("object write close: %w", err)
	}

	// 4. 移动到最终位置
	if err := os.Rename(tmpName, targetPath); err != nil {
		return fmt.Errorf("object write rename: %w", err)
	}
	return nil
}

func (s *Adapter) Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error) {
	f, err := os.Open(s.layout(hash))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Adapter) Has(ctx context.Context, hash types.Hash) (bool, error) {
	_, err := os.Stat(s.layout(hash))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// ExpandHash 在分片目录中查找唯一匹配的对象
func (s *Adapter) ExpandHash(ctx context.Context, short types.HashPrefix) (types.Hash, error) {
	prefix, err := storage.NormalizePrefix(short)
	if err != nil {
		return "", err
	}
	if len(prefix) == types.HashLen {
		ok, err := s.Has(ctx, types.Hash(prefix))
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("%s: %w", prefix, storage.ErrNotFound)
		}
		return types.Hash(prefix), nil
	}

	shard := prefix[:2]
	entries, err := os.ReadDir(filepath.Join(s.rootPath, shard))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	var candidates []types.Hash
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		// 临时文件 (.tmp-*) 解析不出合法哈希，自然被跳过
		h, ok := storage.HashFromKey(shard + "/" + e.Name())
		if !ok || !strings.HasPrefix(string(h), prefix) {
			continue
		}
		candidates = append(candidates, h)
		if len(candidates) > 1 {
			break
		}
	}
	return storage.PickUnique(prefix, candidates)
}
