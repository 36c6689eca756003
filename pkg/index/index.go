// pkg/index/index.go
package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"minivcs/pkg/fsutil"
	"minivcs/pkg/types"
)

// Index 管理暂存区状态：相对路径 -> blob ID
// 落盘格式是一个扁平的 JSON 对象 {"a.txt": "<blob-id>"}
type Index struct {
	path    string // 物理文件路径 (.minivcs/index)
	entries map[string]types.Hash
	mu      sync.RWMutex
}

// NewIndex 加载或创建一个新的 Index
// 文件不存在时返回空 Index，不落盘
func NewIndex(indexPath string) (*Index, error) {
	idx := &Index{
		path:    indexPath,
		entries: make(map[string]types.Hash),
	}

	data, err := os.ReadFile(indexPath)
	if errors.Is(err, fs.ErrNotExist) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	if err := json.Unmarshal(data, &idx.entries); err != nil {
		return nil, fmt.Errorf("corrupted index file: %w", err)
	}
	if idx.entries == nil {
		// 文件内容是 "null"
		idx.entries = make(map[string]types.Hash)
	}
	for p, h := range idx.entries {
		if !h.IsValid() {
			return nil, fmt.Errorf("corrupted index file: invalid hash %q for %s", h, p)
		}
	}
	return idx, nil
}

// Add 更新一条记录，覆盖同一路径的旧值
func (i *Index) Add(path string, hash types.Hash) {
	key := CleanPath(path)
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries[key] = hash
}

// Get 查询一条记录
func (i *Index) Get(path string) (types.Hash, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	h, ok := i.entries[CleanPath(path)]
	return h, ok
}

// Remove 删除一条记录，返回它是否存在
func (i *Index) Remove(path string) bool {
	key := CleanPath(path)
	i.mu.Lock()
	defer i.mu.Unlock()
	_, ok := i.entries[key]
	delete(i.entries, key)
	return ok
}

// Save 将完整的映射原子地写回磁盘
func (i *Index) Save() error {
	i.mu.RLock()
	defer i.mu.RUnlock()

	// encoding/json 对 map 的 key 排序输出，同样的内容得到同样的字节
	data, err := json.MarshalIndent(i.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}
	if err := fsutil.WriteFileAtomic(i.path, data, 0644); err != nil {
		return fmt.Errorf("failed to save index: %w", err)
	}
	return nil
}

// Snapshot 返回当前映射的副本，用于并发安全的读取
func (i *Index) Snapshot() map[string]types.Hash {
	i.mu.RLock()
	defer i.mu.RUnlock()

	snap := make(map[string]types.Hash, len(i.entries))
	maps.Copy(snap, i.entries)
	return snap
}

// Paths 返回排序后的所有暂存路径
func (i *Index) Paths() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return slices.Sorted(maps.Keys(i.entries))
}

// Reset 清空内存中的映射 (需要 Save 才会落盘)
func (i *Index) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries = make(map[string]types.Hash)
}

// IsEmpty 检查暂存区是否有内容
func (i *Index) IsEmpty() bool {
	return i.Len() == 0
}

func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}

// CleanPath 统一路径格式："./a//b" -> "a/b"
func CleanPath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
