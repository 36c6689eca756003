package ingester

import (
	"context"
	"fmt"
	"io"
	"os"

	"minivcs/pkg/core"
	"minivcs/pkg/storage"
)

// Ingester 把工作区文件写入对象库
type Ingester struct {
	store storage.Store
}

func NewIngester(store storage.Store) *Ingester {
	return &Ingester{store: store}
}

// IngestFile 读取整个流，存为一个 blob 对象并返回它
// 文件内容整体进内存：不做分块，大文件不是本工具的场景
func (ing *Ingester) IngestFile(ctx context.Context, reader io.Reader) (*core.Blob, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	blob := core.NewBlob(data)
	if err := ing.store.Put(ctx, blob); err != nil {
		return nil, fmt.Errorf("failed to store blob: %w", err)
	}
	return blob, nil
}

// IngestPath 打开磁盘文件并入库
func (ing *Ingester) IngestPath(ctx context.Context, path string) (*core.Blob, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ing.IngestFile(ctx, f)
}
