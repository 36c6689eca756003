package exporter

import (
	"context"
	"fmt"
	"io"

	"minivcs/pkg/core"
	"minivcs/pkg/storage"
	"minivcs/pkg/types"
)

type Exporter struct {
	store storage.Store
}

func NewExporter(store storage.Store) *Exporter {
	return &Exporter{store: store}
}

// ExportBlob 把 blob 的原始字节写入 writer
func (e *Exporter) ExportBlob(ctx context.Context, hash types.Hash, writer io.Writer) error {
	obj, err := storage.LoadObject(ctx, e.store, hash)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", hash, err)
	}

	blob, ok := obj.(*core.Blob)
	if !ok {
		return fmt.Errorf("%w: %s is a %s, want blob", storage.ErrTypeMismatch, hash, obj.Type())
	}

	if _, err := writer.Write(blob.Payload()); err != nil {
		return fmt.Errorf("failed to write blob data: %w", err)
	}
	return nil
}

// PrintObject 读取任意对象并打印它的结构
func (e *Exporter) PrintObject(ctx context.Context, hash types.Hash, writer io.Writer) error {
	obj, err := storage.LoadObject(ctx, e.store, hash)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", hash, err)
	}
	return PrintStructure(obj, writer)
}
