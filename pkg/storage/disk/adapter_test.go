package disk

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"minivcs/pkg/core"
	"minivcs/pkg/storage"
	"minivcs/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 模拟一个简单的 Object 实现，用于测试
type mockObject struct {
	id   types.Hash
	data []byte
}

func (m mockObject) ID() types.Hash        { return m.id }
func (m mockObject) Payload() []byte       { return m.data }
func (m mockObject) Bytes() []byte         { return core.Encode(core.TypeBlob, m.data) }
func (m mockObject) Type() core.ObjectType { return core.TypeBlob }

func TestDiskAdapter(t *testing.T) {
	// 1. 创建临时测试目录
	tmpDir := t.TempDir()
	store, err := NewAdapter(tmpDir)
	require.NoError(t, err)

	ctx := context.Background()

	obj := mockObject{
		id:   "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d",
		data: []byte("hello world"),
	}

	// 2. 测试 Put
	err = store.Put(ctx, obj)
	assert.NoError(t, err)

	// 路径应该是 tmpDir/aa/f4c61d...
	expectedPath := filepath.Join(tmpDir, "aa", "f4c61ddcc5e8a2dabede0f3b482cd9aea9434d")
	_, err = os.Stat(expectedPath)
	assert.NoError(t, err, "文件应该存在于 Sharding 目录中")

	// 3. 测试 Has
	exists, err := store.Has(ctx, obj.id)
	assert.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Has(ctx, "ffffffff")
	assert.NoError(t, err)
	assert.False(t, exists)

	// 4. 测试 Get
	reader, err := store.Get(ctx, obj.id)
	require.NoError(t, err)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	assert.NoError(t, err)
	assert.Equal(t, []byte("blob\x00hello world"), content)

	// 5. 不存在的对象
	_, err = store.Get(ctx, "ffffffffffffffffffffffffffffffffffffffff")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDiskAdapter_PutDoesNotOverwrite(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewAdapter(tmpDir)
	require.NoError(t, err)
	ctx := context.Background()

	id := types.Hash("1234567890123456789012345678901234567890")
	require.NoError(t, store.Put(ctx, mockObject{id: id, data: []byte("first")}))
	require.NoError(t, store.Put(ctx, mockObject{id: id, data: []byte("second")}))

	reader, err := store.Get(ctx, id)
	require.NoError(t, err)
	defer reader.Close()
	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, []byte("blob\x00first"), content, "写一次的对象不能被改写")

	// 不应残留临时文件
	entries, err := os.ReadDir(filepath.Join(tmpDir, "12"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDiskAdapter_ExpandHash(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewAdapter(tmpDir)
	require.NoError(t, err)
	ctx := context.Background()

	// 准备数据: 构造两个 Hash 前缀相似的对象
	objA := mockObject{id: "1111aaaa00000000000000000000000000000000", data: []byte("A")}
	objB := mockObject{id: "1111bbbb00000000000000000000000000000000", data: []byte("B")}
	objC := mockObject{id: "2222cccc00000000000000000000000000000000", data: []byte("C")}

	require.NoError(t, store.Put(ctx, objA))
	require.NoError(t, store.Put(ctx, objB))
	require.NoError(t, store.Put(ctx, objC))

	tests := []struct {
		name      string
		input     string
		wantHash  types.Hash
		wantErr   bool
		errString string
	}{
		{"Exact match", string(objC.id), objC.id, false, ""},
		{"Unique prefix (4 chars)", "2222", objC.id, false, ""},
		{"Unique prefix (long)", "2222cccc", objC.id, false, ""},
		{"Upper case prefix", "2222CCCC", objC.id, false, ""},
		{"Ambiguous prefix", "1111", "", true, "ambiguous"},
		{"Not found", "ffff", "", true, "not found"},
		{"Exact but missing", "ffffffffffffffffffffffffffffffffffffffff", "", true, "not found"},
		{"Too short", "123", "", true, "too short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ExpandHash(ctx, types.HashPrefix(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errString != "" {
					assert.Contains(t, err.Error(), tt.errString)
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantHash, got)
			}
		})
	}
}

func TestDiskAdapter_Location(t *testing.T) {
	a, err := NewAdapter(t.TempDir())
	require.NoError(t, err)
	b, err := NewAdapter(t.TempDir())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a.Location(), "file://"))
	assert.NotEqual(t, a.Location(), b.Location())
}
