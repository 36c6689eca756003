package core

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"minivcs/pkg/types"
)

// ModeFile 是唯一支持的文件模式 (不支持可执行位和符号链接)
const ModeFile = "100644"

// TreeEntry 描述一个暂存文件
type TreeEntry struct {
	Mode string
	Type ObjectType
	Hash types.Hash
	Path string
}

// Tree 是暂存区的快照，条目按路径排序
type Tree struct {
	hash    types.Hash
	payload []byte

	Entries []TreeEntry
}

// NewTree 创建一个新的树对象
// 条目会被复制并按 Path 排序，保证同样的条目集合得到同样的 ID
func NewTree(entries []TreeEntry) (*Tree, error) {
	sorted := make([]TreeEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	lines := make([]string, 0, len(sorted))
	for i, e := range sorted {
		if e.Path == "" || strings.ContainsAny(e.Path, "\t\n") {
			return nil, fmt.Errorf("invalid tree entry path %q", e.Path)
		}
		if i > 0 && sorted[i-1].Path == e.Path {
			return nil, fmt.Errorf("duplicate tree entry %q", e.Path)
		}
		if !e.Hash.IsValid() {
			return nil, fmt.Errorf("invalid hash %q for %s", e.Hash, e.Path)
		}
		if e.Mode == "" {
			sorted[i].Mode = ModeFile
		}
		if e.Type == "" {
			sorted[i].Type = TypeBlob
		}
		lines = append(lines, fmt.Sprintf("%s %s %s\t%s", sorted[i].Mode, sorted[i].Type, e.Hash, e.Path))
	}

	payload := []byte(strings.Join(lines, "\n"))
	return &Tree{
		hash:    HashObject(TypeTree, payload),
		payload: payload,
		Entries: sorted,
	}, nil
}

// ParseTree 解析树对象载荷
// 保留原始载荷，ID 由原始字节计算
func ParseTree(payload []byte) (*Tree, error) {
	t := &Tree{
		hash:    HashObject(TypeTree, payload),
		payload: payload,
	}
	if len(payload) == 0 {
		return t, nil
	}

	for _, line := range bytes.Split(payload, []byte("\n")) {
		header, path, ok := strings.Cut(string(line), "\t")
		if !ok {
			return nil, fmt.Errorf("%w: tree entry without path: %q", ErrCorruptObject, line)
		}
		fields := strings.Fields(header)
		if len(fields) != 3 {
			return nil, fmt.Errorf("%w: malformed tree entry %q", ErrCorruptObject, header)
		}
		t.Entries = append(t.Entries, TreeEntry{
			Mode: fields[0],
			Type: ObjectType(fields[1]),
			Hash: types.Hash(fields[2]),
			Path: path,
		})
	}
	return t, nil
}

// Lookup 按路径查找条目
func (t *Tree) Lookup(path string) (TreeEntry, bool) {
	i := sort.Search(len(t.Entries), func(i int) bool { return t.Entries[i].Path >= path })
	if i < len(t.Entries) && t.Entries[i].Path == path {
		return t.Entries[i], true
	}
	return TreeEntry{}, false
}

// Paths 返回所有条目路径 (已排序)
func (t *Tree) Paths() []string {
	paths := make([]string, len(t.Entries))
	for i, e := range t.Entries {
		paths[i] = e.Path
	}
	return paths
}

func (t *Tree) Type() ObjectType { return TypeTree }
func (t *Tree) ID() types.Hash   { return t.hash }
func (t *Tree) Payload() []byte  { return t.payload }
func (t *Tree) Bytes() []byte    { return Encode(TypeTree, t.payload) }
