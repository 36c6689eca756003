package core

import (
	"errors"

	"minivcs/pkg/types"
)

// ObjectType 定义了仓库中的对象类型
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"   // 文件内容
	TypeTree   ObjectType = "tree"   // 暂存快照 (路径 -> blob)
	TypeCommit ObjectType = "commit" // 版本快照
)

// ErrCorruptObject 表示对象文件存在但无法解析 (缺少类型分隔符、未知类型、载荷格式错误)
var ErrCorruptObject = errors.New("corrupt object")

// Valid 检查类型标签是否是已知的三种之一
func (t ObjectType) Valid() bool {
	switch t {
	case TypeBlob, TypeTree, TypeCommit:
		return true
	}
	return false
}

func (t ObjectType) String() string { return string(t) }

// Object 是所有内容寻址对象的通用接口
// 实现只有 *Blob, *Tree, *Commit 三种
type Object interface {
	// Type 返回对象类型
	Type() ObjectType

	// ID 返回对象的哈希值，即 SHA-1(type || 0x00 || payload)
	ID() types.Hash

	// Payload 返回不含类型头的原始载荷
	Payload() []byte

	// Bytes 返回落盘的完整编码 ("<type>\0<payload>")
	Bytes() []byte
}
