package core

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"minivcs/pkg/types"
)

// headerSep 分隔类型标签与载荷
const headerSep = 0x00

// Encode 生成对象的落盘编码: "<type>\0<payload>"
func Encode(t ObjectType, payload []byte) []byte {
	buf := make([]byte, 0, len(t)+1+len(payload))
	buf = append(buf, t...)
	buf = append(buf, headerSep)
	return append(buf, payload...)
}

// HashObject 计算对象 ID
// 类型标签参与哈希，所以同样的字节以不同类型存储会得到不同的 ID
func HashObject(t ObjectType, payload []byte) types.Hash {
	h := sha1.New()
	h.Write([]byte(t))
	h.Write([]byte{headerSep})
	h.Write(payload)
	return types.Hash(hex.EncodeToString(h.Sum(nil)))
}

// DecodeEnvelope 拆分落盘编码，只解释第一个 NUL 之前的部分
func DecodeEnvelope(raw []byte) (ObjectType, []byte, error) {
	idx := bytes.IndexByte(raw, headerSep)
	if idx < 0 {
		return "", nil, fmt.Errorf("%w: missing type separator", ErrCorruptObject)
	}
	return ObjectType(raw[:idx]), raw[idx+1:], nil
}

// Decode 把落盘编码还原为具体的对象类型
func Decode(raw []byte) (Object, error) {
	t, payload, err := DecodeEnvelope(raw)
	if err != nil {
		return nil, err
	}
	return FromPayload(t, payload)
}

// FromPayload 根据类型标签构造对象，未知类型返回 ErrCorruptObject
func FromPayload(t ObjectType, payload []byte) (Object, error) {
	switch t {
	case TypeBlob:
		return NewBlob(payload), nil
	case TypeTree:
		return ParseTree(payload)
	case TypeCommit:
		return ParseCommit(payload)
	default:
		return nil, fmt.Errorf("%w: unknown object type %q", ErrCorruptObject, string(t))
	}
}
