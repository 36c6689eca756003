package cache

import (
	"fmt"

	"minivcs/pkg/core"

	"github.com/fxamacker/cbor/v2"
)

// maxBodySize 是单条缓存内容的上限
const maxBodySize = 256 * 1024

// record 是写入 Redis 的对象内容
type record struct {
	Type    core.ObjectType `cbor:"t"`
	Payload []byte          `cbor:"p"`
}

// 规范化编码：Map Key 排序、禁止不定长编码
var encOptions = cbor.EncOptions{
	Sort:        cbor.SortCanonical,
	IndefLength: cbor.IndefLengthForbidden,
}

var em, _ = encOptions.EncMode()

var decOptions = cbor.DecOptions{
	// 限制容器大小，防止被污染的缓存耗尽内存
	MaxArrayElements: 1024,
	MaxMapPairs:      16,
	MaxNestedLevels:  4,

	IndefLength: cbor.IndefLengthForbidden,
	DupMapKey:   cbor.DupMapKeyEnforcedAPF,
}

var dm, _ = decOptions.DecMode()

func encodeRecord(r record) ([]byte, error) {
	data, err := em.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cache record: %w", err)
	}
	return data, nil
}

func decodeRecord(data []byte) (record, error) {
	var r record
	if err := dm.Unmarshal(data, &r); err != nil {
		return record{}, fmt.Errorf("failed to unmarshal cache record: %w", err)
	}
	if !r.Type.Valid() {
		return record{}, fmt.Errorf("unknown object type %q in cache record", r.Type)
	}
	return r, nil
}
