package core

import "minivcs/pkg/types"

// Blob 是一个文件在暂存时刻的完整内容
type Blob struct {
	hash types.Hash
	data []byte
}

func NewBlob(data []byte) *Blob {
	return &Blob{
		hash: HashObject(TypeBlob, data),
		data: data,
	}
}

func (b *Blob) Type() ObjectType { return TypeBlob }
func (b *Blob) ID() types.Hash   { return b.hash }
func (b *Blob) Payload() []byte  { return b.data }
func (b *Blob) Bytes() []byte    { return Encode(TypeBlob, b.data) }
func (b *Blob) Size() int64      { return int64(len(b.data)) }
