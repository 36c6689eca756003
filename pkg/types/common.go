// pkg/types/common.go
package types

// Hash 代表对象的唯一标识符 (SHA-1 Hex String, 40 字符)
// 这是一个“值对象”，应当是不可变的。
type Hash string

// HashLen 是完整 Hex 哈希的长度
const HashLen = 40

func (h Hash) String() string { return string(h) }

// 验证 Hash 合法性
func (h Hash) IsZero() bool  { return h == "" }
func (h Hash) IsValid() bool { return len(h) == HashLen && isHex(string(h)) }

// Short 返回用于展示的短哈希 (7 位)
func (h Hash) Short() string {
	if len(h) <= 7 {
		return string(h)
	}
	return string(h[:7])
}

// HashPrefix 是用户输入的短哈希，需要经过 ExpandHash 才能变成 Hash
type HashPrefix string

func (p HashPrefix) String() string { return string(p) }

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}
