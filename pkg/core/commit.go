package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"minivcs/pkg/types"
)

// Signature 是 author / committer 行: "<name> <unix-timestamp>"
type Signature struct {
	Name string
	When int64
}

func (s Signature) String() string {
	return fmt.Sprintf("%s %d", s.Name, s.When)
}

// Time 返回签名时间 (本地时区)
func (s Signature) Time() time.Time { return time.Unix(s.When, 0) }

func parseSignature(v string) (Signature, error) {
	idx := strings.LastIndexByte(v, ' ')
	if idx < 0 {
		// 没有时间戳，只有名字
		return Signature{Name: v}, nil
	}
	ts, err := strconv.ParseInt(v[idx+1:], 10, 64)
	if err != nil {
		return Signature{}, fmt.Errorf("invalid timestamp %q: %w", v[idx+1:], err)
	}
	return Signature{Name: v[:idx], When: ts}, nil
}

// Commit 把一个树快照链接到至多一个父提交
type Commit struct {
	hash    types.Hash
	payload []byte

	TreeHash  types.Hash
	Parent    types.Hash // 根提交为空
	Author    Signature
	Committer Signature
	Message   string
}

// NewCommit 创建提交对象，author 与 committer 使用同一身份与时间
func NewCommit(treeHash, parent types.Hash, identity string, when time.Time, msg string) (*Commit, error) {
	if !treeHash.IsValid() {
		return nil, fmt.Errorf("invalid tree hash %q", treeHash)
	}
	if !parent.IsZero() && !parent.IsValid() {
		return nil, fmt.Errorf("invalid parent hash %q", parent)
	}
	if identity == "" || strings.ContainsRune(identity, '\n') {
		return nil, fmt.Errorf("invalid identity %q", identity)
	}

	sig := Signature{Name: identity, When: when.Unix()}
	c := &Commit{
		TreeHash:  treeHash,
		Parent:    parent,
		Author:    sig,
		Committer: sig,
		Message:   msg,
	}
	c.payload = c.serialize()
	c.hash = HashObject(TypeCommit, c.payload)
	return c, nil
}

func (c *Commit) serialize() []byte {
	lines := []string{"tree " + c.TreeHash.String()}
	if !c.Parent.IsZero() {
		lines = append(lines, "parent "+c.Parent.String())
	}
	lines = append(lines,
		"author "+c.Author.String(),
		"committer "+c.Committer.String(),
		"",
		c.Message,
	)
	return []byte(strings.Join(lines, "\n"))
}

// ParseCommit 解析提交载荷
// 第一个空行之后的全部内容都是提交信息 (信息本身可以包含空行)
func ParseCommit(payload []byte) (*Commit, error) {
	c := &Commit{
		hash:    HashObject(TypeCommit, payload),
		payload: payload,
	}

	headers, message, _ := strings.Cut(string(payload), "\n\n")
	c.Message = message

	for _, line := range strings.Split(headers, "\n") {
		key, value, _ := strings.Cut(line, " ")
		var err error
		switch key {
		case "tree":
			c.TreeHash = types.Hash(value)
		case "parent":
			c.Parent = types.Hash(value)
		case "author":
			c.Author, err = parseSignature(value)
		case "committer":
			c.Committer, err = parseSignature(value)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: commit %s: %v", ErrCorruptObject, key, err)
		}
	}

	if c.TreeHash.IsZero() {
		return nil, fmt.Errorf("%w: commit without tree", ErrCorruptObject)
	}
	return c, nil
}

// HasParent 报告是否存在父提交
func (c *Commit) HasParent() bool { return !c.Parent.IsZero() }

func (c *Commit) Type() ObjectType { return TypeCommit }
func (c *Commit) ID() types.Hash   { return c.hash }
func (c *Commit) Payload() []byte  { return c.payload }
func (c *Commit) Bytes() []byte    { return Encode(TypeCommit, c.payload) }
