package meta

import (
	"time"

	"gorm.io/datatypes"
)

// CommitModel 是 core.Commit 在关系型数据库中的投影 (索引)
// 用于快速查询历史 (minivcs log --author)
// 对象库仍然是唯一的真相来源，这张表可以随时从历史重建
type CommitModel struct {
	// (Repo, Hash) 是联合主键：多个仓库可以共用一个数据库
	Repo string `gorm:"primaryKey;type:varchar(512)"`
	Hash string `gorm:"primaryKey;type:char(40)"`

	Author    string `gorm:"index;type:varchar(255)"`
	Committer string `gorm:"type:varchar(255)"`
	Message   string `gorm:"type:text"`
	Timestamp int64  `gorm:"index"` // 使用 int64 存时间戳，方便范围查询

	TreeHash   string `gorm:"type:char(40);not null"`
	ParentHash string `gorm:"index;type:varchar(40)"` // 根提交为空

	// Files: 该提交快照里的路径列表 ["a.txt", "b.txt"]
	Files datatypes.JSON

	CreatedAt time.Time
}

// TableName 强制指定表名
func (CommitModel) TableName() string {
	return "commits"
}
