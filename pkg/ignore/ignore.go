package ignore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"
)

// FileName 是用户自定义忽略规则所在的文件
const FileName = ".minivcsignore"

// Matcher 封装了忽略逻辑
// 它负责判断一个路径是否应该被 add 跳过
type Matcher struct {
	ignorer *gitignore.GitIgnore
}

// defaultRules 强制生效，防止仓库元数据和密钥被暂存
var defaultRules = []string{
	".minivcs", // 仓库元数据目录
	".git",

	"config.yaml", // 可能包含 S3 / 数据库密钥
	".env",

	".DS_Store",
	"Thumbs.db",
}

// NewMatcher 初始化忽略匹配器
// rootPath: 工作区根目录（用于查找 .minivcsignore 文件）
func NewMatcher(rootPath string) (*Matcher, error) {
	ignoreFilePath := filepath.Join(rootPath, FileName)

	_, statErr := os.Stat(ignoreFilePath)
	switch {
	case statErr == nil:
		// 文件内容和默认规则合并编译
		ignorer, err := gitignore.CompileIgnoreFileAndLines(ignoreFilePath, defaultRules...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
		}
		return &Matcher{ignorer: ignorer}, nil
	case errors.Is(statErr, fs.ErrNotExist):
		return &Matcher{ignorer: gitignore.CompileIgnoreLines(defaultRules...)}, nil
	default:
		return nil, fmt.Errorf("failed to stat %s: %w", FileName, statErr)
	}
}

// Matches 检查给定的路径是否匹配忽略规则
// path: 相对于工作区根目录、以 / 分隔的路径 (例如 "data/model.bin")
// 返回: true 表示应该忽略 (Skip)
func (m *Matcher) Matches(path string) bool {
	if m == nil || m.ignorer == nil {
		return false
	}
	return m.ignorer.MatchesPath(path)
}
