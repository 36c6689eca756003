package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"minivcs/pkg/repo"

	"github.com/spf13/viper"
)

// Load 初始化 Viper 配置
// cfgFile: 可选，用户显式指定的配置文件路径
func Load(cfgFile string) error {
	// 1. 设置默认值 (Defaults)
	setDefaults()

	// 2. 配置搜索路径
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		// 搜索顺序：当前目录 > ./.minivcs > ~/.minivcs
		viper.AddConfigPath(".")
		viper.AddConfigPath(repo.DirName)
		viper.AddConfigPath(filepath.Join(home, repo.DirName))

		viper.SetConfigType("yaml")
		viper.SetConfigName("config") // 找 config.yaml
	}

	// 3. 读取环境变量 (MINIVCS_STORAGE_TYPE 等)
	viper.SetEnvPrefix("MINIVCS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 4. 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// 没有配置文件不算错，默认值和环境变量依然有效
			slog.Debug("no config file found, using defaults/env vars")
			return nil
		}
		return fmt.Errorf("fatal error config file: %w", err)
	}

	slog.Debug("using config file", "path", viper.ConfigFileUsed())
	return nil
}

func setDefaults() {
	wd, _ := os.Getwd()
	viper.SetDefault("repo.root", wd)

	// 存储默认值：storage.path 为空表示 <repo.root>/.minivcs/objects
	viper.SetDefault("storage.type", "disk")
	viper.SetDefault("storage.path", "")
	viper.SetDefault("storage.s3.region", "us-east-1")
	viper.SetDefault("storage.s3.prefix", "")

	// 缓存默认关闭
	viper.SetDefault("cache.redis_url", "")
	viper.SetDefault("cache.ttl", "24h")

	// 元数据索引默认关闭
	viper.SetDefault("meta.driver", "none")
	viper.SetDefault("meta.sqlite_path", "")

	// 数据库默认值
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault("user.name", repo.DefaultIdentity)
	viper.SetDefault("log.level", "warn")
}
