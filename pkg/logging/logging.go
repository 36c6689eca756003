package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ParseLevel 把 "debug" / "info" / "warn" / "error" 转成 slog.Level
// 空字符串视为 warn
func ParseLevel(s string) (slog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return slog.LevelWarn, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelWarn, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return lvl, nil
}

// Setup 安装一个文本 handler 作为默认 logger
// 日志写到 w (CLI 下是 stderr)，不和命令输出混在一起
func Setup(level string, w io.Writer) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger, nil
}
